package posts

import "github.com/nattapon/inkwell/internal/models"

// DefaultPageSize is the number of posts per listing page.
const DefaultPageSize = 4

// Paginate computes the page window over totalCount posts. Pages beyond
// the last one are left as-is and simply yield no items.
func Paginate(totalCount int64, page, pageSize int) models.Pagination {
	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	return models.Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		HasNextPage: int64(page*pageSize) < totalCount,
		HasPrevPage: page > 1,
		NextPage:    page + 1,
		PrevPage:    page - 1,
	}
}
