package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a unit of content owned by exactly one user, stored in the
// MongoDB posts collection. Image is the object key of the single
// attached file in the image store.
type Post struct {
	ID        primitive.ObjectID `json:"id"         bson:"_id,omitempty"`
	Title     string             `json:"title"      bson:"title"`
	Content   string             `json:"content"    bson:"content"`
	Slug      string             `json:"slug"       bson:"slug"`
	Image     string             `json:"image"      bson:"image"`
	UserID    primitive.ObjectID `json:"user_id"    bson:"user_id"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Pagination describes a page window over the post listing.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
	NextPage    int  `json:"next_page"`
	PrevPage    int  `json:"prev_page"`
}

// PostList is the JSON body returned by GET /api/posts.
type PostList struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}
