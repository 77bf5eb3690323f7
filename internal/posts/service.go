package posts

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nattapon/inkwell/internal/models"
)

// ErrForbidden is returned when the requester is not the owner of the
// post being mutated.
var ErrForbidden = errors.New("not the owner of this post")

// PostStore defines the interface for post persistence.
type PostStore interface {
	Insert(ctx context.Context, post *models.Post) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string, excludeID primitive.ObjectID) (bool, error)
	Update(ctx context.Context, id primitive.ObjectID, title, content, slug, image string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
	ListPage(ctx context.Context, page, pageSize int) ([]models.Post, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error)
}

// UserIndex is the slice of the user store the post lifecycle needs:
// resolving owners and maintaining their denormalized posts index.
type UserIndex interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	PushPost(ctx context.Context, userID, postID primitive.ObjectID) error
	PullPost(ctx context.Context, userID, postID primitive.ObjectID) error
}

// FileStore defines the interface for attachment storage.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// Service implements the ownership-scoped post lifecycle. Every post
// keeps exactly one attached image in the file store; mutations order
// their writes so a failure can orphan a file but never leave a post
// pointing at a missing one.
type Service struct {
	posts PostStore
	users UserIndex
	files FileStore
}

func NewService(posts PostStore, users UserIndex, files FileStore) *Service {
	return &Service{posts: posts, users: users, files: files}
}

// uniqueSlug derives the slug for title, appending a random suffix when
// another post already claimed it.
func (s *Service) uniqueSlug(ctx context.Context, title string, excludeID primitive.ObjectID) (string, error) {
	slug := Slugify(title)
	taken, err := s.posts.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return "", err
	}
	if taken {
		slug = slug + "_" + uuid.New().String()[:8]
	}
	return slug, nil
}

// Create persists a new post for owner and appends it to the owner's
// posts index. The image must already be in the file store. If the
// index update fails, the inserted post is removed again so a failed
// create never leaves a half-visible post.
func (s *Service) Create(ctx context.Context, ownerID primitive.ObjectID, title, content, image string) (*models.Post, error) {
	slug, err := s.uniqueSlug(ctx, title, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:   title,
		Content: content,
		Slug:    slug,
		Image:   image,
		UserID:  ownerID,
	}
	id, err := s.posts.Insert(ctx, post)
	if err != nil {
		return nil, err
	}

	if err := s.users.PushPost(ctx, ownerID, id); err != nil {
		if delErr := s.posts.Delete(ctx, id); delErr != nil {
			log.Printf("rollback of post %s failed: %v", id.Hex(), delErr)
		}
		return nil, fmt.Errorf("update owner index: %w", err)
	}
	return post, nil
}

// Update mutates a post on behalf of requester. Only the owner may
// edit. When newImage is non-empty the record is committed with the new
// key first, and the old file is removed afterwards, best-effort.
func (s *Service) Update(ctx context.Context, postID, requesterID primitive.ObjectID, title, content, newImage string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != requesterID {
		return nil, ErrForbidden
	}

	slug, err := s.uniqueSlug(ctx, title, postID)
	if err != nil {
		return nil, err
	}

	image := post.Image
	if newImage != "" {
		image = newImage
	}
	if err := s.posts.Update(ctx, postID, title, content, slug, image); err != nil {
		return nil, err
	}

	if newImage != "" && post.Image != "" {
		if err := s.files.Remove(ctx, post.Image); err != nil {
			log.Printf("removing replaced image %s: %v", post.Image, err)
		}
	}

	post.Title = title
	post.Content = content
	post.Slug = slug
	post.Image = image
	return post, nil
}

// Delete removes a post, its entry in the owner's index, and its image.
// Only the owner may delete. A repeated delete observes ErrNotFound and
// changes nothing. Image removal is best-effort: a leftover file is
// logged, never escalated.
func (s *Service) Delete(ctx context.Context, postID, requesterID primitive.ObjectID) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != requesterID {
		return ErrForbidden
	}

	if err := s.users.PullPost(ctx, requesterID, postID); err != nil {
		return fmt.Errorf("update owner index: %w", err)
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}

	if post.Image != "" {
		if err := s.files.Remove(ctx, post.Image); err != nil {
			log.Printf("removing image %s of deleted post: %v", post.Image, err)
		}
	}
	return nil
}

// List returns one public listing page, newest first. Pages below 1
// read as page 1; pages past the end come back empty.
func (s *Service) List(ctx context.Context, page int) ([]models.Post, models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	total, err := s.posts.Count(ctx)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	items, err := s.posts.ListPage(ctx, page, DefaultPageSize)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	if items == nil {
		items = []models.Post{}
	}
	return items, Paginate(total, page, DefaultPageSize), nil
}

// ListOwned returns every post in the owner's index, unpaginated.
func (s *Service) ListOwned(ctx context.Context, ownerID primitive.ObjectID) ([]models.Post, error) {
	user, err := s.users.GetUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.posts.ListByIDs(ctx, user.Posts)
}

// GetBySlug returns a single post for the public view page.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.posts.GetBySlug(ctx, slug)
}

// GetByID returns a single post.
func (s *Service) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}
