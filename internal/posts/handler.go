package posts

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nattapon/inkwell/internal/models"
	"github.com/nattapon/inkwell/internal/store"
)

// maxUploadSize caps a post image at 10 MiB.
const maxUploadSize = 10 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Handler holds post HTTP handlers.
type Handler struct {
	svc   *Service
	files FileStore
}

func NewHandler(svc *Service, files FileStore) *Handler {
	return &Handler{svc: svc, files: files}
}

// requesterID extracts the authenticated user's id injected by the
// RequireAuth middleware.
func requesterID(r *http.Request) (primitive.ObjectID, bool) {
	userID, _ := r.Context().Value("user_id").(string)
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// readImage pulls the uploaded "image" multipart field and stores it
// under a fresh object key. Returns the key, or "" when the field was
// absent.
func (h *Handler) readImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	key := uuid.New().String() + filepath.Ext(header.Filename)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if err := h.files.Upload(r.Context(), key, data, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// List returns one page of all posts, newest first. Public.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	items, pagination, err := h.svc.List(r.Context(), page)
	if err != nil {
		log.Printf("list posts: %v", err)
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, models.PostList{Posts: items, Pagination: pagination})
}

// Mine returns every post owned by the current user.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requesterID(r)
	if !ok {
		http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
		return
	}

	items, err := h.svc.ListOwned(r.Context(), ownerID)
	if err != nil {
		log.Printf("list owned posts: %v", err)
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.Post{}
	}
	writeJSON(w, http.StatusOK, items)
}

// ViewBySlug returns a single post for the public view page.
func (h *Handler) ViewBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		http.Error(w, `{"error":"post not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Image streams a post's attached image.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"post not found"}`, http.StatusNotFound)
		return
	}
	post, err := h.svc.GetByID(r.Context(), id)
	if err != nil || post.Image == "" {
		http.Error(w, `{"error":"image not available"}`, http.StatusNotFound)
		return
	}

	data, ct, err := h.files.Download(r.Context(), post.Image)
	if err != nil {
		log.Printf("download image %s: %v", post.Image, err)
		http.Error(w, `{"error":"download failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ct)
	w.Write(data)
}

// Create stores the uploaded image, then creates the post. A failed
// create removes the image again so nothing is left orphaned.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requesterID(r)
	if !ok {
		http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, `{"error":"invalid multipart form"}`, http.StatusBadRequest)
		return
	}
	title := r.FormValue("title")
	content := r.FormValue("content")
	if title == "" || content == "" {
		http.Error(w, `{"error":"title and content are required"}`, http.StatusBadRequest)
		return
	}

	image, err := h.readImage(r)
	if err != nil {
		log.Printf("image upload: %v", err)
		http.Error(w, `{"error":"image upload failed"}`, http.StatusInternalServerError)
		return
	}
	if image == "" {
		http.Error(w, `{"error":"an image is required"}`, http.StatusBadRequest)
		return
	}

	post, err := h.svc.Create(r.Context(), ownerID, title, content, image)
	if err != nil {
		if rmErr := h.files.Remove(r.Context(), image); rmErr != nil {
			log.Printf("removing image %s of failed create: %v", image, rmErr)
		}
		log.Printf("create post: %v", err)
		http.Error(w, `{"error":"something went wrong, try again"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// Update edits a post; the image is replaced only when a new one is
// uploaded. The new image is stored before the record is touched.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterID(r)
	if !ok {
		http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
		return
	}
	postID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"post not found"}`, http.StatusNotFound)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, `{"error":"invalid multipart form"}`, http.StatusBadRequest)
		return
	}
	title := r.FormValue("title")
	content := r.FormValue("content")
	if title == "" || content == "" {
		http.Error(w, `{"error":"title and content are required"}`, http.StatusBadRequest)
		return
	}

	newImage, err := h.readImage(r)
	if err != nil {
		log.Printf("image upload: %v", err)
		http.Error(w, `{"error":"image upload failed"}`, http.StatusInternalServerError)
		return
	}

	post, err := h.svc.Update(r.Context(), postID, requester, title, content, newImage)
	if err != nil {
		if newImage != "" {
			if rmErr := h.files.Remove(r.Context(), newImage); rmErr != nil {
				log.Printf("removing image %s of failed update: %v", newImage, rmErr)
			}
		}
		h.writeMutationError(w, err, "update post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Delete removes a post, its index entry and its image.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterID(r)
	if !ok {
		http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
		return
	}
	postID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"post not found"}`, http.StatusNotFound)
		return
	}

	if err := h.svc.Delete(r.Context(), postID, requester); err != nil {
		h.writeMutationError(w, err, "delete post")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message":"deleted"}`))
}

func (h *Handler) writeMutationError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, `{"error":"post not found"}`, http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, `{"error":"you do not own this post"}`, http.StatusForbidden)
	default:
		log.Printf("%s: %v", op, err)
		http.Error(w, `{"error":"something went wrong, try again"}`, http.StatusInternalServerError)
	}
}
