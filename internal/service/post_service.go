// Package service implements the domain operations over the posts collection:
// creation with slug derivation and field defaults, filtered listing,
// partial updates, and deletion with referential cleanup of owned blobs.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"newsdesk/internal/blobstore"
	"newsdesk/internal/cache"
	"newsdesk/internal/models"
	"newsdesk/internal/richtext"
	"newsdesk/internal/storage"

	"github.com/google/uuid"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// PostService composes the document store and the blob store into the post
// repository operations. Every mutation funnels through storage.Mutate, so
// the load-mutate-save cycle is serialized.
type PostService struct {
	store          *storage.Store
	blobs          blobstore.BlobStore
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewPostService creates a PostService.
func NewPostService(store *storage.Store, blobs blobstore.BlobStore, maxUploadBytes int64, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		store:          store,
		blobs:          blobs,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// CreatePostInput carries the fields and attachments for a new post.
type CreatePostInput struct {
	Title           string
	Slug            string
	Category        string
	Language        string
	Author          string
	HTMLContent     string
	CoverImageLabel string
	PublishStatus   string
	ActiveStatus    string
	CoverImage      *UploadedFile
	GalleryImages   []UploadedFile
}

// UpdatePostInput carries a partial update. Nil pointers mean "keep the
// existing value"; a non-nil CoverImage or GalleryImages replaces the owned
// blobs after deleting the previous ones.
type UpdatePostInput struct {
	Title           *string
	Slug            *string
	Category        *string
	Language        *string
	Author          *string
	HTMLContent     *string
	CoverImageLabel *string
	Status          *string
	PublishStatus   *string
	ActiveStatus    *string
	CoverImage      *UploadedFile
	GalleryImages   []UploadedFile
}

// ListPostsInput holds the combinable list filters and pagination.
type ListPostsInput struct {
	Page         int
	Limit        int
	Category     string
	Search       string
	ActiveStatus string
}

// PostPage is one page of the filtered collection.
type PostPage struct {
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	Total      int           `json:"total"`
	TotalPages int           `json:"totalPages"`
	Posts      []models.Post `json:"posts"`
}

// Create validates required fields, stores attachments, assigns defaults, and
// appends the new post to the collection.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if strings.TrimSpace(in.HTMLContent) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.GalleryImages) > MaxGalleryImages {
		return nil, models.NewUploadError("Too many gallery images (max 10)")
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = Slugify(in.Title)
	}

	var coverPath string
	if in.CoverImage != nil {
		paths, err := s.storeUploads([]UploadedFile{*in.CoverImage})
		if err != nil {
			return nil, err
		}
		coverPath = paths[0]
	}
	galleryPaths, err := s.storeUploads(in.GalleryImages)
	if err != nil {
		if coverPath != "" {
			s.deleteBlobs([]string{coverPath})
		}
		return nil, err
	}
	if galleryPaths == nil {
		galleryPaths = []string{}
	}

	now := time.Now().UTC()
	post := models.Post{
		ID:              uuid.NewString(),
		Title:           in.Title,
		Slug:            slug,
		Category:        in.Category,
		Language:        in.Language,
		Author:          in.Author,
		HTMLContent:     in.HTMLContent,
		CoverImageLabel: in.CoverImageLabel,
		CoverImage:      coverPath,
		GalleryImages:   galleryPaths,
		Status:          models.DefaultStatus,
		PublishStatus:   models.NormalizePublishStatus(in.PublishStatus),
		ActiveStatus:    models.NormalizeActiveStatus(in.ActiveStatus),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.store.Mutate(func(doc *storage.Document) error {
		doc.Posts = append(doc.Posts, post)
		return nil
	})
	if err != nil {
		// The post never made it into the collection; its blobs are orphans.
		s.deleteBlobs(post.OwnedBlobs())
		return nil, models.NewStorageError(err)
	}

	return &post, nil
}

// GetByID fetches one post by id, via the cache when available.
func (s *PostService) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		doc, err := s.store.Snapshot()
		if err != nil {
			return models.NewStorageError(err)
		}
		for i := range doc.Posts {
			if doc.Posts[i].ID == id {
				post = doc.Posts[i]
				return nil
			}
		}
		return models.NewNotFoundError("Post", id)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List applies the combinable filters in insertion order and returns the
// requested page together with total counts.
func (s *PostService) List(ctx context.Context, in ListPostsInput) (*PostPage, error) {
	doc, err := s.store.Snapshot()
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	filtered := filterPosts(doc.Posts, in)

	page := in.Page
	if page < 1 {
		page = defaultPage
	}
	limit := in.Limit
	if limit < 1 {
		limit = defaultLimit
	}

	total := len(filtered)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &PostPage{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		Posts:      filtered[start:end],
	}, nil
}

// Update applies a partial update to the post with the given id. Supplied
// enum values are applied only when valid; invalid values keep the prior
// value unchanged rather than failing the request.
func (s *PostService) Update(ctx context.Context, id string, in UpdatePostInput) (*models.Post, error) {
	if len(in.GalleryImages) > MaxGalleryImages {
		return nil, models.NewUploadError("Too many gallery images (max 10)")
	}

	// Store replacements up front so a rejected upload leaves the post and
	// its current blobs untouched.
	var newCover string
	if in.CoverImage != nil {
		paths, err := s.storeUploads([]UploadedFile{*in.CoverImage})
		if err != nil {
			return nil, err
		}
		newCover = paths[0]
	}
	var newGallery []string
	if in.GalleryImages != nil {
		paths, err := s.storeUploads(in.GalleryImages)
		if err != nil {
			if in.CoverImage != nil {
				s.deleteBlobs([]string{newCover})
			}
			return nil, err
		}
		newGallery = paths
		if newGallery == nil {
			newGallery = []string{}
		}
	}

	var updated models.Post
	var replaced []string
	err := s.store.Mutate(func(doc *storage.Document) error {
		idx := indexByID(doc.Posts, id)
		if idx < 0 {
			return models.NewNotFoundError("Post", id)
		}
		post := &doc.Posts[idx]

		applyString(&post.Title, in.Title)
		applyString(&post.Slug, in.Slug)
		applyString(&post.Category, in.Category)
		applyString(&post.Language, in.Language)
		applyString(&post.Author, in.Author)
		applyString(&post.HTMLContent, in.HTMLContent)
		applyString(&post.CoverImageLabel, in.CoverImageLabel)
		applyString(&post.Status, in.Status)

		// Invalid enum input is silently ignored, keeping the prior value.
		// This leniency is deliberate and matches the documented contract.
		if in.PublishStatus != nil && models.IsValidPublishStatus(*in.PublishStatus) {
			post.PublishStatus = *in.PublishStatus
		}
		if in.ActiveStatus != nil && models.IsValidActiveStatus(*in.ActiveStatus) {
			post.ActiveStatus = *in.ActiveStatus
		}

		if in.CoverImage != nil {
			if post.CoverImage != "" {
				replaced = append(replaced, post.CoverImage)
			}
			post.CoverImage = newCover
		}
		if in.GalleryImages != nil {
			replaced = append(replaced, post.GalleryImages...)
			post.GalleryImages = newGallery
		}

		post.UpdatedAt = time.Now().UTC()
		updated = *post
		return nil
	})
	if err != nil {
		// The document was not persisted; drop the just-stored replacements.
		if in.CoverImage != nil {
			s.deleteBlobs([]string{newCover})
		}
		s.deleteBlobs(newGallery)
		if _, ok := err.(*models.AppError); ok {
			return nil, err
		}
		return nil, models.NewStorageError(err)
	}

	// The new document is on disk; the replaced blobs are no longer owned.
	s.deleteBlobs(replaced)
	cache.Invalidate(ctx, cache.PostKey(id))

	return &updated, nil
}

// Delete removes the post with the given id, deletes its owned blobs, and
// returns the removed record.
func (s *PostService) Delete(ctx context.Context, id string) (*models.Post, error) {
	var removed models.Post
	err := s.store.Mutate(func(doc *storage.Document) error {
		idx := indexByID(doc.Posts, id)
		if idx < 0 {
			return models.NewNotFoundError("Post", id)
		}
		removed = doc.Posts[idx]
		doc.Posts = append(doc.Posts[:idx], doc.Posts[idx+1:]...)
		return nil
	})
	if err != nil {
		if _, ok := err.(*models.AppError); ok {
			return nil, err
		}
		return nil, models.NewStorageError(err)
	}

	s.deleteBlobs(removed.OwnedBlobs())
	cache.Invalidate(ctx, cache.PostKey(id))

	return &removed, nil
}

// DeleteAll empties the collection and deletes every owned blob. A second
// call is a no-op that still succeeds.
func (s *PostService) DeleteAll(ctx context.Context) (int, error) {
	var removed []models.Post
	err := s.store.Mutate(func(doc *storage.Document) error {
		removed = doc.Posts
		doc.Posts = []models.Post{}
		return nil
	})
	if err != nil {
		return 0, models.NewStorageError(err)
	}

	for _, post := range removed {
		s.deleteBlobs(post.OwnedBlobs())
		cache.Invalidate(ctx, cache.PostKey(post.ID))
	}
	return len(removed), nil
}

func filterPosts(posts []models.Post, in ListPostsInput) []models.Post {
	category := strings.TrimSpace(in.Category)
	// An unrecognized category is ignored rather than matching nothing.
	filterCategory := category != "" && models.IsValidCategory(category)
	activeStatus := strings.TrimSpace(in.ActiveStatus)
	search := strings.ToLower(strings.TrimSpace(in.Search))

	filtered := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if filterCategory && !strings.EqualFold(p.Category, category) {
			continue
		}
		if activeStatus != "" && !strings.EqualFold(p.ActiveStatus, activeStatus) {
			continue
		}
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

func matchesSearch(p models.Post, loweredQuery string) bool {
	if strings.Contains(strings.ToLower(p.Title), loweredQuery) {
		return true
	}
	return strings.Contains(strings.ToLower(richtext.PlainText(p.HTMLContent)), loweredQuery)
}

func indexByID(posts []models.Post, id string) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
