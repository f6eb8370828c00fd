package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"newsdesk/internal/models"
	"newsdesk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxUpload = 5 * 1024 * 1024

func newTestService(t *testing.T) (*PostService, *testutil.BlobStoreStub) {
	t.Helper()
	blobs := testutil.NewBlobStoreStub()
	svc := NewPostService(testutil.NewStore(t), blobs, testMaxUpload,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, blobs
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T (%v)", err, err)
	return appErr.Code
}

func pngUpload(t *testing.T, field, name string) *UploadedFile {
	t.Helper()
	return &UploadedFile{Field: field, Filename: name, Content: testutil.TinyPNG(t, 8, 8)}
}

func TestCreatePostDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	post, err := svc.Create(context.Background(), CreatePostInput{
		Title:       "Xəbər: İşıq!",
		HTMLContent: "<p>body</p>",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "xeber-isiq", post.Slug)
	assert.Equal(t, models.DefaultStatus, post.Status)
	assert.Equal(t, models.PublishStatusDraft, post.PublishStatus)
	assert.Equal(t, models.ActiveStatusActive, post.ActiveStatus)
	assert.NotNil(t, post.GalleryImages)
	assert.Empty(t, post.GalleryImages)
	assert.False(t, post.CreatedAt.IsZero())
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)

	fetched, err := svc.GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, fetched.Title)
}

func TestCreatePostExplicitSlugWins(t *testing.T) {
	svc, _ := newTestService(t)

	post, err := svc.Create(context.Background(), CreatePostInput{
		Title:       "Some Title",
		Slug:        "custom-slug",
		HTMLContent: "<p>body</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "custom-slug", post.Slug)
}

func TestCreatePostValidation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name  string
		input CreatePostInput
	}{
		{"Missing title", CreatePostInput{HTMLContent: "<p>x</p>"}},
		{"Blank title", CreatePostInput{Title: "   ", HTMLContent: "<p>x</p>"}},
		{"Missing content", CreatePostInput{Title: "Title"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))
		})
	}
}

func TestCreatePostStoresUploads(t *testing.T) {
	svc, blobs := newTestService(t)

	post, err := svc.Create(context.Background(), CreatePostInput{
		Title:       "With images",
		HTMLContent: "<p>x</p>",
		CoverImage:  pngUpload(t, "coverImage", "cover.png"),
		GalleryImages: []UploadedFile{
			*pngUpload(t, "galleryImages", "one.png"),
			*pngUpload(t, "galleryImages", "two.png"),
		},
	})
	require.NoError(t, err)

	assert.True(t, blobs.Has(post.CoverImage))
	require.Len(t, post.GalleryImages, 2)
	for _, p := range post.GalleryImages {
		assert.True(t, blobs.Has(p))
	}
}

func TestCreatePostRejectsNonImage(t *testing.T) {
	svc, blobs := newTestService(t)

	_, err := svc.Create(context.Background(), CreatePostInput{
		Title:       "Bad upload",
		HTMLContent: "<p>x</p>",
		CoverImage:  &UploadedFile{Field: "coverImage", Filename: "note.txt", Content: []byte("plain text, not an image")},
	})
	assert.Equal(t, "UPLOAD_ERROR", appErrCode(t, err))
	assert.Empty(t, blobs.Blobs)
}

func TestCreatePostRejectsOversizedUpload(t *testing.T) {
	blobs := testutil.NewBlobStoreStub()
	svc := NewPostService(testutil.NewStore(t), blobs, 16, // 16-byte cap
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.Create(context.Background(), CreatePostInput{
		Title:       "Too big",
		HTMLContent: "<p>x</p>",
		CoverImage:  pngUpload(t, "coverImage", "big.png"),
	})
	assert.Equal(t, "UPLOAD_ERROR", appErrCode(t, err))
}

func TestCreatePostTooManyGalleryImages(t *testing.T) {
	svc, _ := newTestService(t)

	gallery := make([]UploadedFile, MaxGalleryImages+1)
	for i := range gallery {
		gallery[i] = *pngUpload(t, "galleryImages", "img.png")
	}
	_, err := svc.Create(context.Background(), CreatePostInput{
		Title:         "Too many",
		HTMLContent:   "<p>x</p>",
		GalleryImages: gallery,
	})
	assert.Equal(t, "UPLOAD_ERROR", appErrCode(t, err))
}

func TestCreatePostCleansUpCoverWhenGalleryFails(t *testing.T) {
	svc, blobs := newTestService(t)

	_, err := svc.Create(context.Background(), CreatePostInput{
		Title:       "Partial failure",
		HTMLContent: "<p>x</p>",
		CoverImage:  pngUpload(t, "coverImage", "cover.png"),
		GalleryImages: []UploadedFile{
			{Field: "galleryImages", Filename: "bad.txt", Content: []byte("not an image")},
		},
	})
	assert.Equal(t, "UPLOAD_ERROR", appErrCode(t, err))
	// The already-stored cover must not linger as an orphan.
	assert.Empty(t, blobs.Blobs)
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetByID(context.Background(), "missing")
	assert.Equal(t, "NOT_FOUND", appErrCode(t, err))
}

func seedPosts(t *testing.T, svc *PostService) {
	t.Helper()
	inputs := []CreatePostInput{
		{Title: "City council news", Category: "news", HTMLContent: "<p>Budget approved</p>", ActiveStatus: "active"},
		{Title: "Festival announcement", Category: "announcement", HTMLContent: "<p>Music in the park</p>", ActiveStatus: "active"},
		{Title: "Old notice", Category: "news", HTMLContent: "<p>Archived content</p>", ActiveStatus: "inactive"},
		{Title: "Press briefing", Category: "press-release", HTMLContent: "<p>Quarterly results</p>", ActiveStatus: "active"},
	}
	for _, in := range inputs {
		_, err := svc.Create(context.Background(), in)
		require.NoError(t, err)
	}
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService(t)
	seedPosts(t, svc)

	tests := []struct {
		name     string
		input    ListPostsInput
		expected int
	}{
		{"No filters", ListPostsInput{}, 4},
		{"Category", ListPostsInput{Category: "news"}, 2},
		{"Category is case-insensitive", ListPostsInput{Category: "NEWS"}, 2},
		{"Unrecognized category ignored", ListPostsInput{Category: "sports"}, 4},
		{"Active only", ListPostsInput{ActiveStatus: "active"}, 3},
		{"Inactive only", ListPostsInput{ActiveStatus: "inactive"}, 1},
		{"Search in title", ListPostsInput{Search: "festival"}, 1},
		{"Search in body text", ListPostsInput{Search: "budget"}, 1},
		{"Search ignores markup", ListPostsInput{Search: "<p>"}, 0},
		{"Combined filters", ListPostsInput{Category: "news", ActiveStatus: "active"}, 1},
		{"No match", ListPostsInput{Search: "zzz-nothing"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.List(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, page.Total)
			assert.Len(t, page.Posts, tt.expected)
		})
	}
}

func TestListPagination(t *testing.T) {
	svc, _ := newTestService(t)
	seedPosts(t, svc)

	page, err := svc.List(context.Background(), ListPostsInput{Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Posts, 3)

	page, err = svc.List(context.Background(), ListPostsInput{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 1)

	// A page past the end is empty, not an error.
	page, err = svc.List(context.Background(), ListPostsInput{Page: 9, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.Equal(t, 9, page.Page)

	// Bad pagination input falls back to defaults.
	page, err = svc.List(context.Background(), ListPostsInput{Page: -1, Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Len(t, page.Posts, 4)
}

func TestUpdatePartial(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), CreatePostInput{
		Title:       "Original title",
		Category:    "news",
		HTMLContent: "<p>body</p>",
	})
	require.NoError(t, err)

	newTitle := "Updated title"
	updated, err := svc.Update(context.Background(), created.ID, UpdatePostInput{Title: &newTitle})
	require.NoError(t, err)

	assert.Equal(t, "Updated title", updated.Title)
	// Untouched fields survive, including the slug derived at creation.
	assert.Equal(t, created.Slug, updated.Slug)
	assert.Equal(t, "news", updated.Category)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))
}

func TestUpdateEnumLeniency(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), CreatePostInput{
		Title:        "Enum post",
		HTMLContent:  "<p>x</p>",
		ActiveStatus: models.ActiveStatusInactive,
	})
	require.NoError(t, err)

	bogus := "archived"
	valid := models.PublishStatusPublish
	updated, err := svc.Update(context.Background(), created.ID, UpdatePostInput{
		ActiveStatus:  &bogus,
		PublishStatus: &valid,
	})
	require.NoError(t, err)

	// Invalid enum input is ignored, valid input is applied.
	assert.Equal(t, models.ActiveStatusInactive, updated.ActiveStatus)
	assert.Equal(t, models.PublishStatusPublish, updated.PublishStatus)
}

func TestUpdateReplacesCoverImage(t *testing.T) {
	svc, blobs := newTestService(t)

	created, err := svc.Create(context.Background(), CreatePostInput{
		Title:       "Cover post",
		HTMLContent: "<p>x</p>",
		CoverImage:  pngUpload(t, "coverImage", "old.png"),
	})
	require.NoError(t, err)
	oldCover := created.CoverImage

	updated, err := svc.Update(context.Background(), created.ID, UpdatePostInput{
		CoverImage: pngUpload(t, "coverImage", "new.png"),
	})
	require.NoError(t, err)

	assert.NotEqual(t, oldCover, updated.CoverImage)
	assert.True(t, blobs.Has(updated.CoverImage))
	assert.False(t, blobs.Has(oldCover))
	assert.Contains(t, blobs.Deleted, oldCover)
}

func TestUpdateReplacesGallery(t *testing.T) {
	svc, blobs := newTestService(t)

	created, err := svc.Create(context.Background(), CreatePostInput{
		Title:       "Gallery post",
		HTMLContent: "<p>x</p>",
		GalleryImages: []UploadedFile{
			*pngUpload(t, "galleryImages", "a.png"),
			*pngUpload(t, "galleryImages", "b.png"),
		},
	})
	require.NoError(t, err)
	oldGallery := created.GalleryImages

	updated, err := svc.Update(context.Background(), created.ID, UpdatePostInput{
		GalleryImages: []UploadedFile{*pngUpload(t, "galleryImages", "c.png")},
	})
	require.NoError(t, err)

	require.Len(t, updated.GalleryImages, 1)
	assert.True(t, blobs.Has(updated.GalleryImages[0]))
	for _, old := range oldGallery {
		assert.False(t, blobs.Has(old))
	}
}

func TestUpdateRejectedUploadLeavesPostIntact(t *testing.T) {
	svc, blobs := newTestService(t)

	created, err := svc.Create(context.Background(), CreatePostInput{
		Title:       "Stable post",
		HTMLContent: "<p>x</p>",
		CoverImage:  pngUpload(t, "coverImage", "keep.png"),
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, UpdatePostInput{
		CoverImage: &UploadedFile{Field: "coverImage", Filename: "bad.txt", Content: []byte("nope")},
	})
	assert.Equal(t, "UPLOAD_ERROR", appErrCode(t, err))

	fetched, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.CoverImage, fetched.CoverImage)
	assert.True(t, blobs.Has(created.CoverImage))
}

func TestUpdateNotFound(t *testing.T) {
	svc, blobs := newTestService(t)

	title := "x"
	_, err := svc.Update(context.Background(), "missing", UpdatePostInput{
		Title:      &title,
		CoverImage: pngUpload(t, "coverImage", "new.png"),
	})
	assert.Equal(t, "NOT_FOUND", appErrCode(t, err))
	// The replacement stored before the lookup failed must be cleaned up.
	assert.Empty(t, blobs.Blobs)
}

func TestDeleteRemovesPostAndBlobs(t *testing.T) {
	svc, blobs := newTestService(t)

	created, err := svc.Create(context.Background(), CreatePostInput{
		Title:       "Doomed post",
		HTMLContent: "<p>x</p>",
		CoverImage:  pngUpload(t, "coverImage", "cover.png"),
		GalleryImages: []UploadedFile{
			*pngUpload(t, "galleryImages", "g.png"),
		},
	})
	require.NoError(t, err)

	removed, err := svc.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, removed.ID)
	assert.Empty(t, blobs.Blobs)

	_, err = svc.GetByID(context.Background(), created.ID)
	assert.Equal(t, "NOT_FOUND", appErrCode(t, err))
}

func TestDeleteNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Delete(context.Background(), "missing")
	assert.Equal(t, "NOT_FOUND", appErrCode(t, err))
}

func TestDeleteAll(t *testing.T) {
	svc, blobs := newTestService(t)
	seedPosts(t, svc)

	_, err := svc.Create(context.Background(), CreatePostInput{
		Title:       "With blob",
		HTMLContent: "<p>x</p>",
		CoverImage:  pngUpload(t, "coverImage", "c.png"),
	})
	require.NoError(t, err)

	count, err := svc.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.Empty(t, blobs.Blobs)

	// Emptying an already-empty collection still succeeds.
	count, err = svc.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	page, err := svc.List(context.Background(), ListPostsInput{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}
