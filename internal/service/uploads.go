package service

import (
	"bytes"
	"fmt"
	"image"
	"net/http"

	"newsdesk/internal/models"

	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	_ "golang.org/x/image/webp" // register WebP decoder
)

// MaxGalleryImages caps how many gallery files one request may attach.
const MaxGalleryImages = 10

// UploadedFile is one file received on a multipart form, not yet stored.
type UploadedFile struct {
	Field    string
	Filename string
	Content  []byte
}

// validateUpload enforces the upload contract: image content only, capped at
// maxBytes. Type checks sniff the bytes rather than trusting the client.
func (s *PostService) validateUpload(f UploadedFile) error {
	if len(f.Content) == 0 {
		return models.NewUploadError("Uploaded file is empty")
	}
	if int64(len(f.Content)) > s.maxUploadBytes {
		return models.NewUploadError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadBytes/(1024*1024)))
	}
	if !isAllowedImageMIME(http.DetectContentType(f.Content)) {
		return models.NewUploadError("Only image uploads are allowed")
	}
	if _, _, err := image.Decode(bytes.NewReader(f.Content)); err != nil {
		return models.NewUploadError("Invalid image file")
	}
	return nil
}

// storeUploads validates and persists a batch of files, returning their blob
// paths. On any failure every already-stored file from the batch is removed.
func (s *PostService) storeUploads(files []UploadedFile) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		if err := s.validateUpload(f); err != nil {
			s.deleteBlobs(paths)
			return nil, err
		}
		path, err := s.blobs.Store(f.Content, f.Field, f.Filename)
		if err != nil {
			s.deleteBlobs(paths)
			return nil, models.NewStorageError(err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// deleteBlobs removes blobs best-effort; delete is idempotent so repeats and
// already-missing files are fine.
func (s *PostService) deleteBlobs(paths []string) {
	for _, p := range paths {
		if err := s.blobs.Delete(p); err != nil {
			s.logger.Warn("failed to delete blob", "path", p, "error", err)
		}
	}
}

func isAllowedImageMIME(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}
