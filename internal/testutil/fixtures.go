// Package testutil provides shared test doubles and fixtures.
package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"newsdesk/internal/storage"
)

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// NewStore returns a document store backed by a file in a fresh temp dir.
func NewStore(t *testing.T) *storage.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "news.json")
	return storage.New(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// BlobStoreStub is an in-memory blob store that records stored and deleted
// paths so tests can assert the upload lifecycle without touching disk.
type BlobStoreStub struct {
	mu      sync.Mutex
	nextID  int
	Blobs   map[string][]byte
	Deleted []string
	// StoreErr, when set, is returned by every Store call.
	StoreErr error
}

// NewBlobStoreStub creates an empty in-memory blob store stub.
func NewBlobStoreStub() *BlobStoreStub {
	return &BlobStoreStub{Blobs: make(map[string][]byte)}
}

// Store keeps the content in memory under a deterministic path.
func (s *BlobStoreStub) Store(content []byte, field, originalName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.StoreErr != nil {
		return "", s.StoreErr
	}
	s.nextID++
	path := fmt.Sprintf("/uploads/%s-%d%s", field, s.nextID, filepath.Ext(originalName))
	s.Blobs[path] = append([]byte(nil), content...)
	return path, nil
}

// Delete removes the blob if present and records the call either way.
func (s *BlobStoreStub) Delete(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Blobs, path)
	s.Deleted = append(s.Deleted, path)
	return nil
}

// Root returns a placeholder directory path.
func (s *BlobStoreStub) Root() string { return "testdata" }

// Has reports whether a blob is currently stored under path.
func (s *BlobStoreStub) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Blobs[path]
	return ok
}
