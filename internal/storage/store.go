// Package storage implements the single-file JSON document store backing the
// posts collection. The whole file is the unit of persistence: every mutation
// rewrites the complete document. A mutex around the load-mutate-save cycle
// serializes writers, so concurrent mutations cannot clobber each other.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"newsdesk/internal/models"
)

// Document is the on-disk shape of the datastore.
type Document struct {
	Posts []models.Post `json:"posts"`
}

// Store owns the backing JSON file and the in-memory document mirror.
// All access goes through Snapshot and Mutate; the embedded mutex is the
// only synchronization around the load-mutate-save cycle.
type Store struct {
	path   string
	logger *slog.Logger

	mu     chanMutex
	doc    *Document
	loaded bool
}

// chanMutex is a single-writer queue implemented over a buffered channel.
// It behaves like sync.Mutex but makes the single-writer intent explicit.
type chanMutex chan struct{}

func (m chanMutex) Lock()   { m <- struct{}{} }
func (m chanMutex) Unlock() { <-m }

// New creates a store backed by the JSON file at path. The file is loaded
// lazily before first use.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:   path,
		logger: logger,
		mu:     make(chanMutex, 1),
	}
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns a copy of the current document. The copy is safe to read
// without holding the store lock.
func (s *Store) Snapshot() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return Document{}, err
	}
	return s.copyDoc(), nil
}

// Mutate runs fn against the in-memory document under the store lock and, if
// fn succeeds, persists the full document to disk. If fn returns an error the
// in-memory state is rolled back to the pre-mutation snapshot.
func (s *Store) Mutate(fn func(*Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}

	before := s.copyDoc()
	if err := fn(s.doc); err != nil {
		*s.doc = before
		return err
	}
	if err := s.save(); err != nil {
		*s.doc = before
		return err
	}
	return nil
}

// ensureLoaded parses the backing file into memory on first use. A missing,
// unreadable, or malformed file yields an empty document rather than an
// error: the store heals itself on the next save.
func (s *Store) ensureLoaded() error {
	if s.loaded {
		return nil
	}

	doc := &Document{Posts: []models.Post{}}
	raw, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run; start empty.
	case err != nil:
		s.logger.Warn("data file unreadable, starting with empty document",
			slog.String("path", s.path), slog.String("error", err.Error()))
	default:
		if jsonErr := json.Unmarshal(raw, doc); jsonErr != nil {
			s.logger.Warn("data file malformed, starting with empty document",
				slog.String("path", s.path), slog.String("error", jsonErr.Error()))
			doc = &Document{Posts: []models.Post{}}
		}
	}

	if doc.Posts == nil {
		doc.Posts = []models.Post{}
	}
	normalizePosts(doc.Posts)

	s.doc = doc
	s.loaded = true
	return nil
}

// save serializes the whole document pretty-printed and overwrites the file
// in a single write call. There is no append mode and no partial patching.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}

func (s *Store) copyDoc() Document {
	out := Document{Posts: make([]models.Post, len(s.doc.Posts))}
	copy(out.Posts, s.doc.Posts)
	for i := range out.Posts {
		if g := out.Posts[i].GalleryImages; g != nil {
			out.Posts[i].GalleryImages = append([]string(nil), g...)
		}
	}
	return out
}

// normalizePosts repairs enum fields on load so older records carrying
// missing or invalid values never leak ambiguity into the API.
func normalizePosts(posts []models.Post) {
	for i := range posts {
		posts[i].ActiveStatus = models.NormalizeActiveStatus(posts[i].ActiveStatus)
		posts[i].PublishStatus = models.NormalizePublishStatus(posts[i].PublishStatus)
		if posts[i].Status == "" {
			posts[i].Status = models.DefaultStatus
		}
		if posts[i].GalleryImages == nil {
			posts[i].GalleryImages = []string{}
		}
	}
}
