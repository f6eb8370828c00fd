package blobstore

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// URLPrefix is the public path prefix under which stored blobs are served.
const URLPrefix = "/uploads/"

// DiskStore stores blobs as flat files under a single directory.
type DiskStore struct {
	root string
}

var _ BlobStore = (*DiskStore)(nil)

// NewDiskStore creates a disk-backed blob store rooted at root.
func NewDiskStore(root string) (*DiskStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("blob store root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, err
	}
	return &DiskStore{root: abs}, nil
}

// Root returns the directory blobs are written to.
func (d *DiskStore) Root() string {
	return d.root
}

// Store writes content under a generated unique name and returns its URL path.
// The name combines a millisecond timestamp with a random suffix so that
// concurrent uploads of the same field never collide.
func (d *DiskStore) Store(content []byte, field, originalName string) (string, error) {
	if field == "" {
		field = "file"
	}
	name := fmt.Sprintf("%s-%d-%09d%s",
		field, time.Now().UnixMilli(), randomSuffix(), normalizeExt(originalName))
	if err := os.WriteFile(filepath.Join(d.root, name), content, 0o600); err != nil {
		return "", fmt.Errorf("writing blob %s: %w", name, err)
	}
	return URLPrefix + name, nil
}

// Delete removes the blob behind a stored URL path. Missing files are ignored.
func (d *DiskStore) Delete(path string) error {
	full, err := d.filePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting blob %s: %w", path, err)
	}
	return nil
}

// filePath maps a stored URL path back to the file on disk, rejecting
// anything that would escape the root directory.
func (d *DiskStore) filePath(path string) (string, error) {
	name := strings.TrimPrefix(strings.TrimSpace(path), URLPrefix)
	if name == "" {
		return "", fmt.Errorf("blob path is required")
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) ||
		strings.Contains(clean, string(filepath.Separator)) {
		return "", fmt.Errorf("invalid blob path %q", path)
	}
	return filepath.Join(d.root, clean), nil
}

func randomSuffix() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return binary.BigEndian.Uint32(b[:]) % 1_000_000_000
}

func normalizeExt(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	// Drop anything that is not a plain extension (e.g. trailing dots).
	if len(ext) < 2 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
