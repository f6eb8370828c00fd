// Package blobstore manages the uploaded image files referenced by posts.
// Files live flat in one directory and are addressed by the URL path the API
// hands out ("/uploads/<name>"). No index is kept; the filesystem is the
// source of truth.
package blobstore

// BlobStore is the byte-storage abstraction used by the post service.
type BlobStore interface {
	// Store persists content and returns the stable URL path of the new blob.
	// field names the form field the file arrived under and becomes the
	// filename prefix; originalName contributes the extension.
	Store(content []byte, field, originalName string) (string, error)
	// Delete removes a previously stored blob. Deleting a path that no
	// longer exists is a no-op, never an error.
	Delete(path string) error
	// Root returns the directory blobs are written to.
	Root() string
}
