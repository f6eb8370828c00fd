// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
)

// Publish status values for a post.
const (
	PublishStatusDraft   = "draft"
	PublishStatusPublish = "publish"
)

// Active status values for a post.
const (
	ActiveStatusActive   = "active"
	ActiveStatusInactive = "inactive"
)

// DefaultStatus is the lifecycle flag assigned to new posts.
const DefaultStatus = "active"

// Categories is the fixed set of categories a post may belong to.
var Categories = []string{"news", "announcement", "event", "press-release"}

// Post represents a news/announcement record in the newsdesk application.
type Post struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Category        string    `json:"category"`
	Language        string    `json:"language"`
	Author          string    `json:"author"`
	HTMLContent     string    `json:"htmlContent"`
	CoverImageLabel string    `json:"coverImageLabel"`
	CoverImage      string    `json:"coverImage,omitempty"`
	GalleryImages   []string  `json:"galleryImages"`
	Status          string    `json:"status"`
	PublishStatus   string    `json:"publishStatus"`
	ActiveStatus    string    `json:"activeStatus"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// OwnedBlobs returns every upload path the post owns (cover first, then gallery).
func (p *Post) OwnedBlobs() []string {
	paths := make([]string, 0, len(p.GalleryImages)+1)
	if p.CoverImage != "" {
		paths = append(paths, p.CoverImage)
	}
	paths = append(paths, p.GalleryImages...)
	return paths
}

// IsValidCategory reports whether c matches one of the fixed categories,
// case-insensitively.
func IsValidCategory(c string) bool {
	for _, known := range Categories {
		if strings.EqualFold(c, known) {
			return true
		}
	}
	return false
}

// IsValidPublishStatus reports whether s is a recognized publish status.
func IsValidPublishStatus(s string) bool {
	return s == PublishStatusDraft || s == PublishStatusPublish
}

// IsValidActiveStatus reports whether s is a recognized active status.
func IsValidActiveStatus(s string) bool {
	return s == ActiveStatusActive || s == ActiveStatusInactive
}

// NormalizeActiveStatus maps missing or unrecognized values to "active".
func NormalizeActiveStatus(s string) string {
	if IsValidActiveStatus(s) {
		return s
	}
	return ActiveStatusActive
}

// NormalizePublishStatus maps missing or unrecognized values to "draft".
func NormalizePublishStatus(s string) string {
	if IsValidPublishStatus(s) {
		return s
	}
	return PublishStatusDraft
}
