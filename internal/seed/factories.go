// Package seed provides helpers to create demo data for the document store.
// These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"newsdesk/internal/models"
	"newsdesk/internal/service"
	"newsdesk/internal/storage"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// Options tunes how demo posts are generated.
type Options struct {
	// Count is the number of posts to generate.
	Count int
	// MaxDays spreads createdAt over this many days back from now.
	MaxDays int
	// DryRun builds posts without persisting them.
	DryRun bool
}

// Factory builds demo posts and persists them to the document store.
type Factory struct {
	store *storage.Store
	opts  Options
	rand  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided document store.
func NewFactory(store *storage.Store, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		store: store,
		opts:  opts,
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// BuildPost constructs a demo post without persisting it. Optional override
// functions may modify the generated post.
func (f *Factory) BuildPost(overrides ...func(*models.Post)) models.Post {
	title := gofakeit.Sentence(5)
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	createdAt := time.Now().UTC().
		Add(-time.Duration(f.rand.Intn(maxDays)) * 24 * time.Hour).
		Add(-time.Duration(f.rand.Intn(24)) * time.Hour)

	post := models.Post{
		ID:       uuid.NewString(),
		Title:    title,
		Slug:     service.Slugify(title),
		Category: models.Categories[f.rand.Intn(len(models.Categories))],
		Language: []string{"az", "en"}[f.rand.Intn(2)],
		Author:   gofakeit.Name(),
		HTMLContent: fmt.Sprintf("<p>%s</p><p>%s</p>",
			gofakeit.Paragraph(1, 3, 8, " "), gofakeit.Paragraph(1, 2, 10, " ")),
		CoverImageLabel: gofakeit.Sentence(3),
		GalleryImages:   []string{},
		Status:          models.DefaultStatus,
		PublishStatus:   models.PublishStatusPublish,
		ActiveStatus:    models.ActiveStatusActive,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}

	for _, override := range overrides {
		override(&post)
	}
	return post
}

// SeedPosts generates opts.Count posts and appends them to the collection in
// one persistence cycle.
func (f *Factory) SeedPosts() (int, error) {
	count := f.opts.Count
	if count <= 0 {
		count = 20
	}

	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		posts = append(posts, f.BuildPost())
	}

	if f.opts.DryRun {
		log.Printf("[dry-run] SeedPosts: %d posts (no write)", len(posts))
		return len(posts), nil
	}

	err := f.store.Mutate(func(doc *storage.Document) error {
		doc.Posts = append(doc.Posts, posts...)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(posts), nil
}
