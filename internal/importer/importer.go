// Package importer implements the batch backfill of posts from a remote
// content API into the local document store. It runs outside the live API as
// a one-shot task: sequential ID-range fetch, rate limited, with bounded
// retries per record.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"newsdesk/internal/models"
	"newsdesk/internal/storage"

	"github.com/google/uuid"
)

// Options tunes the import run.
type Options struct {
	// Interval is the minimum delay between remote requests.
	Interval time.Duration
	// Retries bounds how often one record is re-fetched after a transient
	// failure before it is skipped.
	Retries int
	// LanguageID selects the remote language variant.
	LanguageID int
}

// Client fetches posts from the remote API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	opts       Options
	logger     *slog.Logger
}

// remotePost is the subset of the remote payload carried over. The remote id
// is numeric; it is kept only for duplicate detection and replaced by a
// locally generated id.
type remotePost struct {
	ID              json.Number `json:"id"`
	Title           string      `json:"title"`
	Slug            string      `json:"slug"`
	Category        string      `json:"category"`
	Language        string      `json:"language"`
	Author          string      `json:"author"`
	HTMLContent     string      `json:"htmlContent"`
	CoverImageLabel string      `json:"coverImageLabel"`
	PublishStatus   string      `json:"publishStatus"`
	ActiveStatus    string      `json:"activeStatus"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// New creates an importer client against baseURL.
func New(baseURL string, opts Options, logger *slog.Logger) *Client {
	if opts.Interval <= 0 {
		opts.Interval = 200 * time.Millisecond
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.LanguageID <= 0 {
		opts.LanguageID = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		opts:       opts,
		logger:     logger,
	}
}

// Run fetches remote posts in the inclusive ID range [from, to] and appends
// the ones not yet present to the document store in one persistence cycle.
// It returns the number of posts imported.
func (c *Client) Run(ctx context.Context, store *storage.Store, from, to int) (int, error) {
	if from > to {
		return 0, fmt.Errorf("invalid range: from %d > to %d", from, to)
	}

	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()

	var fetched []models.Post
	for id := from; id <= to; id++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}

		remote, err := c.fetchWithRetry(ctx, id)
		if err != nil {
			c.logger.Warn("skipping remote post", slog.Int("remote_id", id), slog.String("error", err.Error()))
			continue
		}
		if remote == nil {
			continue // not published remotely
		}
		fetched = append(fetched, c.toPost(remote))
	}

	if len(fetched) == 0 {
		return 0, nil
	}

	imported := 0
	err := store.Mutate(func(doc *storage.Document) error {
		existing := make(map[string]struct{}, len(doc.Posts))
		for _, p := range doc.Posts {
			existing[p.Slug] = struct{}{}
		}
		for _, p := range fetched {
			if _, dup := existing[p.Slug]; dup {
				continue
			}
			existing[p.Slug] = struct{}{}
			doc.Posts = append(doc.Posts, p)
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return imported, nil
}

// fetchWithRetry fetches one remote post, retrying transient failures with
// linear backoff. A 404 means the record does not exist and is not an error.
func (c *Client) fetchWithRetry(ctx context.Context, id int) (*remotePost, error) {
	url := fmt.Sprintf("%s/posts/%d/language/%d", c.baseURL, id, c.opts.LanguageID)

	var lastErr error
	for attempt := 0; attempt <= c.opts.Retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		post, retryable, err := c.fetchOnce(ctx, url)
		if err == nil {
			return post, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, url string) (post *remotePost, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, nil
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("remote returned %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("remote returned %d", resp.StatusCode)
	}

	var remote remotePost
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		return nil, false, fmt.Errorf("decoding remote post: %w", err)
	}
	if remote.ID.String() == "" || remote.Title == "" {
		return nil, false, nil
	}
	return &remote, false, nil
}

func (c *Client) toPost(remote *remotePost) models.Post {
	slug := remote.Slug
	if slug == "" {
		// Remote records without a slug fall back to their numeric id so
		// duplicate detection across runs stays stable.
		slug = "remote-" + remote.ID.String()
	}
	createdAt := remote.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return models.Post{
		ID:              uuid.NewString(),
		Title:           remote.Title,
		Slug:            slug,
		Category:        remote.Category,
		Language:        remote.Language,
		Author:          remote.Author,
		HTMLContent:     remote.HTMLContent,
		CoverImageLabel: remote.CoverImageLabel,
		GalleryImages:   []string{},
		Status:          models.DefaultStatus,
		PublishStatus:   models.NormalizePublishStatus(remote.PublishStatus),
		ActiveStatus:    models.NormalizeActiveStatus(remote.ActiveStatus),
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}
