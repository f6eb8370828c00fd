package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"newsdesk/internal/models"
	"newsdesk/internal/storage"
	"newsdesk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastOptions() Options {
	return Options{Interval: time.Millisecond, Retries: 0, LanguageID: 1}
}

func remoteHandler(posts map[int]map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id, lang int
		if _, err := fmt.Sscanf(r.URL.Path, "/posts/%d/language/%d", &id, &lang); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		post, ok := posts[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(post)
	}
}

func TestRunImportsRange(t *testing.T) {
	srv := httptest.NewServer(remoteHandler(map[int]map[string]any{
		1: {"id": 1, "title": "First", "slug": "first", "category": "news", "publishStatus": "publish"},
		3: {"id": 3, "title": "Third", "slug": "third", "activeStatus": "inactive"},
	}))
	defer srv.Close()

	store := testutil.NewStore(t)
	client := New(srv.URL, fastOptions(), testLogger())

	imported, err := client.Run(context.Background(), store, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	doc, err := store.Snapshot()
	require.NoError(t, err)
	require.Len(t, doc.Posts, 2)

	byslug := make(map[string]models.Post)
	for _, p := range doc.Posts {
		byslug[p.Slug] = p
	}
	assert.Equal(t, "First", byslug["first"].Title)
	assert.Equal(t, models.PublishStatusPublish, byslug["first"].PublishStatus)
	assert.Equal(t, models.ActiveStatusInactive, byslug["third"].ActiveStatus)
	// Remote ids are replaced with locally generated ones.
	assert.NotEmpty(t, byslug["first"].ID)
	assert.NotEqual(t, "1", byslug["first"].ID)
}

func TestRunSkipsExistingSlugs(t *testing.T) {
	srv := httptest.NewServer(remoteHandler(map[int]map[string]any{
		1: {"id": 1, "title": "First", "slug": "first"},
		2: {"id": 2, "title": "Second", "slug": "second"},
	}))
	defer srv.Close()

	store := testutil.NewStore(t)
	require.NoError(t, store.Mutate(func(doc *storage.Document) error {
		doc.Posts = append(doc.Posts, models.Post{ID: "local", Slug: "first", Title: "Already here"})
		return nil
	}))

	client := New(srv.URL, fastOptions(), testLogger())
	imported, err := client.Run(context.Background(), store, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	doc, err := store.Snapshot()
	require.NoError(t, err)
	assert.Len(t, doc.Posts, 2)
}

func TestRunRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 1, "title": "Eventually", "slug": "eventually"})
	}))
	defer srv.Close()

	store := testutil.NewStore(t)
	client := New(srv.URL, Options{Interval: time.Millisecond, Retries: 2, LanguageID: 1}, testLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	imported, err := client.Run(ctx, store, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestRunSkipsRecordsAfterRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := testutil.NewStore(t)
	client := New(srv.URL, fastOptions(), testLogger())

	imported, err := client.Run(context.Background(), store, 1, 2)
	require.NoError(t, err)
	assert.Zero(t, imported)
}

func TestRunRejectsInvalidRange(t *testing.T) {
	client := New("http://localhost:0", fastOptions(), testLogger())
	_, err := client.Run(context.Background(), testutil.NewStore(t), 5, 1)
	assert.Error(t, err)
}

func TestRunHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(remoteHandler(nil))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := New(srv.URL, fastOptions(), testLogger())
	_, err := client.Run(ctx, testutil.NewStore(t), 1, 10)
	assert.ErrorIs(t, err, context.Canceled)
}
