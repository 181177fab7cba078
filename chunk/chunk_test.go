package chunk_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jerpint/ragthedocs"
	"github.com/jerpint/ragthedocs/chunk"
	"github.com/jerpint/ragthedocs/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStore serves the given bodies, keyed by URL, in the given order.
func newStore(order []string, bodies map[string]string) *mock.PageStore {
	return &mock.PageStore{
		ListFn: func(_ context.Context, _ string) ([]string, error) {
			return order, nil
		},
		LoadFn: func(_ context.Context, url string) (*ragthedocs.Page, error) {
			body, ok := bodies[url]
			if !ok {
				return nil, ragthedocs.Errorf(ragthedocs.ENOTFOUND, "page not found: %s", url)
			}
			return &ragthedocs.Page{URL: url, Body: []byte(body)}, nil
		},
	}
}

// lineParser turns each "Title: text" line of a body into a section.
// A body of "slow" parses after a delay; "bad" fails to parse.
func lineParser() *mock.SectionParser {
	return &mock.SectionParser{
		ParseFn: func(body []byte) (*ragthedocs.ParsedPage, error) {
			switch string(body) {
			case "bad":
				return nil, ragthedocs.Errorf(ragthedocs.EPARSE, "broken markup")
			case "slow":
				time.Sleep(20 * time.Millisecond)
				return &ragthedocs.ParsedPage{Sections: []ragthedocs.Section{{Content: "slow page"}}}, nil
			}
			page := &ragthedocs.ParsedPage{Title: "Docs"}
			for _, line := range strings.Split(string(body), "\n") {
				title, text, _ := strings.Cut(line, ": ")
				page.Sections = append(page.Sections, ragthedocs.Section{
					Title:   title,
					Anchor:  ragthedocs.Slug(title),
					Content: text,
				})
			}
			return page, nil
		},
	}
}

func TestChunker_ChunkSite(t *testing.T) {
	t.Parallel()

	t.Run("chunks pages in stored order and skips parse failures", func(t *testing.T) {
		t.Parallel()

		order := []string{"https://docs.example.com/a/", "https://docs.example.com/b/", "https://docs.example.com/c/"}
		store := newStore(order, map[string]string{
			order[0]: "slow",
			order[1]: "bad",
			order[2]: "Install: pip install demo\nUsage: demo run",
		})

		var mu sync.Mutex
		var events []chunk.ProgressEvent
		c := &chunk.Chunker{Pages: store, Parser: lineParser(), Concurrency: 3}

		records, result, err := c.ChunkSite(context.Background(), "https://docs.example.com/", func(e chunk.ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, e)
		})

		require.NoError(t, err)
		assert.Equal(t, &chunk.Result{Pages: 3, Parsed: 2, Failed: 1, Chunks: 2}, result)
		assert.Equal(t, []*ragthedocs.ChunkRecord{
			{Content: "slow page", Title: order[0], URL: order[0], Source: ragthedocs.DefaultSource},
			{Content: "pip install demo\ndemo run", Title: "Usage", URL: order[2], Source: ragthedocs.DefaultSource, Anchor: "install"},
		}, records)

		require.Len(t, events, 3)
		var failed []chunk.ProgressEvent
		for _, e := range events {
			if e.Type == chunk.ProgressFailed {
				failed = append(failed, e)
			}
		}
		require.Len(t, failed, 1)
		assert.Equal(t, order[1], failed[0].URL)
		assert.Equal(t, ragthedocs.EPARSE, ragthedocs.ErrorCode(failed[0].Error))
	})

	t.Run("every record passes schema validation", func(t *testing.T) {
		t.Parallel()

		order := []string{"https://docs.example.com/"}
		store := newStore(order, map[string]string{
			order[0]: "Big: " + strings.Repeat("x", 2500),
		})
		c := &chunk.Chunker{Pages: store, Parser: lineParser(), Source: "custom"}

		records, _, err := c.ChunkSite(context.Background(), order[0], nil)

		require.NoError(t, err)
		require.Len(t, records, 3)
		for _, r := range records {
			require.NoError(t, r.Validate())
			assert.Equal(t, "custom", r.Source)
		}
	})

	t.Run("counts pages that fail to load", func(t *testing.T) {
		t.Parallel()

		order := []string{"https://docs.example.com/gone/"}
		c := &chunk.Chunker{Pages: newStore(order, nil), Parser: lineParser()}

		records, result, err := c.ChunkSite(context.Background(), "https://docs.example.com/", nil)

		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Equal(t, 1, result.Failed)
	})

	t.Run("propagates list failure", func(t *testing.T) {
		t.Parallel()

		listErr := errors.New("disk unavailable")
		c := &chunk.Chunker{
			Pages: &mock.PageStore{
				ListFn: func(context.Context, string) ([]string, error) { return nil, listErr },
			},
			Parser: lineParser(),
		}

		_, _, err := c.ChunkSite(context.Background(), "https://docs.example.com/", nil)

		require.ErrorIs(t, err, listErr)
	})

	t.Run("rejects min above max", func(t *testing.T) {
		t.Parallel()

		c := &chunk.Chunker{
			Pages:            newStore(nil, nil),
			Parser:           lineParser(),
			MinSectionLength: 500,
			MaxSectionLength: 100,
		}

		_, _, err := c.ChunkSite(context.Background(), "https://docs.example.com/", nil)

		assert.Equal(t, ragthedocs.EINVALID, ragthedocs.ErrorCode(err))
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		t.Parallel()

		order := []string{"https://docs.example.com/a/", "https://docs.example.com/b/"}
		c := &chunk.Chunker{
			Pages:  newStore(order, map[string]string{order[0]: "A: a", order[1]: "B: b"}),
			Parser: lineParser(),
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := c.ChunkSite(ctx, "https://docs.example.com/", nil)

		require.ErrorIs(t, err, context.Canceled)
	})
}
