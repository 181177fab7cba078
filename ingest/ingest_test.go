package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jerpint/ragthedocs"
	"github.com/jerpint/ragthedocs/ingest"
	"github.com/jerpint/ragthedocs/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// store records calls in order and keeps upserted entries by ID.
type store struct {
	mu      sync.Mutex
	calls   []string
	entries map[string]*ragthedocs.Entry
	upserts []time.Time
}

func newStore() (*store, *mock.EntryService) {
	s := &store{entries: make(map[string]*ragthedocs.Entry)}
	return s, &mock.EntryService{
		UpsertEntriesFn: func(_ context.Context, entries []*ragthedocs.Entry) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.calls = append(s.calls, fmt.Sprintf("upsert:%d", len(entries)))
			s.upserts = append(s.upserts, time.Now())
			for _, e := range entries {
				s.entries[e.ID] = e
			}
			return nil
		},
		DeleteAllEntriesFn: func(context.Context) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.calls = append(s.calls, "clear")
			s.entries = make(map[string]*ragthedocs.Entry)
			return nil
		},
	}
}

func constantEmbedder() *mock.Embedder {
	return &mock.Embedder{
		EmbedFn: func(_ context.Context, text string, task ragthedocs.TaskType) ([]float32, error) {
			if task != ragthedocs.TaskDocument {
				return nil, fmt.Errorf("unexpected task %s", task)
			}
			return []float32{float32(len(text)), 1}, nil
		},
	}
}

func records(n int) []*ragthedocs.ChunkRecord {
	out := make([]*ragthedocs.ChunkRecord, n)
	for i := range out {
		out[i] = &ragthedocs.ChunkRecord{
			Content: fmt.Sprintf("content %d", i),
			Title:   fmt.Sprintf("Section %d", i),
			URL:     fmt.Sprintf("https://docs.example.com/page%d/", i),
			Source:  ragthedocs.DefaultSource,
		}
	}
	return out
}

func TestIngester_Ingest(t *testing.T) {
	t.Parallel()

	t.Run("writes records in sequential batches", func(t *testing.T) {
		t.Parallel()

		s, entries := newStore()
		in := &ingest.Ingester{
			Entries:         entries,
			Embedder:        constantEmbedder(),
			BatchSize:       2,
			MinTimeInterval: -1,
		}

		result, err := in.Ingest(context.Background(), records(5))

		require.NoError(t, err)
		assert.Equal(t, &ingest.Result{Batches: 3, Records: 5, Written: 5}, result)
		assert.Equal(t, []string{"upsert:2", "upsert:2", "upsert:1"}, s.calls)

		id := ingest.EntryID("https://docs.example.com/page0/", "content 0")
		require.Contains(t, s.entries, id)
		assert.Equal(t, "Section 0", s.entries[id].Title)
		assert.Equal(t, []float32{9, 1}, s.entries[id].Embedding)
	})

	t.Run("schema violation aborts before the batch writes", func(t *testing.T) {
		t.Parallel()

		// Story: the second batch holds a record without a title. The first
		// batch is already stored; the run stops with ESCHEMA and nothing
		// from the second batch reaches the store.
		s, entries := newStore()
		recs := records(4)
		recs[3].Title = ""
		in := &ingest.Ingester{
			Entries:         entries,
			Embedder:        constantEmbedder(),
			BatchSize:       2,
			MinTimeInterval: -1,
		}

		result, err := in.Ingest(context.Background(), recs)

		require.Error(t, err)
		assert.Equal(t, ragthedocs.ESCHEMA, ragthedocs.ErrorCode(err))
		assert.Equal(t, []string{"upsert:2"}, s.calls)
		assert.Equal(t, 1, result.Batches)
		assert.Equal(t, 2, result.Written)
	})

	t.Run("overwrite clears once before the first write", func(t *testing.T) {
		t.Parallel()

		s, entries := newStore()
		in := &ingest.Ingester{
			Entries:         entries,
			Embedder:        constantEmbedder(),
			BatchSize:       2,
			MinTimeInterval: -1,
			Overwrite:       true,
		}

		_, err := in.Ingest(context.Background(), records(3))

		require.NoError(t, err)
		assert.Equal(t, []string{"clear", "upsert:2", "upsert:1"}, s.calls)
		assert.Len(t, s.entries, 3)
	})

	t.Run("overwrite keeps the store when the first batch is invalid", func(t *testing.T) {
		t.Parallel()

		s, entries := newStore()
		recs := records(2)
		recs[0].URL = ""
		in := &ingest.Ingester{
			Entries:         entries,
			Embedder:        constantEmbedder(),
			MinTimeInterval: -1,
			Overwrite:       true,
		}

		_, err := in.Ingest(context.Background(), recs)

		assert.Equal(t, ragthedocs.ESCHEMA, ragthedocs.ErrorCode(err))
		assert.Empty(t, s.calls)
	})

	t.Run("overwrite with no records empties the store", func(t *testing.T) {
		t.Parallel()

		s, entries := newStore()
		in := &ingest.Ingester{
			Entries:         entries,
			Embedder:        constantEmbedder(),
			MinTimeInterval: -1,
			Overwrite:       true,
		}

		result, err := in.Ingest(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"clear"}, s.calls)
		assert.Zero(t, result.Batches)
	})

	t.Run("no records without overwrite touches nothing", func(t *testing.T) {
		t.Parallel()

		s, entries := newStore()
		in := &ingest.Ingester{Entries: entries, Embedder: constantEmbedder(), MinTimeInterval: -1}

		_, err := in.Ingest(context.Background(), nil)

		require.NoError(t, err)
		assert.Empty(t, s.calls)
	})

	t.Run("rerunning without overwrite does not duplicate", func(t *testing.T) {
		t.Parallel()

		s, entries := newStore()
		in := &ingest.Ingester{Entries: entries, Embedder: constantEmbedder(), MinTimeInterval: -1}

		_, err := in.Ingest(context.Background(), records(3))
		require.NoError(t, err)
		_, err = in.Ingest(context.Background(), records(3))
		require.NoError(t, err)

		assert.Len(t, s.entries, 3)
	})

	t.Run("collapses duplicate pairs within a batch", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		embedder := &mock.Embedder{
			EmbedFn: func(context.Context, string, ragthedocs.TaskType) ([]float32, error) {
				calls.Add(1)
				return []float32{1}, nil
			},
		}
		s, entries := newStore()
		recs := records(2)
		dup := *recs[0]
		dup.Title = "Other title"
		recs = append(recs, &dup)
		in := &ingest.Ingester{Entries: entries, Embedder: embedder, MinTimeInterval: -1}

		result, err := in.Ingest(context.Background(), recs)

		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, 1, result.Duplicates)
		assert.Equal(t, 2, result.Written)
		assert.Len(t, s.entries, 2)
	})

	t.Run("drops records whose embedding fails", func(t *testing.T) {
		t.Parallel()

		embedder := &mock.Embedder{
			EmbedFn: func(_ context.Context, text string, _ ragthedocs.TaskType) ([]float32, error) {
				switch text {
				case "content 1":
					return nil, ragthedocs.Errorf(ragthedocs.ERATELIMIT, "quota exceeded")
				case "content 2":
					return nil, errors.New("connection reset")
				}
				return []float32{1}, nil
			},
		}
		s, entries := newStore()
		in := &ingest.Ingester{Entries: entries, Embedder: embedder, MinTimeInterval: -1}

		result, err := in.Ingest(context.Background(), records(4))

		require.NoError(t, err)
		assert.Equal(t, 2, result.EmbedFailures)
		assert.Equal(t, 1, result.RateLimited)
		assert.Equal(t, 2, result.Written)
		assert.Len(t, s.entries, 2)
	})

	t.Run("spaces batch submissions by the minimum interval", func(t *testing.T) {
		t.Parallel()

		s, entries := newStore()
		in := &ingest.Ingester{
			Entries:         entries,
			Embedder:        constantEmbedder(),
			BatchSize:       1,
			MinTimeInterval: 40 * time.Millisecond,
		}

		_, err := in.Ingest(context.Background(), records(3))

		require.NoError(t, err)
		require.Len(t, s.upserts, 3)
		assert.GreaterOrEqual(t, s.upserts[2].Sub(s.upserts[0]), 70*time.Millisecond)
	})

	t.Run("bounds concurrent embedding calls", func(t *testing.T) {
		t.Parallel()

		var inFlight, peak atomic.Int32
		embedder := &mock.Embedder{
			EmbedFn: func(context.Context, string, ragthedocs.TaskType) ([]float32, error) {
				n := inFlight.Add(1)
				defer inFlight.Add(-1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				return []float32{1}, nil
			},
		}
		_, entries := newStore()
		in := &ingest.Ingester{Entries: entries, Embedder: embedder, NumWorkers: 3, MinTimeInterval: -1}

		_, err := in.Ingest(context.Background(), records(20))

		require.NoError(t, err)
		assert.LessOrEqual(t, peak.Load(), int32(3))
	})

	t.Run("counts tokens when a counter is set", func(t *testing.T) {
		t.Parallel()

		_, entries := newStore()
		in := &ingest.Ingester{
			Entries:         entries,
			Embedder:        constantEmbedder(),
			MinTimeInterval: -1,
			TokenCounter: &mock.TokenCounter{
				CountTokensFn: func(context.Context, string) (int, error) { return 7, nil },
			},
		}

		result, err := in.Ingest(context.Background(), records(3))

		require.NoError(t, err)
		assert.Equal(t, 21, result.Tokens)
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		t.Parallel()

		s, entries := newStore()
		in := &ingest.Ingester{Entries: entries, Embedder: constantEmbedder(), MinTimeInterval: -1}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := in.Ingest(ctx, records(3))

		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, s.calls)
	})
}

func TestEntryID(t *testing.T) {
	t.Parallel()

	a := ingest.EntryID("https://docs.example.com/a/", "text")

	assert.Equal(t, a, ingest.EntryID("https://docs.example.com/a/", "text"))
	assert.NotEqual(t, a, ingest.EntryID("https://docs.example.com/b/", "text"))
	assert.NotEqual(t, a, ingest.EntryID("https://docs.example.com/a/", "other"))
	assert.Len(t, a, 36)
}
