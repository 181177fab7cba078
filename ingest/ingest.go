// Package ingest embeds chunk records and writes them to the vector store
// in rate-limited batches.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jerpint/ragthedocs"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Ingestion defaults.
const (
	DefaultBatchSize       = 3000
	DefaultMinTimeInterval = 60 * time.Second
	DefaultNumWorkers      = 32
)

// Ingester writes chunk records to an EntryService.
type Ingester struct {
	Entries  ragthedocs.EntryService
	Embedder ragthedocs.Embedder

	// BatchSize is the number of records per batch. Defaults to 3000.
	BatchSize int

	// MinTimeInterval is the minimum gap between the starts of two
	// consecutive batches. Defaults to 60s; negative disables the wait.
	MinTimeInterval time.Duration

	// NumWorkers bounds concurrent embedding calls. Defaults to 32.
	NumWorkers int

	// Overwrite clears the store before the first write.
	Overwrite bool

	// TokenCounter, when set, tallies the tokens sent for embedding.
	TokenCounter ragthedocs.TokenCounter

	// Logger receives per-batch and per-failure records. Defaults to a
	// discarding logger.
	Logger *slog.Logger
}

// Result summarizes an ingestion run.
type Result struct {
	Batches       int // batches written
	Records       int // records received
	Written       int // entries upserted
	Duplicates    int // records collapsed into an identical (url, content) pair
	EmbedFailures int // records dropped because embedding failed
	RateLimited   int // of EmbedFailures, those refused with ERATELIMIT
	Tokens        int // tokens counted, when a TokenCounter is set
}

// EntryID derives the stable identifier of a record from its URL and
// content, so identical pairs map to the same stored entry.
func EntryID(url, content string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(url+"\x00"+content)).String()
}

// Ingest processes records in sequential batches. For each batch it
// validates every record, waits for the inter-batch limiter, embeds the
// distinct records concurrently and upserts the result in one transaction.
//
// A record that fails validation aborts the run with ESCHEMA before its
// batch writes anything; earlier batches stay written. A record whose
// embedding fails is dropped and counted. With Overwrite set, the store is
// cleared before the first valid batch, or at once when there are no
// records.
func (in *Ingester) Ingest(ctx context.Context, records []*ragthedocs.ChunkRecord) (*Result, error) {
	if in.Entries == nil || in.Embedder == nil {
		return nil, ragthedocs.Errorf(ragthedocs.EINVALID, "ingester requires an entry service and an embedder")
	}

	batchSize := in.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	interval := in.MinTimeInterval
	if interval == 0 {
		interval = DefaultMinTimeInterval
	}
	workers := in.NumWorkers
	if workers <= 0 {
		workers = DefaultNumWorkers
	}
	logger := in.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	result := &Result{Records: len(records)}
	cleared := !in.Overwrite

	// An overwrite with nothing to write still leaves an empty store.
	if !cleared && len(records) == 0 {
		if err := in.Entries.DeleteAllEntries(ctx); err != nil {
			return result, err
		}
		logger.Info("cleared vector store")
		return result, nil
	}

	for start := 0; start < len(records); start += batchSize {
		batch := records[start:min(start+batchSize, len(records))]
		n := start/batchSize + 1

		for _, r := range batch {
			if err := r.Validate(); err != nil {
				return result, err
			}
		}

		if !cleared {
			if err := in.Entries.DeleteAllEntries(ctx); err != nil {
				return result, err
			}
			cleared = true
			logger.Info("cleared vector store")
		}

		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}

		entries, err := in.embedBatch(ctx, batch, workers, result, logger)
		if err != nil {
			return result, err
		}
		if err := in.Entries.UpsertEntries(ctx, entries); err != nil {
			return result, err
		}

		result.Batches++
		result.Written += len(entries)
		logger.Info("batch ingested", "batch", n, "records", len(batch), "written", len(entries))
	}

	return result, nil
}

// embedBatch embeds the distinct records of a batch. Entries keep the
// order of their first occurrence.
func (in *Ingester) embedBatch(ctx context.Context, batch []*ragthedocs.ChunkRecord, workers int, result *Result, logger *slog.Logger) ([]*ragthedocs.Entry, error) {
	var distinct []*ragthedocs.Entry
	seen := make(map[string]bool, len(batch))
	for _, r := range batch {
		id := EntryID(r.URL, r.Content)
		if seen[id] {
			result.Duplicates++
			continue
		}
		seen[id] = true
		distinct = append(distinct, &ragthedocs.Entry{
			ID:      id,
			URL:     r.URL,
			Anchor:  r.Anchor,
			Title:   r.Title,
			Content: r.Content,
			Source:  r.Source,
		})
	}

	var mu sync.Mutex
	embedded := make([]bool, len(distinct))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, e := range distinct {
		g.Go(func() error {
			v, err := in.Embedder.Embed(gctx, e.Content, ragthedocs.TaskDocument)
			tokens := in.countTokens(gctx, e.Content)

			mu.Lock()
			defer mu.Unlock()
			result.Tokens += tokens
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
					return err
				}
				result.EmbedFailures++
				if ragthedocs.ErrorCode(err) == ragthedocs.ERATELIMIT {
					result.RateLimited++
				}
				logger.Warn("embedding failed", "url", e.URL, "error", err)
				return nil
			}
			e.Embedding = v
			embedded[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := make([]*ragthedocs.Entry, 0, len(distinct))
	for i, e := range distinct {
		if embedded[i] {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (in *Ingester) countTokens(ctx context.Context, text string) int {
	if in.TokenCounter == nil {
		return 0
	}
	n, err := in.TokenCounter.CountTokens(ctx, text)
	if err != nil {
		return 0
	}
	return n
}
