// Package chunk turns stored documentation pages into bounded-size records
// ready for embedding.
package chunk

import (
	"context"
	"errors"
	"sync"

	"github.com/jerpint/ragthedocs"
	"golang.org/x/sync/errgroup"
)

// Chunk size defaults, in characters.
const (
	DefaultMinSectionLength = 100
	DefaultMaxSectionLength = 1000
)

const defaultConcurrency = 8

// Chunker reads every stored page of a site and splits it into records.
type Chunker struct {
	Pages  ragthedocs.PageStore
	Parser ragthedocs.SectionParser

	// MinSectionLength is the size a chunk must reach before a following
	// section may start a new one. Defaults to 100.
	MinSectionLength int

	// MaxSectionLength bounds every chunk. Defaults to 1000.
	MaxSectionLength int

	// Source tags every record. Defaults to ragthedocs.DefaultSource.
	Source string

	// Concurrency is the number of pages parsed in parallel. Defaults to 8.
	Concurrency int
}

// Result summarizes a chunking run.
type Result struct {
	Pages  int // stored pages found
	Parsed int // pages that parsed
	Failed int // pages that could not be loaded or parsed
	Chunks int // records produced
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressParsed ProgressType = iota
	ProgressFailed
)

// ProgressEvent reports the outcome for one page.
type ProgressEvent struct {
	Type   ProgressType
	URL    string
	Chunks int
	Error  error
}

// ProgressFunc receives per-page progress. Calls are serialized.
type ProgressFunc func(event ProgressEvent)

// ChunkSite chunks every page stored for the homepage's host. Records are
// returned in stored-path order, and within a page in document order.
//
// A page that cannot be loaded or parsed is reported as ProgressFailed and
// contributes no records. ChunkSite fails only when the store cannot be
// listed, the settings are invalid or ctx is cancelled.
func (c *Chunker) ChunkSite(ctx context.Context, homepageURL string, progress ProgressFunc) ([]*ragthedocs.ChunkRecord, *Result, error) {
	if c.Pages == nil || c.Parser == nil {
		return nil, nil, ragthedocs.Errorf(ragthedocs.EINVALID, "chunker requires a page store and a parser")
	}
	minLen, maxLen := c.MinSectionLength, c.MaxSectionLength
	if minLen <= 0 {
		minLen = DefaultMinSectionLength
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxSectionLength
	}
	if minLen > maxLen {
		return nil, nil, ragthedocs.Errorf(ragthedocs.EINVALID, "min section length %d exceeds max %d", minLen, maxLen)
	}
	source := c.Source
	if source == "" {
		source = ragthedocs.DefaultSource
	}
	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	urls, err := c.Pages.List(ctx, homepageURL)
	if err != nil {
		return nil, nil, err
	}

	var (
		mu     sync.Mutex
		perURL = make([][]*ragthedocs.ChunkRecord, len(urls))
		result = &Result{Pages: len(urls)}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, u := range urls {
		g.Go(func() error {
			records, err := c.chunkPage(gctx, u, source, minLen, maxLen)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
					return err
				}
				result.Failed++
				progress(ProgressEvent{Type: ProgressFailed, URL: u, Error: err})
				return nil
			}
			perURL[i] = records
			result.Parsed++
			result.Chunks += len(records)
			progress(ProgressEvent{Type: ProgressParsed, URL: u, Chunks: len(records)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, result, err
	}
	if err := ctx.Err(); err != nil {
		return nil, result, err
	}

	records := make([]*ragthedocs.ChunkRecord, 0, result.Chunks)
	for _, rs := range perURL {
		records = append(records, rs...)
	}
	return records, result, nil
}

func (c *Chunker) chunkPage(ctx context.Context, u, source string, minLen, maxLen int) ([]*ragthedocs.ChunkRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := c.Pages.Load(ctx, u)
	if err != nil {
		return nil, err
	}
	parsed, err := c.Parser.Parse(page.Body)
	if err != nil {
		return nil, err
	}

	fallback := parsed.Title
	if fallback == "" {
		fallback = u
	}

	pieces := Split(parsed.Sections, fallback, minLen, maxLen)
	records := make([]*ragthedocs.ChunkRecord, 0, len(pieces))
	for _, p := range pieces {
		records = append(records, &ragthedocs.ChunkRecord{
			Content: p.Content,
			Title:   p.Title,
			URL:     u,
			Source:  source,
			Anchor:  p.Anchor,
		})
	}
	return records, nil
}
