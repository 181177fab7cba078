// Package pipeline wires crawling, chunking and ingestion into one run that
// turns a documentation homepage into a searchable vector store.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/jerpint/ragthedocs"
	"github.com/jerpint/ragthedocs/chunk"
	"github.com/jerpint/ragthedocs/crawl"
	"github.com/jerpint/ragthedocs/fs"
	"github.com/jerpint/ragthedocs/ingest"
)

// Config holds every tunable of a run.
type Config struct {
	Logger *slog.Logger

	// Crawl
	CrawlConcurrency  int
	RequestsPerSecond float64 // per host; zero or less disables limiting
	MaxPages          int
	RetryDelays       []time.Duration
	UseSitemap        bool

	// Chunk
	ChunkConcurrency int
	MinSectionLength int
	MaxSectionLength int
	Source           string

	// Ingest
	BatchSize       int
	MinTimeInterval time.Duration
	NumWorkers      int
	Overwrite       bool
}

// DefaultConfig returns the settings used by the command line tool.
func DefaultConfig() Config {
	return Config{
		CrawlConcurrency:  10,
		RequestsPerSecond: 5,
		UseSitemap:        true,
		MinSectionLength:  chunk.DefaultMinSectionLength,
		MaxSectionLength:  chunk.DefaultMaxSectionLength,
		Source:            ragthedocs.DefaultSource,
		BatchSize:         ingest.DefaultBatchSize,
		MinTimeInterval:   ingest.DefaultMinTimeInterval,
		NumWorkers:        ingest.DefaultNumWorkers,
		Overwrite:         true,
	}
}

// Pipeline indexes a documentation site.
type Pipeline struct {
	Fetcher      ragthedocs.Fetcher
	Links        ragthedocs.LinkSelector
	Sections     ragthedocs.SectionParser
	Sitemaps     ragthedocs.SitemapService // optional
	Embedder     ragthedocs.Embedder
	Entries      ragthedocs.EntryService
	TokenCounter ragthedocs.TokenCounter // optional

	// OnChunk, when set, receives every chunker progress event.
	OnChunk chunk.ProgressFunc

	Config Config
}

// Report summarizes a run.
type Report struct {
	URL            string
	PagesFetched   int
	PagesFailed    int
	PagesParsed    int
	ParseFailures  int
	Chunks         int
	Batches        int
	ChunksIngested int
	Tokens         int
}

// Run mirrors the site at homepageURL into saveDirectory, chunks the
// stored pages and ingests the chunks. When targetVersion is set, only
// pages whose URL contains it are followed.
//
// An invalid homepage fails with EINVALIDURL before any request is made.
// Page fetch and parse failures are logged and skipped. The report is
// returned with any error so callers can show partial progress.
func (p *Pipeline) Run(ctx context.Context, homepageURL, saveDirectory, targetVersion string) (*Report, error) {
	homepage, err := ragthedocs.NormalizeURL(homepageURL)
	if err != nil {
		return nil, err
	}
	domain, err := ragthedocs.Domain(homepage)
	if err != nil {
		return nil, err
	}
	if saveDirectory == "" {
		return nil, ragthedocs.Errorf(ragthedocs.EINVALID, "save directory required")
	}

	cfg := p.Config
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("homepage", homepage)

	report := &Report{URL: homepage}
	pages := fs.NewPageStore(saveDirectory)

	crawler := &crawl.Crawler{
		Fetcher:     p.Fetcher,
		Pages:       pages,
		Links:       p.Links,
		RateLimiter: crawl.NewDomainLimiter(cfg.RequestsPerSecond),
		Concurrency: cfg.CrawlConcurrency,
		RetryDelays: cfg.RetryDelays,
		MaxPages:    cfg.MaxPages,
	}
	if cfg.UseSitemap && p.Sitemaps != nil {
		crawler.Sitemaps = p.Sitemaps
	}

	scope := ragthedocs.Scope{Domain: domain, Version: targetVersion}
	logger.Info("crawl started", "domain", domain, "version", targetVersion, "dir", saveDirectory)
	crawled, err := crawler.Crawl(ctx, homepage, scope, crawlProgress(logger))
	if crawled != nil {
		report.PagesFetched = crawled.Fetched
		report.PagesFailed = crawled.Failed
	}
	if err != nil {
		return report, err
	}
	logger.Info("crawl finished", "fetched", crawled.Fetched, "failed", crawled.Failed, "bytes", crawled.Bytes)

	chunker := &chunk.Chunker{
		Pages:            pages,
		Parser:           p.Sections,
		MinSectionLength: cfg.MinSectionLength,
		MaxSectionLength: cfg.MaxSectionLength,
		Source:           cfg.Source,
		Concurrency:      cfg.ChunkConcurrency,
	}
	records, chunked, err := chunker.ChunkSite(ctx, homepage, chunkProgress(logger, p.OnChunk))
	if chunked != nil {
		report.PagesParsed = chunked.Parsed
		report.ParseFailures = chunked.Failed
		report.Chunks = chunked.Chunks
	}
	if err != nil {
		return report, err
	}
	logger.Info("chunking finished", "pages", chunked.Pages, "chunks", chunked.Chunks, "failed", chunked.Failed)

	ingester := &ingest.Ingester{
		Entries:         p.Entries,
		Embedder:        p.Embedder,
		BatchSize:       cfg.BatchSize,
		MinTimeInterval: cfg.MinTimeInterval,
		NumWorkers:      cfg.NumWorkers,
		Overwrite:       cfg.Overwrite,
		TokenCounter:    p.TokenCounter,
		Logger:          logger,
	}
	ingested, err := ingester.Ingest(ctx, records)
	if ingested != nil {
		report.Batches = ingested.Batches
		report.ChunksIngested = ingested.Written
		report.Tokens = ingested.Tokens
	}
	if err != nil {
		return report, err
	}
	logger.Info("ingestion finished",
		"written", ingested.Written,
		"duplicates", ingested.Duplicates,
		"embed_failures", ingested.EmbedFailures,
		"rate_limited", ingested.RateLimited,
	)

	return report, nil
}

func crawlProgress(logger *slog.Logger) crawl.ProgressFunc {
	return func(e crawl.ProgressEvent) {
		switch e.Type {
		case crawl.ProgressSeeded:
			if e.Error != nil {
				logger.Warn("sitemap discovery failed", "error", e.Error)
				return
			}
			logger.Info("sitemap seeded", "urls", e.Completed)
		case crawl.ProgressCompleted:
			logger.Debug("page stored", "url", e.URL, "completed", e.Completed, "total", e.Total)
		case crawl.ProgressFailed:
			logger.Warn("page failed", "url", e.URL, "error", e.Error)
		}
	}
}

func chunkProgress(logger *slog.Logger, next chunk.ProgressFunc) chunk.ProgressFunc {
	return func(e chunk.ProgressEvent) {
		if next != nil {
			next(e)
		}
		switch e.Type {
		case chunk.ProgressParsed:
			logger.Debug("page chunked", "url", e.URL, "chunks", e.Chunks)
		case chunk.ProgressFailed:
			logger.Warn("page skipped", "url", e.URL, "error", e.Error)
		}
	}
}
