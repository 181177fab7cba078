package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/jerpint/ragthedocs"
)

// Ensure LoggingFetcher implements ragthedocs.Fetcher.
var _ ragthedocs.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher and logs every request. Failures log at
// warn level.
type LoggingFetcher struct {
	next   ragthedocs.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next ragthedocs.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (page *ragthedocs.Page, err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelWarn
		}
		attrs := []any{"url", url}
		if page != nil {
			if page.URL != url {
				attrs = append(attrs, "final_url", page.URL)
			}
			attrs = append(attrs, "bytes", len(page.Body))
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		f.logger.Log(ctx, level, "fetch", attrs...)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
