package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/jerpint/ragthedocs"
)

var _ ragthedocs.EntryService = (*LoggingEntryService)(nil)

// LoggingEntryService wraps an EntryService with logging.
type LoggingEntryService struct {
	next   ragthedocs.EntryService
	logger *slog.Logger
}

// NewLoggingEntryService creates a new LoggingEntryService.
func NewLoggingEntryService(next ragthedocs.EntryService, logger *slog.Logger) *LoggingEntryService {
	return &LoggingEntryService{next: next, logger: logger}
}

func (s *LoggingEntryService) UpsertEntries(ctx context.Context, entries []*ragthedocs.Entry) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("upsert entries",
			"count", len(entries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.UpsertEntries(ctx, entries)
}

func (s *LoggingEntryService) CountEntries(ctx context.Context) (int, error) {
	return s.next.CountEntries(ctx)
}

func (s *LoggingEntryService) DeleteAllEntries(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete all entries",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteAllEntries(ctx)
}

func (s *LoggingEntryService) SearchEntries(ctx context.Context, embedding []float32, opts ragthedocs.SearchOptions) (results []ragthedocs.SearchResult, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("search entries",
			"limit", opts.Limit,
			"source", opts.Source,
			"results", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SearchEntries(ctx, embedding, opts)
}
