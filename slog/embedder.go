package slog

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/jerpint/ragthedocs"
)

var _ ragthedocs.Embedder = (*LoggingEmbedder)(nil)

// LoggingEmbedder wraps an Embedder with logging.
type LoggingEmbedder struct {
	next   ragthedocs.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next ragthedocs.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// Embed delegates to the wrapped embedder. Rate limited calls log at warn.
func (e *LoggingEmbedder) Embed(ctx context.Context, text string, task ragthedocs.TaskType) (v []float32, err error) {
	defer func(begin time.Time) {
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		e.logger.Log(ctx, level, "embed",
			"task", string(task),
			"chars", utf8.RuneCountInString(text),
			"dims", len(v),
			"duration", time.Since(begin),
			"code", ragthedocs.ErrorCode(err),
			"err", err,
		)
	}(time.Now())
	return e.next.Embed(ctx, text, task)
}
