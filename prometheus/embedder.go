package prometheus

import (
	"context"
	"time"

	"github.com/jerpint/ragthedocs"
)

var _ ragthedocs.Embedder = (*Embedder)(nil)

// Embedder counts and times the calls of a wrapped Embedder.
type Embedder struct {
	next    ragthedocs.Embedder
	metrics *Metrics
}

// NewEmbedder wraps next.
func NewEmbedder(next ragthedocs.Embedder, m *Metrics) *Embedder {
	return &Embedder{next: next, metrics: m}
}

func (e *Embedder) Embed(ctx context.Context, text string, task ragthedocs.TaskType) ([]float32, error) {
	begin := time.Now()
	v, err := e.next.Embed(ctx, text, task)
	e.metrics.embedDuration.Observe(time.Since(begin).Seconds())
	e.metrics.embeds.WithLabelValues(result(err)).Inc()
	return v, err
}
