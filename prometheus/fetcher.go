package prometheus

import (
	"context"
	"time"

	"github.com/jerpint/ragthedocs"
)

var _ ragthedocs.Fetcher = (*Fetcher)(nil)

// Fetcher counts and times the calls of a wrapped Fetcher.
type Fetcher struct {
	next    ragthedocs.Fetcher
	metrics *Metrics
}

// NewFetcher wraps next.
func NewFetcher(next ragthedocs.Fetcher, m *Metrics) *Fetcher {
	return &Fetcher{next: next, metrics: m}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*ragthedocs.Page, error) {
	begin := time.Now()
	page, err := f.next.Fetch(ctx, url)
	f.metrics.fetchDuration.Observe(time.Since(begin).Seconds())
	f.metrics.fetches.WithLabelValues(result(err)).Inc()
	if page != nil {
		f.metrics.fetchBytes.Add(float64(len(page.Body)))
	}
	return page, err
}

func (f *Fetcher) Close() error {
	return f.next.Close()
}

// result maps an error to a low-cardinality label value.
func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case ragthedocs.ErrorCode(err) == ragthedocs.ENOTFOUND:
		return "not_found"
	case ragthedocs.ErrorCode(err) == ragthedocs.ERATELIMIT:
		return "rate_limited"
	}
	return "error"
}
