package crawl_test

import (
	"context"
	"testing"
	"time"

	"github.com/jerpint/ragthedocs"
	"github.com/jerpint/ragthedocs/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var _ ragthedocs.DomainLimiter = (*crawl.DomainLimiter)(nil)

// waited returns how long one Wait call blocked.
func waited(t *testing.T, l *crawl.DomainLimiter, host string) time.Duration {
	t.Helper()
	start := time.Now()
	require.NoError(t, l.Wait(context.Background(), host))
	return time.Since(start)
}

func TestDomainLimiter(t *testing.T) {
	t.Parallel()

	t.Run("first request to a host passes", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewDomainLimiter(10)
		assert.Less(t, waited(t, l, "docs.example.io"), 50*time.Millisecond)
	})

	t.Run("second request to the same host waits one interval", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewDomainLimiter(10)
		waited(t, l, "docs.example.io")
		assert.GreaterOrEqual(t, waited(t, l, "docs.example.io"), 80*time.Millisecond)
	})

	t.Run("hosts have separate buckets", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewDomainLimiter(10)
		waited(t, l, "docs.example.io")
		assert.Less(t, waited(t, l, "api.example.io"), 50*time.Millisecond)
	})

	t.Run("host names ignore case", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewDomainLimiter(10)
		waited(t, l, "Docs.Example.io")
		assert.GreaterOrEqual(t, waited(t, l, "docs.example.io"), 80*time.Millisecond)
	})

	t.Run("zero rate never waits", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewDomainLimiter(0)
		var total time.Duration
		for range 20 {
			total += waited(t, l, "docs.example.io")
		}
		assert.Less(t, total, 50*time.Millisecond)
	})

	t.Run("cancelled wait returns the context error", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewDomainLimiter(1)
		waited(t, l, "docs.example.io")

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		assert.Error(t, l.Wait(ctx, "docs.example.io"))
	})

	t.Run("concurrent callers all get through", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewDomainLimiter(100)
		var g errgroup.Group
		for range 5 {
			g.Go(func() error { return l.Wait(context.Background(), "docs.example.io") })
		}
		assert.NoError(t, g.Wait())
	})
}
