// Package crawl provides scoped, breadth-first mirroring of documentation
// sites. It coordinates fetching, link discovery and storage of raw pages.
package crawl

import (
	"context"
	"net/url"
	"time"

	"github.com/jerpint/ragthedocs"
)

// Frontier configuration.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate of the prefilter.
	frontierFalsePositiveRate = 0.01
	// defaultConcurrency is the number of fetch workers when none is set.
	defaultConcurrency = 10
)

// Crawler mirrors every in-scope page reachable from a seed URL.
type Crawler struct {
	Fetcher     ragthedocs.Fetcher
	Pages       ragthedocs.PageStore
	Links       ragthedocs.LinkSelector
	RateLimiter ragthedocs.DomainLimiter  // optional
	Sitemaps    ragthedocs.SitemapService // optional, seeds the frontier

	// Concurrency is the number of fetches in flight. Defaults to 10.
	Concurrency int

	// RetryDelays are the waits between fetch attempts. Nil means
	// DefaultRetryDelays; an empty slice disables retries.
	RetryDelays []time.Duration

	// MaxPages stops the crawl after that many fetches. Zero is unlimited.
	MaxPages int
}

// Result holds the outcome of a crawl.
type Result struct {
	Fetched    int // pages fetched and stored
	Failed     int // pages that could not be fetched or stored
	Bytes      int // raw bytes stored
	Discovered int // distinct in-scope URLs seen, seed and redirect targets included
}

// ProgressEvent reports progress during a crawl operation.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressSeeded
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
// It is only ever called from the goroutine running Crawl.
type ProgressFunc func(event ProgressEvent)

// Crawl walks the site breadth-first from seedURL. The seed is always
// fetched; every other URL must be allowed by scope. An empty scope domain
// defaults to the seed's host. Pages are stored under the URL redirects end
// on; a redirect that leaves the scope fails the page, except that the seed
// only has to stay on the scope's host.
//
// Individual fetch or storage failures are reported as ProgressFailed
// events carrying an EFETCH error and never abort the crawl. Crawl returns
// an error only for invalid setup or when ctx is cancelled, in which case
// the partial result is returned alongside it.
func (c *Crawler) Crawl(ctx context.Context, seedURL string, scope ragthedocs.Scope, progress ProgressFunc) (*Result, error) {
	if c.Fetcher == nil || c.Pages == nil || c.Links == nil {
		return nil, ragthedocs.Errorf(ragthedocs.EINVALID, "crawler requires a fetcher, a page store and a link selector")
	}

	seed, err := url.Parse(seedURL)
	if err != nil || seed.Host == "" {
		return nil, ragthedocs.Errorf(ragthedocs.EINVALIDURL, "invalid seed url %q", seedURL)
	}
	if scope.Domain == "" {
		scope.Domain = seed.Host
	}

	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	frontier.Push(seedURL)
	progress(ProgressEvent{Type: ProgressStarted, URL: seedURL, Total: 1})

	if c.Sitemaps != nil {
		c.seedFromSitemap(ctx, seedURL, scope, frontier, progress)
	}

	w := &walk{
		crawler:  c,
		seed:     seedURL,
		scope:    scope,
		frontier: frontier,
		progress: progress,
	}
	err = w.run(ctx)

	w.result.Discovered = frontier.Discovered()
	progress(ProgressEvent{
		Type:      ProgressFinished,
		Completed: w.result.Fetched + w.result.Failed,
		Total:     w.result.Discovered,
	})

	return &w.result, err
}

// seedFromSitemap pushes sitemap URLs behind the seed. Sitemaps are a hint,
// so failures are reported and otherwise ignored.
func (c *Crawler) seedFromSitemap(ctx context.Context, seedURL string, scope ragthedocs.Scope, frontier *Frontier, progress ProgressFunc) {
	urls, err := c.Sitemaps.DiscoverURLs(ctx, seedURL, scope)
	if err != nil {
		progress(ProgressEvent{Type: ProgressSeeded, URL: seedURL, Error: err})
		return
	}

	added := 0
	for _, u := range urls {
		if scope.Allows(u) && frontier.Push(u) {
			added++
		}
	}
	progress(ProgressEvent{Type: ProgressSeeded, URL: seedURL, Completed: added, Total: frontier.Discovered()})
}

func (c *Crawler) concurrency() int {
	if c.Concurrency <= 0 {
		return defaultConcurrency
	}
	return c.Concurrency
}

func (c *Crawler) retryDelays() []time.Duration {
	if c.RetryDelays == nil {
		return DefaultRetryDelays()
	}
	return c.RetryDelays
}
