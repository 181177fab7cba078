package ragthedocs

import "context"

// Fetcher retrieves the raw body of a URL.
type Fetcher interface {
	// Fetch returns the page served for the URL. Redirects are followed
	// and the returned page's URL is the one finally served, which is the
	// base for its relative links. Non-success responses and timeouts are
	// errors. The context controls cancellation.
	Fetch(ctx context.Context, url string) (*Page, error)

	// Close releases resources held by the fetcher.
	Close() error
}

// URLFrontier is the crawl queue. Every URL is handed out at most once.
type URLFrontier interface {
	// Push queues url unless it was pushed before, reporting whether it
	// was queued.
	Push(url string) bool

	// Pop removes the next URL in first-in, first-out order.
	Pop() (string, bool)

	// Len is the number of queued URLs.
	Len() int

	// Seen reports whether url was ever pushed.
	Seen(url string) bool
}

// DomainLimiter spaces out requests to the same host.
type DomainLimiter interface {
	// Wait blocks until a request to domain is allowed or ctx ends.
	Wait(ctx context.Context, domain string) error
}
