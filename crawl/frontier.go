package crawl

import (
	"sync"

	"github.com/jerpint/ragthedocs"
	"github.com/jerpint/ragthedocs/bloom"
)

// Compile-time interface verification.
var _ ragthedocs.URLFrontier = (*Frontier)(nil)

// compactThreshold is the number of popped slots after which the queue is
// compacted.
const compactThreshold = 1024

// Frontier is an in-memory FIFO URL frontier with deduplication.
// Popping in insertion order makes the crawl breadth-first.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Set
	queue []string
	head  int
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for the Bloom prefilter.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		seen: bloom.NewSet(n, fpRate),
	}
}

// Push adds a URL to the back of the queue.
// Returns false if the URL has already been seen.
// URL fragments are stripped before deduplication - URLs differing only by
// fragment are considered duplicates.
func (f *Frontier) Push(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := ragthedocs.StripFragment(rawURL)
	if !f.seen.Add(u) {
		return false
	}
	f.queue = append(f.queue, u)
	return true
}

// Visit marks a URL as seen without queueing it, for pages that were
// fetched under another name. Returns false if it was already seen.
func (f *Frontier) Visit(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Add(ragthedocs.StripFragment(rawURL))
}

// Pop returns the oldest queued URL.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.head == len(f.queue) {
		return "", false
	}
	u := f.queue[f.head]
	f.queue[f.head] = ""
	f.head++

	if f.head >= compactThreshold && f.head*2 >= len(f.queue) {
		f.queue = append([]string(nil), f.queue[f.head:]...)
		f.head = 0
	}
	return u, true
}

// Len returns the number of URLs in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue) - f.head
}

// Seen returns true if the URL has been processed or queued.
// URL fragments are stripped before checking.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Has(ragthedocs.StripFragment(rawURL))
}

// Discovered returns the number of distinct URLs ever pushed.
func (f *Frontier) Discovered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Len()
}
