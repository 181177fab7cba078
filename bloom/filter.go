// Package bloom provides URL deduplication backed by a Bloom filter.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Set is an exact set of URLs fronted by a Bloom filter. Lookups for URLs
// that were never added are answered by the filter alone; a filter hit is
// confirmed against the exact set, so false positives never drop a URL.
// Set is not safe for concurrent use.
type Set struct {
	f     *bloom.BloomFilter
	exact map[string]struct{}
}

// NewSet creates a Set sized for n expected URLs with the given false
// positive rate for the filter.
func NewSet(n uint, fpRate float64) *Set {
	return &Set{
		f:     bloom.NewWithEstimates(n, fpRate),
		exact: make(map[string]struct{}, n),
	}
}

// Add inserts the URL and reports whether it was new.
func (s *Set) Add(url string) bool {
	if s.Has(url) {
		return false
	}
	s.f.AddString(url)
	s.exact[url] = struct{}{}
	return true
}

// Has reports whether the URL was added.
func (s *Set) Has(url string) bool {
	if !s.f.TestString(url) {
		return false
	}
	_, ok := s.exact[url]
	return ok
}

// Len returns the number of URLs in the set.
func (s *Set) Len() int {
	return len(s.exact)
}

// EstimatedCount returns the filter's approximation of Len.
func (s *Set) EstimatedCount() uint {
	return uint(s.f.ApproximatedSize())
}
