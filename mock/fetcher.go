package mock

import (
	"context"

	"github.com/jerpint/ragthedocs"
)

var _ ragthedocs.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of ragthedocs.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*ragthedocs.Page, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*ragthedocs.Page, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}
