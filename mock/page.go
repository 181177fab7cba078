package mock

import (
	"context"

	"github.com/jerpint/ragthedocs"
)

var _ ragthedocs.PageStore = (*PageStore)(nil)

// PageStore is a mock implementation of ragthedocs.PageStore.
type PageStore struct {
	SaveFn func(ctx context.Context, page *ragthedocs.Page) error
	LoadFn func(ctx context.Context, url string) (*ragthedocs.Page, error)
	ListFn func(ctx context.Context, homepageURL string) ([]string, error)
}

func (s *PageStore) Save(ctx context.Context, page *ragthedocs.Page) error {
	return s.SaveFn(ctx, page)
}

func (s *PageStore) Load(ctx context.Context, url string) (*ragthedocs.Page, error) {
	return s.LoadFn(ctx, url)
}

func (s *PageStore) List(ctx context.Context, homepageURL string) ([]string, error) {
	return s.ListFn(ctx, homepageURL)
}
