package mock

import (
	"context"

	"github.com/jerpint/ragthedocs"
)

var _ ragthedocs.EntryService = (*EntryService)(nil)

// EntryService is a mock implementation of ragthedocs.EntryService.
type EntryService struct {
	UpsertEntriesFn    func(ctx context.Context, entries []*ragthedocs.Entry) error
	CountEntriesFn     func(ctx context.Context) (int, error)
	DeleteAllEntriesFn func(ctx context.Context) error
	SearchEntriesFn    func(ctx context.Context, embedding []float32, opts ragthedocs.SearchOptions) ([]ragthedocs.SearchResult, error)
}

func (s *EntryService) UpsertEntries(ctx context.Context, entries []*ragthedocs.Entry) error {
	return s.UpsertEntriesFn(ctx, entries)
}

func (s *EntryService) CountEntries(ctx context.Context) (int, error) {
	return s.CountEntriesFn(ctx)
}

func (s *EntryService) DeleteAllEntries(ctx context.Context) error {
	return s.DeleteAllEntriesFn(ctx)
}

func (s *EntryService) SearchEntries(ctx context.Context, embedding []float32, opts ragthedocs.SearchOptions) ([]ragthedocs.SearchResult, error) {
	return s.SearchEntriesFn(ctx, embedding, opts)
}

var _ ragthedocs.SearchService = (*SearchService)(nil)

// SearchService is a mock implementation of ragthedocs.SearchService.
type SearchService struct {
	SearchFn func(ctx context.Context, query string, opts ragthedocs.SearchOptions) ([]ragthedocs.SearchResult, error)
}

func (s *SearchService) Search(ctx context.Context, query string, opts ragthedocs.SearchOptions) ([]ragthedocs.SearchResult, error) {
	return s.SearchFn(ctx, query, opts)
}
