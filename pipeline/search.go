package pipeline

import (
	"context"
	"strings"

	"github.com/jerpint/ragthedocs"
)

var _ ragthedocs.SearchService = (*Searcher)(nil)

// Searcher answers similarity queries against the vector store.
type Searcher struct {
	Embedder ragthedocs.Embedder
	Entries  ragthedocs.EntryService
}

// Search embeds the query as a retrieval query and returns the closest
// stored entries.
func (s *Searcher) Search(ctx context.Context, query string, opts ragthedocs.SearchOptions) ([]ragthedocs.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ragthedocs.Errorf(ragthedocs.EINVALID, "query required")
	}
	embedding, err := s.Embedder.Embed(ctx, query, ragthedocs.TaskQuery)
	if err != nil {
		return nil, err
	}
	return s.Entries.SearchEntries(ctx, embedding, opts)
}
