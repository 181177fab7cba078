package mock

import (
	"context"

	"github.com/jerpint/ragthedocs"
)

var _ ragthedocs.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of ragthedocs.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, scope ragthedocs.Scope) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, scope ragthedocs.Scope) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, scope)
}
