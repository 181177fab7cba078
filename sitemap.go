package ragthedocs

import "context"

// SitemapService discovers URLs from website sitemaps.
type SitemapService interface {
	// DiscoverURLs finds all URLs from a site's sitemap.
	// It first checks robots.txt for sitemap directives, then falls back
	// to /sitemap.xml. Sitemap indexes are resolved recursively.
	//
	// Only URLs the scope allows are returned. A site without a sitemap
	// yields an empty slice, not an error.
	DiscoverURLs(ctx context.Context, baseURL string, scope Scope) ([]string, error)
}
