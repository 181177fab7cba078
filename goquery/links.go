package goquery

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/jerpint/ragthedocs"
)

var _ ragthedocs.LinkSelector = (*LinkSelector)(nil)

// LinkSelector extracts every anchor link from a page.
type LinkSelector struct{}

// NewLinkSelector creates a new LinkSelector.
func NewLinkSelector() *LinkSelector {
	return &LinkSelector{}
}

// ExtractLinks returns the absolute targets of all <a href> elements in
// document order, deduplicated and without fragments. A <base href> in the
// page overrides baseURL. Non-HTTP links are skipped.
func (s *LinkSelector) ExtractLinks(body []byte, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, ragthedocs.Errorf(ragthedocs.EINVALIDURL, "invalid base URL %q", baseURL)
	}

	r, err := newReader(body)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, ragthedocs.Errorf(ragthedocs.EPARSE, "parsing %s: %v", baseURL, err)
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if resolved, ok := ragthedocs.ResolveLink(base, href); ok {
			if u, err := url.Parse(resolved); err == nil {
				base = u
			}
		}
	}

	links := []string{}
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		resolved, ok := ragthedocs.ResolveLink(base, href)
		if !ok || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})

	return links, nil
}
