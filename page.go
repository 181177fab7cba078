package ragthedocs

import "context"

// Page represents a fetched documentation page.
type Page struct {
	URL  string
	Body []byte // raw markup as served

	// Path is the location of the stored copy. Set by PageStore.Save.
	Path string
}

// Validate returns an error if the page contains invalid fields.
func (p *Page) Validate() error {
	if p.URL == "" {
		return Errorf(EINVALID, "page URL required")
	}
	return nil
}

// PageStore persists raw pages in a tree derived from their URLs.
// Saving the same URL twice overwrites the same file.
type PageStore interface {
	// Save writes the page body and sets page.Path.
	Save(ctx context.Context, page *Page) error

	// Load reads a stored page back by URL.
	// Returns ENOTFOUND if the page was never stored.
	Load(ctx context.Context, url string) (*Page, error)

	// List returns the URLs of all stored pages on the homepage's host,
	// sorted by stored path.
	List(ctx context.Context, homepageURL string) ([]string, error)
}
