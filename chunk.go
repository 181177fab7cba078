package ragthedocs

import "strings"

// DefaultSource tags records produced from a crawled documentation site.
const DefaultSource = "readthedocs"

// ChunkRecord is a bounded piece of page text ready for embedding.
// Records are produced by the chunker and consumed once by ingestion.
type ChunkRecord struct {
	Content string `json:"content"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Source  string `json:"source"`

	// Anchor is the id of the section the chunk starts in, if any.
	Anchor string `json:"anchor,omitempty"`
}

// Validate enforces the columns required by the vector store.
// Returns ESCHEMA naming the first missing field.
func (r *ChunkRecord) Validate() error {
	switch {
	case r.URL == "":
		return Errorf(ESCHEMA, "chunk url required")
	case strings.TrimSpace(r.Content) == "":
		return Errorf(ESCHEMA, "chunk content required (url=%s)", r.URL)
	case r.Source == "":
		return Errorf(ESCHEMA, "chunk source required (url=%s)", r.URL)
	case r.Title == "":
		return Errorf(ESCHEMA, "chunk title required (url=%s)", r.URL)
	}
	return nil
}

// CitationURL returns the page URL pointing at the chunk's section.
func (r *ChunkRecord) CitationURL() string {
	if r.Anchor == "" {
		return r.URL
	}
	return StripFragment(r.URL) + "#" + r.Anchor
}
