package ragthedocs

import (
	"context"
	"time"
)

// Entry is a chunk record as persisted in the vector store.
type Entry struct {
	// ID is derived from (URL, Content) so identical pairs collapse.
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Anchor      string    `json:"anchor,omitempty"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Source      string    `json:"source"`
	ContentHash string    `json:"contentHash"`
	Embedding   []float32 `json:"embedding,omitempty"`
	IngestedAt  time.Time `json:"ingestedAt"`
}

// Validate returns an error if the entry contains invalid fields.
func (e *Entry) Validate() error {
	if e.ID == "" {
		return Errorf(EINVALID, "entry ID required")
	}
	if len(e.Embedding) == 0 {
		return Errorf(EINVALID, "entry embedding required (id=%s)", e.ID)
	}
	r := ChunkRecord{URL: e.URL, Content: e.Content, Source: e.Source, Title: e.Title}
	return r.Validate()
}

// CitationURL returns the page URL pointing at the entry's section.
func (e *Entry) CitationURL() string {
	r := ChunkRecord{URL: e.URL, Anchor: e.Anchor}
	return r.CitationURL()
}

// EntryService represents a vector store of entries.
type EntryService interface {
	// UpsertEntries writes entries, replacing any existing entry with the
	// same ID. All entries are written or none are.
	UpsertEntries(ctx context.Context, entries []*Entry) error

	// CountEntries returns the number of stored entries.
	CountEntries(ctx context.Context) (int, error)

	// DeleteAllEntries empties the store.
	DeleteAllEntries(ctx context.Context) error

	// SearchEntries returns the entries most similar to the embedding,
	// best match first.
	SearchEntries(ctx context.Context, embedding []float32, opts SearchOptions) ([]SearchResult, error)
}

// SearchOptions configures search behavior.
type SearchOptions struct {
	// Maximum number of results to return. Zero means DefaultSearchLimit.
	Limit int `json:"limit,omitempty"`

	// Minimum similarity score (-1..1).
	MinScore float32 `json:"minScore,omitempty"`

	// Restrict results to one source tag.
	Source string `json:"source,omitempty"`
}

// DefaultSearchLimit is used when SearchOptions.Limit is zero.
const DefaultSearchLimit = 5

// SearchResult is a ranked match.
type SearchResult struct {
	Entry              *Entry  `json:"entry"`
	SimilarityToAnswer float32 `json:"similarityToAnswer"`
}

// SearchService provides semantic search over stored entries.
type SearchService interface {
	// Search embeds the query and returns the closest entries.
	Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error)
}

// TaskType tells an embedder what the text will be used for.
type TaskType string

// Embedding task types.
const (
	TaskDocument TaskType = "RETRIEVAL_DOCUMENT"
	TaskQuery    TaskType = "RETRIEVAL_QUERY"
)

// Embedder computes embedding vectors.
type Embedder interface {
	// Embed returns the embedding of text. Returns ERATELIMIT when the
	// provider throttles the request.
	Embed(ctx context.Context, text string, task TaskType) ([]float32, error)
}

// TokenCounter reports how many model tokens a text costs.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
