package ragthedocs

import "context"

// Answer is a generated reply with the entries it was grounded on.
type Answer struct {
	Text    string
	Sources []SearchResult
}

// Asker provides natural language question answering over the index.
type Asker interface {
	// Ask answers a question using the most relevant stored entries.
	// Returns ENOTFOUND if the index holds nothing relevant.
	Ask(ctx context.Context, question string) (*Answer, error)
}
