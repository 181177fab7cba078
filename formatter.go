package ragthedocs

import (
	"fmt"
	"strings"
)

// FormatResults formats search results for display or LLM context.
// Uses title if available, falls back to the citation URL.
// Results are separated by blank lines.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r.Entry == nil {
			continue
		}
		header := r.Entry.Title
		if header == "" {
			header = r.Entry.CitationURL()
		}
		parts = append(parts, fmt.Sprintf("## %s (%.3f)\n%s\n%s",
			header, r.SimilarityToAnswer, r.Entry.CitationURL(), r.Entry.Content))
	}

	return strings.Join(parts, "\n\n")
}
