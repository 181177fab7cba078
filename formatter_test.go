package ragthedocs_test

import (
	"testing"

	"github.com/jerpint/ragthedocs"
	"github.com/stretchr/testify/assert"
)

func TestFormatResults(t *testing.T) {
	t.Parallel()

	t.Run("formats single result with title and citation", func(t *testing.T) {
		t.Parallel()

		results := []ragthedocs.SearchResult{{
			Entry: &ragthedocs.Entry{
				Title:   "Getting Started",
				URL:     "https://example.io/start/",
				Anchor:  "install",
				Content: "Welcome to the docs.",
			},
			SimilarityToAnswer: 0.75,
		}}

		result := ragthedocs.FormatResults(results)

		expected := "## Getting Started (0.750)\nhttps://example.io/start/#install\nWelcome to the docs."
		assert.Equal(t, expected, result)
	})

	t.Run("uses citation URL when title is empty", func(t *testing.T) {
		t.Parallel()

		results := []ragthedocs.SearchResult{{
			Entry: &ragthedocs.Entry{URL: "https://example.io/docs/", Content: "Some content."},
		}}

		result := ragthedocs.FormatResults(results)

		assert.Equal(t, "## https://example.io/docs/ (0.000)\nhttps://example.io/docs/\nSome content.", result)
	})

	t.Run("separates results with blank line", func(t *testing.T) {
		t.Parallel()

		results := []ragthedocs.SearchResult{
			{Entry: &ragthedocs.Entry{Title: "One", URL: "https://a.io/1", Content: "First."}, SimilarityToAnswer: 1},
			{Entry: &ragthedocs.Entry{Title: "Two", URL: "https://a.io/2", Content: "Second."}, SimilarityToAnswer: 0.5},
		}

		result := ragthedocs.FormatResults(results)

		expected := "## One (1.000)\nhttps://a.io/1\nFirst.\n\n## Two (0.500)\nhttps://a.io/2\nSecond."
		assert.Equal(t, expected, result)
	})

	t.Run("returns empty string for no results", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, ragthedocs.FormatResults(nil))
	})
}

func TestEntry_Validate(t *testing.T) {
	t.Parallel()

	t.Run("requires embedding", func(t *testing.T) {
		t.Parallel()

		e := &ragthedocs.Entry{ID: "x", URL: "u", Title: "t", Content: "c", Source: "s"}

		assert.Equal(t, ragthedocs.EINVALID, ragthedocs.ErrorCode(e.Validate()))
	})

	t.Run("requires chunk columns", func(t *testing.T) {
		t.Parallel()

		e := &ragthedocs.Entry{ID: "x", URL: "u", Content: "c", Source: "s", Embedding: []float32{1}}

		assert.Equal(t, ragthedocs.ESCHEMA, ragthedocs.ErrorCode(e.Validate()))
	})

	t.Run("accepts complete entry", func(t *testing.T) {
		t.Parallel()

		e := &ragthedocs.Entry{ID: "x", URL: "u", Title: "t", Content: "c", Source: "s", Embedding: []float32{1}}

		assert.NoError(t, e.Validate())
	})
}
