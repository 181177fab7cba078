package ragthedocs

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Section is one heading of a page and the body text that follows it,
// up to the next heading. Text before the first heading forms a section
// with an empty Title.
type Section struct {
	Level   int    `json:"level"`
	Title   string `json:"title"`
	Anchor  string `json:"anchor"`
	Content string `json:"content"`
}

// Len returns the body length in characters.
func (s Section) Len() int {
	return utf8.RuneCountInString(s.Content)
}

// ParsedPage is the structural view of a stored page.
type ParsedPage struct {
	Title     string
	Framework Framework
	Sections  []Section
}

// Text returns the extracted text of the page, sections joined by newlines.
func (p *ParsedPage) Text() string {
	parts := make([]string, 0, len(p.Sections))
	for _, s := range p.Sections {
		if s.Content != "" {
			parts = append(parts, s.Content)
		}
	}
	return strings.Join(parts, "\n")
}

// SectionParser splits page markup into sections in document order.
type SectionParser interface {
	// Parse returns the page structure. Returns EPARSE when the markup
	// cannot be read.
	Parse(body []byte) (*ParsedPage, error)
}

// Anchors hands out URL-safe anchors that are unique within one page.
// Repeated titles get numeric suffixes: "example", "example-1", ...
type Anchors struct {
	counts map[string]int
}

// Unique returns a page-unique variant of anchor.
func (a *Anchors) Unique(anchor string) string {
	if a.counts == nil {
		a.counts = make(map[string]int)
	}
	count, exists := a.counts[anchor]
	if !exists {
		a.counts[anchor] = 1
		return anchor
	}
	a.counts[anchor]++
	return anchor + "-" + strconv.Itoa(count)
}

// Slug creates a URL-safe anchor from a title.
// Converts to lowercase, replaces spaces with hyphens, removes special chars.
func Slug(title string) string {
	var sb strings.Builder
	prevHyphen := false

	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevHyphen = false
		} else if unicode.IsSpace(r) || r == '-' || r == '_' {
			if !prevHyphen && sb.Len() > 0 {
				sb.WriteRune('-')
				prevHyphen = true
			}
		}
	}

	return strings.TrimSuffix(sb.String(), "-")
}
