package goquery

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/jerpint/ragthedocs"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var _ ragthedocs.SectionParser = (*SectionParser)(nil)

// contentRoots lists, per framework, the selectors of the element holding
// the page body. The first selector that matches wins.
var contentRoots = map[ragthedocs.Framework][]string{
	ragthedocs.FrameworkSphinx:     {"div[role='main']", ".document .body", ".document", ".body"},
	ragthedocs.FrameworkMkDocs:     {".md-content"},
	ragthedocs.FrameworkDocusaurus: {".theme-doc-markdown", "article"},
	ragthedocs.FrameworkVitePress:  {".vp-doc", ".VPDoc"},
	ragthedocs.FrameworkVuePress:   {".theme-default-content"},
	ragthedocs.FrameworkNextra:     {"article", "main"},
	ragthedocs.FrameworkGitBook:    {"main"},
}

var genericRoots = []string{"main", "article", "[role='main']", "body"}

// noise is removed from the content root before the walk.
// Headers inside the content root are kept: Docusaurus puts the page h1 in
// one.
const noise = "script, style, noscript, template, svg, button, nav, footer, " +
	"body > header, [role='banner'], .md-header, .wy-nav-top, " +
	".headerlink, .hash-link, .wy-nav-side, .sphinxsidebar, .md-sidebar, .theme-doc-toc-mobile"

// SectionParser splits a documentation page into heading-delimited sections.
type SectionParser struct {
	detector *Detector
}

// NewSectionParser creates a new SectionParser.
func NewSectionParser() *SectionParser {
	return &SectionParser{detector: NewDetector()}
}

// Parse decodes the page, picks the content root for the detected framework
// and walks it in document order. Every h1-h6 starts a new section; text
// before the first heading becomes a section with an empty title.
func (p *SectionParser) Parse(body []byte) (*ragthedocs.ParsedPage, error) {
	r, err := newReader(body)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, ragthedocs.Errorf(ragthedocs.EPARSE, "parsing document: %v", err)
	}

	page := &ragthedocs.ParsedPage{
		Title:     collapseSpace(doc.Find("head title").First().Text()),
		Framework: p.detector.detect(doc),
	}

	root := contentRoot(doc, page.Framework)
	root.Find(noise).Remove()

	w := &walker{}
	for _, n := range root.Nodes {
		w.walk(n)
	}
	w.flush()
	page.Sections = w.sections

	if page.Title == "" {
		for _, s := range page.Sections {
			if s.Level == 1 {
				page.Title = s.Title
				break
			}
		}
	}

	return page, nil
}

func contentRoot(doc *goquery.Document, framework ragthedocs.Framework) *goquery.Selection {
	for _, selectors := range [][]string{contentRoots[framework], genericRoots} {
		for _, sel := range selectors {
			if found := doc.Find(sel).First(); found.Length() > 0 {
				return found
			}
		}
	}
	return doc.Selection
}

// walker accumulates sections while visiting nodes in document order.
type walker struct {
	anchors  ragthedocs.Anchors
	sections []ragthedocs.Section
	current  ragthedocs.Section

	buf     strings.Builder
	last    byte
	space   bool // whitespace seen since the last written rune
	preDeep int
}

func (w *walker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.DocumentNode:
		w.children(n)
		return
	case html.ElementNode:
	default:
		return
	}

	if level := headingLevel(n.DataAtom); level > 0 {
		w.flush()
		title := collapseSpace(nodeText(n))
		w.current = ragthedocs.Section{
			Level:  level,
			Title:  title,
			Anchor: w.anchor(n, title),
		}
		return
	}

	switch n.DataAtom {
	case atom.Br:
		w.newline()
		return
	case atom.Td, atom.Th:
		w.children(n)
		w.space = true
		return
	case atom.Pre:
		w.preDeep++
		defer func() { w.preDeep-- }()
	}

	block := isBlock(n.DataAtom)
	if block {
		w.newline()
	}
	w.children(n)
	if block {
		w.newline()
	}
}

func (w *walker) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *walker) text(s string) {
	if w.preDeep > 0 {
		if s == "" {
			return
		}
		if w.space && w.last != '\n' && w.buf.Len() > 0 {
			w.buf.WriteByte(' ')
		}
		w.space = false
		w.buf.WriteString(s)
		w.last = s[len(s)-1]
		return
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			w.space = true
			continue
		}
		if w.space && w.buf.Len() > 0 && w.last != '\n' {
			w.buf.WriteByte(' ')
		}
		w.space = false
		w.buf.WriteRune(r)
		w.last = 'x'
	}
}

func (w *walker) newline() {
	w.space = false
	if w.buf.Len() == 0 || w.last == '\n' {
		return
	}
	w.buf.WriteByte('\n')
	w.last = '\n'
}

// flush closes the current section. Untitled sections without text are
// dropped; headings without text are kept so the chunker sees the title.
func (w *walker) flush() {
	content := strings.TrimSpace(w.buf.String())
	w.buf.Reset()
	w.last = 0
	w.space = false

	if content != "" || w.current.Title != "" {
		w.current.Content = content
		w.sections = append(w.sections, w.current)
	}
	w.current = ragthedocs.Section{}
}

// anchor returns the heading's id, the id of a wrapper it opens (Sphinx
// emits <section id="..."><h2>), or a slug of the title.
func (w *walker) anchor(n *html.Node, title string) string {
	anchor := attr(n, "id")
	if anchor == "" && n.Parent != nil && firstElementChild(n.Parent) == n {
		anchor = attr(n.Parent, "id")
	}
	if anchor == "" {
		anchor = ragthedocs.Slug(title)
	}
	if anchor == "" {
		return ""
	}
	return w.anchors.Unique(anchor)
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Section, atom.Article, atom.Main, atom.Aside,
		atom.Ul, atom.Ol, atom.Li, atom.Dl, atom.Dt, atom.Dd,
		atom.Table, atom.Thead, atom.Tbody, atom.Tr, atom.Pre, atom.Blockquote,
		atom.Figure, atom.Figcaption, atom.Hr, atom.Details, atom.Summary:
		return true
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func firstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
