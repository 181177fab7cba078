package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jerpint/ragthedocs"
)

var _ ragthedocs.FrameworkDetector = (*Detector)(nil)

// marker lists selectors that, when any of them matches, identify a
// framework. Order matters: VitePress is checked before VuePress and both
// after the more specific generators.
type marker struct {
	framework ragthedocs.Framework
	selectors []string
}

var markers = []marker{
	{ragthedocs.FrameworkDocusaurus, []string{
		"#__docusaurus_skipToContent_fallback",
		".theme-doc-sidebar-container",
		"[data-rh][data-theme]",
	}},
	{ragthedocs.FrameworkMkDocs, []string{
		"[data-md-color-scheme]",
		"[data-md-component]",
		".md-nav--primary",
	}},
	// ReadTheDocs and classic Sphinx themes.
	{ragthedocs.FrameworkSphinx, []string{
		".toctree-wrapper",
		".wy-nav-side",
		".wy-menu-vertical",
		".sphinxsidebar",
	}},
	{ragthedocs.FrameworkVitePress, []string{
		"#VPContent",
		".VPDoc",
		".VPDocAsideOutline",
	}},
	{ragthedocs.FrameworkVuePress, []string{
		".theme-default-content",
		".sidebar-links",
		".vuepress-navbar",
	}},
	{ragthedocs.FrameworkGitBook, []string{
		"[data-testid='space.sidebar']",
		"[data-testid='page.desktopTableOfContents']",
	}},
	{ragthedocs.FrameworkNextra, []string{
		".nextra-navbar",
		".nextra-sidebar",
		".nextra-toc",
	}},
}

// generators maps substrings of <meta name="generator"> to frameworks.
var generators = []struct {
	name      string
	framework ragthedocs.Framework
}{
	{"sphinx", ragthedocs.FrameworkSphinx},
	{"gitbook", ragthedocs.FrameworkGitBook},
	{"docusaurus", ragthedocs.FrameworkDocusaurus},
	{"mkdocs", ragthedocs.FrameworkMkDocs},
	{"vitepress", ragthedocs.FrameworkVitePress},
	{"vuepress", ragthedocs.FrameworkVuePress},
	{"nextra", ragthedocs.FrameworkNextra},
}

// Detector identifies documentation frameworks from HTML content using
// generator meta tags, framework-specific classes and data attributes.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect analyzes HTML and returns the identified framework.
// Returns FrameworkUnknown if the framework cannot be determined.
func (d *Detector) Detect(html string) ragthedocs.Framework {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ragthedocs.FrameworkUnknown
	}
	return d.detect(doc)
}

func (d *Detector) detect(doc *goquery.Document) ragthedocs.Framework {
	// The generator tag is the most reliable signal when present.
	for _, n := range doc.Find("meta[name='generator']").Nodes {
		generator := strings.ToLower(attr(n, "content"))
		for _, g := range generators {
			if strings.Contains(generator, g.name) {
				return g.framework
			}
		}
	}

	for _, m := range markers {
		for _, sel := range m.selectors {
			if doc.Find(sel).Length() > 0 {
				return m.framework
			}
		}
		if m.framework == ragthedocs.FrameworkGitBook && hasGitBookClasses(doc) {
			return m.framework
		}
	}

	return ragthedocs.FrameworkUnknown
}

// hasGitBookClasses reports whether the html element carries at least two
// of GitBook's theme classes.
func hasGitBookClasses(doc *goquery.Document) bool {
	class, _ := doc.Find("html").Attr("class")
	if class == "" {
		return false
	}
	count := 0
	for _, c := range []string{"circular-corners", "theme-clean", "tint"} {
		if strings.Contains(class, c) {
			count++
		}
	}
	return count >= 2
}
