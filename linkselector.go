package ragthedocs

import "time"

// LinkSelector extracts hyperlinks from a page.
type LinkSelector interface {
	// ExtractLinks parses the body and returns every followable link,
	// resolved against baseURL, fragment stripped and deduplicated,
	// in document order. Links to other hosts are included; scoping is
	// the crawler's job.
	ExtractLinks(body []byte, baseURL string) ([]string, error)
}

// Framework identifies a documentation framework.
type Framework string

// Supported documentation frameworks.
const (
	FrameworkUnknown    Framework = ""
	FrameworkDocusaurus Framework = "docusaurus"
	FrameworkMkDocs     Framework = "mkdocs"
	FrameworkSphinx     Framework = "sphinx"
	FrameworkVuePress   Framework = "vuepress"
	FrameworkVitePress  Framework = "vitepress"
	FrameworkGitBook    Framework = "gitbook"
	FrameworkNextra     Framework = "nextra"
)

// FrameworkDetector identifies documentation frameworks from HTML.
type FrameworkDetector interface {
	// Detect analyzes HTML and returns the identified framework.
	// Returns FrameworkUnknown if the framework cannot be determined.
	Detect(html string) Framework
}

// RenderDelay returns the extra wait after page load that a framework needs
// before its content is in the DOM. Only used by rendering fetchers.
func RenderDelay(f Framework) time.Duration {
	switch f {
	case FrameworkGitBook, FrameworkNextra:
		return 500 * time.Millisecond
	case FrameworkDocusaurus, FrameworkVitePress, FrameworkVuePress:
		return 200 * time.Millisecond
	}
	return 0
}
