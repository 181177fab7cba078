package mock

import (
	"github.com/jerpint/ragthedocs"
)

var _ ragthedocs.LinkSelector = (*LinkSelector)(nil)

// LinkSelector is a mock implementation of ragthedocs.LinkSelector.
type LinkSelector struct {
	ExtractLinksFn func(body []byte, baseURL string) ([]string, error)
}

func (s *LinkSelector) ExtractLinks(body []byte, baseURL string) ([]string, error) {
	return s.ExtractLinksFn(body, baseURL)
}

var _ ragthedocs.FrameworkDetector = (*FrameworkDetector)(nil)

// FrameworkDetector is a mock implementation of ragthedocs.FrameworkDetector.
type FrameworkDetector struct {
	DetectFn func(html string) ragthedocs.Framework
}

func (d *FrameworkDetector) Detect(html string) ragthedocs.Framework {
	return d.DetectFn(html)
}

var _ ragthedocs.SectionParser = (*SectionParser)(nil)

// SectionParser is a mock implementation of ragthedocs.SectionParser.
type SectionParser struct {
	ParseFn func(body []byte) (*ragthedocs.ParsedPage, error)
}

func (p *SectionParser) Parse(body []byte) (*ragthedocs.ParsedPage, error) {
	return p.ParseFn(body)
}
