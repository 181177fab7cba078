package ragthedocs

import (
	"net/url"
	"path"
	"strings"
)

// NormalizeURL canonicalizes a user-supplied host or URL.
//
// A missing scheme becomes https. The host is lowercased, the fragment is
// dropped and the path always ends in "/" unless it names an HTML file, so
// "ex.io/en/latest" and "https://ex.io/en/latest/" normalize to the same
// string, as do "ex.io/en/v0.2.7" and "ex.io/en/v0.2.7/". Returns
// EINVALIDURL for input that cannot be parsed or has no host.
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", Errorf(EINVALIDURL, "url required")
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return "", Errorf(EINVALIDURL, "invalid url %q: contains whitespace", raw)
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", Errorf(EINVALIDURL, "invalid url %q: %v", raw, err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", Errorf(EINVALIDURL, "invalid url %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Hostname() == "" {
		return "", Errorf(EINVALIDURL, "invalid url %q: missing host", raw)
	}
	u.Host = strings.ToLower(u.Host)
	u.User = nil
	u.Fragment = ""
	u.RawFragment = ""

	switch {
	case u.Path == "":
		u.Path = "/"
		u.RawPath = ""
	case !strings.HasSuffix(u.Path, "/") && !HasPageExtension(u.Path):
		u.Path += "/"
		if u.RawPath != "" {
			u.RawPath += "/"
		}
	}

	return u.String(), nil
}

// HasPageExtension reports whether the last segment of a URL path names an
// HTML file. Every other path names a directory, dotted version segments
// such as "v0.2.7" included.
func HasPageExtension(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// Domain returns the network location (host and port, lowercased) of an
// absolute URL. It is used as the crawl scope.
func Domain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", Errorf(EINVALIDURL, "invalid url %q: %v", rawURL, err)
	}
	if u.Host == "" {
		return "", Errorf(EINVALIDURL, "invalid url %q: missing host", rawURL)
	}
	return strings.ToLower(u.Host), nil
}

// ResolveLink resolves href against base and strips the fragment.
// The bool result is false for links that cannot be followed: unparsable
// hrefs and non-HTTP schemes such as javascript:, mailto:, tel: or data:.
func ResolveLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	resolved.Fragment = ""
	resolved.RawFragment = ""
	resolved.Host = strings.ToLower(resolved.Host)
	return resolved.String(), true
}

// StripFragment removes everything from the first "#" on.
func StripFragment(rawURL string) string {
	if idx := strings.Index(rawURL, "#"); idx != -1 {
		return rawURL[:idx]
	}
	return rawURL
}

// Scope restricts a crawl to one host and, optionally, one documentation
// version.
type Scope struct {
	// Domain is the allowed host, compared exactly. Subdomains are out of scope.
	Domain string

	// Version, when set, must appear in the absolute URL as a literal,
	// case-sensitive substring. "v2" therefore also matches "/v20/" or a
	// query string containing "v2".
	Version string
}

// Allows reports whether the absolute URL is inside the scope.
func (s Scope) Allows(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !strings.EqualFold(u.Host, s.Domain) {
		return false
	}
	if s.Version != "" && !strings.Contains(rawURL, s.Version) {
		return false
	}
	return true
}
