// Package fs provides file-based storage for crawled pages.
package fs

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/jerpint/ragthedocs"
)

// indexFile is appended to paths that denote a directory.
const indexFile = "index.html"

// PagePath returns the location of a page under saveDir:
//
//	<saveDir>/<host>/<url path without leading slash>[/index.html]
//
// A path denotes a directory unless its last segment names an HTML page or
// a static asset, so "/en/latest", "/en/v0.2.7" and their forms with a
// trailing slash each share one index.html. Assets keep their own name and
// are never listed as pages. The query and fragment are ignored. The result
// never escapes <saveDir>/<host>.
func PagePath(saveDir, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ragthedocs.Errorf(ragthedocs.EINVALIDURL, "invalid url %q: %v", rawURL, err)
	}
	if u.Host == "" {
		return "", ragthedocs.Errorf(ragthedocs.EINVALIDURL, "invalid url %q: missing host", rawURL)
	}
	return filepath.Join(saveDir, hostDir(u.Host), filepath.FromSlash(relPath(u.Path))), nil
}

// PageURL is the inverse of PagePath. It maps a stored file back to the
// canonical URL it was saved for. The layout does not record the scheme, so
// every URL gets the given one; a page crawled over http is returned as
// https when scheme is "https". Directory pages come back with a trailing
// slash.
func PageURL(saveDir, file, scheme string) (string, error) {
	rel, err := filepath.Rel(saveDir, file)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", ragthedocs.Errorf(ragthedocs.EINVALID, "%s is outside %s", file, saveDir)
	}

	host, rest, _ := strings.Cut(rel, "/")
	if host == "" || rest == "" {
		return "", ragthedocs.Errorf(ragthedocs.EINVALID, "%s is not a stored page", file)
	}

	p := "/" + rest
	if p == "/"+indexFile {
		p = "/"
	} else if strings.HasSuffix(p, "/"+indexFile) {
		p = strings.TrimSuffix(p, indexFile)
	}

	u := url.URL{Scheme: scheme, Host: host, Path: p}
	return u.String(), nil
}

// HostDir returns the directory holding every page of the URL's host.
func HostDir(saveDir, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", ragthedocs.Errorf(ragthedocs.EINVALIDURL, "invalid url %q", rawURL)
	}
	return filepath.Join(saveDir, hostDir(u.Host)), nil
}

func hostDir(host string) string {
	return strings.ToLower(host)
}

// assetExts are static files linked from documentation pages, such as the
// reStructuredText sources Sphinx links as _sources/<page>.rst.txt.
var assetExts = map[string]bool{
	".txt": true, ".rst": true, ".md": true, ".pdf": true, ".epub": true, ".zip": true, ".gz": true,
	".css": true, ".js": true, ".map": true, ".json": true, ".xml": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true, ".ico": true, ".webp": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
}

// isFile reports whether the last segment of p names a file rather than a
// directory.
func isFile(p string) bool {
	return ragthedocs.HasPageExtension(p) || assetExts[strings.ToLower(path.Ext(p))]
}

func relPath(p string) string {
	dir := p == "" || strings.HasSuffix(p, "/") || !isFile(p)
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	switch {
	case p == "":
		return indexFile
	case dir:
		return p + "/" + indexFile
	}
	return p
}
