package fs

import (
	"context"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jerpint/ragthedocs"
)

// Ensure PageStore implements ragthedocs.PageStore at compile time.
var _ ragthedocs.PageStore = (*PageStore)(nil)

// tempPrefix marks files that are still being written.
const tempPrefix = ".page-"

// PageStore implements ragthedocs.PageStore on the local filesystem.
// Each file is written to a temporary name and renamed into place, so a
// killed crawl never leaves a truncated page behind.
type PageStore struct {
	dir string
}

// NewPageStore creates a new PageStore rooted at dir.
func NewPageStore(dir string) *PageStore {
	return &PageStore{dir: dir}
}

// Dir returns the root directory of the store.
func (s *PageStore) Dir() string {
	return s.dir
}

// Save writes the page body to its derived path and sets page.Path.
func (s *PageStore) Save(ctx context.Context, page *ragthedocs.Page) error {
	if err := page.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := PagePath(s.dir, page.URL)
	if err != nil {
		return err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(page.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return err
	}

	page.Path = fullPath
	return nil
}

// Load reads a stored page back by URL.
func (s *PageStore) Load(ctx context.Context, rawURL string) (*ragthedocs.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := PagePath(s.dir, rawURL)
	if err != nil {
		return nil, err
	}

	body, err := os.ReadFile(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ragthedocs.Errorf(ragthedocs.ENOTFOUND, "page not stored: %s", rawURL)
	} else if err != nil {
		return nil, err
	}

	return &ragthedocs.Page{URL: rawURL, Body: body, Path: fullPath}, nil
}

// List returns the URLs of all .html and .htm pages stored for the
// homepage's host, ordered by path. A host with nothing stored yields an
// empty slice.
func (s *PageStore) List(ctx context.Context, homepageURL string) ([]string, error) {
	u, err := url.Parse(homepageURL)
	if err != nil || u.Host == "" {
		return nil, ragthedocs.Errorf(ragthedocs.EINVALIDURL, "invalid url %q", homepageURL)
	}
	root, err := HostDir(s.dir, homepageURL)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}
		if ragthedocs.HasPageExtension(filepath.ToSlash(p)) {
			files = append(files, p)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	} else if err != nil {
		return nil, err
	}

	sort.Strings(files)

	urls := make([]string, 0, len(files))
	for _, f := range files {
		pageURL, err := PageURL(s.dir, f, u.Scheme)
		if err != nil {
			return nil, err
		}
		urls = append(urls, pageURL)
	}
	return urls, nil
}
