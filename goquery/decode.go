package goquery

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/jerpint/ragthedocs"
	"golang.org/x/net/html/charset"
)

// newReader returns a UTF-8 reader over a stored page body.
//
// Pages are stored as fetched, so the encoding comes from the byte order
// mark or a <meta charset> declaration. Undeclared bodies that are valid
// UTF-8 are read as-is. Bodies that do not sniff as text return EPARSE.
func newReader(body []byte) (io.Reader, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ragthedocs.Errorf(ragthedocs.EPARSE, "empty document")
	}
	if ct := http.DetectContentType(body); !strings.HasPrefix(ct, "text/") {
		return nil, ragthedocs.Errorf(ragthedocs.EPARSE, "not an HTML document: %s", ct)
	}

	_, name, certain := charset.DetermineEncoding(body, "")
	if !certain && utf8.Valid(body) {
		return bytes.NewReader(body), nil
	}
	r, err := charset.NewReaderLabel(name, bytes.NewReader(body))
	if err != nil {
		return nil, ragthedocs.Errorf(ragthedocs.EPARSE, "decoding %s document: %v", name, err)
	}
	return r, nil
}
