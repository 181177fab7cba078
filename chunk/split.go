package chunk

import "github.com/jerpint/ragthedocs"

// Piece is one chunk of a page before it is tagged with page metadata.
type Piece struct {
	Title   string
	Anchor  string
	Content string
}

// Split merges consecutive sections of one page into chunks of at most max
// characters (runes).
//
// Sections are appended to a buffer, separated by "\n". Before appending,
// the buffer is closed as a chunk if it already holds at least min
// characters and the addition would push it past max. Whenever the buffer
// exceeds max, its first max characters are emitted and the rest is kept,
// so oversized sections become max-sized pieces in order. The final chunk
// of a page may be shorter than min.
//
// A chunk is titled by the most recent heading it contains; untitled text
// uses fallbackTitle. Its anchor is that of the section it starts in.
// Sections with an empty body contribute nothing.
func Split(sections []ragthedocs.Section, fallbackTitle string, min, max int) []Piece {
	if max <= 0 {
		max = DefaultMaxSectionLength
	}

	var (
		pieces []Piece
		buf    []rune
		title  string
		anchor string
	)
	emit := func(content []rune) {
		pieces = append(pieces, Piece{Title: title, Anchor: anchor, Content: string(content)})
	}

	for _, s := range sections {
		body := []rune(s.Content)
		if len(body) == 0 {
			continue
		}

		if len(buf) > 0 && len(buf) >= min && len(buf)+1+len(body) > max {
			emit(buf)
			buf = nil
		}

		if len(buf) == 0 {
			anchor = s.Anchor
		} else {
			buf = append(buf, '\n')
		}
		buf = append(buf, body...)

		title = s.Title
		if title == "" {
			title = fallbackTitle
		}

		for len(buf) > max {
			emit(buf[:max])
			buf = buf[max:]
			anchor = s.Anchor
		}
	}

	if len(buf) > 0 {
		emit(buf)
	}
	return pieces
}
