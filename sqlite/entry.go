package sqlite

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/jerpint/ragthedocs"
)

// Compile-time interface verification.
var _ ragthedocs.EntryService = (*EntryService)(nil)

// EntryService implements ragthedocs.EntryService using SQLite.
// Embeddings are stored as BLOBs and ranked in process.
type EntryService struct {
	db *DB
}

// NewEntryService creates a new EntryService.
func NewEntryService(db *DB) *EntryService {
	return &EntryService{db: db}
}

// UpsertEntries writes all entries in one transaction. An entry whose ID
// already exists is replaced. Every entry is validated before anything is
// written.
func (s *EntryService) UpsertEntries(ctx context.Context, entries []*ragthedocs.Entry) error {
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (id, url, anchor, title, content, source, content_hash, embedding, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			url = excluded.url,
			anchor = excluded.anchor,
			title = excluded.title,
			content = excluded.content,
			source = excluded.source,
			content_hash = excluded.content_hash,
			embedding = excluded.embedding,
			ingested_at = excluded.ingested_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, e := range entries {
		if e.ContentHash == "" {
			e.ContentHash = hashContent(e.Content)
		}
		if e.IngestedAt.IsZero() {
			e.IngestedAt = now
		}
		if _, err := stmt.ExecContext(ctx, e.ID, e.URL, e.Anchor, e.Title, e.Content, e.Source,
			e.ContentHash, encodeEmbedding(e.Embedding), e.IngestedAt.Format(time.RFC3339Nano)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CountEntries returns the number of stored entries.
func (s *EntryService) CountEntries(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n)
	return n, err
}

// DeleteAllEntries removes every entry.
func (s *EntryService) DeleteAllEntries(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM entries")
	return err
}

// SearchEntries ranks stored entries by cosine similarity to embedding.
// Entries whose dimension differs from the query are skipped.
func (s *EntryService) SearchEntries(ctx context.Context, embedding []float32, opts ragthedocs.SearchOptions) ([]ragthedocs.SearchResult, error) {
	if len(embedding) == 0 {
		return nil, ragthedocs.Errorf(ragthedocs.EINVALID, "query embedding required")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = ragthedocs.DefaultSearchLimit
	}

	var query strings.Builder
	var args []any
	query.WriteString("SELECT id, url, anchor, title, content, source, content_hash, embedding, ingested_at FROM entries")
	if opts.Source != "" {
		query.WriteString(" WHERE source = ?")
		args = append(args, opts.Source)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []ragthedocs.SearchResult{}
	for rows.Next() {
		var e ragthedocs.Entry
		var blob []byte
		var ingestedAt string
		if err := rows.Scan(&e.ID, &e.URL, &e.Anchor, &e.Title, &e.Content, &e.Source,
			&e.ContentHash, &blob, &ingestedAt); err != nil {
			return nil, err
		}

		e.Embedding, err = decodeEmbedding(blob)
		if err != nil {
			return nil, err
		}
		if len(e.Embedding) != len(embedding) {
			continue
		}
		score := cosine(embedding, e.Embedding)
		if score < opts.MinScore {
			continue
		}

		if e.IngestedAt, err = parseTimestamp(ingestedAt, "ingested_at"); err != nil {
			return nil, err
		}
		results = append(results, ragthedocs.SearchResult{Entry: &e, SimilarityToAnswer: score})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b ragthedocs.SearchResult) int {
		if c := cmp.Compare(b.SimilarityToAnswer, a.SimilarityToAnswer); c != 0 {
			return c
		}
		return cmp.Compare(a.Entry.ID, b.Entry.ID)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
