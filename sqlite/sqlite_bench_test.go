package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jerpint/ragthedocs"
	"github.com/jerpint/ragthedocs/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkUpsertEntries measures batch upserts of typical embedding size,
// one transaction per batch as ingestion does it.
func BenchmarkUpsertEntries(b *testing.B) {
	for _, size := range []int{100, 1000} {
		b.Run(fmt.Sprintf("batch_%d", size), func(b *testing.B) {
			db := sqlite.NewDB(filepath.Join(b.TempDir(), "bench.db"))
			require.NoError(b, db.Open())
			defer db.Close()

			svc := sqlite.NewEntryService(db)
			embedding := make([]float32, 768)
			for i := range embedding {
				embedding[i] = float32(i) / 768
			}

			ctx := context.Background()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				entries := make([]*ragthedocs.Entry, size)
				for j := range entries {
					entries[j] = &ragthedocs.Entry{
						ID:        fmt.Sprintf("%d-%d", i, j),
						URL:       fmt.Sprintf("https://docs.example.com/page%d/", j),
						Title:     fmt.Sprintf("Page %d", j),
						Content:   "Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
						Source:    ragthedocs.DefaultSource,
						Embedding: embedding,
					}
				}
				if err := svc.UpsertEntries(ctx, entries); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkSearchEntries measures brute-force ranking over a populated store.
func BenchmarkSearchEntries(b *testing.B) {
	db := sqlite.NewDB(filepath.Join(b.TempDir(), "bench.db"))
	require.NoError(b, db.Open())
	defer db.Close()

	svc := sqlite.NewEntryService(db)
	ctx := context.Background()
	entries := make([]*ragthedocs.Entry, 2000)
	for j := range entries {
		embedding := make([]float32, 768)
		embedding[j%768] = 1
		entries[j] = &ragthedocs.Entry{
			ID:        fmt.Sprintf("%d", j),
			URL:       fmt.Sprintf("https://docs.example.com/page%d/", j),
			Title:     fmt.Sprintf("Page %d", j),
			Content:   "Lorem ipsum dolor sit amet.",
			Source:    ragthedocs.DefaultSource,
			Embedding: embedding,
		}
	}
	require.NoError(b, svc.UpsertEntries(ctx, entries))

	query := make([]float32, 768)
	query[0] = 1
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.SearchEntries(ctx, query, ragthedocs.SearchOptions{}); err != nil {
			b.Fatal(err)
		}
	}
}
