package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/domain"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/idempotency"
)

var postColumns = []string{"post_key", "author_id", "author_username", "author_location", "created_at_ms", "content"}

type Writer struct {
	db *DB
}

func NewWriter(db *DB) *Writer { return &Writer{db: db} }

// InsertBatch inserts posts with ON CONFLICT DO NOTHING on the post key, so
// re-imports are no-ops. The returned count excludes duplicates.
func (w *Writer) InsertBatch(ctx context.Context, items []domain.Post) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	sql, args := insertStatement(items)
	ct, err := w.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("insert posts: %w", err)
	}
	return ct.RowsAffected(), nil
}

func insertStatement(items []domain.Post) (string, []any) {
	placeholders := make([]string, 0, len(items))
	args := make([]any, 0, len(items)*len(postColumns))

	argi := 1
	for i := range items {
		p := &items[i]
		ph := make([]string, len(postColumns))
		for c := range ph {
			ph[c] = fmt.Sprintf("$%d", argi)
			argi++
		}
		args = append(args,
			idempotency.PostKey(p),
			p.AuthorID,
			p.AuthorUsername,
			p.AuthorLocation,
			p.CreatedAt,
			p.Content,
		)
		placeholders = append(placeholders, "("+strings.Join(ph, ",")+")")
	}

	sql := "INSERT INTO posts (" + strings.Join(postColumns, ",") + ") VALUES " +
		strings.Join(placeholders, ",") +
		" ON CONFLICT (post_key) DO NOTHING"
	return sql, args
}
