package postgres

import (
	"context"
	"fmt"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/domain"
)

// Totals counts posts and distinct authors in a range.
type Totals struct {
	Posts         int64 `json:"posts"`
	UniqueAuthors int64 `json:"unique_authors"`
}

// Bucket is one UTC day. BucketStart is epoch milliseconds.
type Bucket struct {
	BucketStart   int64 `json:"bucket_start"`
	Posts         int64 `json:"posts"`
	UniqueAuthors int64 `json:"unique_authors"`
}

// Filter bounds a query. From and To are inclusive epoch milliseconds;
// an empty AuthorID means every author.
type Filter struct {
	AuthorID string
	From     int64
	To       int64
}

func (f Filter) where() (string, []any) {
	cond := "WHERE created_at_ms >= $1 AND created_at_ms <= $2"
	args := []any{f.From, f.To}
	if f.AuthorID != "" {
		cond += " AND author_id = $3"
		args = append(args, f.AuthorID)
	}
	return cond, args
}

func (db *DB) QueryTotals(ctx context.Context, f Filter) (Totals, error) {
	var res Totals
	cond, args := f.where()

	sql := "SELECT COUNT(*)::bigint, COUNT(DISTINCT author_id)::bigint FROM posts " + cond
	row := db.Pool.QueryRow(ctx, sql, args...)
	if err := row.Scan(&res.Posts, &res.UniqueAuthors); err != nil {
		return res, fmt.Errorf("scan totals: %w", err)
	}
	return res, nil
}

func (db *DB) QueryBucketsDaily(ctx context.Context, f Filter) ([]Bucket, error) {
	cond, args := f.where()

	sql := fmt.Sprintf(`
SELECT
  (created_at_ms / 86400000) * 86400000 AS bucket_start,
  COUNT(*)::bigint AS cnt,
  COUNT(DISTINCT author_id)::bigint AS uniq
FROM posts
%s
GROUP BY 1
ORDER BY 1 ASC`, cond)

	rows, err := db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query buckets: %w", err)
	}
	defer rows.Close()

	var out []Bucket
	for rows.Next() {
		var b Bucket
		if err := rows.Scan(&b.BucketStart, &b.Posts, &b.UniqueAuthors); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Posts reads matching posts back ordered by author then time.
func (db *DB) Posts(ctx context.Context, f Filter) ([]domain.Post, error) {
	cond, args := f.where()
	sql := "SELECT author_id, author_username, author_location, created_at_ms, content FROM posts " +
		cond + " ORDER BY author_id, created_at_ms"

	rows, err := db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var out []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.AuthorID, &p.AuthorUsername, &p.AuthorLocation, &p.CreatedAt, &p.Content); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
