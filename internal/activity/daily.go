// Package activity turns posts into per-author activity matrices: one column
// per calendar day, then rolled up into weekly windows.
package activity

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/domain"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/table"
)

// DateOf maps epoch milliseconds to a calendar date. The wall clock is read in
// UTC and no timezone conversion is applied.
func DateOf(ms int64) civil.Date {
	return civil.DateOf(time.UnixMilli(ms).UTC())
}

// Sum and Concat are the combine functions of the two aggregation modes.
func Sum(a, b float64) float64 { return a + b }

func Concat(a, b string) string { return a + b }

// Daily groups posts by (author, date) and folds each group's values with
// combine, starting from zero. Missing cells hold zero.
func Daily[T any](posts []domain.Post, value func(domain.Post) T, zero T, combine func(T, T) T) *table.Table[T] {
	entries := make([]table.Entry[T], len(posts))
	for i, p := range posts {
		entries[i] = table.Entry[T]{Row: p.AuthorID, Col: DateOf(p.CreatedAt), Value: value(p)}
	}
	return table.Pivot(entries, zero, combine)
}

// DailyCounts is the activity-count mode: posts per author per day.
func DailyCounts(posts []domain.Post) *table.Table[float64] {
	return Daily(posts, func(domain.Post) float64 { return 1 }, 0, Sum)
}

// DailyContents is the content mode: the author's posts of the day
// concatenated in input order.
func DailyContents(posts []domain.Post) *table.Table[string] {
	return Daily(posts, func(p domain.Post) string { return p.Content }, "", Concat)
}
