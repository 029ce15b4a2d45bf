package table

import (
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
)

// Table is a dense matrix keyed by row (author id) and column (calendar date).
// Column order is significant; rows keep insertion order.
type Table[T any] struct {
	rows   []string
	index  map[string]int
	cols   []civil.Date
	values [][]T
}

// New allocates a table with every cell set to zero.
func New[T any](rows []string, cols []civil.Date, zero T) *Table[T] {
	t := &Table[T]{
		rows:   append([]string(nil), rows...),
		index:  make(map[string]int, len(rows)),
		cols:   append([]civil.Date(nil), cols...),
		values: make([][]T, len(rows)),
	}
	for i, r := range t.rows {
		t.index[r] = i
		row := make([]T, len(cols))
		for j := range row {
			row[j] = zero
		}
		t.values[i] = row
	}
	return t
}

// NewFromColumns builds a table from ordered column vectors. Every vector must
// have one value per row.
func NewFromColumns[T any](rows []string, cols []civil.Date, vectors [][]T) (*Table[T], error) {
	if len(cols) != len(vectors) {
		return nil, fmt.Errorf("table: %d columns but %d vectors", len(cols), len(vectors))
	}
	var zero T
	t := New(rows, cols, zero)
	for j, vec := range vectors {
		if len(vec) != len(rows) {
			return nil, fmt.Errorf("table: column %s has %d values, want %d", cols[j], len(vec), len(rows))
		}
		for i, v := range vec {
			t.values[i][j] = v
		}
	}
	return t, nil
}

func (t *Table[T]) Rows() []string { return append([]string(nil), t.rows...) }

func (t *Table[T]) Columns() []civil.Date { return append([]civil.Date(nil), t.cols...) }

func (t *Table[T]) NumRows() int { return len(t.rows) }

func (t *Table[T]) NumColumns() int { return len(t.cols) }

// RowIndex returns the position of a row key.
func (t *Table[T]) RowIndex(key string) (int, bool) {
	i, ok := t.index[key]
	return i, ok
}

func (t *Table[T]) At(r, c int) T { return t.values[r][c] }

func (t *Table[T]) set(r, c int, v T) { t.values[r][c] = v }

// Row returns a copy of the values for one row key.
func (t *Table[T]) Row(key string) ([]T, bool) {
	i, ok := t.index[key]
	if !ok {
		return nil, false
	}
	return append([]T(nil), t.values[i]...), true
}

// Column returns a copy of column c across all rows.
func (t *Table[T]) Column(c int) []T {
	out := make([]T, len(t.rows))
	for i := range t.rows {
		out[i] = t.values[i][c]
	}
	return out
}

// Value looks a cell up by labels.
func (t *Table[T]) Value(rowKey string, col civil.Date) (T, bool) {
	var zero T
	i, ok := t.index[rowKey]
	if !ok {
		return zero, false
	}
	for j, c := range t.cols {
		if c == col {
			return t.values[i][j], true
		}
	}
	return zero, false
}

// FoldColumns folds the half-open column range [from, to) of every row with
// combine, starting from zero. It returns one value per row.
func (t *Table[T]) FoldColumns(from, to int, zero T, combine func(T, T) T) []T {
	out := make([]T, len(t.rows))
	for i, row := range t.values {
		acc := zero
		for _, v := range row[from:to] {
			acc = combine(acc, v)
		}
		out[i] = acc
	}
	return out
}

// Matrix returns a copy of the backing store, one slice per row.
func (t *Table[T]) Matrix() [][]T {
	out := make([][]T, len(t.values))
	for i, row := range t.values {
		out[i] = append([]T(nil), row...)
	}
	return out
}

// Map applies f to every cell and returns the resulting table.
func Map[T, U any](t *Table[T], f func(T) U) *Table[U] {
	var zero U
	out := New(t.rows, t.cols, zero)
	for i, row := range t.values {
		for j, v := range row {
			out.values[i][j] = f(v)
		}
	}
	return out
}

// MapRows replaces every row with f(row). f must return a slice of the same
// length.
func MapRows[T, U any](t *Table[T], f func([]T) []U) *Table[U] {
	var zero U
	out := New(t.rows, t.cols, zero)
	for i, row := range t.values {
		copy(out.values[i], f(row))
	}
	return out
}

// DropColumn returns a copy of t without column c.
func (t *Table[T]) DropColumn(c int) *Table[T] {
	cols := make([]civil.Date, 0, len(t.cols)-1)
	cols = append(cols, t.cols[:c]...)
	cols = append(cols, t.cols[c+1:]...)
	var zero T
	out := New(t.rows, cols, zero)
	for i, row := range t.values {
		copy(out.values[i], row[:c])
		copy(out.values[i][c:], row[c+1:])
	}
	return out
}

// Entry is one observation fed to Pivot.
type Entry[T any] struct {
	Row   string
	Col   civil.Date
	Value T
}

// Pivot groups entries by (row, column) and folds each group with combine,
// starting from zero. Rows are sorted lexically, columns ascending, and cells
// without entries hold zero. Entries within a group are folded in input order.
func Pivot[T any](entries []Entry[T], zero T, combine func(T, T) T) *Table[T] {
	rowSet := make(map[string]struct{})
	colSet := make(map[civil.Date]struct{})
	for _, e := range entries {
		rowSet[e.Row] = struct{}{}
		colSet[e.Col] = struct{}{}
	}

	rows := make([]string, 0, len(rowSet))
	for r := range rowSet {
		rows = append(rows, r)
	}
	sort.Strings(rows)

	cols := make([]civil.Date, 0, len(colSet))
	for c := range colSet {
		cols = append(cols, c)
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].Before(cols[j]) })

	colIndex := make(map[civil.Date]int, len(cols))
	for j, c := range cols {
		colIndex[c] = j
	}

	t := New(rows, cols, zero)
	for _, e := range entries {
		i := t.index[e.Row]
		j := colIndex[e.Col]
		t.set(i, j, combine(t.values[i][j], e.Value))
	}
	return t
}
