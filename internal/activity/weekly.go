package activity

import (
	"errors"

	"cloud.google.com/go/civil"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/table"
)

// WindowDays is the span of one weekly window.
const WindowDays = 7

// ErrEmptyInput is matched by every EmptyInputError.
var ErrEmptyInput = errors.New("activity: daily matrix has no date columns")

// EmptyInputError is returned when there is nothing to aggregate.
type EmptyInputError struct {
	Rows int
}

func (e *EmptyInputError) Error() string { return ErrEmptyInput.Error() }

func (e *EmptyInputError) Is(target error) bool { return target == ErrEmptyInput }

// Window describes one closed weekly window over the daily columns.
type Window struct {
	Start civil.Date
	From  int // first daily column, inclusive
	To    int // last daily column, exclusive
}

// Days is the number of daily columns in the window.
func (w Window) Days() int { return w.To - w.From }

type weeklyOptions struct {
	flushTrailing bool
	observer      func(closed []Window, dropped int)
}

// WeeklyOption tunes Weekly.
type WeeklyOption func(*weeklyOptions)

// WithTrailingWindow emits the final, possibly shorter, window instead of
// dropping it.
func WithTrailingWindow() WeeklyOption {
	return func(o *weeklyOptions) { o.flushTrailing = true }
}

// WithObserver receives the windows that were emitted and the number of daily
// columns that were left out of the result.
func WithObserver(f func(closed []Window, dropped int)) WeeklyOption {
	return func(o *weeklyOptions) { o.observer = f }
}

// Windows scans sorted column dates once and returns the closed windows plus
// the trailing window that was still open when the scan ended.
//
// A window starts at a column's date and absorbs every following column less
// than WindowDays days after that start. The first column at or past the
// boundary closes the window and starts the next one at its own date. Windows
// are therefore anchored on the first column, not on calendar weeks, and gaps
// in the dates never shift a boundary.
func Windows(cols []civil.Date) (closed []Window, trailing Window, err error) {
	if len(cols) == 0 {
		return nil, Window{}, &EmptyInputError{}
	}

	start, startIdx := cols[0], 0
	for i, d := range cols {
		if d.DaysSince(start) < WindowDays {
			continue
		}
		closed = append(closed, Window{Start: start, From: startIdx, To: i})
		start, startIdx = d, i
	}
	return closed, Window{Start: start, From: startIdx, To: len(cols)}, nil
}

// Weekly folds the daily columns of each window into one week column keyed by
// the window's start date. Columns must be sorted ascending; they are not
// re-sorted here.
//
// The last window is never closed by a later column and is dropped unless
// WithTrailingWindow is given, so the days it covers do not appear in the
// result.
func Weekly[T any](daily *table.Table[T], zero T, combine func(T, T) T, opts ...WeeklyOption) (*table.Table[T], error) {
	var o weeklyOptions
	for _, opt := range opts {
		opt(&o)
	}

	closed, trailing, err := Windows(daily.Columns())
	if err != nil {
		return nil, &EmptyInputError{Rows: daily.NumRows()}
	}

	dropped := trailing.Days()
	if o.flushTrailing {
		closed = append(closed, trailing)
		dropped = 0
	}
	if o.observer != nil {
		o.observer(closed, dropped)
	}

	starts := make([]civil.Date, len(closed))
	vectors := make([][]T, len(closed))
	for k, w := range closed {
		starts[k] = w.Start
		vectors[k] = daily.FoldColumns(w.From, w.To, zero, combine)
	}
	return table.NewFromColumns(daily.Rows(), starts, vectors)
}

// WeeklyCounts rolls up a DailyCounts matrix.
func WeeklyCounts(daily *table.Table[float64], opts ...WeeklyOption) (*table.Table[float64], error) {
	return Weekly(daily, 0, Sum, opts...)
}

// WeeklyContents rolls up a DailyContents matrix.
func WeeklyContents(daily *table.Table[string], opts ...WeeklyOption) (*table.Table[string], error) {
	return Weekly(daily, "", Concat, opts...)
}
