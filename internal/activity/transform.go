package activity

import (
	"fmt"
	"math"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/table"
)

// TransformKind selects a count transform applied before clustering.
type TransformKind string

const (
	Identity TransformKind = "identity"
	Log      TransformKind = "log"      // ln(x+1)
	RowNorm  TransformKind = "row_norm" // x / row sum
	LogDiff  TransformKind = "log_diff" // Log, then day-over-day difference
)

// ErrUnknownTransform is returned for an unrecognised TransformKind.
var ErrUnknownTransform = fmt.Errorf("activity: unknown transform")

func log1p(v float64) float64 { return math.Log(v + 1) }

// Transform returns a new matrix; the input is left untouched.
func Transform(t *table.Table[float64], kind TransformKind) (*table.Table[float64], error) {
	switch kind {
	case Identity:
		return table.Map(t, func(v float64) float64 { return v }), nil
	case Log:
		return table.Map(t, log1p), nil
	case RowNorm:
		// a row summing to zero yields NaN, as a division by the row sum would
		return table.MapRows(t, func(row []float64) []float64 {
			var sum float64
			for _, v := range row {
				sum += v
			}
			out := make([]float64, len(row))
			for j, v := range row {
				out[j] = v / sum
			}
			return out
		}), nil
	case LogDiff:
		if t.NumColumns() == 0 {
			return t, nil
		}
		logged := table.MapRows(t, func(row []float64) []float64 {
			out := make([]float64, len(row))
			for j, v := range row {
				if j == 0 {
					out[j] = math.NaN()
					continue
				}
				out[j] = log1p(v) - log1p(row[j-1])
			}
			return out
		})
		return logged.DropColumn(0), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownTransform, kind)
	}
}
