package chunk

import (
	"github.com/pingcap/errors"
)

// maxSampleRows caps how many head rows are encoded to measure density.
const maxSampleRows = 1000

// Dataset is the row-addressable view the planner partitions. EncodedSize
// reports the encoded byte size of a contiguous row range; ApproxRowSize is
// the analytic per-row fallback used when a measured sample is degenerate.
type Dataset interface {
	NumRows() int
	EncodedSize(lo, hi int) (int64, error)
	ApproxRowSize() int
}

// Span is a contiguous row range [Start, End). Spans come back in dataset
// order; a span's 1-based ordinal is its position in the plan.
type Span struct {
	Start int
	End   int
}

// Rows returns the number of rows covered by the span.
func (s Span) Rows() int {
	return s.End - s.Start
}

// Plan partitions a dataset into contiguous spans, each estimated to encode
// within budgetBytes. A non-positive budget returns the whole dataset as a
// single span with no estimation.
//
// Density is measured by encoding the first min(1000, rows) rows and scaled
// to the budget. The head sample is assumed representative of the tail's
// compressibility, so a span can exceed the budget when later rows compress
// worse; callers needing a hard ceiling must leave a margin in the budget.
func Plan(ds Dataset, budgetBytes int64) ([]Span, error) {
	rows := ds.NumRows()
	if budgetBytes <= 0 {
		return []Span{{Start: 0, End: rows}}, nil
	}
	if rows == 0 {
		return nil, nil
	}

	spanRows, err := rowsPerSpan(ds, budgetBytes)
	if err != nil {
		return nil, err
	}

	spans := make([]Span, 0, rows/spanRows+1)
	for start := 0; start < rows; start += spanRows {
		spans = append(spans, Span{Start: start, End: min(start+spanRows, rows)})
	}
	return spans, nil
}

func rowsPerSpan(ds Dataset, budgetBytes int64) (int, error) {
	sample := min(maxSampleRows, ds.NumRows())
	size, err := ds.EncodedSize(0, sample)
	if err != nil {
		return 0, errors.Annotate(err, "measuring sample encoding")
	}

	var rowsPerByte float64
	if size > 0 {
		rowsPerByte = float64(sample) / float64(size)
	} else if approx := ds.ApproxRowSize(); approx > 0 {
		// Degenerate sample; fall back to the analytic density.
		rowsPerByte = 1 / float64(approx)
	} else {
		rowsPerByte = 1
	}

	// Clamp to one row so a budget below a single row's footprint still
	// terminates.
	return max(int(rowsPerByte*float64(budgetBytes)), 1), nil
}
