package table

import (
	"time"

	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/schema"
	"github.com/pingcap/errors"
)

// Column holds one parquet-typed column of values plus an optional null
// mask. Exactly one of the value slices is populated, matching Type.
type Column struct {
	Name      string
	Type      parquet.Type
	Converted schema.ConvertedType

	// Nulls marks rows with no value. nil means the column has no nulls.
	Nulls []bool

	Int32s   []int32
	Int64s   []int64
	Float64s []float64
	Bools    []bool
	Bytes    []parquet.ByteArray
}

// Table is an in-memory columnar dataset for a single named table.
type Table struct {
	Name    string
	Columns []*Column
	rows    int
}

// New assembles a table from columns, validating that every column has the
// same row count.
func New(name string, columns []*Column) (*Table, error) {
	rows := -1
	for _, col := range columns {
		n := col.numValues()
		if rows == -1 {
			rows = n
		} else if n != rows {
			return nil, errors.Errorf("column %q has %d rows, want %d", col.Name, n, rows)
		}
		if col.Nulls != nil && len(col.Nulls) != n {
			return nil, errors.Errorf("column %q null mask has %d entries, want %d", col.Name, len(col.Nulls), n)
		}
	}
	if rows == -1 {
		rows = 0
	}
	return &Table{Name: name, Columns: columns, rows: rows}, nil
}

func (c *Column) numValues() int {
	switch c.Type {
	case parquet.Types.Int32:
		return len(c.Int32s)
	case parquet.Types.Int64:
		return len(c.Int64s)
	case parquet.Types.Double:
		return len(c.Float64s)
	case parquet.Types.Boolean:
		return len(c.Bools)
	case parquet.Types.ByteArray:
		return len(c.Bytes)
	default:
		return 0
	}
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	return t.rows
}

// Slice returns a view over rows [lo, hi). The view shares backing arrays
// with the parent table.
func (t *Table) Slice(lo, hi int) *Table {
	columns := make([]*Column, len(t.Columns))
	for i, col := range t.Columns {
		sliced := &Column{
			Name:      col.Name,
			Type:      col.Type,
			Converted: col.Converted,
		}
		if col.Nulls != nil {
			sliced.Nulls = col.Nulls[lo:hi]
		}
		switch col.Type {
		case parquet.Types.Int32:
			sliced.Int32s = col.Int32s[lo:hi]
		case parquet.Types.Int64:
			sliced.Int64s = col.Int64s[lo:hi]
		case parquet.Types.Double:
			sliced.Float64s = col.Float64s[lo:hi]
		case parquet.Types.Boolean:
			sliced.Bools = col.Bools[lo:hi]
		case parquet.Types.ByteArray:
			sliced.Bytes = col.Bytes[lo:hi]
		}
		columns[i] = sliced
	}
	return &Table{Name: t.Name, Columns: columns, rows: hi - lo}
}

// Int64Column builds a plain int64 column.
func Int64Column(name string, values []int64, nulls []bool) *Column {
	return &Column{
		Name:      name,
		Type:      parquet.Types.Int64,
		Converted: schema.ConvertedTypes.None,
		Int64s:    values,
		Nulls:     nulls,
	}
}

// Int32Column builds a plain int32 column.
func Int32Column(name string, values []int32, nulls []bool) *Column {
	return &Column{
		Name:      name,
		Type:      parquet.Types.Int32,
		Converted: schema.ConvertedTypes.Int32,
		Int32s:    values,
		Nulls:     nulls,
	}
}

// Float64Column builds a double column.
func Float64Column(name string, values []float64, nulls []bool) *Column {
	return &Column{
		Name:      name,
		Type:      parquet.Types.Double,
		Converted: schema.ConvertedTypes.None,
		Float64s:  values,
		Nulls:     nulls,
	}
}

// BoolColumn builds a boolean column.
func BoolColumn(name string, values []bool, nulls []bool) *Column {
	return &Column{
		Name:      name,
		Type:      parquet.Types.Boolean,
		Converted: schema.ConvertedTypes.None,
		Bools:     values,
		Nulls:     nulls,
	}
}

// StringColumn builds a byte-array column from strings.
func StringColumn(name string, values []string, nulls []bool) *Column {
	bytes := make([]parquet.ByteArray, len(values))
	for i, v := range values {
		bytes[i] = parquet.ByteArray(v)
	}
	return &Column{
		Name:      name,
		Type:      parquet.Types.ByteArray,
		Converted: schema.ConvertedTypes.None,
		Bytes:     bytes,
		Nulls:     nulls,
	}
}

// TimestampColumn builds a timestamp-micros column from UTC times.
func TimestampColumn(name string, values []time.Time, nulls []bool) *Column {
	micros := make([]int64, len(values))
	for i, v := range values {
		micros[i] = v.UTC().UnixMicro()
	}
	return &Column{
		Name:      name,
		Type:      parquet.Types.Int64,
		Converted: schema.ConvertedTypes.TimestampMicros,
		Int64s:    micros,
		Nulls:     nulls,
	}
}

// DateColumn builds a date column (days since epoch).
func DateColumn(name string, values []time.Time, nulls []bool) *Column {
	days := make([]int32, len(values))
	for i, v := range values {
		secs := v.UTC().Unix()
		d := secs / (24 * 60 * 60)
		// Floor, not truncate: pre-epoch times belong to the previous day.
		if secs%(24*60*60) < 0 {
			d--
		}
		days[i] = int32(d)
	}
	return &Column{
		Name:      name,
		Type:      parquet.Types.Int32,
		Converted: schema.ConvertedTypes.Date,
		Int32s:    days,
		Nulls:     nulls,
	}
}
