package table

import (
	"fmt"
	"io"
	"strings"

	"dataSynth/src/util"

	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/schema"
	"github.com/pingcap/errors"
)

// WriteOptions controls parquet encoding.
type WriteOptions struct {
	Compression  compress.Compression
	DataPageSize int64
}

// DefaultWriteOptions matches the encoding used for uploaded files.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		Compression:  compress.Codecs.Snappy,
		DataPageSize: 1 << 20,
	}
}

// CompressionCodec maps a config name to a parquet compression codec.
func CompressionCodec(name string) (compress.Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "snappy", "":
		return compress.Codecs.Snappy, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "uncompressed", "none":
		return compress.Codecs.Uncompressed, nil
	default:
		return compress.Codecs.Uncompressed, fmt.Errorf("unsupported parquet compression: %q", name)
	}
}

func (t *Table) schemaNode(opts WriteOptions) (*schema.GroupNode, []parquet.WriterProperty, error) {
	fields := make([]schema.Node, len(t.Columns))
	props := []parquet.WriterProperty{
		parquet.WithDataPageSize(opts.DataPageSize),
		parquet.WithDataPageVersion(parquet.DataPageV2),
		parquet.WithVersion(parquet.V2_LATEST),
	}
	for i, col := range t.Columns {
		node, err := schema.NewPrimitiveNodeConverted(
			col.Name,
			parquet.Repetitions.Optional,
			col.Type, col.Converted,
			0, 0, 0,
			-1,
		)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		fields[i] = node
		props = append(props, parquet.WithCompressionFor(col.Name, opts.Compression))
	}

	node, err := schema.NewGroupNode("schema", parquet.Repetitions.Required, fields, -1)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	return node, props, nil
}

// defLevels returns definition levels for the column and the count of
// non-null rows.
func (c *Column) defLevels() ([]int16, int) {
	n := c.numValues()
	levels := make([]int16, n)
	present := 0
	for i := range n {
		if c.Nulls != nil && c.Nulls[i] {
			levels[i] = 0
		} else {
			levels[i] = 1
			present++
		}
	}
	return levels, present
}

// writeChunk writes the column into the given column chunk writer. Values
// are packed densely: the writer consumes one value per non-zero definition
// level.
func (c *Column) writeChunk(cw file.ColumnChunkWriter) error {
	levels, present := c.defLevels()

	var err error
	switch c.Type {
	case parquet.Types.Int32:
		w, ok := cw.(*file.Int32ColumnChunkWriter)
		if !ok {
			return errors.Errorf("unexpected chunk writer %T for column %q", cw, c.Name)
		}
		_, err = w.WriteBatch(packValues(c.Int32s, c.Nulls, present), levels, nil)
	case parquet.Types.Int64:
		w, ok := cw.(*file.Int64ColumnChunkWriter)
		if !ok {
			return errors.Errorf("unexpected chunk writer %T for column %q", cw, c.Name)
		}
		_, err = w.WriteBatch(packValues(c.Int64s, c.Nulls, present), levels, nil)
	case parquet.Types.Double:
		w, ok := cw.(*file.Float64ColumnChunkWriter)
		if !ok {
			return errors.Errorf("unexpected chunk writer %T for column %q", cw, c.Name)
		}
		_, err = w.WriteBatch(packValues(c.Float64s, c.Nulls, present), levels, nil)
	case parquet.Types.Boolean:
		w, ok := cw.(*file.BooleanColumnChunkWriter)
		if !ok {
			return errors.Errorf("unexpected chunk writer %T for column %q", cw, c.Name)
		}
		_, err = w.WriteBatch(packValues(c.Bools, c.Nulls, present), levels, nil)
	case parquet.Types.ByteArray:
		w, ok := cw.(*file.ByteArrayColumnChunkWriter)
		if !ok {
			return errors.Errorf("unexpected chunk writer %T for column %q", cw, c.Name)
		}
		_, err = w.WriteBatch(packValues(c.Bytes, c.Nulls, present), levels, nil)
	default:
		return errors.Errorf("unsupported parquet type %v for column %q", c.Type, c.Name)
	}
	return errors.Trace(err)
}

func packValues[T any](values []T, nulls []bool, present int) []T {
	if nulls == nil || present == len(values) {
		return values
	}
	packed := make([]T, 0, present)
	for i, v := range values {
		if !nulls[i] {
			packed = append(packed, v)
		}
	}
	return packed
}

// WriteParquet encodes the table as a single-row-group parquet file.
func (t *Table) WriteParquet(w io.Writer, opts WriteOptions) error {
	node, props, err := t.schemaNode(opts)
	if err != nil {
		return err
	}

	pw := file.NewParquetWriter(w, node, file.WithWriterProps(parquet.NewWriterProperties(props...)))
	rgw := pw.AppendRowGroup()
	for _, col := range t.Columns {
		cw, err := rgw.NextColumn()
		if err != nil {
			return errors.Trace(err)
		}
		if err := col.writeChunk(cw); err != nil {
			cw.Close()
			return err
		}
		if err := cw.Close(); err != nil {
			return errors.Trace(err)
		}
	}
	if err := rgw.Close(); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(pw.Close())
}

// EncodedSize measures the encoded byte size of rows [lo, hi) by writing
// them through a counting writer that discards the bytes. The encode is a
// scratch measurement with no durable side effect.
func (t *Table) EncodedSize(lo, hi int) (int64, error) {
	cw := util.NewCountingWriter(io.Discard)
	if err := t.Slice(lo, hi).WriteParquet(cw, DefaultWriteOptions()); err != nil {
		return 0, errors.Trace(err)
	}
	return cw.BytesWritten(), nil
}

// ApproxRowSize is an analytic estimate of one encoded row's footprint,
// used when a measured sample is degenerate. String columns are estimated
// from the first rows; fixed-width columns from their type width. The 20%
// factor accounts for parquet framing.
func (t *Table) ApproxRowSize() int {
	const stringSampleRows = 100

	total := 0
	for _, col := range t.Columns {
		switch col.Type {
		case parquet.Types.Boolean:
			total++
		case parquet.Types.Int32:
			total += 4
		case parquet.Types.Int64, parquet.Types.Double:
			total += 8
		case parquet.Types.ByteArray:
			sample := min(stringSampleRows, len(col.Bytes))
			if sample == 0 {
				total += 32
				continue
			}
			bytes := 0
			for _, v := range col.Bytes[:sample] {
				bytes += len(v)
			}
			total += bytes / sample
		default:
			total += 16
		}
	}
	return int(float64(total) * 1.2)
}
