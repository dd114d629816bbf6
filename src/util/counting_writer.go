package util

import (
	"context"
	"io"

	"github.com/pingcap/tidb/br/pkg/storage"
)

// CountingWriter wraps an io.Writer and tracks bytes written. Pointing it
// at io.Discard turns an encoder into a pure size probe.
type CountingWriter struct {
	w io.Writer
	n int64
}

func NewCountingWriter(w io.Writer) *CountingWriter {
	return &CountingWriter{w: w}
}

func (c *CountingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// BytesWritten returns the total number of bytes written so far.
func (c *CountingWriter) BytesWritten() int64 {
	return c.n
}

// WriterWithStats wraps a storage writer and updates progress for bytes
// written.
type WriterWithStats struct {
	writer storage.ExternalFileWriter
	logger *ProgressLogger
}

func NewWriterWithStats(writer storage.ExternalFileWriter, logger *ProgressLogger) *WriterWithStats {
	return &WriterWithStats{writer: writer, logger: logger}
}

func (cw *WriterWithStats) Write(ctx context.Context, p []byte) (int, error) {
	n, err := cw.writer.Write(ctx, p)
	if cw.logger != nil {
		cw.logger.UpdateBytes(int64(n))
	}
	return n, err
}

func (cw *WriterWithStats) Close(ctx context.Context) error {
	return cw.writer.Close(ctx)
}
