package uploader

import (
	"context"
	"fmt"
	"log"
	"time"

	"dataSynth/src/chunk"
	"dataSynth/src/table"
	"dataSynth/src/util"

	"github.com/pingcap/errors"
	"github.com/pingcap/tidb/br/pkg/storage"
	"golang.org/x/sync/errgroup"
)

// keyTimeFormat is the shared UTC timestamp in upload keys, minute
// resolution, no separators.
const keyTimeFormat = "200601021504"

// Uploader writes tables to blob storage as parquet files, splitting them
// into size-bounded parts when a limit is set.
type Uploader struct {
	store   storage.ExternalStorage
	opts    table.WriteOptions
	threads int

	// now is stubbed in tests.
	now func() time.Time
}

func New(store storage.ExternalStorage, opts table.WriteOptions, threads int) *Uploader {
	if threads <= 0 {
		threads = 1
	}
	return &Uploader{
		store:   store,
		opts:    opts,
		threads: threads,
		now:     time.Now,
	}
}

// Upload writes one table under deterministic keys and returns them in
// part order. Without a size limit the whole table becomes
// {table}/{timestamp}.parquet; with one, parts are planned by measured row
// density and named {table}/{timestamp}_part_NNN.parquet, 1-based. All
// parts of one call share the same timestamp. Parts upload concurrently,
// but the returned keys always follow part order.
func (u *Uploader) Upload(ctx context.Context, tbl *table.Table, sizeLimitBytes int64) ([]string, error) {
	timestamp := u.now().UTC().Format(keyTimeFormat)

	spans, err := chunk.Plan(tbl, sizeLimitBytes)
	if err != nil {
		return nil, errors.Trace(err)
	}

	if sizeLimitBytes <= 0 {
		key := fmt.Sprintf("%s/%s.parquet", tbl.Name, timestamp)
		if err := u.writeOne(ctx, key, tbl, nil); err != nil {
			return nil, err
		}
		log.Printf("Uploaded %s", key)
		return []string{key}, nil
	}

	keys := make([]string, len(spans))
	logger := util.NewProgressLogger(len(spans), "uploading "+tbl.Name, time.Second)

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(u.threads)
	for i, span := range spans {
		key := fmt.Sprintf("%s/%s_part_%03d.parquet", tbl.Name, timestamp, i+1)
		keys[i] = key
		part := tbl.Slice(span.Start, span.End)
		eg.Go(func() error {
			if err := u.writeOne(ectx, key, part, logger); err != nil {
				return err
			}
			logger.UpdateFiles(1)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		logger.Stop()
		return nil, errors.Trace(err)
	}

	return keys, nil
}

func (u *Uploader) writeOne(ctx context.Context, key string, tbl *table.Table, logger *util.ProgressLogger) error {
	writer, err := u.store.Create(ctx, key, &storage.WriterOption{Concurrency: 8})
	if err != nil {
		return errors.Annotatef(err, "creating %q", key)
	}

	wrapper := &writeWrapper{
		ctx:    ctx,
		writer: util.NewWriterWithStats(writer, logger),
	}
	if err := tbl.WriteParquet(wrapper, u.opts); err != nil {
		_ = writer.Close(ctx)
		return errors.Annotatef(err, "encoding %q", key)
	}
	return errors.Annotatef(writer.Close(ctx), "closing %q", key)
}

// writeWrapper adapts a storage writer to the io.Writer the parquet
// encoder expects. The encoder writes strictly forward, so Seek and Read
// are inert.
type writeWrapper struct {
	ctx    context.Context
	writer *util.WriterWithStats
}

func (ww *writeWrapper) Seek(offset int64, whence int) (int64, error) {
	return 0, nil
}

func (ww *writeWrapper) Read(b []byte) (int, error) {
	return 0, nil
}

func (ww *writeWrapper) Write(b []byte) (int, error) {
	return ww.writer.Write(ww.ctx, b)
}

func (ww *writeWrapper) Close() error {
	return nil
}
