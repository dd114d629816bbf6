package main

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"dataSynth/src/config"
	"dataSynth/src/generator"
	"dataSynth/src/metadata"
	"dataSynth/src/table"
	"dataSynth/src/uploader"

	"github.com/pingcap/errors"
	"github.com/pingcap/tidb/br/pkg/storage"
	"golang.org/x/sync/errgroup"
)

// RunGeneration generates and uploads every requested table, then persists
// the allocator state exactly once. Unknown tables are skipped with a
// warning and per-table failures do not abort the run, so a bad table
// cannot lose the work of its siblings.
func RunGeneration(cfg *config.Config, threads int) error {
	start := time.Now()
	ctx := context.Background()

	store, err := config.GetStore(cfg)
	if err != nil {
		return errors.Trace(err)
	}
	//nolint: errcheck
	defer store.Close()

	metaStore, metaName, err := config.GetMetadataStore(cfg)
	if err != nil {
		return errors.Trace(err)
	}
	//nolint: errcheck
	defer metaStore.Close()

	alloc, err := metadata.Load(ctx, metaStore, metaName, generator.SupportedTables)
	if err != nil {
		return errors.Trace(err)
	}
	registry := generator.NewRegistry(alloc)

	codec, err := table.CompressionCodec(cfg.Common.Compression)
	if err != nil {
		return errors.Trace(err)
	}
	up := uploader.New(store, table.WriteOptions{
		Compression:  codec,
		DataPageSize: cfg.Common.PageSizeBytes,
	}, threads)

	fmt.Printf("Generating %d rows per table for: %v\n", cfg.Common.Rows, cfg.Common.Tables)

	uploaded := 0
	for _, name := range cfg.Common.Tables {
		gen, err := registry.Lookup(name)
		if err != nil {
			log.Printf("Warning: unknown table %q, skipping", name)
			continue
		}

		tbl, err := gen.Generate(cfg.Common.Rows)
		if err != nil {
			log.Printf("Error generating %s: %v", name, err)
			continue
		}

		keys, err := up.Upload(ctx, tbl, cfg.Common.FileSizeLimitBytes)
		if err != nil {
			log.Printf("Error uploading %s: %v", name, err)
			continue
		}
		uploaded += len(keys)
		log.Printf("Uploaded %d file(s) for %s", len(keys), name)
	}

	// State is written once per run, after all tables, so a failed table
	// never leaves half-advanced IDs behind.
	if err := alloc.Persist(ctx, metaStore, metaName); err != nil {
		return errors.Trace(err)
	}

	fmt.Printf("Generated and uploaded %d file(s) in %s\n", uploaded, time.Since(start))
	fmt.Printf("Metadata saved to %s\n", metaName)
	return nil
}

// ShowFiles lists every object under the destination path.
func ShowFiles(cfg *config.Config) error {
	store, err := config.GetStore(cfg)
	if err != nil {
		return errors.Trace(err)
	}
	//nolint: errcheck
	defer store.Close()

	return store.WalkDir(context.Background(), &storage.WalkOption{}, func(path string, size int64) error {
		log.Printf("Name: %s, Size: %d, Size (MiB): %f", path, size, float64(size)/1024/1024)
		return nil
	})
}

// DeleteAllFiles removes every object under the destination path.
func DeleteAllFiles(cfg *config.Config) error {
	store, err := config.GetStore(cfg)
	if err != nil {
		return errors.Trace(err)
	}
	//nolint: errcheck
	defer store.Close()

	var fileNames []string
	err = store.WalkDir(context.Background(), &storage.WalkOption{}, func(path string, size int64) error {
		fileNames = append(fileNames, path)
		return nil
	})
	if err != nil {
		return errors.Trace(err)
	}

	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for _, fileName := range fileNames {
		eg.Go(func() error {
			return store.DeleteFile(context.Background(), fileName)
		})
	}
	return eg.Wait()
}
