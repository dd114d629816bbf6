package uploader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dataSynth/src/table"

	"github.com/pingcap/tidb/br/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUploader(t *testing.T, dir string) *Uploader {
	t.Helper()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	u := New(store, table.DefaultWriteOptions(), 4)
	u.now = func() time.Time {
		return time.Date(2025, 5, 30, 14, 30, 12, 0, time.UTC)
	}
	return u
}

func testUploadTable(t *testing.T, rows int) *table.Table {
	t.Helper()
	ids := make([]int64, rows)
	names := make([]string, rows)
	for i := range rows {
		ids[i] = int64(i + 1)
		names[i] = fmt.Sprintf("row-%04d", i)
	}
	tbl, err := table.New("users", []*table.Column{
		table.Int64Column("user_id", ids, nil),
		table.StringColumn("username", names, nil),
	})
	require.NoError(t, err)
	return tbl
}

func TestUploadSingleFile(t *testing.T) {
	dir := t.TempDir()
	u := testUploader(t, dir)

	keys, err := u.Upload(context.Background(), testUploadTable(t, 100), 0)
	require.NoError(t, err)
	require.Equal(t, []string{"users/202505301430.parquet"}, keys)

	data, err := os.ReadFile(filepath.Join(dir, keys[0]))
	require.NoError(t, err)
	assert.Equal(t, "PAR1", string(data[:4]))
	assert.Equal(t, "PAR1", string(data[len(data)-4:]))
}

func TestUploadChunked(t *testing.T) {
	dir := t.TempDir()
	u := testUploader(t, dir)
	tbl := testUploadTable(t, 2000)

	full, err := tbl.EncodedSize(0, tbl.NumRows())
	require.NoError(t, err)

	// A quarter of the full size forces several parts.
	keys, err := u.Upload(context.Background(), tbl, full/4)
	require.NoError(t, err)
	require.Greater(t, len(keys), 1)

	for i, key := range keys {
		assert.Equal(t, fmt.Sprintf("users/202505301430_part_%03d.parquet", i+1), key)

		data, err := os.ReadFile(filepath.Join(dir, key))
		require.NoError(t, err)
		assert.Equal(t, "PAR1", string(data[:4]))
		assert.Equal(t, "PAR1", string(data[len(data)-4:]))
	}

	entries, err := os.ReadDir(filepath.Join(dir, "users"))
	require.NoError(t, err)
	assert.Len(t, entries, len(keys))
}

func TestUploadSharedTimestamp(t *testing.T) {
	u := testUploader(t, t.TempDir())

	// Clock advances mid-upload; keys still share the first reading.
	base := time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)
	calls := 0
	u.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}

	tbl := testUploadTable(t, 500)
	full, err := tbl.EncodedSize(0, tbl.NumRows())
	require.NoError(t, err)

	keys, err := u.Upload(context.Background(), tbl, full/3)
	require.NoError(t, err)
	require.Greater(t, len(keys), 1)

	prefix := "users/" + base.Add(time.Minute).Format("200601021504") + "_part_"
	for _, key := range keys {
		assert.Contains(t, key, prefix)
	}
}
