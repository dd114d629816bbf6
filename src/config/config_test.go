package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, Normalize(cfg))
	assert.Zero(t, cfg.Common.FileSizeLimitBytes)
	assert.Equal(t, int64(1<<20), cfg.Common.PageSizeBytes)

	cfg = &Config{Common: CommonConfig{
		FileSizeLimit: "256MB",
		PageSize:      "64KB",
	}}
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, int64(256_000_000), cfg.Common.FileSizeLimitBytes)
	assert.Equal(t, int64(64_000), cfg.Common.PageSizeBytes)

	cfg = &Config{Common: CommonConfig{FileSizeLimit: "lots"}}
	assert.Error(t, Normalize(cfg))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		cfg    Config
		errMsg string
	}{
		{
			name: "valid",
			cfg:  Config{Common: CommonConfig{Path: "/tmp/out", Rows: 100}},
		},
		{
			name:   "missing path",
			cfg:    Config{},
			errMsg: "common.path is required",
		},
		{
			name:   "negative rows",
			cfg:    Config{Common: CommonConfig{Path: "/tmp/out", Rows: -1}},
			errMsg: "common.rows must be >= 0",
		},
		{
			name: "bad compression",
			cfg: Config{Common: CommonConfig{
				Path: "/tmp/out", Compression: "lz77",
			}},
			errMsg: "common.compression must be",
		},
		{
			name: "both backends",
			cfg: Config{
				Common:    CommonConfig{Path: "s3://bucket/prefix"},
				S3Config:  &S3Config{Region: "us-east-1"},
				GCSConfig: &GCSConfig{Credential: "cred.json"},
			},
			errMsg: "only one of [s3] or [gcs]",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Validate(&c.cfg)
			if c.errMsg == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), c.errMsg)
			}
		})
	}
}

func TestGetMetadataStoreLocal(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Common: CommonConfig{
		MetadataPath: filepath.Join(dir, "state", "alloc.json"),
	}}

	store, name, err := GetMetadataStore(cfg)
	require.NoError(t, err)
	assert.Equal(t, "alloc.json", name)

	require.NoError(t, store.WriteFile(context.Background(), name, []byte("{}")))
	data, err := store.ReadFile(context.Background(), name)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestGetMetadataStoreDefault(t *testing.T) {
	cfg := &Config{}
	_, name, err := GetMetadataStore(cfg)
	require.NoError(t, err)
	assert.Equal(t, "metadata.json", name)
}
