package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/docker/go-units"
	"github.com/pingcap/tidb/br/pkg/storage"
)

const (
	defaultPageSizeBytes = units.MiB
	defaultMetadataFile  = "metadata.json"
)

type S3Config struct {
	Region          string `toml:"region,omitempty"`
	AccessKey       string `toml:"access_key,omitempty"`
	SecretAccessKey string `toml:"secret_key,omitempty"`
	Provider        string `toml:"provider,omitempty"`
	Endpoint        string `toml:"endpoint,omitempty"`
	RoleArn         string `toml:"role_arn,omitempty"`
}

type GCSConfig struct {
	Credential string `toml:"credential,omitempty"`
}

type CommonConfig struct {
	// Path is the destination store for generated files, a local path or
	// s3://, gs:// URI.
	Path string `toml:"path"`

	// MetadataPath locates the allocator state document. Defaults to
	// metadata.json in the working directory.
	MetadataPath string `toml:"metadata_path"`

	Tables        []string `toml:"tables"`
	Rows          int      `toml:"rows"`
	FileSizeLimit string   `toml:"file_size_limit"`
	Compression   string   `toml:"compression"`
	PageSize      string   `toml:"page_size"`

	// Derived at runtime, not read from config.
	FileSizeLimitBytes int64 `toml:"-"`
	PageSizeBytes      int64 `toml:"-"`
}

type Config struct {
	Common    CommonConfig `toml:"common"`
	S3Config  *S3Config    `toml:"s3,omitempty"`
	GCSConfig *GCSConfig   `toml:"gcs,omitempty"`
}

// Normalize resolves derived config values after loading.
func Normalize(cfg *Config) error {
	limitBytes, err := resolveHumanSize(cfg.Common.FileSizeLimit, "file_size_limit", 0)
	if err != nil {
		return err
	}
	cfg.Common.FileSizeLimitBytes = limitBytes

	pageBytes, err := resolveHumanSize(cfg.Common.PageSize, "page_size", defaultPageSizeBytes)
	if err != nil {
		return err
	}
	cfg.Common.PageSizeBytes = pageBytes
	return nil
}

// Validate returns a user-friendly error if the configuration is invalid.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Common.Path == "" {
		errs = append(errs, "common.path is required")
	}
	if cfg.Common.Rows < 0 {
		errs = append(errs, "common.rows must be >= 0")
	}
	if cfg.Common.FileSizeLimit != "" && cfg.Common.FileSizeLimitBytes <= 0 {
		errs = append(errs, "common.file_size_limit must be greater than 0")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Common.Compression)) {
	case "", "snappy", "zstd", "gzip", "uncompressed", "none":
	default:
		errs = append(errs, "common.compression must be snappy, zstd, gzip or uncompressed")
	}

	if cfg.S3Config != nil && cfg.GCSConfig != nil {
		errs = append(errs, "only one of [s3] or [gcs] can be configured")
	}

	if len(errs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("invalid config:\n")
	for _, err := range errs {
		sb.WriteString(" - ")
		sb.WriteString(err)
		sb.WriteString("\n")
	}
	return fmt.Errorf("%s", strings.TrimRight(sb.String(), "\n"))
}

func resolveHumanSize(value, field string, fallback int64) (int64, error) {
	if value == "" {
		return fallback, nil
	}
	bytes, err := units.FromHumanSize(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if bytes <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be greater than 0", field, value)
	}
	return bytes, nil
}

func backendOptions(c *Config) *storage.BackendOptions {
	if c.S3Config != nil {
		return &storage.BackendOptions{S3: storage.S3BackendOptions{
			Region:          c.S3Config.Region,
			AccessKey:       c.S3Config.AccessKey,
			SecretAccessKey: c.S3Config.SecretAccessKey,
			Provider:        c.S3Config.Provider,
			Endpoint:        c.S3Config.Endpoint,
			RoleARN:         c.S3Config.RoleArn,
		}}
	}
	if c.GCSConfig != nil {
		return &storage.BackendOptions{GCS: storage.GCSBackendOptions{
			CredentialsFile: c.GCSConfig.Credential,
		}}
	}
	return nil
}

// GetStore initializes the destination ExternalStorage for generated files.
func GetStore(c *Config) (storage.ExternalStorage, error) {
	s, err := storage.ParseBackend(c.Common.Path, backendOptions(c))
	if err != nil {
		return nil, err
	}
	return storage.NewWithDefaultOpt(context.Background(), s)
}

// GetMetadataStore initializes the store holding the allocator state and
// returns the document name inside it. Plain paths resolve to local
// storage; URIs go through the same backends as the destination store.
func GetMetadataStore(c *Config) (storage.ExternalStorage, string, error) {
	path := c.Common.MetadataPath
	if path == "" {
		path = defaultMetadataFile
	}

	if !strings.Contains(path, "://") {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, "", err
		}
		store, err := storage.NewLocalStorage(filepath.Dir(abs))
		if err != nil {
			return nil, "", err
		}
		return store, filepath.Base(abs), nil
	}

	idx := strings.LastIndex(path, "/")
	dir, name := path[:idx], path[idx+1:]
	if name == "" {
		return nil, "", fmt.Errorf("metadata_path %q has no file name", path)
	}
	backend, err := storage.ParseBackend(dir, backendOptions(c))
	if err != nil {
		return nil, "", err
	}
	store, err := storage.NewWithDefaultOpt(context.Background(), backend)
	if err != nil {
		return nil, "", err
	}
	return store, name, nil
}
