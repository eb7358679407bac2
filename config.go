package golakehouse

import (
	"github.com/apache/arrow-go/v18/parquet/compress"
)

// StorageType represents supported storage backends.
type StorageType string

const (
	// StorageLocal represents local filesystem storage.
	StorageLocal StorageType = "local"
	// StorageS3 represents Amazon S3 storage.
	StorageS3 StorageType = "s3"
)

// Compression represents supported data file codecs.
type Compression string

const (
	CompressionSnappy Compression = "snappy"
	CompressionZstd   Compression = "zstd"
	CompressionGzip   Compression = "gzip"
	CompressionNone   Compression = "none"
)

// codec maps a Compression to its parquet codec.
func (c Compression) codec() compress.Compression {
	switch c {
	case CompressionZstd:
		return compress.Codecs.Zstd
	case CompressionGzip:
		return compress.Codecs.Gzip
	case CompressionNone:
		return compress.Codecs.Uncompressed
	default:
		return compress.Codecs.Snappy
	}
}

// Config holds the engine configuration.
type Config struct {
	// Storage configuration
	StorageType StorageType
	S3Config    *S3Config
	LocalConfig *LocalConfig

	// Write configuration
	Compression     Compression
	WriteBufferSize int64

	// Extensions
	Planner SQLPlanner
}

// S3Config holds S3-specific configuration.
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Endpoint        string // for MinIO, LocalStack, etc.
	ForcePathStyle  bool
}

// LocalConfig holds local filesystem configuration.
type LocalConfig struct {
	// BasePath, when set, anchors relative table paths.
	BasePath string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		StorageType:     StorageLocal,
		LocalConfig:     &LocalConfig{},
		Compression:     CompressionSnappy,
		WriteBufferSize: 1024 * 1024,
	}
}

// Option is a functional option for engine configuration.
type Option func(*Config)

// WithLocalStorage configures local filesystem storage. Relative table
// paths resolve against basePath.
func WithLocalStorage(basePath string) Option {
	return func(c *Config) {
		c.StorageType = StorageLocal
		c.LocalConfig = &LocalConfig{BasePath: basePath}
	}
}

// WithS3 configures the S3 storage backend.
func WithS3(cfg *S3Config) Option {
	return func(c *Config) {
		c.StorageType = StorageS3
		c.S3Config = cfg
	}
}

// WithCompression sets the data file codec.
func WithCompression(c Compression) Option {
	return func(cfg *Config) {
		cfg.Compression = c
	}
}

// WithWriteBufferSize sets the data page buffer size for written files.
func WithWriteBufferSize(n int64) Option {
	return func(c *Config) {
		c.WriteBufferSize = n
	}
}

// WithSQLExtension installs a query planner for Engine.SQL.
func WithSQLExtension(p SQLPlanner) Option {
	return func(c *Config) {
		c.Planner = p
	}
}
