package golakehouse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/google/uuid"

	"github.com/go-lakehouse/go-lakehouse/dataset"
	lakeio "github.com/go-lakehouse/go-lakehouse/io"
	"github.com/go-lakehouse/go-lakehouse/meta"
)

// SQLPlanner executes a SQL query against a set of registered views. It is
// installed with WithSQLExtension.
type SQLPlanner interface {
	Query(ctx context.Context, views map[string]*dataset.DataFrame, query string) (*dataset.DataFrame, error)
}

// Engine is the entry point for table reads and writes. One engine can
// serve any number of tables on its storage backend.
type Engine struct {
	config *Config
	fio    lakeio.FileIO

	mu    sync.RWMutex
	views map[string]*dataset.DataFrame
}

// Open creates an engine with the given options.
func Open(ctx context.Context, opts ...Option) (*Engine, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	var fio lakeio.FileIO
	switch config.StorageType {
	case StorageLocal:
		fio = lakeio.NewLocalFileIO()
	case StorageS3:
		if config.S3Config == nil {
			return nil, fmt.Errorf("%w: S3 storage requires an S3 config", ErrInvalidConfig)
		}
		var err error
		fio, err = lakeio.NewS3FileIO(ctx, &lakeio.S3Config{
			Region:          config.S3Config.Region,
			AccessKeyID:     config.S3Config.AccessKeyID,
			SecretAccessKey: config.S3Config.SecretAccessKey,
			SessionToken:    config.S3Config.SessionToken,
			Endpoint:        config.S3Config.Endpoint,
			ForcePathStyle:  config.S3Config.ForcePathStyle,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown storage type %q", ErrInvalidConfig, config.StorageType)
	}

	return &Engine{
		config: config,
		fio:    fio,
		views:  make(map[string]*dataset.DataFrame),
	}, nil
}

// writerConfig maps the engine configuration onto the dataset writer.
func (e *Engine) writerConfig() dataset.WriterConfig {
	cfg := dataset.DefaultWriterConfig()
	cfg.Compression = e.config.Compression.codec()
	if e.config.WriteBufferSize > 0 {
		cfg.WriteBufferSize = e.config.WriteBufferSize
	}
	return cfg
}

// resolvePath anchors a relative table path on the configured local base
// path. Absolute paths and URIs pass through unchanged.
func (e *Engine) resolvePath(basePath string) string {
	if e.config.LocalConfig == nil || e.config.LocalConfig.BasePath == "" {
		return basePath
	}
	if strings.HasPrefix(basePath, "/") || strings.Contains(basePath, "://") {
		return basePath
	}
	return lakeio.Join(e.config.LocalConfig.BasePath, basePath)
}

// Write writes a record batch to the table at basePath using the given
// option map. The table is created from the batch schema on the first
// write; subsequent writes must name the same table and key fields.
// Returns the commit time of the completed commit.
func (e *Engine) Write(ctx context.Context, basePath string, rec arrow.Record, options map[string]string) (string, error) {
	opts, err := dataset.ParseWriteOptions(options)
	if err != nil {
		return "", err
	}

	path := e.resolvePath(basePath)
	ds, err := dataset.Open(ctx, e.fio, path, e.writerConfig())
	if errors.Is(err, ErrTableNotFound) {
		if opts.Operation == dataset.OperationDelete {
			return "", err
		}
		ds, err = e.createTable(ctx, path, rec.Schema(), opts)
	}
	if err != nil {
		return "", err
	}

	instant, err := ds.Write(ctx, dataset.RowsFromRecord(rec), opts)
	if err != nil {
		return "", err
	}
	return instant.Time, nil
}

// createTable persists a table descriptor derived from the batch schema
// and the write options.
func (e *Engine) createTable(ctx context.Context, path string, schema *arrow.Schema, opts *dataset.WriteOptions) (*dataset.Dataset, error) {
	tableSchema, err := meta.FromArrowSchema(schema)
	if err != nil {
		return nil, err
	}
	desc := &meta.TableDescriptor{
		Name:               opts.TableName,
		TableUUID:          uuid.NewString(),
		RecordKeyField:     opts.RecordKeyField,
		PartitionPathField: opts.PartitionPathField,
		PrecombineField:    opts.PrecombineField,
		Schema:             tableSchema,
		CreatedMs:          time.Now().UnixMilli(),
	}
	return dataset.Create(ctx, e.fio, path, e.writerConfig(), desc)
}

// Read reads the table at basePath using the given option map and returns
// the result frame. An empty option map performs a snapshot read at the
// latest commit.
func (e *Engine) Read(ctx context.Context, basePath string, options map[string]string) (*dataset.DataFrame, error) {
	opts, err := dataset.ParseReadOptions(options)
	if err != nil {
		return nil, err
	}

	ds, err := dataset.Open(ctx, e.fio, e.resolvePath(basePath), e.writerConfig())
	if err != nil {
		return nil, err
	}
	return ds.Read(ctx, opts)
}

// Commits returns the completed commit times of the table at basePath, in
// commit order.
func (e *Engine) Commits(ctx context.Context, basePath string) ([]string, error) {
	ds, err := dataset.Open(ctx, e.fio, e.resolvePath(basePath), e.writerConfig())
	if err != nil {
		return nil, err
	}
	return ds.CommitTimes(), nil
}

// CreateOrReplaceView registers a frame under a view name for SQL
// queries.
func (e *Engine) CreateOrReplaceView(name string, df *dataset.DataFrame) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.views[name] = df
}

// View returns the registered frame for a view name.
func (e *Engine) View(name string) (*dataset.DataFrame, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	df, ok := e.views[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, name)
	}
	return df, nil
}

// SQL runs a query against the registered views using the installed
// planner.
func (e *Engine) SQL(ctx context.Context, query string) (*dataset.DataFrame, error) {
	if e.config.Planner == nil {
		return nil, ErrExtensionNotRegistered
	}

	e.mu.RLock()
	views := make(map[string]*dataset.DataFrame, len(e.views))
	for name, df := range e.views {
		views[name] = df
	}
	e.mu.RUnlock()

	return e.config.Planner.Query(ctx, views, query)
}
