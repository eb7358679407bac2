// Package dataset implements the copy-on-write table: the write path
// (upsert, insert, delete, insert_overwrite), the read path (snapshot,
// time travel, incremental), parquet data files, and the DataFrame handed
// back to callers.
package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/go-lakehouse/go-lakehouse/io"
	"github.com/go-lakehouse/go-lakehouse/meta"
	"github.com/go-lakehouse/go-lakehouse/timeline"
)

// Meta columns stamped on every stored row.
const (
	CommitTimeField    = "_commit_time"
	CommitSeqnoField   = "_commit_seqno"
	RecordKeyField     = "_record_key"
	PartitionPathField = "_partition_path"
	FileNameField      = "_file_name"
)

// MetaColumns lists the meta columns in storage order.
var MetaColumns = []string{
	CommitTimeField,
	CommitSeqnoField,
	RecordKeyField,
	PartitionPathField,
	FileNameField,
}

// ErrTableNotFound indicates no table descriptor exists at the base path.
var ErrTableNotFound = errors.New("table not found")

// Dataset is a handle on one table at a base path.
type Dataset struct {
	basePath string
	fio      io.FileIO
	cfg      WriterConfig
	desc     *meta.TableDescriptor
	tl       *timeline.Timeline
}

// Open opens an existing table at basePath.
func Open(ctx context.Context, fio io.FileIO, basePath string, cfg WriterConfig) (*Dataset, error) {
	descPath := io.Join(basePath, meta.DescriptorFileName)
	exists, err := fio.Exists(ctx, descPath)
	if err != nil {
		return nil, fmt.Errorf("failed to probe %s: %w", descPath, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, basePath)
	}

	data, err := io.ReadAll(ctx, fio, descPath)
	if err != nil {
		return nil, err
	}
	desc, err := meta.ParseTableDescriptor(data)
	if err != nil {
		return nil, err
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	tl, err := timeline.Load(ctx, fio, basePath)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		basePath: basePath,
		fio:      fio,
		cfg:      cfg,
		desc:     desc,
		tl:       tl,
	}, nil
}

// Create initializes a new table at basePath by persisting its descriptor.
func Create(ctx context.Context, fio io.FileIO, basePath string, cfg WriterConfig, desc *meta.TableDescriptor) (*Dataset, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	data, err := desc.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize table descriptor: %w", err)
	}
	if err := io.WriteAll(ctx, fio, io.Join(basePath, meta.DescriptorFileName), data); err != nil {
		return nil, fmt.Errorf("failed to write table descriptor: %w", err)
	}

	tl, err := timeline.Load(ctx, fio, basePath)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		basePath: basePath,
		fio:      fio,
		cfg:      cfg,
		desc:     desc,
		tl:       tl,
	}, nil
}

// BasePath returns the table base path.
func (d *Dataset) BasePath() string {
	return d.basePath
}

// Descriptor returns the persisted table descriptor.
func (d *Dataset) Descriptor() *meta.TableDescriptor {
	return d.desc
}

// Timeline returns the table's commit timeline.
func (d *Dataset) Timeline() *timeline.Timeline {
	return d.tl
}

// CommitTimes returns the completed commit times in commit order.
func (d *Dataset) CommitTimes() []string {
	return d.tl.InstantTimes()
}

// physicalSchema is the schema of stored data files: meta columns followed
// by the table's logical columns.
func (d *Dataset) physicalSchema() *arrow.Schema {
	logical := d.desc.Schema.ToArrowSchema()
	fields := make([]arrow.Field, 0, len(MetaColumns)+logical.NumFields())
	for _, name := range MetaColumns {
		fields = append(fields, arrow.Field{Name: name, Type: arrow.BinaryTypes.String})
	}
	fields = append(fields, logical.Fields()...)
	return arrow.NewSchema(fields, nil)
}

// ColumnNames returns the physical column names: meta columns followed by
// the logical columns.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, 0, len(MetaColumns)+d.desc.Schema.NumFields())
	names = append(names, MetaColumns...)
	names = append(names, d.desc.Schema.ColumnNames()...)
	return names
}
