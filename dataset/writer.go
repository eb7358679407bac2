package dataset

import (
	"bytes"
	"context"
	"fmt"
	stdio "io"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/google/uuid"

	"github.com/go-lakehouse/go-lakehouse/io"
	"github.com/go-lakehouse/go-lakehouse/timeline"
)

// WriterConfig tunes how data files get encoded.
type WriterConfig struct {
	Compression     compress.Compression
	WriteBufferSize int64
}

// DefaultWriterConfig returns the default data file encoding.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		Compression:     compress.Codecs.Snappy,
		WriteBufferSize: 1024 * 1024,
	}
}

// writeDataFile writes the rows of one partition into a new parquet file
// and returns its commit manifest entry. Fresh rows (no commit time yet)
// are stamped with the given instant; carried rows keep their meta columns
// except the file name, which always points at the new file.
func (d *Dataset) writeDataFile(ctx context.Context, partitionPath, instantTime string, writerID int, rows []Row) (timeline.DataFile, error) {
	fileName := fmt.Sprintf("%s-%s.parquet", uuid.NewString(), instantTime)
	filePath := io.Join(d.basePath, partitionPath, fileName)

	for i, row := range rows {
		if row[CommitTimeField] == nil {
			row[CommitTimeField] = instantTime
			row[CommitSeqnoField] = fmt.Sprintf("%s_%d_%d", instantTime, writerID, i)
			row[RecordKeyField] = FormatValue(row[d.desc.RecordKeyField])
			row[PartitionPathField] = partitionPath
		}
		row[FileNameField] = fileName
	}

	rec, err := RecordFromRows(d.physicalSchema(), rows)
	if err != nil {
		return timeline.DataFile{}, err
	}
	defer rec.Release()

	outputFile, err := d.fio.Create(ctx, filePath)
	if err != nil {
		return timeline.DataFile{}, fmt.Errorf("failed to create data file: %w", err)
	}
	writer, err := outputFile.Create(ctx)
	if err != nil {
		return timeline.DataFile{}, fmt.Errorf("failed to open data file writer: %w", err)
	}
	defer writer.Close()

	writerProps := parquet.NewWriterProperties(
		parquet.WithCompression(d.cfg.Compression),
		parquet.WithDataPageSize(d.cfg.WriteBufferSize),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithStoreSchema(),
	)

	pqWriter, err := pqarrow.NewFileWriter(rec.Schema(), writer, writerProps, arrowProps)
	if err != nil {
		return timeline.DataFile{}, fmt.Errorf("failed to create parquet writer: %w", err)
	}

	if err := pqWriter.WriteBuffered(rec); err != nil {
		pqWriter.Close()
		return timeline.DataFile{}, fmt.Errorf("failed to write data file: %w", err)
	}
	if err := pqWriter.Close(); err != nil {
		return timeline.DataFile{}, fmt.Errorf("failed to close parquet writer: %w", err)
	}

	inputFile, err := d.fio.Open(ctx, filePath)
	if err != nil {
		return timeline.DataFile{}, err
	}
	fileSize, err := inputFile.Length(ctx)
	if err != nil {
		return timeline.DataFile{}, fmt.Errorf("failed to stat data file: %w", err)
	}

	return timeline.DataFile{
		PartitionPath:   partitionPath,
		Path:            filePath,
		Name:            fileName,
		RecordCount:     int64(len(rows)),
		FileSizeInBytes: fileSize,
	}, nil
}

// readDataFile reads a parquet data file into rows.
func (d *Dataset) readDataFile(ctx context.Context, filePath string) ([]Row, error) {
	inputFile, err := d.fio.Open(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}

	reader, err := inputFile.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file reader: %w", err)
	}
	defer reader.Close()

	// Parquet needs a ReaderAt, so pull the file into memory
	buf := new(bytes.Buffer)
	if _, err := stdio.Copy(buf, reader); err != nil {
		return nil, fmt.Errorf("failed to read data file content: %w", err)
	}

	pqReader, err := file.NewParquetReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	tbl, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file %s: %w", filePath, err)
	}
	defer tbl.Release()

	return RowsFromTable(tbl), nil
}
