package timeline

import (
	"bytes"
	"fmt"
	"io"

	"github.com/linkedin/goavro/v2"
)

// AvroSchemaCommitEntry is the Avro schema for commit manifest entries. One
// manifest holds one entry per data file the commit added or replaced.
const AvroSchemaCommitEntry = `{
  "type": "record",
  "name": "commit_entry",
  "fields": [
    {"name": "entry_kind", "type": "int"},
    {"name": "partition_path", "type": "string"},
    {"name": "file_path", "type": "string"},
    {"name": "file_name", "type": "string"},
    {"name": "record_count", "type": "long"},
    {"name": "file_size_in_bytes", "type": "long"}
  ]
}`

// Entry kinds in a commit manifest.
const (
	entryKindAdded    = 0
	entryKindReplaced = 1
)

// DataFile describes one data file written by a commit.
type DataFile struct {
	PartitionPath   string
	Path            string
	Name            string
	RecordCount     int64
	FileSizeInBytes int64
}

// CommitMetadata is the content of one commit manifest: the files the
// commit added and the files it replaced.
type CommitMetadata struct {
	Instant       Instant
	Operation     string
	AddedFiles    []DataFile
	ReplacedFiles []string
}

// CommitWriter writes commit manifests in Avro OCF format.
type CommitWriter struct {
	buffer *bytes.Buffer
	ocf    *goavro.OCFWriter
}

// NewCommitWriter creates a writer for one commit manifest. Instant time,
// action, and operation travel in the OCF metadata block.
func NewCommitWriter(instant Instant, operation string) (*CommitWriter, error) {
	codec, err := goavro.NewCodec(AvroSchemaCommitEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to create avro codec: %w", err)
	}

	buf := new(bytes.Buffer)
	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               buf,
		Codec:           codec,
		CompressionName: "deflate",
		MetaData: map[string][]byte{
			"instant-time": []byte(instant.Time),
			"action":       []byte(instant.Action),
			"operation":    []byte(operation),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OCF writer: %w", err)
	}

	return &CommitWriter{buffer: buf, ocf: ocf}, nil
}

// AppendAdded appends an added data file entry.
func (w *CommitWriter) AppendAdded(df DataFile) error {
	return w.ocf.Append([]any{map[string]any{
		"entry_kind":         entryKindAdded,
		"partition_path":     df.PartitionPath,
		"file_path":          df.Path,
		"file_name":          df.Name,
		"record_count":       df.RecordCount,
		"file_size_in_bytes": df.FileSizeInBytes,
	}})
}

// AppendReplaced appends a replaced data file entry.
func (w *CommitWriter) AppendReplaced(filePath string) error {
	return w.ocf.Append([]any{map[string]any{
		"entry_kind":         entryKindReplaced,
		"partition_path":     "",
		"file_path":          filePath,
		"file_name":          "",
		"record_count":       int64(0),
		"file_size_in_bytes": int64(0),
	}})
}

// Bytes returns the written Avro data.
func (w *CommitWriter) Bytes() []byte {
	return w.buffer.Bytes()
}

// SerializeCommit serializes a commit metadata into one Avro manifest.
func SerializeCommit(cm *CommitMetadata) ([]byte, error) {
	w, err := NewCommitWriter(cm.Instant, cm.Operation)
	if err != nil {
		return nil, err
	}
	for _, df := range cm.AddedFiles {
		if err := w.AppendAdded(df); err != nil {
			return nil, fmt.Errorf("failed to append added file: %w", err)
		}
	}
	for _, path := range cm.ReplacedFiles {
		if err := w.AppendReplaced(path); err != nil {
			return nil, fmt.Errorf("failed to append replaced file: %w", err)
		}
	}
	return w.Bytes(), nil
}

// ReadCommit reads a commit manifest.
func ReadCommit(r io.Reader) (*CommitMetadata, error) {
	ocf, err := goavro.NewOCFReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create OCF reader: %w", err)
	}

	meta := ocf.MetaData()
	cm := &CommitMetadata{
		Instant: Instant{
			Time:   string(meta["instant-time"]),
			Action: Action(meta["action"]),
		},
		Operation: string(meta["operation"]),
	}

	for ocf.Scan() {
		record, err := ocf.Read()
		if err != nil {
			return nil, fmt.Errorf("failed to read commit entry: %w", err)
		}

		m, ok := record.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected record type")
		}

		switch getInt(m, "entry_kind") {
		case entryKindAdded:
			cm.AddedFiles = append(cm.AddedFiles, DataFile{
				PartitionPath:   getString(m, "partition_path"),
				Path:            getString(m, "file_path"),
				Name:            getString(m, "file_name"),
				RecordCount:     getInt64(m, "record_count"),
				FileSizeInBytes: getInt64(m, "file_size_in_bytes"),
			})
		case entryKindReplaced:
			cm.ReplacedFiles = append(cm.ReplacedFiles, getString(m, "file_path"))
		default:
			return nil, fmt.Errorf("unknown commit entry kind: %d", getInt(m, "entry_kind"))
		}
	}

	if err := ocf.Err(); err != nil {
		return nil, fmt.Errorf("error reading commit manifest: %w", err)
	}

	return cm, nil
}

// Helper functions for reading Avro data

func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func getInt64(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}
