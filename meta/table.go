package meta

import (
	"encoding/json"
	"fmt"
)

// DescriptorFileName is the name of the table descriptor file under the
// table base path.
const DescriptorFileName = "table.json"

// TableDescriptor is the persisted description of a table: its identity,
// key configuration, and schema. It is written on the first commit and
// loaded on every subsequent open.
type TableDescriptor struct {
	Name               string  `json:"name"`
	TableUUID          string  `json:"table-uuid"`
	RecordKeyField     string  `json:"recordkey-field"`
	PartitionPathField string  `json:"partitionpath-field"`
	PrecombineField    string  `json:"precombine-field"`
	Schema             *Schema `json:"schema"`
	CreatedMs          int64   `json:"created-ms"`
}

// Validate checks that the descriptor names its key fields and that they
// exist in the schema.
func (d *TableDescriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("table descriptor missing name")
	}
	if d.Schema == nil || len(d.Schema.Fields) == 0 {
		return fmt.Errorf("table descriptor missing schema")
	}

	for _, req := range []struct {
		label string
		field string
	}{
		{"record key", d.RecordKeyField},
		{"partition path", d.PartitionPathField},
		{"precombine", d.PrecombineField},
	} {
		if req.field == "" {
			return fmt.Errorf("table descriptor missing %s field", req.label)
		}
		if d.Schema.FieldByName(req.field) == nil {
			return fmt.Errorf("%s field %q not in schema", req.label, req.field)
		}
	}

	return nil
}

// ParseTableDescriptor parses a table descriptor from JSON.
func ParseTableDescriptor(data []byte) (*TableDescriptor, error) {
	var d TableDescriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse table descriptor: %w", err)
	}
	return &d, nil
}

// ToJSON serializes the descriptor to JSON.
func (d *TableDescriptor) ToJSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
