package meta

import (
	"encoding/json"
	"fmt"
)

// Field represents a column in a table schema.
type Field struct {
	Name     string `json:"name"`
	Type     Type   `json:"type"`
	Nullable bool   `json:"nullable"`
}

// Schema represents a table schema: an ordered list of named columns.
type Schema struct {
	Fields []Field `json:"fields"`
}

// NewSchema creates a new schema with the given fields.
func NewSchema(fields []Field) *Schema {
	return &Schema{Fields: fields}
}

// NumFields returns the number of columns in the schema.
func (s *Schema) NumFields() int {
	return len(s.Fields)
}

// FieldByName returns the field with the given name, or nil if not found.
func (s *Schema) FieldByName(name string) *Field {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// ColumnNames returns the column names in schema order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Equals checks if two schemas are equal.
func (s *Schema) Equals(other *Schema) bool {
	if len(s.Fields) != len(other.Fields) {
		return false
	}
	for i := range s.Fields {
		if s.Fields[i].Name != other.Fields[i].Name ||
			s.Fields[i].Nullable != other.Fields[i].Nullable ||
			!s.Fields[i].Type.Equals(other.Fields[i].Type) {
			return false
		}
	}
	return true
}

// fieldJSON is the wire form of a Field.
type fieldJSON struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// MarshalJSON implements json.Marshaler.
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(fieldJSON{
		Name:     f.Name,
		Type:     f.Type.String(),
		Nullable: f.Nullable,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Field) UnmarshalJSON(data []byte) error {
	var fj fieldJSON
	if err := json.Unmarshal(data, &fj); err != nil {
		return err
	}

	t, err := ParseType(fj.Type)
	if err != nil {
		return fmt.Errorf("field %s: %w", fj.Name, err)
	}

	f.Name = fj.Name
	f.Type = t
	f.Nullable = fj.Nullable
	return nil
}
