package meta

import (
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
)

func tripsSchema() *Schema {
	return NewSchema([]Field{
		{Name: "uuid", Type: StringType, Nullable: true},
		{Name: "partitionpath", Type: StringType, Nullable: true},
		{Name: "ts", Type: LongType, Nullable: true},
		{Name: "fare", Type: DoubleType, Nullable: true},
	})
}

func TestParseType(t *testing.T) {
	tests := []struct {
		s    string
		want Type
	}{
		{"boolean", BooleanType},
		{"int", IntType},
		{"long", LongType},
		{"float", FloatType},
		{"double", DoubleType},
		{"date", DateType},
		{"timestamp", TimestampType},
		{"string", StringType},
		{"binary", BinaryType},
		{" long ", LongType},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.s)
		if err != nil {
			t.Errorf("ParseType(%q) failed: %v", tt.s, err)
			continue
		}
		if !got.Equals(tt.want) {
			t.Errorf("ParseType(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}

	if _, err := ParseType("decimal(10,2)"); err == nil {
		t.Error("ParseType should reject unknown types")
	}
}

func TestTypeStringRoundTrip(t *testing.T) {
	for _, typ := range []Type{
		BooleanType, IntType, LongType, FloatType, DoubleType,
		DateType, TimestampType, StringType, BinaryType,
	} {
		parsed, err := ParseType(typ.String())
		if err != nil {
			t.Errorf("ParseType(%s) failed: %v", typ, err)
			continue
		}
		if !parsed.Equals(typ) {
			t.Errorf("round trip of %s = %v", typ, parsed)
		}
	}
}

func TestSchemaFieldLookup(t *testing.T) {
	s := tripsSchema()

	f := s.FieldByName("fare")
	if f == nil || !f.Type.Equals(DoubleType) {
		t.Errorf("FieldByName(fare) = %v", f)
	}
	if s.FieldByName("missing") != nil {
		t.Error("FieldByName should return nil for unknown columns")
	}

	want := []string{"uuid", "partitionpath", "ts", "fare"}
	got := s.ColumnNames()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ColumnNames[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSchemaEquals(t *testing.T) {
	a := tripsSchema()
	if !a.Equals(tripsSchema()) {
		t.Error("identical schemas should be equal")
	}

	b := tripsSchema()
	b.Fields[2].Type = IntType
	if a.Equals(b) {
		t.Error("schemas with different column types should not be equal")
	}

	c := NewSchema(tripsSchema().Fields[:3])
	if a.Equals(c) {
		t.Error("schemas with different column counts should not be equal")
	}
}

func TestDescriptorJSONRoundTrip(t *testing.T) {
	desc := &TableDescriptor{
		Name:               "trips",
		TableUUID:          "0195c2a1-aaaa-bbbb-cccc-1234567890ab",
		RecordKeyField:     "uuid",
		PartitionPathField: "partitionpath",
		PrecombineField:    "ts",
		Schema:             tripsSchema(),
		CreatedMs:          1722168668123,
	}

	data, err := desc.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	parsed, err := ParseTableDescriptor(data)
	if err != nil {
		t.Fatalf("ParseTableDescriptor failed: %v", err)
	}
	if parsed.Name != desc.Name || parsed.RecordKeyField != desc.RecordKeyField ||
		parsed.PrecombineField != desc.PrecombineField || parsed.CreatedMs != desc.CreatedMs {
		t.Errorf("parsed = %+v, want %+v", parsed, desc)
	}
	if !parsed.Schema.Equals(desc.Schema) {
		t.Error("schema did not survive the round trip")
	}
}

func TestDescriptorValidate(t *testing.T) {
	valid := func() *TableDescriptor {
		return &TableDescriptor{
			Name:               "trips",
			RecordKeyField:     "uuid",
			PartitionPathField: "partitionpath",
			PrecombineField:    "ts",
			Schema:             tripsSchema(),
		}
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("valid descriptor rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*TableDescriptor)
		wantErr string
	}{
		{"missing name", func(d *TableDescriptor) { d.Name = "" }, "missing name"},
		{"missing schema", func(d *TableDescriptor) { d.Schema = nil }, "missing schema"},
		{"missing record key", func(d *TableDescriptor) { d.RecordKeyField = "" }, "record key"},
		{"key not in schema", func(d *TableDescriptor) { d.RecordKeyField = "rider" }, "not in schema"},
		{"missing precombine", func(d *TableDescriptor) { d.PrecombineField = "" }, "precombine"},
	}
	for _, tt := range tests {
		d := valid()
		tt.mutate(d)
		err := d.Validate()
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: error = %v, want containing %q", tt.name, err, tt.wantErr)
		}
	}
}

func TestArrowSchemaRoundTrip(t *testing.T) {
	s := tripsSchema()
	as := s.ToArrowSchema()

	if as.NumFields() != s.NumFields() {
		t.Fatalf("NumFields = %d, want %d", as.NumFields(), s.NumFields())
	}
	if as.Field(2).Type.ID() != arrow.INT64 {
		t.Errorf("ts arrow type = %s, want int64", as.Field(2).Type)
	}

	back, err := FromArrowSchema(as)
	if err != nil {
		t.Fatalf("FromArrowSchema failed: %v", err)
	}
	if !back.Equals(s) {
		t.Errorf("round trip schema = %+v", back)
	}
}

func TestFromArrowSchemaRejectsUnsupported(t *testing.T) {
	as := arrow.NewSchema([]arrow.Field{
		{Name: "blob", Type: arrow.ListOf(arrow.PrimitiveTypes.Int64)},
	}, nil)
	if _, err := FromArrowSchema(as); err == nil {
		t.Error("FromArrowSchema should reject nested types")
	}
}
