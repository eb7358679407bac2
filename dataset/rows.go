package dataset

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Row is one record keyed by column name. A missing or nil entry is a null
// column value.
type Row map[string]any

// CompareOp is a comparison operator over row values.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNotEq
	OpLt
	OpLte
	OpGt
	OpGte
)

// RowsFromRecord converts an Arrow record batch into rows.
func RowsFromRecord(rec arrow.Record) []Row {
	schema := rec.Schema()
	rows := make([]Row, rec.NumRows())
	for i := range rows {
		rows[i] = make(Row, schema.NumFields())
	}

	for c := 0; c < int(rec.NumCols()); c++ {
		name := schema.Field(c).Name
		col := rec.Column(c)
		for r := 0; r < int(rec.NumRows()); r++ {
			rows[r][name] = ValueAt(col, r)
		}
	}
	return rows
}

// RowsFromTable converts an Arrow table into rows.
func RowsFromTable(tbl arrow.Table) []Row {
	reader := array.NewTableReader(tbl, tbl.NumRows())
	defer reader.Release()

	var rows []Row
	for reader.Next() {
		rows = append(rows, RowsFromRecord(reader.Record())...)
	}
	return rows
}

// RecordFromRows builds an Arrow record batch from rows in the given schema.
// Columns absent from a row come out null.
func RecordFromRows(schema *arrow.Schema, rows []Row) (arrow.Record, error) {
	builder := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer builder.Release()

	for c, field := range schema.Fields() {
		fb := builder.Field(c)
		for _, row := range rows {
			if err := appendGoValue(fb, row[field.Name]); err != nil {
				return nil, fmt.Errorf("column %s: %w", field.Name, err)
			}
		}
	}
	return builder.NewRecord(), nil
}

// ValueAt gets the value at a specific index from an Arrow array.
func ValueAt(arr arrow.Array, idx int) any {
	if arr.IsNull(idx) {
		return nil
	}

	switch a := arr.(type) {
	case *array.Int32:
		return a.Value(idx)
	case *array.Int64:
		return a.Value(idx)
	case *array.Float32:
		return a.Value(idx)
	case *array.Float64:
		return a.Value(idx)
	case *array.String:
		return a.Value(idx)
	case *array.Boolean:
		return a.Value(idx)
	case *array.Binary:
		return a.Value(idx)
	case *array.Date32:
		return a.Value(idx)
	case *array.Timestamp:
		return a.Value(idx)
	default:
		return nil
	}
}

// appendGoValue appends a Go value to an Arrow builder, converting across
// the numeric types rows travel in.
func appendGoValue(builder array.Builder, v any) error {
	if v == nil {
		builder.AppendNull()
		return nil
	}

	switch b := builder.(type) {
	case *array.Int32Builder:
		b.Append(int32(ToInt64(v)))
	case *array.Int64Builder:
		b.Append(ToInt64(v))
	case *array.Float32Builder:
		b.Append(float32(ToFloat64(v)))
	case *array.Float64Builder:
		b.Append(ToFloat64(v))
	case *array.StringBuilder:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		b.Append(s)
	case *array.BooleanBuilder:
		bv, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
		b.Append(bv)
	case *array.BinaryBuilder:
		bs, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("expected []byte, got %T", v)
		}
		b.Append(bs)
	case *array.Date32Builder:
		d, ok := v.(arrow.Date32)
		if !ok {
			return fmt.Errorf("expected date, got %T", v)
		}
		b.Append(d)
	case *array.TimestampBuilder:
		ts, ok := v.(arrow.Timestamp)
		if !ok {
			return fmt.Errorf("expected timestamp, got %T", v)
		}
		b.Append(ts)
	default:
		return fmt.Errorf("unsupported builder type %T", builder)
	}
	return nil
}

// Compare compares two row values with the given operator. Comparisons
// against null are false.
func Compare(left, right any, op CompareOp) bool {
	if left == nil || right == nil {
		return false
	}

	switch l := left.(type) {
	case int, int32, int64:
		switch right.(type) {
		case float32, float64:
			return compareFloat64(ToFloat64(left), ToFloat64(right), op)
		}
		return compareInt64(ToInt64(l), ToInt64(right), op)
	case float32, float64:
		return compareFloat64(ToFloat64(l), ToFloat64(right), op)
	case string:
		r, ok := right.(string)
		if !ok {
			return false
		}
		return compareString(l, r, op)
	case bool:
		r, ok := right.(bool)
		if !ok {
			return false
		}
		return compareBool(l, r, op)
	case arrow.Date32:
		return compareInt64(ToInt64(l), ToInt64(right), op)
	case arrow.Timestamp:
		return compareInt64(ToInt64(l), ToInt64(right), op)
	default:
		return false
	}
}

// ToInt64 converts a row value to int64.
func ToInt64(v any) int64 {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case float32:
		return int64(x)
	case float64:
		return int64(x)
	case arrow.Date32:
		return int64(x)
	case arrow.Timestamp:
		return int64(x)
	default:
		return 0
	}
}

// ToFloat64 converts a row value to float64.
func ToFloat64(v any) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	case arrow.Date32:
		return float64(x)
	case arrow.Timestamp:
		return float64(x)
	default:
		return 0
	}
}

// FormatValue renders a row value for keys and display.
func FormatValue(v any) string {
	if v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float32:
		return fmt.Sprintf("%g", x)
	case float64:
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func compareInt64(l, r int64, op CompareOp) bool {
	switch op {
	case OpEq:
		return l == r
	case OpNotEq:
		return l != r
	case OpLt:
		return l < r
	case OpLte:
		return l <= r
	case OpGt:
		return l > r
	case OpGte:
		return l >= r
	default:
		return false
	}
}

func compareFloat64(l, r float64, op CompareOp) bool {
	switch op {
	case OpEq:
		return l == r
	case OpNotEq:
		return l != r
	case OpLt:
		return l < r
	case OpLte:
		return l <= r
	case OpGt:
		return l > r
	case OpGte:
		return l >= r
	default:
		return false
	}
}

func compareString(l, r string, op CompareOp) bool {
	switch op {
	case OpEq:
		return l == r
	case OpNotEq:
		return l != r
	case OpLt:
		return l < r
	case OpLte:
		return l <= r
	case OpGt:
		return l > r
	case OpGte:
		return l >= r
	default:
		return false
	}
}

func compareBool(l, r bool, op CompareOp) bool {
	switch op {
	case OpEq:
		return l == r
	case OpNotEq:
		return l != r
	default:
		return false
	}
}
