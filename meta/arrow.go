package meta

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// ToArrowSchema converts a table schema to an Arrow schema.
func (s *Schema) ToArrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = arrow.Field{
			Name:     f.Name,
			Type:     typeToArrow(f.Type),
			Nullable: f.Nullable,
		}
	}
	return arrow.NewSchema(fields, nil)
}

// typeToArrow converts a meta.Type to an arrow.DataType.
func typeToArrow(t Type) arrow.DataType {
	switch t.TypeID() {
	case TypeBoolean:
		return arrow.FixedWidthTypes.Boolean
	case TypeInt:
		return arrow.PrimitiveTypes.Int32
	case TypeLong:
		return arrow.PrimitiveTypes.Int64
	case TypeFloat:
		return arrow.PrimitiveTypes.Float32
	case TypeDouble:
		return arrow.PrimitiveTypes.Float64
	case TypeDate:
		return arrow.FixedWidthTypes.Date32
	case TypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_us
	case TypeBinary:
		return arrow.BinaryTypes.Binary
	default:
		return arrow.BinaryTypes.String
	}
}

// FromArrowSchema derives a table schema from an Arrow schema.
func FromArrowSchema(as *arrow.Schema) (*Schema, error) {
	fields := make([]Field, len(as.Fields()))
	for i, f := range as.Fields() {
		t, err := typeFromArrow(f.Type)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", f.Name, err)
		}
		fields[i] = Field{
			Name:     f.Name,
			Type:     t,
			Nullable: f.Nullable,
		}
	}
	return NewSchema(fields), nil
}

// typeFromArrow converts an arrow.DataType to a meta.Type.
func typeFromArrow(t arrow.DataType) (Type, error) {
	switch t.ID() {
	case arrow.BOOL:
		return BooleanType, nil
	case arrow.INT32:
		return IntType, nil
	case arrow.INT64:
		return LongType, nil
	case arrow.FLOAT32:
		return FloatType, nil
	case arrow.FLOAT64:
		return DoubleType, nil
	case arrow.DATE32:
		return DateType, nil
	case arrow.TIMESTAMP:
		return TimestampType, nil
	case arrow.STRING:
		return StringType, nil
	case arrow.BINARY:
		return BinaryType, nil
	default:
		return nil, fmt.Errorf("unsupported arrow type: %s", t.Name())
	}
}
