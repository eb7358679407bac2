// Package meta holds the table metadata model: column types, the table
// schema, and the descriptor persisted alongside the data.
package meta

import (
	"fmt"
	"strings"
)

// TypeID identifies a column type.
type TypeID int

const (
	TypeBoolean TypeID = iota
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeDate
	TypeTimestamp
	TypeString
	TypeBinary
)

// Type represents a column data type.
type Type interface {
	// TypeID returns the type identifier.
	TypeID() TypeID
	// String returns the string representation of the type.
	String() string
	// Equals checks if two types are equal.
	Equals(other Type) bool
}

// PrimitiveType represents a primitive column type.
type PrimitiveType struct {
	id TypeID
}

func (t PrimitiveType) TypeID() TypeID { return t.id }

func (t PrimitiveType) Equals(other Type) bool {
	if o, ok := other.(PrimitiveType); ok {
		return t.id == o.id
	}
	return false
}

func (t PrimitiveType) String() string {
	switch t.id {
	case TypeBoolean:
		return "boolean"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeDate:
		return "date"
	case TypeTimestamp:
		return "timestamp"
	case TypeString:
		return "string"
	case TypeBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Primitive type constants
var (
	BooleanType   = PrimitiveType{TypeBoolean}
	IntType       = PrimitiveType{TypeInt}
	LongType      = PrimitiveType{TypeLong}
	FloatType     = PrimitiveType{TypeFloat}
	DoubleType    = PrimitiveType{TypeDouble}
	DateType      = PrimitiveType{TypeDate}
	TimestampType = PrimitiveType{TypeTimestamp}
	StringType    = PrimitiveType{TypeString}
	BinaryType    = PrimitiveType{TypeBinary}
)

// ParseType parses a type string into a Type.
func ParseType(s string) (Type, error) {
	switch strings.TrimSpace(s) {
	case "boolean":
		return BooleanType, nil
	case "int":
		return IntType, nil
	case "long":
		return LongType, nil
	case "float":
		return FloatType, nil
	case "double":
		return DoubleType, nil
	case "date":
		return DateType, nil
	case "timestamp":
		return TimestampType, nil
	case "string":
		return StringType, nil
	case "binary":
		return BinaryType, nil
	}
	return nil, fmt.Errorf("unknown type: %s", s)
}
