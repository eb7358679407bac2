// Package query implements the declarative SELECT sublanguage evaluated
// over materialized views of read results.
package query

import (
	"fmt"

	"github.com/go-lakehouse/go-lakehouse/dataset"
)

// ConditionOp is a WHERE predicate operator.
type ConditionOp int

const (
	CondEq ConditionOp = iota
	CondNotEq
	CondLt
	CondLte
	CondGt
	CondGte
	CondIsNull
	CondIsNotNull
)

// String returns the SQL spelling of the operator.
func (op ConditionOp) String() string {
	switch op {
	case CondEq:
		return "="
	case CondNotEq:
		return "!="
	case CondLt:
		return "<"
	case CondLte:
		return "<="
	case CondGt:
		return ">"
	case CondGte:
		return ">="
	case CondIsNull:
		return "IS NULL"
	case CondIsNotNull:
		return "IS NOT NULL"
	default:
		return "UNKNOWN"
	}
}

// Condition is one predicate of a WHERE conjunction: a column compared to a
// literal, or a null check.
type Condition struct {
	Column string
	Op     ConditionOp
	Value  any
}

// String returns a string representation of the condition.
func (c Condition) String() string {
	switch c.Op {
	case CondIsNull, CondIsNotNull:
		return fmt.Sprintf("%s %s", c.Column, c.Op)
	default:
		return fmt.Sprintf("%s %s %v", c.Column, c.Op, c.Value)
	}
}

// Matches evaluates the condition against one row. Comparisons against a
// null column value are false.
func (c Condition) Matches(row dataset.Row) bool {
	v := row[c.Column]

	switch c.Op {
	case CondIsNull:
		return v == nil
	case CondIsNotNull:
		return v != nil
	case CondEq:
		return dataset.Compare(v, c.Value, dataset.OpEq)
	case CondNotEq:
		return dataset.Compare(v, c.Value, dataset.OpNotEq)
	case CondLt:
		return dataset.Compare(v, c.Value, dataset.OpLt)
	case CondLte:
		return dataset.Compare(v, c.Value, dataset.OpLte)
	case CondGt:
		return dataset.Compare(v, c.Value, dataset.OpGt)
	case CondGte:
		return dataset.Compare(v, c.Value, dataset.OpGte)
	default:
		return false
	}
}
