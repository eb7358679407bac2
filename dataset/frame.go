package dataset

import (
	stdio "io"
	"sort"

	"github.com/olekukonko/tablewriter"
)

// DataFrame is an ordered, in-memory read result: column names plus rows.
// Transformations return new frames sharing row data.
type DataFrame struct {
	columns []string
	rows    []Row
}

// NewDataFrame creates a frame over the given columns and rows.
func NewDataFrame(columns []string, rows []Row) *DataFrame {
	return &DataFrame{columns: columns, rows: rows}
}

// Columns returns the column names in frame order.
func (f *DataFrame) Columns() []string {
	return f.columns
}

// Rows returns the underlying rows.
func (f *DataFrame) Rows() []Row {
	return f.rows
}

// Count returns the number of rows.
func (f *DataFrame) Count() int64 {
	return int64(len(f.rows))
}

// Limit returns a frame with at most n rows.
func (f *DataFrame) Limit(n int) *DataFrame {
	if n < 0 || n >= len(f.rows) {
		return f
	}
	return &DataFrame{columns: f.columns, rows: f.rows[:n]}
}

// Sort returns a frame sorted ascending by the given columns, in order of
// significance. Null values sort first.
func (f *DataFrame) Sort(columns ...string) *DataFrame {
	return f.sortBy(columns, true)
}

// OrderBy returns a frame sorted by one column.
func (f *DataFrame) OrderBy(column string, ascending bool) *DataFrame {
	return f.sortBy([]string{column}, ascending)
}

func (f *DataFrame) sortBy(columns []string, ascending bool) *DataFrame {
	rows := make([]Row, len(f.rows))
	copy(rows, f.rows)

	sort.SliceStable(rows, func(i, j int) bool {
		for _, col := range columns {
			a, b := rows[i][col], rows[j][col]
			if less, eq := lessValue(a, b); !eq {
				if ascending {
					return less
				}
				return !less
			}
		}
		return false
	})
	return &DataFrame{columns: f.columns, rows: rows}
}

// lessValue orders two row values, nulls first.
func lessValue(a, b any) (less, eq bool) {
	if a == nil && b == nil {
		return false, true
	}
	if a == nil {
		return true, false
	}
	if b == nil {
		return false, false
	}
	if Compare(a, b, OpEq) {
		return false, true
	}
	return Compare(a, b, OpLt), false
}

// Select returns a frame restricted to the given columns.
func (f *DataFrame) Select(columns ...string) *DataFrame {
	return &DataFrame{columns: columns, rows: f.rows}
}

// Show renders the frame as a bordered table.
func (f *DataFrame) Show(w stdio.Writer) {
	tb := tablewriter.NewWriter(w)
	tb.SetHeader(f.columns)

	values := make([][]string, len(f.rows))
	for i, row := range f.rows {
		cells := make([]string, len(f.columns))
		for c, col := range f.columns {
			if v, ok := row[col]; ok && v != nil {
				cells[c] = FormatValue(v)
			} else {
				cells[c] = "null"
			}
		}
		values[i] = cells
	}
	tb.AppendBulk(values)
	tb.Render()
}
