package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-lakehouse/go-lakehouse/dataset"
)

var (
	// ErrViewNotFound indicates the FROM clause names an unregistered
	// view.
	ErrViewNotFound = errors.New("view not found")

	// ErrColumnNotFound indicates a column the source view does not have.
	ErrColumnNotFound = errors.New("column not found")
)

// Planner parses and evaluates statements over registered views.
type Planner struct{}

// NewPlanner creates a query planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// Query evaluates one statement against the given views.
func (p *Planner) Query(ctx context.Context, views map[string]*dataset.DataFrame, q string) (*dataset.DataFrame, error) {
	query, err := Parse(q)
	if err != nil {
		return nil, err
	}

	source, ok := views[query.From]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, query.From)
	}

	if err := checkColumns(source, query); err != nil {
		return nil, err
	}

	rows := source.Rows()
	if len(query.Where) > 0 {
		rows = filterRows(rows, query.Where)
	}

	frame := dataset.NewDataFrame(source.Columns(), rows)
	if query.OrderBy != "" {
		frame = frame.OrderBy(resolveOrderColumn(query), query.OrderAsc)
	}

	frame = project(frame, query)
	if query.Distinct {
		frame = distinct(frame)
	}
	if query.Limit >= 0 {
		frame = frame.Limit(query.Limit)
	}
	return frame, nil
}

// checkColumns verifies every referenced column exists in the source view.
func checkColumns(source *dataset.DataFrame, query *Query) error {
	known := make(map[string]struct{}, len(source.Columns()))
	for _, col := range source.Columns() {
		known[col] = struct{}{}
	}

	check := func(col string) error {
		if _, ok := known[col]; !ok {
			return fmt.Errorf("%w: %s in view %s", ErrColumnNotFound, col, query.From)
		}
		return nil
	}

	for _, item := range query.Select {
		if err := check(item.Column); err != nil {
			return err
		}
	}
	for _, cond := range query.Where {
		if err := check(cond.Column); err != nil {
			return err
		}
	}
	if query.OrderBy != "" {
		return check(resolveOrderColumn(query))
	}
	return nil
}

// resolveOrderColumn maps an ORDER BY name through the select aliases to
// the source column it orders on. Ordering runs before projection, so an
// aliased name must be translated back.
func resolveOrderColumn(query *Query) string {
	for _, item := range query.Select {
		if item.Name() == query.OrderBy {
			return item.Column
		}
	}
	return query.OrderBy
}

// filterRows keeps the rows matching every condition of the conjunction.
func filterRows(rows []dataset.Row, conds []Condition) []dataset.Row {
	var out []dataset.Row
	for _, row := range rows {
		matched := true
		for _, cond := range conds {
			if !cond.Matches(row) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, row)
		}
	}
	return out
}

// project applies the select list, renaming aliased columns.
func project(frame *dataset.DataFrame, query *Query) *dataset.DataFrame {
	if len(query.Select) == 0 {
		return frame
	}

	columns := make([]string, len(query.Select))
	for i, item := range query.Select {
		columns[i] = item.Name()
	}

	rows := make([]dataset.Row, len(frame.Rows()))
	for i, row := range frame.Rows() {
		out := make(dataset.Row, len(query.Select))
		for _, item := range query.Select {
			out[item.Name()] = row[item.Column]
		}
		rows[i] = out
	}
	return dataset.NewDataFrame(columns, rows)
}

// distinct drops duplicate rows, keeping first occurrences in order.
func distinct(frame *dataset.DataFrame) *dataset.DataFrame {
	seen := make(map[string]struct{})
	var rows []dataset.Row
	for _, row := range frame.Rows() {
		key := ""
		for _, col := range frame.Columns() {
			key += dataset.FormatValue(row[col]) + "\x00"
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, row)
	}
	return dataset.NewDataFrame(frame.Columns(), rows)
}
