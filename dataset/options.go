package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Write option keys.
const (
	OptTableName          = "table.name"
	OptRecordKeyField     = "write.recordkey.field"
	OptPartitionPathField = "write.partitionpath.field"
	OptOperation          = "write.operation"
	OptPrecombineField    = "write.precombine.field"
	OptParallelism        = "write.parallelism"
)

// Read option keys.
const (
	OptQueryType    = "query.type"
	OptAsOfInstant  = "read.as.of.instant"
	OptBeginInstant = "read.begin.instanttime"
	OptEndInstant   = "read.end.instanttime"
)

// Write operations.
const (
	OperationUpsert          = "upsert"
	OperationInsert          = "insert"
	OperationDelete          = "delete"
	OperationInsertOverwrite = "insert_overwrite"
)

// Query types.
const (
	QueryTypeSnapshot    = "snapshot"
	QueryTypeIncremental = "incremental"
)

// BeginInstantEarliest is the begin cursor that reads from the start of the
// timeline.
const BeginInstantEarliest = "000"

// DefaultParallelism bounds concurrent partition writes when the option is
// absent.
const DefaultParallelism = 4

var (
	// ErrUnknownOption indicates an option key the entry point does not
	// recognize.
	ErrUnknownOption = errors.New("unknown option")

	// ErrUnknownOperation indicates an unrecognized write operation or
	// query type value.
	ErrUnknownOperation = errors.New("unknown operation")
)

// ValidationError indicates an option map that cannot drive a write or
// read.
type ValidationError struct {
	Option string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid options: %s: %s", e.Option, e.Reason)
}

// WriteOptions is a parsed write option map.
type WriteOptions struct {
	TableName          string
	RecordKeyField     string
	PartitionPathField string
	Operation          string
	PrecombineField    string
	Parallelism        int
}

// ParseWriteOptions parses and validates a write option map.
func ParseWriteOptions(options map[string]string) (*WriteOptions, error) {
	opts := &WriteOptions{
		Operation:   OperationUpsert,
		Parallelism: DefaultParallelism,
	}

	for key, value := range options {
		switch key {
		case OptTableName:
			opts.TableName = value
		case OptRecordKeyField:
			opts.RecordKeyField = value
		case OptPartitionPathField:
			opts.PartitionPathField = value
		case OptOperation:
			opts.Operation = value
		case OptPrecombineField:
			opts.PrecombineField = value
		case OptParallelism:
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 1 {
				return nil, &ValidationError{Option: key, Reason: fmt.Sprintf("not a positive integer: %q", value)}
			}
			opts.Parallelism = n
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownOption, key)
		}
	}

	for _, req := range []struct {
		key   string
		value string
	}{
		{OptTableName, opts.TableName},
		{OptRecordKeyField, opts.RecordKeyField},
		{OptPartitionPathField, opts.PartitionPathField},
		{OptPrecombineField, opts.PrecombineField},
	} {
		if req.value == "" {
			return nil, &ValidationError{Option: req.key, Reason: "required"}
		}
	}

	switch opts.Operation {
	case OperationUpsert, OperationInsert, OperationDelete, OperationInsertOverwrite:
	default:
		return nil, fmt.Errorf("%w: %s=%s", ErrUnknownOperation, OptOperation, opts.Operation)
	}

	return opts, nil
}

// ReadOptions is a parsed read option map.
type ReadOptions struct {
	QueryType    string
	AsOfInstant  string
	BeginInstant string
	EndInstant   string
}

// ParseReadOptions parses and validates a read option map.
func ParseReadOptions(options map[string]string) (*ReadOptions, error) {
	opts := &ReadOptions{
		QueryType: QueryTypeSnapshot,
	}

	for key, value := range options {
		switch key {
		case OptQueryType:
			opts.QueryType = value
		case OptAsOfInstant:
			opts.AsOfInstant = value
		case OptBeginInstant:
			opts.BeginInstant = value
		case OptEndInstant:
			opts.EndInstant = value
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownOption, key)
		}
	}

	switch opts.QueryType {
	case QueryTypeSnapshot:
		if opts.BeginInstant != "" || opts.EndInstant != "" {
			return nil, &ValidationError{Option: OptBeginInstant, Reason: "instant range applies to incremental queries only"}
		}
	case QueryTypeIncremental:
		if opts.BeginInstant == "" {
			return nil, &ValidationError{Option: OptBeginInstant, Reason: "required for incremental queries"}
		}
		if opts.AsOfInstant != "" {
			return nil, &ValidationError{Option: OptAsOfInstant, Reason: "as-of applies to snapshot queries only"}
		}
	default:
		return nil, fmt.Errorf("%w: %s=%s", ErrUnknownOperation, OptQueryType, opts.QueryType)
	}

	return opts, nil
}
