package golakehouse

import (
	"errors"

	"github.com/go-lakehouse/go-lakehouse/dataset"
	"github.com/go-lakehouse/go-lakehouse/timeline"
)

// Common errors for engine operations. Storage-level sentinels are
// re-exported so callers can match them without importing the
// subpackages.
var (
	// Table errors
	ErrTableNotFound = dataset.ErrTableNotFound

	// Option errors
	ErrUnknownOption    = dataset.ErrUnknownOption
	ErrUnknownOperation = dataset.ErrUnknownOperation

	// Timeline errors
	ErrInstantNotFound     = timeline.ErrInstantNotFound
	ErrNoCompletedInstants = timeline.ErrNoCompletedInstants

	// View and extension errors
	ErrViewNotFound           = errors.New("view not found")
	ErrExtensionNotRegistered = errors.New("sql extension not registered")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError reports an option that conflicts with the table it
// targets.
type ValidationError = dataset.ValidationError
