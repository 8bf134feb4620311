package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind is matched by every *UnknownKindError.
	ErrUnknownKind = errors.New("unknown block kind")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("invalid block specification")
	// ErrNotFound is returned by stores when a row does not exist.
	ErrNotFound = errors.New("not found")
)

// UnknownKindError is returned when a template is requested for a kind that
// was never registered.
type UnknownKindError struct {
	Kind BlockKind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown block kind %q", e.Kind)
}

func (e *UnknownKindError) Is(target error) bool { return target == ErrUnknownKind }

// ValidationError rejects a malformed specification before any node is built.
type ValidationError struct {
	BlockID string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.BlockID != "" {
		return fmt.Sprintf("invalid block %s: %s: %s", e.BlockID, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
