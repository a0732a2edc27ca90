package textcompare

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrEmptyText is returned when a source or target text is empty
	ErrEmptyText = errors.New("empty text provided")

	// ErrNoModel is returned when comparing without a loaded language model
	ErrNoModel = errors.New("no language model loaded")

	// ErrNoRegistry is returned when a named model is requested but no
	// registry was configured
	ErrNoRegistry = errors.New("no model registry configured")

	// ErrDimensionMismatch is returned when two embeddings cannot be scored
	// because their dimensions differ
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidConfig is returned when comparer options are invalid
	ErrInvalidConfig = errors.New("invalid configuration")
)

// CompareError wraps errors with operation context
type CompareError struct {
	Op  string // Operation name
	Err error  // Underlying error
}

// Error implements the error interface
func (e *CompareError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("textcompare: %v", e.Err)
	}
	return fmt.Sprintf("textcompare: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *CompareError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target
func (e *CompareError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// wrapError wraps an error with operation context
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &CompareError{Op: op, Err: err}
}
