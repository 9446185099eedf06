package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

// Dataset errors
var (
	// ErrSchemaMismatch is returned when a required column is absent
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrScoreOutOfRange is returned when a score falls outside [0, 20]
	ErrScoreOutOfRange = errors.New("score out of range")

	// ErrMissingStudentID is returned when a record has an empty student identifier
	ErrMissingStudentID = errors.New("missing student identifier")
)

// SchemaError reports every required column missing from a dataset
type SchemaError struct {
	Missing []string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema mismatch: missing required columns: %s", strings.Join(e.Missing, ", "))
}

// Is allows errors.Is(err, ErrSchemaMismatch)
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

// RecordError identifies the record that failed validation
type RecordError struct {
	Index     int
	StudentID string
	Err       error
}

// Error implements the error interface
func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d (student %q): %v", e.Index, e.StudentID, e.Err)
}

// Unwrap returns the underlying validation error
func (e *RecordError) Unwrap() error {
	return e.Err
}
