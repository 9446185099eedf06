package ingest

import (
	"errors"
	"fmt"
)

// Loader errors
var (
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrEmptyDataset      = errors.New("dataset has no header row")
	ErrNoDataSheet       = errors.New("no sheet contains a records header")
)

// ParseError identifies the cell that could not be parsed.
// Row is the 1-based line or spreadsheet row number.
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d, column %s: invalid value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

// Unwrap returns the underlying parse error
func (e *ParseError) Unwrap() error {
	return e.Err
}
