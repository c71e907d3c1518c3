package samplerate

import (
	"errors"
	"fmt"
)

var (
	// ErrColumnOutOfRange is returned when a row has fewer fields than the
	// requested column.
	ErrColumnOutOfRange = errors.New("column out of range")

	// ErrNonIncreasing is returned when the mean interval between samples is
	// zero or negative.
	ErrNonIncreasing = errors.New("timestamps are not increasing")
)

// RowError reports which row of a batch failed. Row is 1-based and counts
// data rows only (the header is not included).
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
