package ingest

import (
	"errors"
	"fmt"
)

var (
	ErrFormat         = errors.New("invalid file format")
	ErrClassification = errors.New("unable to determine content type")
	ErrRowValidation  = errors.New("row validation failed")
	ErrFileAccess     = errors.New("file not accessible")
)

// FormatError reports unreadable or structurally invalid input.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid format: %s: %v", e.Reason, e.Err)
	}
	return "invalid format: " + e.Reason
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

func (e *FormatError) Unwrap() error { return e.Err }

// NewFormatError builds a FormatError with an optional cause.
func NewFormatError(reason string, err error) *FormatError {
	return &FormatError{Reason: reason, Err: err}
}

// ClassificationError is returned when neither filename nor headers match a content type.
type ClassificationError struct {
	Filename string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("unable to determine content type for %q", e.Filename)
}

func (e *ClassificationError) Is(target error) bool { return target == ErrClassification }

// RowValidationError names the row and field that failed a required check.
type RowValidationError struct {
	ContentType ContentType
	Sheet       string
	Row         int // 1-based row as shown in a spreadsheet
	Field       string
}

func (e *RowValidationError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("%s: sheet %q row %d: missing required field %q", e.ContentType, e.Sheet, e.Row, e.Field)
	}
	return fmt.Sprintf("%s: row %d: missing required field %q", e.ContentType, e.Row, e.Field)
}

func (e *RowValidationError) Is(target error) bool { return target == ErrRowValidation }

// FileAccessError wraps failures to read the input from disk or storage.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot access %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Is(target error) bool { return target == ErrFileAccess }

func (e *FileAccessError) Unwrap() error { return e.Err }
