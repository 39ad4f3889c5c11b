package common

import (
	"errors"
	"fmt"
)

// Conversion error kinds. Every failure surfaced by the conversion pipeline
// matches exactly one of these through errors.Is.
var (
	ErrInputRejected         = errors.New("input rejected")
	ErrDecodeFailed          = errors.New("decode failed")
	ErrEnvelopeUnsatisfiable = errors.New("envelope unsatisfiable")
	ErrUnsupportedFormat     = errors.New("unsupported format")
)

// Lookup and session errors
var (
	ErrNoFilesProvided  = errors.New("no files provided")
	ErrExamNotFound     = errors.New("exam not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrResultNotFound   = errors.New("result not found")
)

// ConversionError represents a failed conversion step
type ConversionError struct {
	Kind      error
	Operation string
	FilePath  string
	Err       error
}

func (e *ConversionError) Error() string {
	msg := e.Kind.Error()
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.FilePath != "" {
		return fmt.Sprintf("%s failed for file %s: %s", e.Operation, e.FilePath, msg)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, msg)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the error kind of e
func (e *ConversionError) Is(target error) bool {
	return target == e.Kind
}

// NewConversionError creates a new conversion error of the given kind
func NewConversionError(kind error, operation, filePath string, err error) *ConversionError {
	return &ConversionError{
		Kind:      kind,
		Operation: operation,
		FilePath:  filePath,
		Err:       err,
	}
}

// Rejectf is shorthand for an ErrInputRejected conversion error with a formatted cause
func Rejectf(operation, format string, args ...any) *ConversionError {
	return NewConversionError(ErrInputRejected, operation, "", fmt.Errorf(format, args...))
}

// UserMessage returns a short message suitable for showing to the user
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInputRejected):
		return "This file can't be used here. Check that it is a supported image or PDF."
	case errors.Is(err, ErrDecodeFailed):
		return "The file could not be read. It may be damaged or not match its file type."
	case errors.Is(err, ErrEnvelopeUnsatisfiable):
		return "Could not produce a file within the required size limits."
	case errors.Is(err, ErrUnsupportedFormat):
		return "That output format is not supported."
	case errors.Is(err, ErrNoFilesProvided):
		return "Select at least one file."
	case errors.Is(err, ErrExamNotFound), errors.Is(err, ErrDocumentNotFound):
		return "The selected exam document could not be found."
	default:
		return "Something went wrong while processing the file."
	}
}
