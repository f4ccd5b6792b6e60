package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Pipeline error taxonomy. Callers branch with errors.Is; the kinds map
// one-to-one onto the caller-facing failure classes.
var (
	// ErrUnsupportedFormat: the declared (or sniffed) media type is not
	// one we can normalize. Not retryable.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrCorruptDocument: decoding failed (malformed PDF, truncated
	// image data). Not retryable.
	ErrCorruptDocument = errors.New("corrupt document")

	// ErrModelUnavailable: every candidate model identifier was
	// exhausted without a success. Retrying the whole document later is
	// safe.
	ErrModelUnavailable = errors.New("no extraction model available")

	// ErrTransientFailure: retries against the model or OCR service
	// were exhausted on transient errors. Retryable.
	ErrTransientFailure = errors.New("transient failure")

	// ErrExtractionFailed: the model responded but no usable title or
	// start date could be derived. A data problem, not a system fault.
	ErrExtractionFailed = errors.New("could not extract travel information")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// UnsupportedFormatError builds an ErrUnsupportedFormat for a declared
// media type.
func UnsupportedFormatError(mediaType string) error {
	return fmt.Errorf("media type %q: %w", mediaType, ErrUnsupportedFormat)
}

// CorruptDocumentError wraps a decode failure as ErrCorruptDocument.
func CorruptDocumentError(cause error) error {
	return fmt.Errorf("%w: %v", ErrCorruptDocument, cause)
}
