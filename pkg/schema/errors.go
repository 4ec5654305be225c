package schema

import (
	"errors"
	"fmt"
)

// Error codes for structured error reporting.
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnknownAlgorithm = "UNKNOWN_ALGORITHM"
	ErrCodeUnknownStructure = "UNKNOWN_STRUCTURE"
	ErrCodeInvalidGraph     = "INVALID_GRAPH"
	ErrCodeExpression       = "EXPRESSION_ERROR"
	ErrCodeStore            = "STORE_ERROR"
	ErrCodeCancelled        = "CANCELLED"
)

// VizError is the structured error type returned by dsviz collaborators.
// Structural conditions inside a simulator (overflow, empty, not found) are
// never VizErrors: they are recorded as terminal steps.
type VizError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Structure string         `json:"structure,omitempty"`
	Cause     error          `json:"-"`
}

func (e *VizError) Error() string {
	if e.Structure != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Structure, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *VizError) Unwrap() error {
	return e.Cause
}

// NewError creates a new VizError.
func NewError(code, message string) *VizError {
	return &VizError{Code: code, Message: message}
}

// NewErrorf creates a new VizError with a formatted message.
func NewErrorf(code, format string, args ...any) *VizError {
	return &VizError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithStructure attaches the structure kind the error relates to.
func (e *VizError) WithStructure(kind StructureKind) *VizError {
	e.Structure = string(kind)
	return e
}

// WithCause attaches an underlying cause.
func (e *VizError) WithCause(err error) *VizError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *VizError) WithDetails(details map[string]any) *VizError {
	e.Details = details
	return e
}

// IsCode reports whether err is, or wraps, a VizError carrying the given code.
func IsCode(err error, code string) bool {
	var ve *VizError
	if errors.As(err, &ve) {
		return ve.Code == code
	}
	return false
}
