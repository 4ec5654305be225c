package schema

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ValidationIssue is one problem found in a document, located by a path such
// as "edges[2].target". Warnings never make a document invalid.
type ValidationIssue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Warning bool   `json:"warning,omitempty"`
}

func (i ValidationIssue) Error() string {
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// ValidationResult collects the issues of every validation stage in the
// order they were found.
type ValidationResult struct {
	Issues []ValidationIssue `json:"issues,omitempty"`
}

func (r *ValidationResult) AddError(path, code, message string) {
	r.Issues = append(r.Issues, ValidationIssue{Path: path, Code: code, Message: message})
}

func (r *ValidationResult) AddWarning(path, code, message string) {
	r.Issues = append(r.Issues, ValidationIssue{Path: path, Code: code, Message: message, Warning: true})
}

// Merge appends the issues of other. A nil other is ignored.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other != nil {
		r.Issues = append(r.Issues, other.Issues...)
	}
}

// Errors returns the issues that invalidate the document.
func (r *ValidationResult) Errors() []ValidationIssue {
	return r.filter(false)
}

// Warnings returns the issues that do not. Never nil.
func (r *ValidationResult) Warnings() []ValidationIssue {
	return r.filter(true)
}

func (r *ValidationResult) filter(warning bool) []ValidationIssue {
	out := []ValidationIssue{}
	for _, i := range r.Issues {
		if i.Warning == warning {
			out = append(out, i)
		}
	}
	return out
}

func (r *ValidationResult) Valid() bool {
	for _, i := range r.Issues {
		if !i.Warning {
			return false
		}
	}
	return true
}

// ToError folds the errors into a single VALIDATION_ERROR whose cause is a
// multierror of every issue. Nil when the document is valid.
func (r *ValidationResult) ToError() error {
	var merr *multierror.Error
	for _, i := range r.Errors() {
		merr = multierror.Append(merr, i)
	}
	if merr == nil {
		return nil
	}

	msg := merr.Errors[0].(ValidationIssue).Message
	if n := len(merr.Errors); n > 1 {
		msg = fmt.Sprintf("document has %d errors", n)
	}
	warnings := r.Warnings()
	return NewError(ErrCodeValidation, msg).
		WithCause(merr).
		WithDetails(map[string]any{
			"error_count":   len(merr.Errors),
			"warning_count": len(warnings),
			"errors":        r.Errors(),
			"warnings":      warnings,
		})
}
