package service

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by this package matches exactly one of them with errors.Is.
var (
	ErrValidation             = errors.New("validation failed")
	ErrCityStandardNotFound   = errors.New("city standard not found")
	ErrAmbiguousCityStandard  = errors.New("ambiguous city standard")
	ErrNoSalaryData           = errors.New("no salary data")
	ErrStorageOperationFailed = errors.New("storage operation failed")
)

// Error is a classified failure with a message meant for the person who triggered the run
type Error struct {
	Kind    error  // one of the Err* kinds above
	Message string // human-readable message
	Err     error  // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func storageError(message string, err error) *Error {
	return &Error{Kind: ErrStorageOperationFailed, Message: message, Err: err}
}

// Violation is one failed constraint on one input record
type Violation struct {
	Index   int    `json:"index"` // zero-based position in the submitted batch; -1 for the batch itself
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Index < 0 {
		return fmt.Sprintf("%s %s", v.Field, v.Message)
	}
	return fmt.Sprintf("record %d: %s %s", v.Index+1, v.Field, v.Message)
}

// ValidationError lists every violation found in a batch
type ValidationError struct {
	Dataset    string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s validation failed: %s", e.Dataset, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ErrorCode returns a stable machine-readable code for err
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrCityStandardNotFound):
		return "CITY_STANDARD_NOT_FOUND"
	case errors.Is(err, ErrAmbiguousCityStandard):
		return "AMBIGUOUS_CITY_STANDARD"
	case errors.Is(err, ErrNoSalaryData):
		return "NO_SALARY_DATA"
	case errors.Is(err, ErrStorageOperationFailed):
		return "STORAGE_OPERATION_FAILED"
	default:
		return "INTERNAL_ERROR"
	}
}
