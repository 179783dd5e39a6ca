package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication / authorization errors
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed  = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrBadRequest        = errors.New("bad request")

	// Upstream errors
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamRejected    = errors.New("upstream rejected request")
)

// Submission errors
var (
	ErrAlreadySubmitted   = errors.New("survey already submitted")
	ErrSurveyNotAccepting = errors.New("survey is not accepting responses")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// Is returns whether err matches target or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}

// FieldError is a single invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is a local, pre-submission validation failure. It never
// involves a network round-trip.
type ValidationError struct {
	Message string
	Fields  []FieldError
	// MissingQuestions holds the titles of required questions left unanswered
	MissingQuestions []string
}

// Error implements error interface
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.MissingQuestions) > 0 {
		return "please answer all required questions: " + strings.Join(e.MissingQuestions, ", ")
	}
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s", e.Fields[0].Field, e.Fields[0].Message)
	}
	return ErrValidationFailed.Error()
}

// Unwrap implements errors.Unwrap interface
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// AddField appends a field error
func (e *ValidationError) AddField(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// HasErrors reports whether anything was recorded
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0 || len(e.MissingQuestions) > 0
}

// UpstreamError is a non-2xx answer from the upstream backend
type UpstreamError struct {
	Status int
	// Message is the upstream body's message field, verbatim
	Message string
	Err     error
}

// Error implements error interface
func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// Unwrap implements errors.Unwrap interface
func (e *UpstreamError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUpstreamRejected
}

// UserMessage returns the message to show an end user: the server's message
// verbatim when one exists, otherwise the fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}

	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) && upstreamErr.Message != "" {
		return upstreamErr.Message
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}

	var customErr *CustomError
	if errors.As(err, &customErr) {
		if customErr.StatusMsg != "" {
			return customErr.StatusMsg
		}
		if customErr.Message != "" {
			return customErr.Message
		}
	}

	return fallback
}
