package errors

import "fmt"

// Category represents the kind of error.
type Category string

const (
	CategoryBinding   Category = "binding"
	CategoryReconcile Category = "reconcile"
	CategoryLifecycle Category = "lifecycle"
	CategoryComponent Category = "component"
	CategoryConfig    Category = "config"
	CategoryProtocol  Category = "protocol"
	CategoryCLI       Category = "cli"
)

// RqError is a structured error with a code, explanation and fix hint.
type RqError struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the error kind.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation, usually naming the offending value.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL links to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *RqError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *RqError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an RqError with the same code.
func (e *RqError) Is(target error) bool {
	t, ok := target.(*RqError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithDetail sets the detailed explanation.
func (e *RqError) WithDetail(d string) *RqError {
	e.Detail = d
	return e
}

// WithDetailf sets a formatted detailed explanation.
func (e *RqError) WithDetailf(format string, args ...any) *RqError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion.
func (e *RqError) WithSuggestion(s string) *RqError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *RqError) Wrap(err error) *RqError {
	e.Wrapped = err
	return e
}

// New creates an RqError from a registered error code.
func New(code string) *RqError {
	template, ok := registry[code]
	if !ok {
		return &RqError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &RqError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Suggestion: template.Suggestion,
		DocURL:     template.DocURL,
	}
}

// Newf creates an RqError with a formatted message and no code.
func Newf(category Category, format string, args ...any) *RqError {
	return &RqError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an RqError. RqErrors pass through.
func FromError(err error, code string) *RqError {
	if err == nil {
		return nil
	}
	if re, ok := err.(*RqError); ok {
		return re
	}
	return New(code).Wrap(err)
}
