package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrTypeDataSource           ErrorType = "data_source"
	ErrTypeInvalidSelection     ErrorType = "invalid_selection"
	ErrTypeMissingJoinCondition ErrorType = "missing_join_condition"
	ErrTypeEmptySelection       ErrorType = "empty_selection"
	ErrTypeUnknownIdentifier    ErrorType = "unknown_identifier"
	ErrTypeNotImplemented       ErrorType = "not_implemented"
	ErrTypeNotFound             ErrorType = "not_found"
	ErrTypeValidation           ErrorType = "validation"
	ErrTypeConfig               ErrorType = "config"
	ErrTypeFileSystem           ErrorType = "filesystem"
	ErrTypeInternal             ErrorType = "internal"
)

// Error represents a structured error with type and optional suggestions
type Error struct {
	Type        ErrorType
	Message     string
	Cause       error
	Suggestions []string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithSuggestion adds a suggestion for resolving the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// New creates a new structured error
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new structured error with formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with formatted message
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Type == errType
	}

	return false
}

// GetType returns the error type if it's a structured error
func GetType(err error) ErrorType {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Type
	}

	return ErrTypeInternal
}

// GetSuggestions returns the suggestions attached to a structured error, if any
func GetSuggestions(err error) []string {
	var structErr *Error
	if errors.As(err, &structErr) {
		return structErr.Suggestions
	}

	return nil
}

// NewConfigError creates a configuration error with suggestions
func NewConfigError(message, field string) *Error {
	err := New(ErrTypeConfig, message)
	if field != "" {
		err.Message = fmt.Sprintf("%s (field: %s)", message, field)
	}

	return err.
		WithSuggestion("Check your configuration file syntax").
		WithSuggestion("Run with --help to see valid configuration options")
}

// NewDataSourceError wraps a driver failure. The driver message is kept as the cause
// so it reaches the user unmodified.
func NewDataSourceError(err error, message string) *Error {
	return Wrap(err, ErrTypeDataSource, message)
}

// NewInvalidSelectionError reports a field toggled on a table that is not selected
func NewInvalidSelectionError(table, field string) *Error {
	return Newf(ErrTypeInvalidSelection, "cannot select field %s.%s: table %s is not selected", table, field, table).
		WithSuggestion(fmt.Sprintf("Select table %s before choosing its fields", table))
}

// NewEmptySelectionError reports an included table with no selected fields
func NewEmptySelectionError(table string) *Error {
	return Newf(ErrTypeEmptySelection, "table %s is selected but has no selected fields", table).
		WithSuggestion(fmt.Sprintf("Select at least one field of %s or deselect the table", table))
}

// NewMissingJoinConditionError reports a join that cannot be rendered yet
func NewMissingJoinConditionError(table, missing string) *Error {
	return Newf(ErrTypeMissingJoinCondition, "join to %s is missing its %s", table, missing).
		WithSuggestion(fmt.Sprintf("Set the join type and match condition for %s", table))
}

// NewNotImplementedError reports an operation that exists in the menu but is unavailable
func NewNotImplementedError(operation string) *Error {
	return Newf(ErrTypeNotImplemented, "%s is not available yet", operation)
}
