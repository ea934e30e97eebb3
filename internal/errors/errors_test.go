package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ErrTypeValidation, "test error message")

	assert.Equal(t, ErrTypeValidation, err.Type)
	assert.Equal(t, "test error message", err.Message)
	assert.NoError(t, err.Cause)
}

func TestNewf(t *testing.T) {
	err := Newf(ErrTypeNotFound, "no join for table %s", "orders")

	assert.Equal(t, ErrTypeNotFound, err.Type)
	assert.Equal(t, "no join for table orders", err.Message)
}

func TestWrapKeepsDriverMessage(t *testing.T) {
	driverErr := errors.New("no such table: widgets")
	wrappedErr := Wrap(driverErr, ErrTypeDataSource, "statement failed")

	assert.Equal(t, ErrTypeDataSource, wrappedErr.Type)
	assert.Equal(t, driverErr, wrappedErr.Cause)
	assert.Contains(t, wrappedErr.Error(), "no such table: widgets")
	assert.ErrorIs(t, wrappedErr, driverErr)
}

func TestWrapf(t *testing.T) {
	originalErr := errors.New("unable to open database file")
	wrappedErr := Wrapf(originalErr, ErrTypeDataSource, "failed to open %s", "shop.db")

	assert.Equal(t, "failed to open shop.db", wrappedErr.Message)
	assert.Equal(t, originalErr, wrappedErr.Unwrap())
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name: "error without cause",
			err: &Error{
				Type:    ErrTypeValidation,
				Message: "invalid input",
			},
			expected: "validation: invalid input",
		},
		{
			name: "error with cause",
			err: &Error{
				Type:    ErrTypeDataSource,
				Message: "query failed",
				Cause:   errors.New("database is locked"),
			},
			expected: "data_source: query failed (caused by: database is locked)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestIsTypeThroughWrapping(t *testing.T) {
	structErr := NewEmptySelectionError("orders")
	wrapped := fmt.Errorf("compile: %w", structErr)

	assert.True(t, IsType(wrapped, ErrTypeEmptySelection))
	assert.False(t, IsType(wrapped, ErrTypeMissingJoinCondition))
	assert.False(t, IsType(errors.New("plain"), ErrTypeEmptySelection))
}

func TestGetType(t *testing.T) {
	assert.Equal(t, ErrTypeNotImplemented, GetType(NewNotImplementedError("Save As")))
	assert.Equal(t, ErrTypeInternal, GetType(errors.New("regular error")))
}

func TestGetSuggestions(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewInvalidSelectionError("orders", "total"))

	assert.Equal(t, []string{"Select table orders before choosing its fields"}, GetSuggestions(err))
	assert.Nil(t, GetSuggestions(errors.New("plain")))
}

func TestDomainConstructorsNameTheOffender(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		errType  ErrorType
		contains []string
	}{
		{"invalid selection", NewInvalidSelectionError("orders", "total"), ErrTypeInvalidSelection, []string{"orders.total"}},
		{"empty selection", NewEmptySelectionError("orders"), ErrTypeEmptySelection, []string{"orders"}},
		{"missing join", NewMissingJoinConditionError("orders", "join type"), ErrTypeMissingJoinCondition, []string{"orders", "join type"}},
		{"not implemented", NewNotImplementedError("New database"), ErrTypeNotImplemented, []string{"New database"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errType, tt.err.Type)
			for _, s := range tt.contains {
				assert.Contains(t, tt.err.Error(), s)
			}
		})
	}
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("invalid value", "log_level")

	assert.Equal(t, ErrTypeConfig, err.Type)
	assert.Contains(t, err.Message, "log_level")
	assert.Contains(t, err.Suggestions, "Check your configuration file syntax")
}

func TestNewConfigErrorEmptyField(t *testing.T) {
	err := NewConfigError("failed to load", "")

	assert.Equal(t, "failed to load", err.Message)
}
