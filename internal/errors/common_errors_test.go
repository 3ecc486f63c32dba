package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "schema error type", errType: ErrTypeSchema, expected: "SCHEMA"},
		{name: "parsing error type", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "storage error type", errType: ErrTypeStorage, expected: "STORAGE"},
		{name: "validation error type", errType: ErrTypeValidation, expected: "VALIDATION"},
		{name: "not found error type", errType: ErrTypeNotFound, expected: "NOT_FOUND"},
		{name: "config error type", errType: ErrTypeConfig, expected: "CONFIG"},
		{name: "render error type", errType: ErrTypeRender, expected: "RENDER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    &AppError{Type: ErrTypeStorage, Message: "write failed"},
			wantMessage: "[STORAGE] write failed",
		},
		{
			name:        "error with cause",
			appError:    &AppError{Type: ErrTypeParsing, Message: "bad value", Cause: fmt.Errorf("strconv: invalid syntax")},
			wantMessage: "[PARSING] bad value: strconv: invalid syntax",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestNewSchemaError(t *testing.T) {
	err := NewSchemaError("confirmed.csv", "Country/Region")

	assert.Equal(t, ErrTypeSchema, err.Type)
	assert.Contains(t, err.Error(), `missing column "Country/Region"`)
	assert.Equal(t, "confirmed.csv", err.Context["source"])
	assert.Equal(t, "Country/Region", err.Context["column"])
}

func TestAppError_WrappingAndMatching(t *testing.T) {
	base := NewSchemaError("countries.csv", "Continent_Name")
	wrapped := fmt.Errorf("load continents: %w", base)

	assert.True(t, IsSchemaError(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.True(t, errors.Is(wrapped, &AppError{Type: ErrTypeSchema}))
	assert.False(t, errors.Is(wrapped, &AppError{Type: ErrTypeStorage}))

	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "Continent_Name", appErr.Context["column"])
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("cannot write table", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, ErrTypeStorage, TypeOf(err))
	assert.Equal(t, ErrorType(""), TypeOf(cause))
}

func TestWithContext_InitialisesMap(t *testing.T) {
	err := &AppError{Type: ErrTypeConfig, Message: "bad"}
	err.WithContext("field", "pipeline.threshold")

	require.NotNil(t, err.Context)
	assert.Equal(t, "pipeline.threshold", err.Context["field"])
}
