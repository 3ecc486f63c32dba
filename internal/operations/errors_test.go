package operations_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidlab/internal/operations"
)

func TestOperationErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *operations.OperationError
		expected string
	}{
		{
			name:     "with step",
			err:      operations.NewValidationError("cases", "input missing"),
			expected: "[validation] cases: input missing",
		},
		{
			name:     "without step",
			err:      operations.NewFatalError("failed to order steps", nil),
			expected: "[fatal] failed to order steps",
		},
		{
			name:     "with cause",
			err:      operations.NewExecutionError("mortality", errors.New("disk full")),
			expected: "[execution] mortality: step execution failed: disk full",
		},
		{
			name:     "nil error",
			err:      nil,
			expected: "unknown operation error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestOperationErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := operations.NewExecutionError("cases", cause)

	assert.Same(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("run: %w", err)
	var opErr *operations.OperationError
	require.True(t, errors.As(wrapped, &opErr))
	assert.Equal(t, "cases", opErr.Step)
}

func TestNewDependencyError(t *testing.T) {
	err := operations.NewDependencyError("country_stats", "mortality", "mortality must complete first")

	assert.Equal(t, operations.ErrorTypeDependency, err.Type)
	assert.Equal(t, "country_stats", err.Step)
	assert.Equal(t, "mortality", err.Context["depends_on"])
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, operations.ErrorType(""), operations.GetErrorType(nil))
	assert.Equal(t, operations.ErrorTypeExecution, operations.GetErrorType(errors.New("plain")))
	assert.Equal(t, operations.ErrorTypeNotFound, operations.GetErrorType(operations.NewNotFoundError("nope")))
	assert.Equal(t, operations.ErrorTypeCancellation,
		operations.GetErrorType(fmt.Errorf("x: %w", operations.NewCancellationError("cases"))))
}

func TestWrapError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, operations.WrapError(nil, "cases", "msg"))
	})

	t.Run("plain error", func(t *testing.T) {
		err := operations.WrapError(context.DeadlineExceeded, "cases", "read failed")
		assert.Equal(t, operations.ErrorTypeExecution, err.Type)
		assert.Equal(t, "cases", err.Step)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	t.Run("operation error keeps type", func(t *testing.T) {
		inner := operations.NewValidationError("", "no tables")
		err := operations.WrapError(inner, "lake", "export")
		assert.Same(t, inner, err)
		assert.Equal(t, "lake", err.Step)
		assert.Equal(t, operations.ErrorTypeValidation, err.Type)
		assert.Contains(t, err.Message, "export: ")
	})
}
