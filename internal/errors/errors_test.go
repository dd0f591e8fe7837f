package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapWithContext(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		operation string
		expectNil bool
		contains  string
	}{
		{
			name:      "wraps error with operation",
			err:       ErrTest,
			operation: "fetch page",
			contains:  "failed to fetch page",
		},
		{
			name:      "nil error returns nil",
			err:       nil,
			operation: "anything",
			expectNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WrapWithContext(tt.err, tt.operation)

			if tt.expectNil {
				assert.NoError(t, result)
				return
			}

			require.Error(t, result)
			assert.Contains(t, result.Error(), tt.contains)
			assert.True(t, errors.Is(result, tt.err), "wrapped error must unwrap to original")
		})
	}
}

func TestFormatError(t *testing.T) {
	err := FormatError("association", "owner-only", "owner#repo#number")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "association")
	assert.Contains(t, err.Error(), "owner#repo#number")
}

func TestEmptyFieldError(t *testing.T) {
	err := EmptyFieldError("query_id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query_id")
}

func TestValidationError(t *testing.T) {
	err := ValidationError("repository", "must be in owner/name format")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repository")
	assert.Contains(t, err.Error(), "owner/name")
}
