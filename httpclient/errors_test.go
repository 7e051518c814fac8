package httpclient

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTypeFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      ClientError
		contains []string
	}{
		{
			name:     "encoding conflict",
			err:      NewEncodingConflictError("got values for both fields and body"),
			contains: []string{"encoding conflict", "fields and body"},
		},
		{
			name:     "retry exhausted",
			err:      NewRetryExhaustedError("http://x.test/a", 4),
			contains: []string{"retry exhausted", "http://x.test/a", "4"},
		},
		{
			name:     "transport failure without cause",
			err:      NewTransportError("dispatch failed", nil),
			contains: []string{"transport failure", "dispatch failed"},
		},
		{
			name:     "transport failure with cause",
			err:      NewTransportError("dispatch failed", errors.New("connection reset")),
			contains: []string{"transport failure", "dispatch failed", "connection reset"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, expected := range tt.contains {
				assert.Contains(t, msg, expected)
			}
		})
	}
}

func TestErrorTypeIdentification(t *testing.T) {
	assert.Equal(t, EncodingConflict, NewEncodingConflictError("x").Type())
	assert.Equal(t, RetryExhausted, NewRetryExhaustedError("u", 1).Type())
	assert.Equal(t, TransportFailure, NewTransportError("x", nil).Type())
}

func TestTransportErrorUnwrap(t *testing.T) {
	cause := errors.New("broken pipe")
	err := NewTransportError("dispatch failed", cause)
	assert.ErrorIs(t, err, cause)
}
