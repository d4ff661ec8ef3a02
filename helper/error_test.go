package helper

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	t.Run("Wrap error with operation", func(t *testing.T) {
		err := NewError("scan", io.EOF)

		assert.EqualError(t, err, "scan: EOF", "Expected operation prefix in message")
		assert.True(t, errors.Is(err, io.EOF), "Expected wrapped error to be unwrappable")
	})

	t.Run("Nested errors keep every operation", func(t *testing.T) {
		err := NewError("insert timeline", NewError("scan", io.EOF))

		assert.EqualError(t, err, "insert timeline: scan: EOF")

		var wrapped *Error
		assert.True(t, errors.As(err, &wrapped), "Expected errors.As to find *Error")
		assert.Equal(t, "insert timeline", wrapped.Operation)
	})

	t.Run("Nil error stays nil", func(t *testing.T) {
		assert.NoError(t, NewError("noop", nil), "Expected nil error for nil input")
	})
}
