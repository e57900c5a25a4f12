package buildkit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrMissingField(t *testing.T) {
	assert.EqualError(t, ErrMissingField, "missing field")

	wrapped := fmt.Errorf("build command: %w", ErrMissingField)
	assert.True(t, errors.Is(wrapped, ErrMissingField))
}
