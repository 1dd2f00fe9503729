package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := New(CodeConflict, "duplicate email")
	assert.True(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(err, CodeValidation))
	assert.False(t, HasCode(nil, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodeConflict))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeUpstream, "identity service unavailable")

	require.Error(t, err)
	assert.True(t, HasCode(err, CodeUpstream))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "identity service unavailable")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeOf(New(CodeValidation, "bad input")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))

	// Outermost code wins when errors are re-coded across layers.
	inner := New(CodeConflict, "unique violation")
	outer := Wrap(inner, CodeConflict, "A user with this email already exists.")
	assert.Equal(t, CodeConflict, CodeOf(outer))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "bad input", MessageOf(New(CodeValidation, "bad input")))
	assert.Equal(t, "internal error", MessageOf(errors.New("db: relation does not exist")))
}

func TestCodeSurvivesFmtWrapping(t *testing.T) {
	err := fmt.Errorf("provision student: %w", New(CodeConfiguration, "program has no department"))
	assert.True(t, HasCode(err, CodeConfiguration))
}
