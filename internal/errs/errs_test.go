package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigError(t *testing.T) {
	err := InvalidField("symbol", "must be at most %d bytes", 12)

	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.EqualError(t, err, "invalid config: symbol: must be at most 12 bytes")

	var ce *ConfigError
	require.ErrorAs(t, fmt.Errorf("deploy: %w", err), &ce)
	assert.Equal(t, "symbol", ce.Field)

	assert.EqualError(t, &ConfigError{Reason: "empty"}, "invalid config: empty")
}

func TestConstructorError(t *testing.T) {
	cause := errors.New("cap exceeded")
	err := NewConstructorError(cause)

	assert.ErrorIs(t, err, ErrConstructorFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "cap exceeded", err.Reason)
	assert.EqualError(t, err, "constructor failed: cap exceeded")
}

func TestCodeAndStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		status int
	}{
		{"nil", nil, 0, http.StatusOK},
		{"unauthorized", fmt.Errorf("%w: caller", ErrUnauthorized), 1, http.StatusForbidden},
		{"wasm not set", ErrWasmNotSet, 2, http.StatusNotFound},
		{"config", InvalidField("name", "empty"), 4, http.StatusBadRequest},
		{"hash", ErrInvalidHash, 5, http.StatusBadRequest},
		{"target", ErrInvalidTarget, 6, http.StatusBadRequest},
		{"state", ErrInvalidState, 7, http.StatusConflict},
		{"paused", fmt.Errorf("%w: token factory", ErrPaused), 8, http.StatusConflict},
		{"collision", ErrAddressCollision, 10, http.StatusConflict},
		{"constructor", NewConstructorError(errors.New("boom")), 11, http.StatusUnprocessableEntity},
		{"role filled", ErrRoleAlreadyFilled, 12, http.StatusConflict},
		{"role empty", ErrRoleNotFilled, 13, http.StatusNotFound},
		{"unknown", errors.New("disk full"), 99, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, Code(tt.err))
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}
