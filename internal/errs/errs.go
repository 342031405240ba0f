package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Authorization
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidTarget = errors.New("invalid transfer target")
)

// Configuration
var (
	ErrWasmNotSet    = errors.New("wasm not set")
	ErrInvalidHash   = errors.New("invalid hash")
	ErrInvalidConfig = errors.New("invalid config")
)

// Deployment
var (
	ErrAddressCollision  = errors.New("address collision")
	ErrConstructorFailed = errors.New("constructor failed")
	ErrRoleAlreadyFilled = errors.New("role already filled")
	ErrRoleNotFilled     = errors.New("role not filled")
)

// State machine
var (
	ErrInvalidState = errors.New("invalid state")
	ErrPaused       = errors.New("contract paused")
)

// ConfigError reports a deploy configuration field that failed validation.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid config: %s", e.Reason)
	}
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// InvalidField builds a ConfigError for field.
func InvalidField(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ConstructorError carries the instance constructor's failure reason verbatim.
type ConstructorError struct {
	Reason string
	Err    error
}

func (e *ConstructorError) Error() string {
	return fmt.Sprintf("constructor failed: %s", e.Reason)
}

func (e *ConstructorError) Is(target error) bool {
	return target == ErrConstructorFailed
}

func (e *ConstructorError) Unwrap() error {
	return e.Err
}

// NewConstructorError wraps the error returned by an instance constructor.
func NewConstructorError(err error) *ConstructorError {
	return &ConstructorError{Reason: err.Error(), Err: err}
}

// Code returns a stable numeric code for err, 0 when err is nil and 99 when
// the error is not part of the taxonomy.
func Code(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUnauthorized):
		return 1
	case errors.Is(err, ErrWasmNotSet):
		return 2
	case errors.Is(err, ErrInvalidConfig):
		return 4
	case errors.Is(err, ErrInvalidHash):
		return 5
	case errors.Is(err, ErrInvalidTarget):
		return 6
	case errors.Is(err, ErrInvalidState):
		return 7
	case errors.Is(err, ErrPaused):
		return 8
	case errors.Is(err, ErrAddressCollision):
		return 10
	case errors.Is(err, ErrConstructorFailed):
		return 11
	case errors.Is(err, ErrRoleAlreadyFilled):
		return 12
	case errors.Is(err, ErrRoleNotFilled):
		return 13
	default:
		return 99
	}
}

// HTTPStatus maps an error kind onto the status used by the query API.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrWasmNotSet), errors.Is(err, ErrRoleNotFilled):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrInvalidHash), errors.Is(err, ErrInvalidTarget):
		return http.StatusBadRequest
	case errors.Is(err, ErrAddressCollision), errors.Is(err, ErrRoleAlreadyFilled), errors.Is(err, ErrInvalidState), errors.Is(err, ErrPaused):
		return http.StatusConflict
	case errors.Is(err, ErrConstructorFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
