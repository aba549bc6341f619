// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrConflict     = errors.New("conflicting state")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenRevoked = errors.New("token revoked")
	ErrLocked       = errors.New("account locked")
	ErrDependency   = errors.New("dependency failure")
	ErrCacheMiss    = errors.New("cache miss")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is the boundary shape every handler converts internal faults
// into. Status and Code are stable; Message is user-visible.
type AppError struct {
	Err     error        `json:"-"`
	Status  int          `json:"-"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func ValidationFailed(fields []FieldError) *AppError {
	return &AppError{
		Err:     ErrInvalidInput,
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_FAILED",
		Message: "one or more fields failed validation",
		Fields:  fields,
	}
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(
		ErrUnauthorized,
		message,
		http.StatusUnauthorized,
		"UNAUTHORIZED",
	)
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "insufficient permissions"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		fmt.Sprintf("%s not found", resource),
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func ConflictError(message string) *AppError {
	return NewAppError(ErrConflict, message, http.StatusConflict, "CONFLICT")
}

func DuplicateError(field string) *AppError {
	return NewAppError(
		ErrDuplicateKey,
		fmt.Sprintf("%s already in use", field),
		http.StatusConflict,
		"DUPLICATE",
	)
}

// LockedError carries the remaining lockout time in the message so the
// client can surface it without parsing headers.
func LockedError(minutes, seconds int) *AppError {
	return NewAppError(
		ErrLocked,
		fmt.Sprintf(
			"account locked due to repeated failed attempts, try again in %dm %ds",
			minutes,
			seconds,
		),
		http.StatusBadRequest,
		"ACCOUNT_LOCKED",
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(
		ErrTokenExpired,
		"token has expired",
		http.StatusBadRequest,
		"TOKEN_EXPIRED",
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"token is invalid",
		http.StatusUnauthorized,
		"TOKEN_INVALID",
	)
}

func TokenRevokedError() *AppError {
	return NewAppError(
		ErrTokenRevoked,
		"token has been revoked",
		http.StatusUnauthorized,
		"TOKEN_REVOKED",
	)
}

func DependencyError(err error) *AppError {
	return NewAppError(
		errors.Join(ErrDependency, err),
		"a downstream dependency failed",
		http.StatusInternalServerError,
		"DEPENDENCY_FAILURE",
	)
}
