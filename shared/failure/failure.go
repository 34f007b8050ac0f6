package failure

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Match them with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrOutOfRange   = errors.New("out of range")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrStore        = errors.New("store error")
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	kind    error
	cause   error
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}

// Error returns the error message.
func (e *Failure) Error() string {
	return e.Message
}

// Unwrap exposes the error kind and, when present, the underlying cause.
func (e *Failure) Unwrap() []error {
	errs := make([]error, 0, 2)

	if e.kind != nil {
		errs = append(errs, e.kind)
	}

	if e.cause != nil {
		errs = append(errs, e.cause)
	}

	return errs
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
			kind:    ErrInvalidInput,
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: msg,
		kind:    ErrInvalidInput,
	}
}

// OutOfRange returns a new Failure for values outside their permitted bounds.
func OutOfRange(msg string) error {
	return &Failure{
		Code:    http.StatusUnprocessableEntity,
		Message: msg,
		kind:    ErrOutOfRange,
	}
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(msg string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Message: msg,
		kind:    ErrNotFound,
	}
}

// Conflict returns a new Failure with code for conflict situations.
func Conflict(msg string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: msg,
		kind:    ErrConflict,
	}
}

// Store wraps a connection or query failure, keeping the original cause reachable.
func Store(msg string, err error) error {
	if err == nil {
		return nil
	}

	return &Failure{
		Code:    http.StatusInternalServerError,
		Message: fmt.Sprintf("%s: %v", msg, err),
		kind:    ErrStore,
		cause:   err,
	}
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}
