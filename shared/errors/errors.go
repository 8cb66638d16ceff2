package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Failure kinds. Every error returned by the services matches at most one
// of them with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflictingWrite   = errors.New("conflicting write")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
	Kind       error
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func (e *ErrorWithStatusCode) Unwrap() error {
	return e.Kind
}

func NotFound(what string) error {
	return &ErrorWithStatusCode{Message: what + " not found", StatusCode: http.StatusNotFound, Kind: ErrNotFound}
}

func InvalidReference(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusUnprocessableEntity, Kind: ErrInvalidReference}
}

func InvalidInput(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusBadRequest, Kind: ErrInvalidInput}
}

func ConflictingWrite(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusConflict, Kind: ErrConflictingWrite}
}

// StorageError is a transport or persistence failure of the store adapter.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: storage unavailable: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageUnavailable, e.Err}
}

// Storage wraps err as a StorageError. Cancellation is not a storage
// failure and is only annotated with op.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &StorageError{Op: op, Err: err}
}

// StatusCode maps an error to the HTTP status the API answers with.
func StatusCode(err error) int {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode
	}
	if errors.Is(err, ErrStorageUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
