package domain

import (
	"errors"
	"net/http"
)

// HTTPError is an error that carries its own HTTP status.
type HTTPError interface {
	error
	StatusCode() int
}

type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// PayloadTooLargeError indicates an upload above the accepted ceiling
	PayloadTooLargeError struct {
		Message string
		Limit   int64
	}
)

func (e *NotFoundError) Error() string        { return e.Message }
func (e *ValidationError) Error() string      { return e.Message }
func (e *PayloadTooLargeError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int        { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int      { return http.StatusBadRequest }
func (e *PayloadTooLargeError) StatusCode() int { return http.StatusRequestEntityTooLarge }

// Is lets errors.Is match typed errors against their sentinel.
func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Sentinel errors, use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)
