// Package apierror provides standardized error response structures for the API
// and the domain error taxonomy used by the financial engine. All errors
// returned to clients go through this package to ensure consistency and to
// prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ── Domain error taxonomy ─────────────────────────────────────────────────────
// Services return these typed errors; handlers map them to HTTP status codes
// with Status. Anything else is treated as a generic bad request.

// ValidationError rejects invalid input before any state change. The caller
// can fully recover by correcting the request.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (e *ValidationError) Error() string { return e.Detail }

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validación", Fields: fields}
}

func Validation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a referenced movement/invoice/plan/case that does not exist.
type NotFoundError struct {
	Recurso string `json:"recurso"`
	ID      string `json:"id"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Recurso, e.ID)
}

func NotFound(recurso, id string) *NotFoundError {
	return &NotFoundError{Recurso: recurso, ID: id}
}

// ConflictError marks an operation incompatible with current state (movement
// already invoiced, plan already exists, invalid state transition). It carries
// the conflicting current state so the caller can decide what to do.
type ConflictError struct {
	Detail       string `json:"detail"`
	EstadoActual string `json:"estado_actual,omitempty"`
}

func (e *ConflictError) Error() string { return e.Detail }

func Conflict(estadoActual, format string, args ...interface{}) *ConflictError {
	return &ConflictError{Detail: fmt.Sprintf(format, args...), EstadoActual: estadoActual}
}

// ConsistencyError indicates an engine invariant was broken (installment sums
// not matching an invoice total, negative derived balances). These are bugs:
// they must be logged loudly and never silently coerced.
type ConsistencyError struct {
	Detail string `json:"detail"`
}

func (e *ConsistencyError) Error() string { return e.Detail }

func Consistency(format string, args ...interface{}) *ConsistencyError {
	return &ConsistencyError{Detail: fmt.Sprintf(format, args...)}
}

// Status resolves the HTTP status code for a domain error.
func Status(err error) int {
	var (
		ve *ValidationError
		nf *NotFoundError
		ce *ConflictError
		ie *ConsistencyError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &ce):
		return http.StatusConflict
	case errors.As(err, &ie):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
