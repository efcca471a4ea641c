package repository

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies repository and transport failures.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidInput
	KindNotFound
	KindConflict
	KindPreconditionFailed
	KindRaceLost
)

// String returns the kind as used in error response codes.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPreconditionFailed, KindRaceLost:
		// Callers cannot tell a lost race from a stale tag.
		return "precondition_failed"
	default:
		return "internal_error"
	}
}

// ValidationError is returned when input validation fails.
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return e.Message
}

// StatusCode returns the HTTP status code for this error.
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Kind returns KindInvalidInput.
func (e *ValidationError) Kind() ErrorKind { return KindInvalidInput }

// Hint returns a user-friendly suggestion for resolving this error.
func (e *ValidationError) Hint() string {
	if e.Field != "" {
		return fmt.Sprintf("Check the value of field %q in your request.", e.Field)
	}
	return "Check your request body format and required fields."
}

// NotFoundError is returned when a key is absent on a read or plain replace.
type NotFoundError struct {
	Key int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource %d not found", e.Key)
}

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// Kind returns KindNotFound.
func (e *NotFoundError) Kind() ErrorKind { return KindNotFound }

// Hint returns a user-friendly suggestion for resolving this error.
func (e *NotFoundError) Hint() string {
	return fmt.Sprintf("Resource %d does not exist. Use the addorupdate route to create it with PUT.", e.Key)
}

// ConflictError is returned when a created resource collides with the
// content of an existing one.
type ConflictError struct {
	Data        string
	ExistingKey int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("data %q conflicts with resource %d", e.Data, e.ExistingKey)
}

// StatusCode returns the HTTP status code for this error.
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Kind returns KindConflict.
func (e *ConflictError) Kind() ErrorKind { return KindConflict }

// Hint returns a user-friendly suggestion for resolving this error.
func (e *ConflictError) Hint() string {
	return fmt.Sprintf("Resource %d already holds this data. Update it with PUT instead.", e.ExistingKey)
}

// PreconditionFailedError is returned when an If-Match tag does not match
// the stored version.
type PreconditionFailedError struct {
	Key     int
	Current string
}

func (e *PreconditionFailedError) Error() string {
	return fmt.Sprintf("precondition failed for resource %d", e.Key)
}

// StatusCode returns the HTTP status code for this error.
func (e *PreconditionFailedError) StatusCode() int { return http.StatusPreconditionFailed }

// Kind returns KindPreconditionFailed.
func (e *PreconditionFailedError) Kind() ErrorKind { return KindPreconditionFailed }

// Hint returns a user-friendly suggestion for resolving this error.
func (e *PreconditionFailedError) Hint() string {
	return "The resource has changed. GET it again and retry with the new ETag."
}

// RaceLostError is returned when a compare-and-swap lost to a concurrent
// writer. It is reported to clients exactly like PreconditionFailedError.
type RaceLostError struct {
	Key int
}

func (e *RaceLostError) Error() string {
	return fmt.Sprintf("precondition failed for resource %d: concurrent update", e.Key)
}

// StatusCode returns the HTTP status code for this error.
func (e *RaceLostError) StatusCode() int { return http.StatusPreconditionFailed }

// Kind returns KindRaceLost.
func (e *RaceLostError) Kind() ErrorKind { return KindRaceLost }

// Hint returns a user-friendly suggestion for resolving this error.
func (e *RaceLostError) Hint() string {
	return "The resource has changed. GET it again and retry with the new ETag."
}

// InternalError is returned when an insert that should not collide did.
type InternalError struct {
	Op  string
	Key int
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: key %d already taken", e.Op, e.Key)
}

// StatusCode returns the HTTP status code for this error.
func (e *InternalError) StatusCode() int { return http.StatusInternalServerError }

// Kind returns KindInternal.
func (e *InternalError) Kind() ErrorKind { return KindInternal }

// Hint returns a user-friendly suggestion for resolving this error.
func (e *InternalError) Hint() string {
	return "Retry the request."
}

type statusCoder interface {
	StatusCode() int
}

type hinter interface {
	Hint() string
}

type kinder interface {
	Kind() ErrorKind
}

// KindOf returns the kind of err, looking through wrapping.
// Unknown errors are KindInternal.
func KindOf(err error) ErrorKind {
	var k kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// IsPreconditionFailed reports whether err is a precondition failure or a
// lost race.
func IsPreconditionFailed(err error) bool {
	switch KindOf(err) {
	case KindPreconditionFailed, KindRaceLost:
		return true
	default:
		return false
	}
}

// StatusCode returns the HTTP status for err, or 500 for unknown errors.
func StatusCode(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Hint       string `json:"hint,omitempty"`
	Field      string `json:"field,omitempty"`
	StatusCode int    `json:"-"`
}

// ToErrorResponse converts err into the error envelope.
func ToErrorResponse(err error) *ErrorResponse {
	resp := &ErrorResponse{
		Error:      KindOf(err).String(),
		Message:    err.Error(),
		StatusCode: StatusCode(err),
	}
	var h hinter
	if errors.As(err, &h) {
		resp.Hint = h.Hint()
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
	}
	return resp
}
