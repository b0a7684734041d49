// Package apperr is the closed error taxonomy shared by the server pipeline
// and the client. Every failure that crosses the HTTP boundary is one of
// these kinds; anything else is flattened to KindInternal at the boundary.
package apperr

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type Kind string

const (
	KindValidation Kind = "VALIDATION_ERROR"
	KindAuth       Kind = "AUTH_ERROR"
	KindForbidden  Kind = "FORBIDDEN"
	KindNotFound   Kind = "NOT_FOUND"
	KindConflict   Kind = "CONFLICT"
	KindRateLimit  Kind = "RATE_LIMIT_EXCEEDED"
	KindDatabase   Kind = "DB_ERROR"
	KindNetwork    Kind = "NETWORK_ERROR"
	KindInternal   Kind = "INTERNAL_ERROR"
)

func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindNetwork:
		return http.StatusServiceUnavailable
	case KindDatabase, KindInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// Error carries a taxonomy kind plus optional structured detail.
// FieldErrors is set for KindValidation (field path -> messages).
// Details carries retry metadata for KindRateLimit.
type Error struct {
	Kind        Kind
	Message     string
	FieldErrors map[string][]string
	Details     map[string]any
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string, fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: message, FieldErrors: fields}
}

func Auth() *Error {
	return &Error{Kind: KindAuth, Message: "Authentication required"}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func Database(message string) *Error {
	return &Error{Kind: KindDatabase, Message: message}
}

func Network(message string) *Error {
	return &Error{Kind: KindNetwork, Message: message}
}

func RateLimited(limit, remaining int, reset int64) *Error {
	return &Error{
		Kind:    KindRateLimit,
		Message: "Too many requests. Please try again later.",
		Details: map[string]any{
			"limit":     limit,
			"remaining": remaining,
			"reset":     reset,
		},
	}
}

// FromCode rebuilds an Error from the wire code. Unknown codes collapse to
// KindInternal so the taxonomy stays closed on the client side too.
func FromCode(code, message string) *Error {
	switch k := Kind(code); k {
	case KindValidation, KindAuth, KindForbidden, KindNotFound,
		KindConflict, KindRateLimit, KindDatabase, KindNetwork, KindInternal:
		return &Error{Kind: k, Message: message}
	}
	return &Error{Kind: KindInternal, Message: message}
}

// Retryable reports whether the client may retry automatically: transport
// failures, 5xx classes and rate limiting. Validation, auth and ownership
// failures are permanent for a given payload.
func Retryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		// Unclassified errors on the client are transport-level.
		return true
	}
	switch e.Kind {
	case KindDatabase, KindNetwork, KindInternal, KindRateLimit:
		return true
	}
	return false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type wireBody struct {
	Error wireError `json:"error"`
}

// WriteHTTP is the single response boundary: it converts any error to the
// wire shape {error:{code,message,details?}}. Unclassified errors are logged
// with full detail and returned as a generic INTERNAL_ERROR.
func WriteHTTP(w http.ResponseWriter, err error) {
	var e *Error
	if !errors.As(err, &e) {
		log.Printf("[ERROR] unclassified: %v", err)
		e = &Error{Kind: KindInternal, Message: "An unexpected error occurred. Please try again."}
	}

	body := wireBody{Error: wireError{Code: string(e.Kind), Message: e.Message}}
	if e.FieldErrors != nil {
		body.Error.Details = e.FieldErrors
	} else if e.Details != nil {
		body.Error.Details = e.Details
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Kind.HTTPStatus())
	json.NewEncoder(w).Encode(body)
}
