// Package apperr is the error taxonomy shared by services and handlers.
//
// Services return *Error values with a stable Kind; handlers turn the kind
// into an HTTP status. Messages are shown to users and must never carry
// passcodes or reset tokens.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the machine-checkable failure class.
type Kind string

const (
	KindValidation            Kind = "validation"
	KindConflict              Kind = "conflict"
	KindNotFound              Kind = "not_found"
	KindForbidden             Kind = "forbidden"
	KindUnauthorized          Kind = "unauthorized"
	KindExpired               Kind = "expired"
	KindInvalidCode           Kind = "invalid_code"
	KindAlreadyVerified       Kind = "already_verified"
	KindInvalidOrExpiredToken Kind = "invalid_or_expired_token"
	KindInvalidCredentials    Kind = "invalid_credentials"
	KindUpstreamUnavailable   Kind = "upstream_unavailable"
	KindRateLimited           Kind = "rate_limited"
	KindInternal              Kind = "internal"
)

// Error carries a Kind, a user-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of kind k.
func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Message: msg}
}

// Wrap builds an Error of kind k around cause.
func Wrap(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Message: msg, Err: cause}
}

func Validation(msg string) *Error      { return New(KindValidation, msg) }
func Conflict(msg string) *Error        { return New(KindConflict, msg) }
func NotFound(msg string) *Error        { return New(KindNotFound, msg) }
func Forbidden(msg string) *Error       { return New(KindForbidden, msg) }
func Unauthorized(msg string) *Error    { return New(KindUnauthorized, msg) }
func Expired(msg string) *Error         { return New(KindExpired, msg) }
func InvalidCode(msg string) *Error     { return New(KindInvalidCode, msg) }
func AlreadyVerified(msg string) *Error { return New(KindAlreadyVerified, msg) }
func RateLimited(msg string) *Error     { return New(KindRateLimited, msg) }

// InvalidOrExpiredToken is returned for any unusable reset token.
func InvalidOrExpiredToken() *Error {
	return New(KindInvalidOrExpiredToken, "Invalid or expired reset token")
}

// InvalidCredentials is returned when a password does not match.
func InvalidCredentials() *Error {
	return New(KindInvalidCredentials, "Invalid credentials")
}

// Upstream wraps a notification or other collaborator failure.
func Upstream(msg string, cause error) *Error {
	return Wrap(KindUpstreamUnavailable, msg, cause)
}

// Internal wraps an unexpected failure such as a store error.
func Internal(cause error) *Error {
	return Wrap(KindInternal, "Internal server error", cause)
}

// KindOf reports the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}

// HTTPStatus maps a kind onto a response status.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation, KindExpired, KindInvalidCode, KindAlreadyVerified,
		KindInvalidOrExpiredToken, KindInvalidCredentials:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
