// Package providererrors defines the closed error taxonomy the gateway uses
// to map failures onto HTTP status codes and Anthropic-shaped error bodies.
package providererrors

import (
	"errors"
	"fmt"
)

// Kind is a closed enum of the error taxonomy from the gateway's design.
type Kind string

const (
	KindInvalidRequest   Kind = "invalid_request"
	KindAuthError        Kind = "auth_error"
	KindModelNotFound    Kind = "model_not_found"
	KindCapabilityError  Kind = "capability_error"
	KindRateLimited      Kind = "rate_limited"
	KindUpstreamError    Kind = "upstream_error"
	KindConnectionError  Kind = "connection_error"
	KindTranslatorError  Kind = "translator_error"

	// KindDeadlineExceeded marks the request's overall deadline expiring
	// before the upstream finished. Streaming responses that already sent
	// message_start never surface this as an HTTP status (the stream has
	// already committed 200); only the non-streaming path maps it to 504.
	KindDeadlineExceeded Kind = "deadline_exceeded"

	// KindCanceled marks the client disconnecting mid-request. Nothing
	// further is ever written back once this is detected, on either the
	// streaming or non-streaming path, so its status code is never used.
	KindCanceled Kind = "canceled"
)

// StatusCode returns the HTTP status code associated with a Kind.
func (k Kind) StatusCode() int {
	switch k {
	case KindInvalidRequest:
		return 400
	case KindAuthError:
		return 401
	case KindModelNotFound:
		return 404
	case KindCapabilityError:
		return 400
	case KindRateLimited:
		return 429
	case KindUpstreamError:
		return 502
	case KindConnectionError:
		return 503
	case KindTranslatorError:
		return 500
	case KindDeadlineExceeded:
		return 504
	case KindCanceled:
		return 499 // client closed request; status is never actually written
	default:
		return 500
	}
}

// GatewayError is the single error type the gateway's HTTP layer inspects
// to decide status code and wire-format body. Every error surfaced across
// package boundaries should either be a *GatewayError or get wrapped into
// one via Wrap before it reaches the HTTP dispatcher.
type GatewayError struct {
	Kind       Kind
	Message    string
	RetryAfter string // optional, propagated from upstream 429 Retry-After
	Cause      error
}

func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// New creates a GatewayError of the given kind.
func New(kind Kind, message string) *GatewayError {
	return &GatewayError{Kind: kind, Message: message}
}

// Wrap creates a GatewayError of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *GatewayError {
	return &GatewayError{Kind: kind, Message: message, Cause: cause}
}

// As extracts a *GatewayError from err, if present.
func As(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// KindOf returns the Kind of err if it is (or wraps) a *GatewayError,
// defaulting to KindUpstreamError for unrecognized errors since most
// call sites that reach here are reporting upstream-originated failures.
func KindOf(err error) Kind {
	if ge, ok := As(err); ok {
		return ge.Kind
	}
	return KindUpstreamError
}
