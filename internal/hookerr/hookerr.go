// Package hookerr defines the failure kinds a lifecycle hook can report.
//
// Gates and customizers return these as plain error values; the dispatcher
// decides per hook whether a failure is propagated to the identity platform or
// suppressed. Error() returns the reason verbatim because the platform shows
// it to the end user.
package hookerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a hook failure.
type Kind int

const (
	// KindUnknown is reported for errors that did not originate in this package.
	KindUnknown Kind = iota
	// KindMalformedEvent means the event is structurally invalid (missing sections or keys).
	KindMalformedEvent
	// KindInvalidInput means a present field could not be parsed, e.g. an email without a domain.
	KindInvalidInput
	// KindPolicyViolation means a domain or time policy rejected the action.
	KindPolicyViolation
	// KindDelivery means the outbound mail collaborator failed.
	KindDelivery
)

func (k Kind) String() string {
	switch k {
	case KindMalformedEvent:
		return "malformed_event"
	case KindInvalidInput:
		return "invalid_input"
	case KindPolicyViolation:
		return "policy_violation"
	case KindDelivery:
		return "delivery"
	default:
		return "unknown"
	}
}

// HTTPStatus maps a kind to the status code used by the HTTP adapter.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindMalformedEvent:
		return http.StatusUnprocessableEntity
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindPolicyViolation:
		return http.StatusForbidden
	case KindDelivery:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified hook failure.
type Error struct {
	Kind Kind
	// Code is an optional machine-readable cause, e.g. the provider error code for delivery failures.
	Code   string
	Reason string
	Err    error
}

// Sentinels for errors.Is comparisons by kind.
var (
	ErrMalformedEvent  = &Error{Kind: KindMalformedEvent}
	ErrInvalidInput    = &Error{Kind: KindInvalidInput}
	ErrPolicyViolation = &Error{Kind: KindPolicyViolation}
	ErrDelivery        = &Error{Kind: KindDelivery}
)

func (e *Error) Error() string {
	switch {
	case e.Reason != "":
		return e.Reason
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. Sentinels carry no
// reason, so any error of a kind matches that kind's sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Reason == "" && t.Code == ""
}

// MalformedEvent creates a MalformedEventError.
func MalformedEvent(format string, args ...any) *Error {
	return &Error{Kind: KindMalformedEvent, Reason: fmt.Sprintf(format, args...)}
}

// InvalidInput creates an InvalidInputError.
func InvalidInput(reason string) *Error {
	return &Error{Kind: KindInvalidInput, Reason: reason}
}

// PolicyViolation creates a PolicyViolationError whose reason is shown to the end user.
func PolicyViolation(reason string) *Error {
	return &Error{Kind: KindPolicyViolation, Reason: reason}
}

// Delivery wraps a mail collaborator failure.
func Delivery(code string, err error) *Error {
	return &Error{Kind: KindDelivery, Code: code, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
