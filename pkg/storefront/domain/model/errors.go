package model

import (
	"errors"
	"strings"
)

var (
	ErrMalformedPayload    = errors.New("line items payload is malformed")
	ErrEmptyOrder          = errors.New("order has no line items")
	ErrNoFulfillableItems  = errors.New("none of the requested products can be fulfilled")
	ErrLineUnavailable     = errors.New("requested product is unavailable")
	errValidationSentinel  = errors.New("validation failed")
	errPersistenceSentinel = errors.New("order could not be persisted")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every customer field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return errValidationSentinel.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == errValidationSentinel
}

// PersistenceError reports that the order transaction did not commit. All
// stock decrements of the attempt were rolled back, so the caller may retry
// the whole submission.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return errPersistenceSentinel.Error()
	}
	return errPersistenceSentinel.Error() + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool {
	return target == errPersistenceSentinel
}

type FailureKind string

const (
	KindNone               FailureKind = ""
	KindNotFound           FailureKind = "NotFound"
	KindMalformedPayload   FailureKind = "MalformedPayload"
	KindEmptyOrder         FailureKind = "EmptyOrder"
	KindValidation         FailureKind = "ValidationError"
	KindNoFulfillableItems FailureKind = "NoFulfillableItems"
	KindOrdersNotAccepted  FailureKind = "OrdersNotAccepted"
	KindLineUnavailable    FailureKind = "LineUnavailable"
	KindPersistence        FailureKind = "PersistenceError"
)

// KindOf maps an error returned by the checkout workflow to its failure kind.
// Unknown errors are reported as KindPersistence.
func KindOf(err error) FailureKind {
	var validationErr *ValidationError
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMerchantNotFound), errors.Is(err, ErrOrderNotFound):
		return KindNotFound
	case errors.Is(err, ErrMalformedPayload):
		return KindMalformedPayload
	case errors.Is(err, ErrEmptyOrder):
		return KindEmptyOrder
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.Is(err, ErrNoFulfillableItems):
		return KindNoFulfillableItems
	case errors.Is(err, ErrOrdersNotAccepted):
		return KindOrdersNotAccepted
	case errors.Is(err, ErrLineUnavailable):
		return KindLineUnavailable
	default:
		return KindPersistence
	}
}

// IsTransient reports whether retrying the same submission may succeed.
func IsTransient(err error) bool {
	return KindOf(err) == KindPersistence
}
