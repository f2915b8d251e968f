package failure

import (
	"errors"
	"net/http"
)

// Kind classifies a failure independently of its message so callers can branch with errors.Is.
type Kind string

const (
	KindUnknown           Kind = ""
	KindInvalidInterval   Kind = "invalid_interval"
	KindInvalidRange      Kind = "invalid_range"
	KindNotFound          Kind = "not_found"
	KindOwnerMismatch     Kind = "owner_mismatch"
	KindNotAuthorized     Kind = "not_authorized"
	KindNoAvailability    Kind = "no_availability"
	KindSlotTaken         Kind = "slot_taken"
	KindIllegalTransition Kind = "illegal_transition"
	KindBusy              Kind = "busy"
	KindPropertyNotFound  Kind = "property_not_found"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"message"`
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrInvalidInterval   = &Failure{Code: http.StatusBadRequest, Kind: KindInvalidInterval, Message: "invalid interval"}
	ErrInvalidRange      = &Failure{Code: http.StatusBadRequest, Kind: KindInvalidRange, Message: "invalid range"}
	ErrNotFound          = &Failure{Code: http.StatusNotFound, Kind: KindNotFound, Message: "not found"}
	ErrOwnerMismatch     = &Failure{Code: http.StatusForbidden, Kind: KindOwnerMismatch, Message: "owner mismatch"}
	ErrNotAuthorized     = &Failure{Code: http.StatusForbidden, Kind: KindNotAuthorized, Message: "not authorized"}
	ErrNoAvailability    = &Failure{Code: http.StatusUnprocessableEntity, Kind: KindNoAvailability, Message: "no availability"}
	ErrSlotTaken         = &Failure{Code: http.StatusConflict, Kind: KindSlotTaken, Message: "slot taken"}
	ErrIllegalTransition = &Failure{Code: http.StatusConflict, Kind: KindIllegalTransition, Message: "illegal transition"}
	ErrBusy              = &Failure{Code: http.StatusServiceUnavailable, Kind: KindBusy, Message: "busy"}
	ErrPropertyNotFound  = &Failure{Code: http.StatusNotFound, Kind: KindPropertyNotFound, Message: "property not found"}
)

// Error returns the error code and message in a formatted string.
func (e *Failure) Error() string {
	return e.Message
}

// Is reports whether target is a Failure of the same, non-empty Kind.
func (e *Failure) Is(target error) bool {
	var other *Failure
	if !errors.As(target, &other) {
		return false
	}

	return e.Kind != KindUnknown && e.Kind == other.Kind
}

// Retryable reports whether the caller may retry the same request unchanged.
func (e *Failure) Retryable() bool {
	return e.Kind == KindBusy
}

func newKind(sentinel *Failure, msg string) error {
	if msg == "" {
		msg = sentinel.Message
	}

	return &Failure{
		Code:    sentinel.Code,
		Kind:    sentinel.Kind,
		Message: msg,
	}
}

// InvalidInterval returns a Failure for an interval whose start is not before its end or which breaks a bound.
func InvalidInterval(msg string) error { return newKind(ErrInvalidInterval, msg) }

// InvalidRange returns a Failure for a query range that cannot be evaluated.
func InvalidRange(msg string) error { return newKind(ErrInvalidRange, msg) }

// OwnerMismatch returns a Failure for a caller that is not the original owner of a record.
func OwnerMismatch(msg string) error { return newKind(ErrOwnerMismatch, msg) }

// NotAuthorized returns a Failure for a caller lacking ownership or role.
func NotAuthorized(msg string) error { return newKind(ErrNotAuthorized, msg) }

// NoAvailability returns a Failure for an interval that no availability window covers.
func NoAvailability(msg string) error { return newKind(ErrNoAvailability, msg) }

// SlotTaken returns a Failure for an interval already held by another active booking.
func SlotTaken(msg string) error { return newKind(ErrSlotTaken, msg) }

// IllegalTransition returns a Failure for a booking status change not allowed for the state or actor.
func IllegalTransition(msg string) error { return newKind(ErrIllegalTransition, msg) }

// Busy returns a Failure for a timed out wait on an exclusive scope.
func Busy(msg string) error { return newKind(ErrBusy, msg) }

// PropertyNotFound returns a Failure for an unknown property.
func PropertyNotFound(msg string) error { return newKind(ErrPropertyNotFound, msg) }

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: msg,
	}
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Message: msg,
	}
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(entityName string) error {
	return newKind(ErrNotFound, entityName)
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetKind returns the kind of an error interface, or KindUnknown for non-failures.
func GetKind(err error) Kind {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Kind
	}

	return KindUnknown
}

// IsRetryable reports whether err is a failure the caller should retry with backoff.
func IsRetryable(err error) bool {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Retryable()
	}

	return false
}
