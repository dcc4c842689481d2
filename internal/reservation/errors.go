// Package reservation implements the seat reservation and allocation
// engine: granting, extending, releasing and expiring time-boxed holds on
// shared seat inventory, plus the heuristic that suggests a seat block.
package reservation

import "errors"

// Error is a caller-visible failure with a stable machine-readable code.
// Codes are part of the external contract and never change between
// releases; messages are advisory and may.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Expected, caller-recoverable failures.  The engine never retries these
// on its own: picking different seats or trying again is a caller
// decision.
var (
	ErrInvalidInput         = &Error{Code: "INVALID_INPUT", Message: "invalid input"}
	ErrTooManySeats         = &Error{Code: "TOO_MANY_SEATS", Message: "too many seats requested"}
	ErrDuplicateReservation = &Error{Code: "DUPLICATE_RESERVATION", Message: "session already holds an active reservation for this event"}
	ErrSeatsNotFound        = &Error{Code: "SEATS_NOT_FOUND", Message: "one or more seats do not exist for this event"}
	ErrSeatsUnavailable     = &Error{Code: "SEATS_UNAVAILABLE", Message: "one or more seats are not available"}
	ErrNotFound             = &Error{Code: "NOT_FOUND", Message: "reservation not found"}
	ErrPermissionDenied     = &Error{Code: "PERMISSION_DENIED", Message: "reservation belongs to a different session"}
	ErrReservationInactive  = &Error{Code: "RESERVATION_INACTIVE", Message: "reservation is no longer active"}
	ErrReservationExpired   = &Error{Code: "RESERVATION_EXPIRED", Message: "reservation has expired"}
	ErrMaxExtensionsReached = &Error{Code: "MAX_EXTENSIONS_REACHED", Message: "maximum number of extensions reached"}
	ErrAlreadyInactive      = &Error{Code: "ALREADY_INACTIVE", Message: "reservation already released"}
	ErrInternal             = &Error{Code: "INTERNAL_ERROR", Message: "internal error"}
)

// CodeOf extracts the stable code from an error returned by the engine.
// Storage faults and anything else without a code classify as
// INTERNAL_ERROR so implementation detail never leaks to callers.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrInternal.Code
}
