package domain

import "fmt"

// ErrorKind classifies a failure for transport mapping; the Reason is a
// human-readable message suitable for direct display.
type ErrorKind string

const (
	KindInvalidDate       ErrorKind = "invalid_date"
	KindPastDate          ErrorKind = "past_date"
	KindInvalidRange      ErrorKind = "invalid_range"
	KindInvalidArgument   ErrorKind = "invalid_argument"
	KindConflict          ErrorKind = "conflict"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindNotFound          ErrorKind = "not_found"
	KindOwnership         ErrorKind = "unauthorized_ownership"
	KindAvailabilityCheck ErrorKind = "availability_check"
)

type Error struct {
	Kind   ErrorKind
	Reason string
}

func (e *Error) Error() string { return e.Reason }

// Is matches by kind, so errors.Is(err, domain.ErrConflict) holds for any
// conflict error regardless of its reason text.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Kind sentinels for errors.Is checks.
var (
	ErrInvalidDate       = &Error{Kind: KindInvalidDate, Reason: "date is not a valid calendar day"}
	ErrPastDate          = &Error{Kind: KindPastDate, Reason: "check-in date is in the past"}
	ErrInvalidRange      = &Error{Kind: KindInvalidRange, Reason: "check-out must be after check-in"}
	ErrInvalidArgument   = &Error{Kind: KindInvalidArgument, Reason: "invalid argument"}
	ErrConflict          = &Error{Kind: KindConflict, Reason: "rooms are not available for the requested dates"}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition, Reason: "status transition is not allowed"}
	ErrNotFound          = &Error{Kind: KindNotFound, Reason: "booking not found"}
	ErrOwnership         = &Error{Kind: KindOwnership, Reason: "booking belongs to another guest"}
	ErrAvailabilityCheck = &Error{Kind: KindAvailabilityCheck, Reason: "availability could not be verified"}
)
