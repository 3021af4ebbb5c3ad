package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending             BookingStatus = "pending"
	BookingStatusApproved            BookingStatus = "approved"
	BookingStatusDeclined            BookingStatus = "declined"
	BookingStatusCancelled           BookingStatus = "cancelled"
	BookingStatusCancellationPending BookingStatus = "cancellation_pending"
)

// Terminal reports whether no further transition is defined from s.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusDeclined || s == BookingStatusCancelled
}

type TransitionEvent string

const (
	EventApprove             TransitionEvent = "approve"
	EventDecline             TransitionEvent = "decline"
	EventGuestCancel         TransitionEvent = "guest-cancel"
	EventApproveCancellation TransitionEvent = "admin-approve-cancel"
	EventRejectCancellation  TransitionEvent = "admin-reject-cancel"
)

var transitions = map[BookingStatus]map[TransitionEvent]BookingStatus{
	BookingStatusPending: {
		EventApprove:     BookingStatusApproved,
		EventDecline:     BookingStatusDeclined,
		EventGuestCancel: BookingStatusCancelled,
	},
	BookingStatusApproved: {
		EventGuestCancel: BookingStatusCancellationPending,
	},
	BookingStatusCancellationPending: {
		EventApproveCancellation: BookingStatusCancelled,
		EventRejectCancellation:  BookingStatusApproved,
	},
}

// NextStatus resolves the status a booking moves to when event fires in the
// current status. Any pair outside the transition table is rejected with an
// invalid-transition error.
func NextStatus(current BookingStatus, event TransitionEvent) (BookingStatus, error) {
	next, ok := transitions[current][event]
	if !ok {
		return "", Errorf(KindInvalidTransition, "cannot %s a %s booking", event, current)
	}
	return next, nil
}

type Booking struct {
	ID               string
	GuestID          int64
	RoomIDs          []int64
	CheckIn          time.Time
	CheckOut         time.Time
	ParticipantCount int
	TotalPriceCents  int64
	PackageRef       *string
	Status           BookingStatus
	Payment          PaymentState
	Rating           *int
	ReviewText       *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Interval is an occupied [CheckIn, CheckOut) date range.
type Interval struct {
	CheckIn  time.Time
	CheckOut time.Time
}

type Room struct {
	ID        int64
	Name      string
	Building  string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
