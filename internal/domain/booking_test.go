package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus_AllowedTransitions(t *testing.T) {
	cases := []struct {
		from  BookingStatus
		event TransitionEvent
		to    BookingStatus
	}{
		{BookingStatusPending, EventApprove, BookingStatusApproved},
		{BookingStatusPending, EventDecline, BookingStatusDeclined},
		{BookingStatusPending, EventGuestCancel, BookingStatusCancelled},
		{BookingStatusApproved, EventGuestCancel, BookingStatusCancellationPending},
		{BookingStatusCancellationPending, EventApproveCancellation, BookingStatusCancelled},
		{BookingStatusCancellationPending, EventRejectCancellation, BookingStatusApproved},
	}

	for _, tc := range cases {
		next, err := NextStatus(tc.from, tc.event)
		require.NoError(t, err, "%s + %s", tc.from, tc.event)
		assert.Equal(t, tc.to, next)
	}
}

func TestNextStatus_RejectsEverythingElse(t *testing.T) {
	statuses := []BookingStatus{
		BookingStatusPending, BookingStatusApproved, BookingStatusDeclined,
		BookingStatusCancelled, BookingStatusCancellationPending,
	}
	events := []TransitionEvent{
		EventApprove, EventDecline, EventGuestCancel,
		EventApproveCancellation, EventRejectCancellation,
	}

	allowed := map[BookingStatus]map[TransitionEvent]bool{
		BookingStatusPending:             {EventApprove: true, EventDecline: true, EventGuestCancel: true},
		BookingStatusApproved:            {EventGuestCancel: true},
		BookingStatusCancellationPending: {EventApproveCancellation: true, EventRejectCancellation: true},
	}

	for _, from := range statuses {
		for _, event := range events {
			if allowed[from][event] {
				continue
			}
			_, err := NextStatus(from, event)
			assert.True(t, errors.Is(err, ErrInvalidTransition), "%s + %s should be rejected", from, event)
		}
	}
}

func TestNextStatus_TerminalStatesHaveNoExits(t *testing.T) {
	assert.True(t, BookingStatusDeclined.Terminal())
	assert.True(t, BookingStatusCancelled.Terminal())
	assert.False(t, BookingStatusPending.Terminal())
	assert.False(t, BookingStatusApproved.Terminal())
	assert.False(t, BookingStatusCancellationPending.Terminal())

	for _, event := range []TransitionEvent{EventApprove, EventDecline, EventGuestCancel, EventApproveCancellation, EventRejectCancellation} {
		_, err := NextStatus(BookingStatusDeclined, event)
		assert.Error(t, err)
		_, err = NextStatus(BookingStatusCancelled, event)
		assert.Error(t, err)
	}
}
