package model

import "testing"

func TestBookingStatusTransitions(t *testing.T) {
	cases := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingDeclined, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingCompleted, false},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingCompleted, true},
		{BookingConfirmed, BookingDeclined, false},
		{BookingConfirmed, BookingPending, false},
		{BookingCompleted, BookingCancelled, false},
		{BookingCompleted, BookingConfirmed, false},
		{BookingDeclined, BookingConfirmed, false},
		{BookingDeclined, BookingCancelled, false},
		{BookingCancelled, BookingPending, false},
		{BookingCancelled, BookingCompleted, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestSlotBookingRemaining(t *testing.T) {
	if r := (SlotBooking{MaxGuests: 10, Count: 3}).Remaining(); r != 7 {
		t.Errorf("expected 7 remaining, got %d", r)
	}
	if r := (SlotBooking{MaxGuests: 2, Count: 2}).Remaining(); r != 0 {
		t.Errorf("expected 0 remaining, got %d", r)
	}
	// Count above capacity must never report negative remaining.
	if r := (SlotBooking{MaxGuests: 2, Count: 3}).Remaining(); r != 0 {
		t.Errorf("expected clamped 0 remaining, got %d", r)
	}
}
