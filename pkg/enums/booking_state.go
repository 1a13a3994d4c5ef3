package enums

import "fmt"

// BookingState is the listing filter accepted by the bookings endpoints.
// There is no APPROVED filter; approved bookings show up under the time-based states.
type BookingState string

const (
	BookingStateAll      BookingState = "ALL"
	BookingStateCurrent  BookingState = "CURRENT"
	BookingStatePast     BookingState = "PAST"
	BookingStateFuture   BookingState = "FUTURE"
	BookingStateWaiting  BookingState = "WAITING"
	BookingStateRejected BookingState = "REJECTED"
)

var validBookingStates = []BookingState{
	BookingStateAll,
	BookingStateCurrent,
	BookingStatePast,
	BookingStateFuture,
	BookingStateWaiting,
	BookingStateRejected,
}

// String implements fmt.Stringer.
func (s BookingState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BookingState.
func (s BookingState) IsValid() bool {
	for _, candidate := range validBookingStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// Status returns the status equality filter for WAITING and REJECTED.
func (s BookingState) Status() (BookingStatus, bool) {
	switch s {
	case BookingStateWaiting:
		return BookingStatusWaiting, true
	case BookingStateRejected:
		return BookingStatusRejected, true
	}
	return "", false
}

// ParseBookingState converts raw input into a BookingState. Matching is exact.
func ParseBookingState(value string) (BookingState, error) {
	for _, candidate := range validBookingStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unknown state: %s", value)
}
