package model

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// ActiveBookingStatuses are the statuses that hold a room's date range.
var ActiveBookingStatuses = []BookingStatus{BookingPending, BookingConfirmed}

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is defined out of s.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// IsActive reports whether a booking in status s participates in conflict checks.
func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingConfirmed
}

// CanTransitionTo reports whether moving from s to next is a defined transition.
// Staying in the same non-terminal state is allowed.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if !next.Valid() {
		return false
	}
	switch s {
	case BookingPending:
		return true
	case BookingConfirmed:
		return next != BookingPending
	}
	return false
}

// RoomAvailability returns the availability flag a room should carry after a
// booking moves into status s, and false when s does not affect the flag.
func (s BookingStatus) RoomAvailability() (AvailabilityStatus, bool) {
	switch s {
	case BookingConfirmed:
		return RoomOccupied, true
	case BookingCancelled, BookingCompleted:
		return RoomAvailable, true
	}
	return "", false
}

// AvailabilityStatus is the room-level availability flag.
type AvailabilityStatus string

const (
	RoomAvailable   AvailabilityStatus = "available"
	RoomOccupied    AvailabilityStatus = "occupied"
	RoomMaintenance AvailabilityStatus = "maintenance"
	RoomCleaning    AvailabilityStatus = "cleaning"
)

func (a AvailabilityStatus) Valid() bool {
	switch a {
	case RoomAvailable, RoomOccupied, RoomMaintenance, RoomCleaning:
		return true
	}
	return false
}

// RoomType classifies rooms. Matching is exact; there is no hierarchy.
type RoomType string

const (
	RoomSingle RoomType = "single"
	RoomDouble RoomType = "double"
	RoomSuite  RoomType = "suite"
	RoomDeluxe RoomType = "deluxe"
	RoomFamily RoomType = "family"
)

func (t RoomType) Valid() bool {
	switch t {
	case RoomSingle, RoomDouble, RoomSuite, RoomDeluxe, RoomFamily:
		return true
	}
	return false
}
