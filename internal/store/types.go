package store

import (
	"errors"

	"hotel-booking-backend/internal/model"
)

// ErrNotFound is returned (wrapped) when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned (wrapped) when a write violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// RoomQuery holds the predicates evaluated by the database when listing rooms.
// Nil or zero fields are not applied.
type RoomQuery struct {
	Availability *model.AvailabilityStatus
	Type         *model.RoomType
	MinGuests    int
	MinPrice     *model.Money
	MaxPrice     *model.Money
}

// BookingQuery filters ListBookings. Empty fields are not applied.
type BookingQuery struct {
	UserID string
	RoomID string
	Status model.BookingStatus
}
