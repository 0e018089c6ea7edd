package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booking is a guest's reservation of a room for [CheckInDate, CheckOutDate).
type Booking struct {
	ID              string        `gorm:"primaryKey;size:36" json:"id"`
	UserID          string        `gorm:"size:36;not null;index" json:"userId"`
	RoomID          string        `gorm:"size:36;not null;index:idx_bookings_room_dates,priority:1" json:"roomId"`
	CheckInDate     time.Time     `gorm:"not null;index:idx_bookings_room_dates,priority:2" json:"checkInDate"`
	CheckOutDate    time.Time     `gorm:"not null;index:idx_bookings_room_dates,priority:3" json:"checkOutDate"`
	NumberOfGuests  int           `gorm:"not null" json:"numberOfGuests"`
	SpecialRequests *string       `gorm:"type:text" json:"specialRequests,omitempty"`
	Status          BookingStatus `gorm:"size:16;not null;default:'pending';index" json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`

	// Associations
	User User `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Room Room `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}

// BeforeCreate assigns an opaque id to new bookings.
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = BookingPending
	}
	return nil
}

// Stay returns the booking's date range.
func (b *Booking) Stay() DateRange {
	return DateRange{Start: b.CheckInDate, End: b.CheckOutDate}
}
