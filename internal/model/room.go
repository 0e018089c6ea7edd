package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Room is a bookable unit of the hotel's inventory.
type Room struct {
	ID                 string                      `gorm:"primaryKey;size:36" json:"id"`
	RoomNumber         string                      `gorm:"uniqueIndex;size:32;not null" json:"roomNumber"`
	Type               RoomType                    `gorm:"size:32;not null;index" json:"type"`
	PricePerNight      Money                       `gorm:"not null" json:"pricePerNight"`
	MaxGuests          int                         `gorm:"not null" json:"maxGuests"`
	Description        string                      `gorm:"type:text" json:"description"`
	Amenities          datatypes.JSONSlice[string] `json:"amenities"`
	AvailabilityStatus AvailabilityStatus          `gorm:"size:32;not null;default:'available';index" json:"availabilityStatus"`
	CreatedAt          time.Time                   `json:"createdAt"`
	UpdatedAt          time.Time                   `json:"updatedAt"`
}

// BeforeCreate assigns an opaque id to new rooms.
func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.AvailabilityStatus == "" {
		r.AvailabilityStatus = RoomAvailable
	}
	return nil
}

// HasAmenities reports whether the room carries every tag in want.
// Comparison is case-insensitive; an empty want matches every room.
func (r *Room) HasAmenities(want []string) bool {
	if len(want) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(r.Amenities))
	for _, a := range r.Amenities {
		have[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}
	for _, w := range want {
		if _, ok := have[strings.ToLower(strings.TrimSpace(w))]; !ok {
			return false
		}
	}
	return true
}
