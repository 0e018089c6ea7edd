// Package catalog is the room inventory surface consumed by the booking
// engine: lookups, availability flag writes and room persistence.
package catalog

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"hotel-booking-backend/internal/apperr"
	"hotel-booking-backend/internal/model"
	"hotel-booking-backend/internal/parse"
	"hotel-booking-backend/internal/store"
)

// Service exposes room lookups and availability updates.
type Service struct {
	store store.Store
}

// NewService creates a catalog over the given store.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// WithStore returns a catalog bound to s, typically a transaction-scoped store.
func (c *Service) WithStore(s store.Store) *Service {
	return &Service{store: s}
}

// GetByID returns the room with the given id.
func (c *Service) GetByID(ctx context.Context, id string) (*model.Room, error) {
	room, err := c.store.GetRoom(ctx, id)
	if err != nil {
		return nil, mapErr(err, "get room", "room", id)
	}
	return room, nil
}

// GetByRoomNumber returns the room with the given human-readable number.
func (c *Service) GetByRoomNumber(ctx context.Context, number string) (*model.Room, error) {
	room, err := c.store.GetRoomByNumber(ctx, number)
	if err != nil {
		return nil, mapErr(err, "get room by number", "room_number", number)
	}
	return room, nil
}

// SetAvailability persists a new availability flag for the room.
func (c *Service) SetAvailability(ctx context.Context, id string, status model.AvailabilityStatus) error {
	if !status.Valid() {
		return apperr.Validation("invalid availability status", map[string]string{
			"availability_status": string(status),
		})
	}
	if err := c.store.SetRoomAvailability(ctx, id, status); err != nil {
		return mapErr(err, "set room availability", "room", id)
	}
	log.WithFields(log.Fields{"room_id": id, "availability": status}).Debug("room availability updated")
	return nil
}

// Save validates and persists a room. Rooms without an id are created.
func (c *Service) Save(ctx context.Context, room *model.Room) error {
	if err := validateRoom(room); err != nil {
		return err
	}
	room.Amenities = parse.NormalizeAmenities(room.Amenities)

	if err := c.store.SaveRoom(ctx, room); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return apperr.Validation("room number already exists", map[string]string{
				"room_number": "must be unique",
			})
		}
		return apperr.Storage("save room", err)
	}
	return nil
}

// List returns rooms matching the database-side predicates of q.
func (c *Service) List(ctx context.Context, q store.RoomQuery) ([]model.Room, error) {
	rooms, err := c.store.ListRooms(ctx, q)
	if err != nil {
		return nil, apperr.Storage("list rooms", err)
	}
	return rooms, nil
}

func validateRoom(room *model.Room) error {
	fields := map[string]string{}
	room.RoomNumber = strings.TrimSpace(room.RoomNumber)
	if room.RoomNumber == "" {
		fields["room_number"] = "is required"
	}
	if !room.Type.Valid() {
		fields["type"] = "unknown room type"
	}
	if room.PricePerNight < 0 {
		fields["price_per_night"] = "must not be negative"
	}
	if room.MaxGuests < 1 {
		fields["max_guests"] = "must be at least 1"
	}
	if room.AvailabilityStatus == "" {
		room.AvailabilityStatus = model.RoomAvailable
	} else if !room.AvailabilityStatus.Valid() {
		fields["availability_status"] = "unknown availability status"
	}
	if len(fields) > 0 {
		return apperr.Validation("invalid room", fields)
	}
	return nil
}

func mapErr(err error, op, entity, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(entity, id)
	}
	return apperr.Storage(op, err)
}
