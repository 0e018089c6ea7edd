// Package search finds rooms bookable for a stay and matching guest filters.
package search

import (
	"cmp"
	"context"
	"sort"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"hotel-booking-backend/internal/apperr"
	"hotel-booking-backend/internal/booking"
	"hotel-booking-backend/internal/catalog"
	"hotel-booking-backend/internal/model"
	"hotel-booking-backend/internal/parse"
	"hotel-booking-backend/internal/store"
)

// Filter is a room search request. Nil and zero fields do not constrain.
type Filter struct {
	CheckIn   *time.Time
	CheckOut  *time.Time
	Type      *model.RoomType
	MinGuests int
	MinPrice  *model.Money
	MaxPrice  *model.Money
	// Amenities must all be present on a room, compared case-insensitively.
	Amenities []string
	SortBy    parse.SortField
	Order     parse.SortOrder
}

// Engine runs room searches.
type Engine struct {
	catalog  *catalog.Service
	detector *booking.ConflictDetector
}

// NewEngine creates a search engine reading from s.
func NewEngine(s store.Store) *Engine {
	return &Engine{
		catalog:  catalog.NewService(s),
		detector: booking.NewConflictDetector(s),
	}
}

// Search returns the rooms flagged available that satisfy f and, when a stay
// is given, have no pending or confirmed booking overlapping it.
func (e *Engine) Search(ctx context.Context, f Filter) ([]model.Room, error) {
	stay, hasStay, err := validate(f)
	if err != nil {
		return nil, err
	}

	available := model.RoomAvailable
	candidates, err := e.catalog.List(ctx, store.RoomQuery{
		Availability: &available,
		Type:         f.Type,
		MinGuests:    f.MinGuests,
		MinPrice:     f.MinPrice,
		MaxPrice:     f.MaxPrice,
	})
	if err != nil {
		return nil, err
	}

	amenities := parse.NormalizeAmenities(f.Amenities)
	seen := make(map[string]struct{}, len(candidates))
	results := make([]model.Room, 0, len(candidates))
	for _, room := range candidates {
		if _, dup := seen[room.ID]; dup {
			continue
		}
		if !room.HasAmenities(amenities) {
			continue
		}
		if hasStay {
			conflict, err := e.detector.HasConflict(ctx, room.ID, stay, "")
			if err != nil {
				return nil, err
			}
			if conflict {
				continue
			}
		}
		seen[room.ID] = struct{}{}
		results = append(results, room)
	}

	sortRooms(results, f.SortBy, f.Order)

	log.WithFields(log.Fields{
		"candidates": len(candidates),
		"results":    len(results),
		"has_stay":   hasStay,
	}).Debug("Room search complete")
	return results, nil
}

func validate(f Filter) (model.DateRange, bool, error) {
	fields := map[string]string{}
	var (
		stay    model.DateRange
		hasStay bool
	)
	switch {
	case f.CheckIn == nil && f.CheckOut == nil:
	case f.CheckIn == nil || f.CheckOut == nil:
		fields["check_in_date"] = "check-in and check-out must be given together"
		fields["check_out_date"] = "check-in and check-out must be given together"
	default:
		stay = model.NewDateRange(*f.CheckIn, *f.CheckOut)
		if !stay.Valid() {
			fields["check_in_date"] = "must be before check_out_date"
			fields["check_out_date"] = "must be after check_in_date"
		}
		hasStay = true
	}
	if f.Type != nil && !f.Type.Valid() {
		fields["type"] = "unknown room type"
	}
	if f.MinGuests < 0 {
		fields["guests"] = "must not be negative"
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		fields["min_price"] = "must not exceed max_price"
	}
	if len(fields) > 0 {
		return model.DateRange{}, false, apperr.Validation("invalid search", fields)
	}
	return stay, hasStay, nil
}

// sortRooms orders rooms by field. Ties fall back to room number, then id.
// With no field the candidate order is kept.
func sortRooms(rooms []model.Room, field parse.SortField, order parse.SortOrder) {
	if field == parse.SortNone {
		return
	}
	by := func(a, b *model.Room) int {
		switch field {
		case parse.SortPrice:
			return cmp.Compare(a.PricePerNight, b.PricePerNight)
		case parse.SortType:
			return cmp.Compare(a.Type, b.Type)
		case parse.SortMaxGuests:
			return cmp.Compare(a.MaxGuests, b.MaxGuests)
		case parse.SortRoomNumber:
			return compareRoomNumbers(a.RoomNumber, b.RoomNumber)
		}
		return 0
	}
	sort.SliceStable(rooms, func(i, j int) bool {
		a, b := &rooms[i], &rooms[j]
		if c := by(a, b); c != 0 {
			if order == parse.Desc {
				return c > 0
			}
			return c < 0
		}
		if c := compareRoomNumbers(a.RoomNumber, b.RoomNumber); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}

// compareRoomNumbers orders numeric room numbers by value, so "99" comes
// before "101", and puts them ahead of non-numeric ones, which compare as text.
func compareRoomNumbers(a, b string) int {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		if c := cmp.Compare(x, y); c != 0 {
			return c
		}
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return cmp.Compare(a, b)
}
