// Package parse turns caller-supplied strings into the engine's closed types.
// Every string-to-enum conversion happens here, once, at the boundary.
package parse

import (
	"fmt"
	"strings"
	"time"

	"hotel-booking-backend/internal/apperr"
	"hotel-booking-backend/internal/model"
)

const dateLayout = "2006-01-02"

func invalid(field, msg string) error {
	return apperr.Validation("invalid "+field, map[string]string{field: msg})
}

// Status parses a booking status. Unknown values are rejected rather than
// defaulted to pending.
func Status(raw string) (model.BookingStatus, error) {
	s := model.BookingStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", invalid("status", fmt.Sprintf("unknown booking status %q", raw))
	}
	return s, nil
}

// Availability parses a room availability flag.
func Availability(raw string) (model.AvailabilityStatus, error) {
	a := model.AvailabilityStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !a.Valid() {
		return "", invalid("availability_status", fmt.Sprintf("unknown availability status %q", raw))
	}
	return a, nil
}

// RoomType parses a room type.
func RoomType(raw string) (model.RoomType, error) {
	t := model.RoomType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", invalid("type", fmt.Sprintf("unknown room type %q", raw))
	}
	return t, nil
}

// Date parses "2006-01-02" or RFC3339 and returns midnight UTC of that day.
func Date(field, raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return model.Day(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, invalid(field, fmt.Sprintf("expected YYYY-MM-DD, got %q", raw))
	}
	return model.Day(t), nil
}

// Money parses a non-negative decimal amount with at most two fraction digits.
func Money(field, raw string) (model.Money, error) {
	m, err := model.ParseMoney(raw)
	if err != nil {
		return 0, invalid(field, err.Error())
	}
	return m, nil
}

// Amenities splits a comma separated tag list. Tags are trimmed, lower-cased
// and deduplicated; empty entries are dropped.
func Amenities(raw string) []string {
	return NormalizeAmenities(strings.Split(raw, ","))
}

// NormalizeAmenities applies the Amenities rules to an already split list.
func NormalizeAmenities(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SortField names a room attribute search results can be ordered by.
type SortField string

const (
	SortNone       SortField = ""
	SortPrice      SortField = "price"
	SortType       SortField = "type"
	SortMaxGuests  SortField = "maxGuests"
	SortRoomNumber SortField = "roomNumber"
)

// SortOrder is ascending or descending.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Sort parses a sort field and order. An empty order defaults to ascending.
func Sort(field, order string) (SortField, SortOrder, error) {
	var f SortField
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "":
		f = SortNone
	case "price", "price_per_night", "pricepernight":
		f = SortPrice
	case "type":
		f = SortType
	case "maxguests", "max_guests", "capacity":
		f = SortMaxGuests
	case "roomnumber", "room_number":
		f = SortRoomNumber
	default:
		return "", "", invalid("sort", fmt.Sprintf("unknown sort field %q", field))
	}

	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "asc", "ascending":
		return f, Asc, nil
	case "desc", "descending":
		return f, Desc, nil
	}
	return "", "", invalid("order", fmt.Sprintf("unknown sort order %q", order))
}
