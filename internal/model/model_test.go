package model

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDateRange_Overlaps(t *testing.T) {
	base := NewDateRange(day(2024, 4, 1), day(2024, 4, 5))

	testCases := []struct {
		name     string
		other    DateRange
		expected bool
	}{
		{"Back-to-back after", NewDateRange(day(2024, 4, 5), day(2024, 4, 8)), false},
		{"Back-to-back before", NewDateRange(day(2024, 3, 28), day(2024, 4, 1)), false},
		{"Partial overlap", NewDateRange(day(2024, 4, 3), day(2024, 4, 6)), true},
		{"Contained", NewDateRange(day(2024, 4, 2), day(2024, 4, 3)), true},
		{"Containing", NewDateRange(day(2024, 3, 1), day(2024, 5, 1)), true},
		{"Identical", base, true},
		{"Disjoint", NewDateRange(day(2024, 5, 1), day(2024, 5, 3)), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, base.Overlaps(tc.other))
			assert.Equal(t, tc.expected, tc.other.Overlaps(base), "overlap must be symmetric")
		})
	}
}

func TestDateRange_ValidAndNights(t *testing.T) {
	r := NewDateRange(time.Date(2024, 4, 1, 18, 0, 0, 0, time.UTC), day(2024, 4, 5))
	assert.True(t, r.Valid())
	assert.Equal(t, day(2024, 4, 1), r.Start)
	assert.Equal(t, 4, r.Nights())

	assert.False(t, NewDateRange(day(2024, 4, 5), day(2024, 4, 1)).Valid())
	assert.False(t, NewDateRange(day(2024, 4, 5), day(2024, 4, 5)).Valid())
}

func TestBookingStatus_Transitions(t *testing.T) {
	testCases := []struct {
		from     BookingStatus
		to       BookingStatus
		expected bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingCompleted, true},
		{BookingPending, BookingPending, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingCompleted, true},
		{BookingConfirmed, BookingConfirmed, true},
		{BookingConfirmed, BookingPending, false},
		{BookingCancelled, BookingConfirmed, false},
		{BookingCancelled, BookingPending, false},
		{BookingCompleted, BookingCancelled, false},
		{BookingPending, BookingStatus("expired"), false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.from.CanTransitionTo(tc.to))
		})
	}

	assert.True(t, BookingCancelled.IsTerminal())
	assert.True(t, BookingCompleted.IsTerminal())
	assert.False(t, BookingConfirmed.IsTerminal())
	assert.True(t, BookingPending.IsActive())
	assert.False(t, BookingCompleted.IsActive())
}

func TestBookingStatus_RoomAvailability(t *testing.T) {
	a, ok := BookingConfirmed.RoomAvailability()
	assert.True(t, ok)
	assert.Equal(t, RoomOccupied, a)

	for _, s := range []BookingStatus{BookingCancelled, BookingCompleted} {
		a, ok = s.RoomAvailability()
		assert.True(t, ok)
		assert.Equal(t, RoomAvailable, a)
	}

	_, ok = BookingPending.RoomAvailability()
	assert.False(t, ok, "a pending booking does not claim the room")
}

func TestMoney_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Price Money `json:"price"`
	}{Price: Cents(150, 5)})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"price":150.05}`, string(b))

	var m Money
	assert.NoError(t, json.Unmarshal([]byte(`"99.99"`), &m))
	assert.Equal(t, Money(9999), m)
	assert.NoError(t, json.Unmarshal([]byte(`120`), &m))
	assert.Equal(t, Money(12000), m)
	assert.Equal(t, "-1.50", Money(-150).String())
}

func TestMoney_UnmarshalIsExact(t *testing.T) {
	var m Money
	assert.NoError(t, json.Unmarshal([]byte(`92233720368547758.07`), &m))
	assert.Equal(t, Money(math.MaxInt64), m)
	assert.NoError(t, json.Unmarshal([]byte(`0.29`), &m))
	assert.Equal(t, Money(29), m)
	assert.NoError(t, json.Unmarshal([]byte(`"7.5"`), &m))
	assert.Equal(t, Money(750), m)

	for _, raw := range []string{`1.005`, `-1`, `1e2`, `"abc"`} {
		assert.Error(t, json.Unmarshal([]byte(raw), &m), raw)
	}
}

func TestRoom_HasAmenities(t *testing.T) {
	r := Room{Amenities: []string{"WiFi", "tv", "minibar"}}
	assert.True(t, r.HasAmenities(nil), "empty list matches everything")
	assert.True(t, r.HasAmenities([]string{"wifi", "TV"}))
	assert.False(t, r.HasAmenities([]string{"wifi", "balcony"}))
}
