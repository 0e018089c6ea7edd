package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hotel-booking-backend/config"
	"hotel-booking-backend/internal/apperr"
	"hotel-booking-backend/internal/db"
	"hotel-booking-backend/internal/model"
	"hotel-booking-backend/internal/parse"
	"hotel-booking-backend/internal/store"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.Init(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	sqlDB, _ := gormDB.DB()
	t.Cleanup(func() { sqlDB.Close() })
	return gormDB
}

// seedRooms creates the inventory used across the search tests.
func seedRooms(t *testing.T, gormDB *gorm.DB) map[string]*model.Room {
	t.Helper()
	rooms := []*model.Room{
		{RoomNumber: "101", Type: model.RoomSingle, PricePerNight: model.Cents(150, 0), MaxGuests: 1, Amenities: []string{"wifi"}},
		{RoomNumber: "102", Type: model.RoomDouble, PricePerNight: model.Cents(200, 0), MaxGuests: 2, Amenities: []string{"WiFi", "TV"}},
		{RoomNumber: "201", Type: model.RoomSuite, PricePerNight: model.Cents(300, 0), MaxGuests: 4, Amenities: []string{"wifi", "tv", "minibar"}},
		{RoomNumber: "202", Type: model.RoomDouble, PricePerNight: model.Cents(200, 0), MaxGuests: 2},
		{RoomNumber: "301", Type: model.RoomDeluxe, PricePerNight: model.Cents(250, 0), MaxGuests: 3, AvailabilityStatus: model.RoomMaintenance},
	}
	byNumber := make(map[string]*model.Room, len(rooms))
	for _, r := range rooms {
		require.NoError(t, gormDB.Create(r).Error)
		byNumber[r.RoomNumber] = r
	}
	return byNumber
}

func day(d int) *time.Time {
	t := time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func numbers(rooms []model.Room) []string {
	out := make([]string, len(rooms))
	for i, r := range rooms {
		out[i] = r.RoomNumber
	}
	return out
}

func money(units int64) *model.Money {
	m := model.Cents(units, 0)
	return &m
}

func TestSearch_Filters(t *testing.T) {
	gormDB := newTestDB(t)
	seedRooms(t, gormDB)
	engine := NewEngine(store.NewGormStore(gormDB))

	double := model.RoomDouble
	testCases := []struct {
		name     string
		filter   Filter
		expected []string
	}{
		{
			name:     "No filters returns available rooms only",
			filter:   Filter{},
			expected: []string{"101", "102", "201", "202"},
		},
		{
			name:     "Type and capacity are a conjunction",
			filter:   Filter{Type: &double, MinGuests: 2},
			expected: []string{"102", "202"},
		},
		{
			name:     "Price bounds are inclusive",
			filter:   Filter{MinPrice: money(150), MaxPrice: money(200)},
			expected: []string{"101", "102", "202"},
		},
		{
			name:     "Amenities match all tags case-insensitively",
			filter:   Filter{Amenities: []string{"TV", "wifi"}},
			expected: []string{"102", "201"},
		},
		{
			name:     "Empty amenity list matches everything",
			filter:   Filter{Amenities: []string{}},
			expected: []string{"101", "102", "201", "202"},
		},
		{
			name:     "Nothing matches",
			filter:   Filter{MinGuests: 10},
			expected: []string{},
		},
		{
			name:     "Price descending",
			filter:   Filter{SortBy: parse.SortPrice, Order: parse.Desc, MinGuests: 1, Amenities: []string{"wifi"}},
			expected: []string{"201", "102", "101"},
		},
		{
			name:     "Equal prices tie-break on room number",
			filter:   Filter{SortBy: parse.SortPrice, Order: parse.Asc},
			expected: []string{"101", "102", "202", "201"},
		},
		{
			name:     "Capacity descending",
			filter:   Filter{SortBy: parse.SortMaxGuests, Order: parse.Desc},
			expected: []string{"201", "102", "202", "101"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rooms, err := engine.Search(context.Background(), tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, numbers(rooms))
		})
	}
}

func TestSearch_AllPredicatesCombine(t *testing.T) {
	gormDB := newTestDB(t)
	for _, r := range []*model.Room{
		{RoomNumber: "401", Type: model.RoomDeluxe, PricePerNight: model.Cents(150, 0), MaxGuests: 2, Amenities: []string{"wifi", "tv"}},
		{RoomNumber: "402", Type: model.RoomDeluxe, PricePerNight: model.Cents(200, 0), MaxGuests: 2, Amenities: []string{"wifi"}},
		{RoomNumber: "403", Type: model.RoomDeluxe, PricePerNight: model.Cents(350, 0), MaxGuests: 2, Amenities: []string{"wifi", "tv"}},
		{RoomNumber: "404", Type: model.RoomSuite, PricePerNight: model.Cents(200, 0), MaxGuests: 2, Amenities: []string{"wifi", "tv"}},
		{RoomNumber: "405", Type: model.RoomDeluxe, PricePerNight: model.Cents(100, 0), MaxGuests: 2, Amenities: []string{"WIFI", "TV", "minibar"}},
		{RoomNumber: "406", Type: model.RoomDeluxe, PricePerNight: model.Cents(300, 0), MaxGuests: 2, Amenities: []string{"tv", "wifi"}},
	} {
		require.NoError(t, gormDB.Create(r).Error)
	}
	engine := NewEngine(store.NewGormStore(gormDB))

	deluxe := model.RoomDeluxe
	rooms, err := engine.Search(context.Background(), Filter{
		Type:      &deluxe,
		MinPrice:  money(100),
		MaxPrice:  money(300),
		Amenities: []string{"wifi", "tv"},
		SortBy:    parse.SortPrice,
	})
	require.NoError(t, err)
	// 402 is deluxe and in the price band but has no tv.
	assert.Equal(t, []string{"405", "401", "406"}, numbers(rooms))
}

func TestSearch_ExcludesConflictingRooms(t *testing.T) {
	gormDB := newTestDB(t)
	rooms := seedRooms(t, gormDB)
	user := &model.User{Name: "Grace", Email: "grace@example.com"}
	require.NoError(t, gormDB.Create(user).Error)

	book := func(room string, in, out int, status model.BookingStatus) {
		require.NoError(t, gormDB.Create(&model.Booking{
			UserID: user.ID, RoomID: rooms[room].ID,
			CheckInDate: *day(in), CheckOutDate: *day(out),
			NumberOfGuests: 1, Status: status,
		}).Error)
	}
	book("101", 10, 14, model.BookingConfirmed)
	book("102", 12, 13, model.BookingPending)
	book("201", 10, 14, model.BookingCancelled)
	book("202", 14, 16, model.BookingConfirmed)

	engine := NewEngine(store.NewGormStore(gormDB))
	got, err := engine.Search(context.Background(), Filter{CheckIn: day(10), CheckOut: day(14)})
	require.NoError(t, err)
	// 201's only booking is cancelled and 202's starts on our check-out day.
	assert.Equal(t, []string{"201", "202"}, numbers(got))
}

func TestSearch_Validation(t *testing.T) {
	gormDB := newTestDB(t)
	engine := NewEngine(store.NewGormStore(gormDB))
	penthouse := model.RoomType("penthouse")

	testCases := []struct {
		name   string
		filter Filter
		field  string
	}{
		{name: "Reversed dates", filter: Filter{CheckIn: day(5), CheckOut: day(3)}, field: "check_in_date"},
		{name: "Zero length stay", filter: Filter{CheckIn: day(5), CheckOut: day(5)}, field: "check_out_date"},
		{name: "Only check-in", filter: Filter{CheckIn: day(5)}, field: "check_out_date"},
		{name: "Min above max price", filter: Filter{MinPrice: money(300), MaxPrice: money(100)}, field: "min_price"},
		{name: "Unknown type", filter: Filter{Type: &penthouse}, field: "type"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Search(context.Background(), tc.filter)
			require.ErrorIs(t, err, apperr.ErrValidation)
			assert.Contains(t, apperr.FieldsOf(err), tc.field)
		})
	}
}

func TestSortRooms_StableWithoutField(t *testing.T) {
	rooms := []model.Room{{ID: "c", RoomNumber: "3"}, {ID: "a", RoomNumber: "1"}, {ID: "b", RoomNumber: "2"}}
	sortRooms(rooms, parse.SortNone, parse.Asc)
	assert.Equal(t, []string{"3", "1", "2"}, numbers(rooms))

	sortRooms(rooms, parse.SortRoomNumber, parse.Desc)
	assert.Equal(t, []string{"3", "2", "1"}, numbers(rooms))
}

func TestSortRooms_RoomNumbersCompareByValue(t *testing.T) {
	rooms := []model.Room{
		{ID: "a", RoomNumber: "101"},
		{ID: "b", RoomNumber: "99"},
		{ID: "c", RoomNumber: "PH-1"},
		{ID: "d", RoomNumber: "1001"},
		{ID: "e", RoomNumber: "B2"},
	}
	sortRooms(rooms, parse.SortRoomNumber, parse.Asc)
	assert.Equal(t, []string{"99", "101", "1001", "B2", "PH-1"}, numbers(rooms))

	for i := range rooms {
		rooms[i].PricePerNight = model.Cents(100, 0)
	}
	sortRooms(rooms, parse.SortPrice, parse.Asc)
	assert.Equal(t, []string{"99", "101", "1001", "B2", "PH-1"}, numbers(rooms), "price ties fall back to room number")
}
