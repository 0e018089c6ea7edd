package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-booking-backend/internal/model"
)

// Postgres SQLSTATE codes the engine maps to domain outcomes.
const (
	pgExclusionViolation   = "23P01"
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
)

// Store defines the interface for all database operations.
type Store interface {
	GetRoom(ctx context.Context, id string) (*model.Room, error)
	GetRoomByNumber(ctx context.Context, number string) (*model.Room, error)
	SaveRoom(ctx context.Context, room *model.Room) error
	SetRoomAvailability(ctx context.Context, id string, status model.AvailabilityStatus) error
	ListRooms(ctx context.Context, q RoomQuery) ([]model.Room, error)

	GetUser(ctx context.Context, id string) (*model.User, error)

	CreateBooking(ctx context.Context, b *model.Booking) error
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	SaveBooking(ctx context.Context, b *model.Booking) error
	ListBookings(ctx context.Context, q BookingQuery) ([]model.Booking, error)
	// CountOverlapping counts pending/confirmed bookings of roomID whose stay
	// overlaps stay, ignoring excludeID when it is not empty.
	CountOverlapping(ctx context.Context, roomID string, stay model.DateRange, excludeID string) (int64, error)

	// InTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(tx Store) error) error

	DB() *gorm.DB
}

// Option configures a gormStore.
type Option func(*gormStore)

// WithSerializable makes InTx open transactions at SERIALIZABLE isolation.
func WithSerializable() Option {
	return func(s *gormStore) { s.serializable = true }
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db           *gorm.DB
	serializable bool
	inTx         bool
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, opts ...Option) Store {
	s := &gormStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	var txOpts []*sql.TxOptions
	if s.serializable {
		txOpts = append(txOpts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx, serializable: s.serializable, inTx: true})
	}, txOpts...)
}

// --- Rooms ---

func (s *gormStore) GetRoom(ctx context.Context, id string) (*model.Room, error) {
	var room model.Room
	if err := s.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "room %s", id)
	}
	return &room, nil
}

func (s *gormStore) GetRoomByNumber(ctx context.Context, number string) (*model.Room, error) {
	var room model.Room
	if err := s.db.WithContext(ctx).First(&room, "room_number = ?", number).Error; err != nil {
		return nil, notFound(err, "room number %s", number)
	}
	return &room, nil
}

// SaveRoom inserts a room without an id and updates one that has an id.
func (s *gormStore) SaveRoom(ctx context.Context, room *model.Room) error {
	db := s.db.WithContext(ctx)
	var err error
	if room.ID == "" {
		err = db.Create(room).Error
	} else {
		err = db.Save(room).Error
	}
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("room number %s: %w", room.RoomNumber, ErrDuplicate)
		}
		return fmt.Errorf("failed to save room %s: %w", room.RoomNumber, err)
	}
	return nil
}

func (s *gormStore) SetRoomAvailability(ctx context.Context, id string, status model.AvailabilityStatus) error {
	res := s.db.WithContext(ctx).
		Model(&model.Room{}).
		Where("id = ?", id).
		Update("availability_status", string(status))
	if res.Error != nil {
		return fmt.Errorf("failed to set availability of room %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("room %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *gormStore) ListRooms(ctx context.Context, q RoomQuery) ([]model.Room, error) {
	db := s.db.WithContext(ctx).Model(&model.Room{})
	if q.Availability != nil {
		db = db.Where("availability_status = ?", string(*q.Availability))
	}
	if q.Type != nil {
		db = db.Where("type = ?", string(*q.Type))
	}
	if q.MinGuests > 0 {
		db = db.Where("max_guests >= ?", q.MinGuests)
	}
	if q.MinPrice != nil {
		db = db.Where("price_per_night >= ?", int64(*q.MinPrice))
	}
	if q.MaxPrice != nil {
		db = db.Where("price_per_night <= ?", int64(*q.MaxPrice))
	}

	var rooms []model.Room
	if err := db.Order("room_number").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// --- Users ---

func (s *gormStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "user %s", id)
	}
	return &user, nil
}

// --- Bookings ---

func (s *gormStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error; err != nil {
		return fmt.Errorf("failed to create booking for room %s: %w", b.RoomID, err)
	}
	return nil
}

func (s *gormStore) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	if err := s.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "booking %s", id)
	}
	return &booking, nil
}

func (s *gormStore) SaveBooking(ctx context.Context, b *model.Booking) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(b).Error; err != nil {
		return fmt.Errorf("failed to save booking %s: %w", b.ID, err)
	}
	return nil
}

func (s *gormStore) ListBookings(ctx context.Context, q BookingQuery) ([]model.Booking, error) {
	db := s.db.WithContext(ctx).Model(&model.Booking{})
	if q.UserID != "" {
		db = db.Where("user_id = ?", q.UserID)
	}
	if q.RoomID != "" {
		db = db.Where("room_id = ?", q.RoomID)
	}
	if q.Status != "" {
		db = db.Where("status = ?", string(q.Status))
	}

	var bookings []model.Booking
	if err := db.Order("check_in_date").Order("created_at").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (s *gormStore) CountOverlapping(ctx context.Context, roomID string, stay model.DateRange, excludeID string) (int64, error) {
	db := s.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("room_id = ?", roomID).
		Where("status IN ?", activeStatuses()).
		Where("check_in_date < ? AND check_out_date > ?", stay.End, stay.Start)
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}

	var n int64
	if err := db.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to check overlapping bookings for room %s: %w", roomID, err)
	}
	return n, nil
}

// --- Helpers ---

func activeStatuses() []string {
	out := make([]string, len(model.ActiveBookingStatuses))
	for i, st := range model.ActiveBookingStatuses {
		out[i] = string(st)
	}
	return out
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
	}
	return fmt.Errorf("failed to load "+format+": %w", append(args, err)...)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsOverlapViolation reports whether err is the bookings exclusion constraint
// rejecting a second active booking for the same room and dates.
func IsOverlapViolation(err error) bool {
	return pgCode(err) == pgExclusionViolation
}

// IsSerializationFailure reports whether a SERIALIZABLE transaction was aborted
// because of a concurrent writer.
func IsSerializationFailure(err error) bool {
	return pgCode(err) == pgSerializationFailure
}

// IsUniqueViolation reports whether err is a uniqueness constraint violation.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || pgCode(err) == pgUniqueViolation {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
