// Package booking admits, updates and cancels reservations while keeping the
// no-overlap invariant and the room availability flag consistent.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"hotel-booking-backend/internal/apperr"
	"hotel-booking-backend/internal/catalog"
	"hotel-booking-backend/internal/model"
	"hotel-booking-backend/internal/store"
)

// Notifier is told about bookings whose status changed and committed.
type Notifier interface {
	Dispatch(bookingID string)
}

// CreateRequest carries the fields of a new reservation.
type CreateRequest struct {
	UserID          string
	RoomID          string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	SpecialRequests *string
}

// Update is a partial modification of a booking. Nil fields are left as they are.
type Update struct {
	Status          *model.BookingStatus
	CheckIn         *time.Time
	CheckOut        *time.Time
	Guests          *int
	SpecialRequests *string
}

// Filter narrows List. Empty fields are not applied.
type Filter struct {
	UserID string
	RoomID string
	Status model.BookingStatus
}

// Option configures a Service.
type Option func(*Service)

// WithTerminalPolicy sets how updates to cancelled or completed bookings behave.
func WithTerminalPolicy(p TerminalPolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithNotifier registers n to be told about committed status changes.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// Service is the booking lifecycle manager.
type Service struct {
	store    store.Store
	detector *ConflictDetector
	policy   TerminalPolicy
	notifier Notifier
}

// NewService creates a lifecycle manager over s.
func NewService(s store.Store, opts ...Option) *Service {
	svc := &Service{
		store:    s,
		detector: NewConflictDetector(s),
		policy:   PolicyIgnore,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Policy returns the configured terminal policy.
func (s *Service) Policy() TerminalPolicy {
	return s.policy
}

// Create admits a new pending booking. It does not touch the room's flag.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*model.Booking, error) {
	stay := model.NewDateRange(req.CheckIn, req.CheckOut)
	if !stay.Valid() {
		return nil, invalidDates("check-in date must be before check-out date")
	}
	if req.Guests < 1 {
		return nil, apperr.Validation("invalid guest count", map[string]string{
			"number_of_guests": "must be at least 1",
		})
	}

	if _, err := s.store.GetUser(ctx, req.UserID); err != nil {
		return nil, lookupErr(err, "get user", "user", req.UserID)
	}
	room, err := catalog.NewService(s.store).GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if req.Guests > room.MaxGuests {
		return nil, apperr.Validation("too many guests for room", map[string]string{
			"number_of_guests": fmt.Sprintf("room %s holds at most %d", room.RoomNumber, room.MaxGuests),
		})
	}

	b := &model.Booking{
		UserID:          req.UserID,
		RoomID:          room.ID,
		CheckInDate:     stay.Start,
		CheckOutDate:    stay.End,
		NumberOfGuests:  req.Guests,
		SpecialRequests: req.SpecialRequests,
		Status:          model.BookingPending,
	}

	admit := func() error {
		return s.store.InTx(ctx, func(tx store.Store) error {
			conflict, err := s.detector.WithStore(tx).HasConflict(ctx, room.ID, stay, "")
			if err != nil {
				return err
			}
			if conflict {
				return overlapErr()
			}
			return tx.CreateBooking(ctx, b)
		})
	}
	err = admit()
	if store.IsSerializationFailure(err) {
		// A concurrent writer won; a real overlap is reported like any other.
		log.WithField("room_id", room.ID).Debug("Booking admission aborted by a concurrent writer, retrying once")
		b.ID = ""
		err = admit()
	}
	if err != nil {
		return nil, writeErr(err, "create booking", b.ID)
	}

	log.WithFields(log.Fields{
		"booking_id": b.ID,
		"room_id":    b.RoomID,
		"user_id":    b.UserID,
		"check_in":   b.CheckInDate.Format(time.DateOnly),
		"check_out":  b.CheckOutDate.Format(time.DateOnly),
	}).Info("Booking created")
	return b, nil
}

// Get returns a single booking.
func (s *Service) Get(ctx context.Context, id string) (*model.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "get booking", "booking", id)
	}
	return b, nil
}

// List returns the bookings matching f, ordered by check-in date.
func (s *Service) List(ctx context.Context, f Filter) ([]model.Booking, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.Validation("invalid status", map[string]string{"status": string(f.Status)})
	}
	bookings, err := s.store.ListBookings(ctx, store.BookingQuery{
		UserID: f.UserID,
		RoomID: f.RoomID,
		Status: f.Status,
	})
	if err != nil {
		return nil, apperr.Storage("list bookings", err)
	}
	return bookings, nil
}

// UpdateStatus moves a booking to status and syncs the room's flag.
func (s *Service) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
	return s.Update(ctx, id, Update{Status: &status})
}

// Cancel cancels a booking. Cancelling a booking that is already cancelled or
// completed returns it unchanged.
func (s *Service) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	cancelled := model.BookingCancelled
	return s.apply(ctx, id, Update{Status: &cancelled}, PolicyIgnore)
}

// Update applies u to the booking. The booking write and any room flag write
// commit together or not at all.
func (s *Service) Update(ctx context.Context, id string, u Update) (*model.Booking, error) {
	return s.apply(ctx, id, u, s.policy)
}

func (s *Service) apply(ctx context.Context, id string, u Update, policy TerminalPolicy) (*model.Booking, error) {
	if u.Status != nil && !u.Status.Valid() {
		return nil, apperr.Validation("invalid status", map[string]string{"status": string(*u.Status)})
	}

	var (
		out      *model.Booking
		previous model.BookingStatus
	)
	err := s.store.InTx(ctx, func(tx store.Store) error {
		b, err := tx.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		previous = b.Status
		out = b

		if b.Status.IsTerminal() {
			if policy == PolicyReject {
				return apperr.Validation("booking can no longer be modified", map[string]string{
					"status": fmt.Sprintf("booking is %s", b.Status),
				})
			}
			log.WithFields(log.Fields{"booking_id": b.ID, "status": b.Status}).
				Debug("Ignoring update of booking in terminal state")
			return nil
		}

		dirty, err := s.applyFields(ctx, tx, b, u)
		if err != nil || !dirty {
			return err
		}

		if err := tx.SaveBooking(ctx, b); err != nil {
			return err
		}
		if b.Status == previous {
			return nil
		}
		if flag, ok := b.Status.RoomAvailability(); ok {
			if err := catalog.NewService(tx).SetAvailability(ctx, b.RoomID, flag); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, writeErr(err, "update booking", id)
	}

	if out.Status != previous {
		log.WithFields(log.Fields{
			"booking_id": out.ID,
			"room_id":    out.RoomID,
			"from":       previous,
			"status":     out.Status,
		}).Info("Booking status changed")
		if s.notifier != nil {
			s.notifier.Dispatch(out.ID)
		}
	}
	return out, nil
}

// applyFields validates u against b and copies it in. It reports whether
// anything changed.
func (s *Service) applyFields(ctx context.Context, tx store.Store, b *model.Booking, u Update) (bool, error) {
	dirty := false

	next := b.Status
	if u.Status != nil && *u.Status != b.Status {
		if !b.Status.CanTransitionTo(*u.Status) {
			return false, apperr.Validation("invalid status transition", map[string]string{
				"status": fmt.Sprintf("cannot move from %s to %s", b.Status, *u.Status),
			})
		}
		next = *u.Status
		dirty = true
	}

	if u.CheckIn != nil || u.CheckOut != nil {
		stay := b.Stay()
		if u.CheckIn != nil {
			stay.Start = model.Day(*u.CheckIn)
		}
		if u.CheckOut != nil {
			stay.End = model.Day(*u.CheckOut)
		}
		if !stay.Valid() {
			return false, invalidDates("check-in date must be before check-out date")
		}
		if !stay.Start.Equal(b.CheckInDate) || !stay.End.Equal(b.CheckOutDate) {
			if next.IsActive() {
				conflict, err := s.detector.WithStore(tx).HasConflict(ctx, b.RoomID, stay, b.ID)
				if err != nil {
					return false, err
				}
				if conflict {
					return false, overlapErr()
				}
			}
			b.CheckInDate, b.CheckOutDate = stay.Start, stay.End
			dirty = true
		}
	}

	if u.Guests != nil && *u.Guests != b.NumberOfGuests {
		if *u.Guests < 1 {
			return false, apperr.Validation("invalid guest count", map[string]string{
				"number_of_guests": "must be at least 1",
			})
		}
		room, err := catalog.NewService(tx).GetByID(ctx, b.RoomID)
		if err != nil {
			return false, err
		}
		if *u.Guests > room.MaxGuests {
			return false, apperr.Validation("too many guests for room", map[string]string{
				"number_of_guests": fmt.Sprintf("room %s holds at most %d", room.RoomNumber, room.MaxGuests),
			})
		}
		b.NumberOfGuests = *u.Guests
		dirty = true
	}

	if u.SpecialRequests != nil {
		b.SpecialRequests = u.SpecialRequests
		dirty = true
	}

	b.Status = next
	return dirty, nil
}

func invalidDates(msg string) error {
	return apperr.Validation(msg, map[string]string{
		"check_in_date":  "must be before check_out_date",
		"check_out_date": "must be after check_in_date",
	})
}

// overlapErr is how a conflicting stay surfaces: as a failure of both date fields.
func overlapErr() error {
	return apperr.Validation("room is already booked for these dates", map[string]string{
		"check_in_date":  "overlaps an existing booking",
		"check_out_date": "overlaps an existing booking",
	})
}

func lookupErr(err error, op, entity, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(entity, id)
	}
	return apperr.Storage(op, err)
}

// writeErr classifies an error that escaped a booking transaction.
func writeErr(err error, op, bookingID string) error {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case store.IsOverlapViolation(err):
		return overlapErr()
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("booking", bookingID)
	}
	if store.IsSerializationFailure(err) {
		log.WithField("booking_id", bookingID).Warn("Booking transaction aborted by a concurrent writer")
	}
	return apperr.Storage(op, err)
}
