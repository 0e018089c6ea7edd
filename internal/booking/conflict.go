package booking

import (
	"context"

	"hotel-booking-backend/internal/apperr"
	"hotel-booking-backend/internal/model"
	"hotel-booking-backend/internal/store"
)

// ConflictDetector answers whether a room is already held for a date range.
type ConflictDetector struct {
	store store.Store
}

// NewConflictDetector creates a detector reading from s.
func NewConflictDetector(s store.Store) *ConflictDetector {
	return &ConflictDetector{store: s}
}

// WithStore returns a detector bound to s, typically a transaction-scoped store.
func (d *ConflictDetector) WithStore(s store.Store) *ConflictDetector {
	return &ConflictDetector{store: s}
}

// HasConflict reports whether any pending or confirmed booking of roomID other
// than excludeID overlaps stay. Cancelled and completed bookings never conflict.
func (d *ConflictDetector) HasConflict(ctx context.Context, roomID string, stay model.DateRange, excludeID string) (bool, error) {
	n, err := d.store.CountOverlapping(ctx, roomID, stay, excludeID)
	if err != nil {
		return false, apperr.Storage("check booking conflicts", err)
	}
	return n > 0, nil
}
