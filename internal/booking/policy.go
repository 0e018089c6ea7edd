package booking

import (
	"strings"

	"hotel-booking-backend/internal/apperr"
)

// TerminalPolicy decides what an update does to a cancelled or completed booking.
type TerminalPolicy string

const (
	// PolicyIgnore returns the stored booking unchanged and writes nothing.
	PolicyIgnore TerminalPolicy = "ignore"
	// PolicyReject fails the update with a validation error on status.
	PolicyReject TerminalPolicy = "reject"
)

// ParseTerminalPolicy parses a configured policy name. Empty means ignore.
func ParseTerminalPolicy(raw string) (TerminalPolicy, error) {
	switch TerminalPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyIgnore:
		return PolicyIgnore, nil
	case PolicyReject:
		return PolicyReject, nil
	}
	return "", apperr.Validation("unknown terminal policy", map[string]string{
		"terminal_policy": raw,
	})
}
