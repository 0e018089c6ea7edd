package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var moneyRe = regexp.MustCompile(`^(\d+)(?:\.(\d{1,2}))?$`)

// Money is a currency amount in minor units (cents).
type Money int64

// Cents builds a Money from a whole amount and its cents.
func Cents(units, cents int64) Money {
	return Money(units*100 + cents)
}

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON renders the amount as a JSON number with two fraction digits.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseMoney reads a non-negative decimal amount with at most two fraction
// digits, such as "150" or "150.50", without going through floating point.
func ParseMoney(raw string) (Money, error) {
	m := moneyRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, fmt.Errorf("expected a non-negative amount like 150 or 150.50, got %q", raw)
	}
	units, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, err
	}
	var cents int64
	if frac := m[2]; frac != "" {
		if len(frac) == 1 {
			frac += "0"
		}
		cents, _ = strconv.ParseInt(frac, 10, 64)
	}
	return Cents(units, cents), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal. null is a no-op.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := ParseMoney(s)
	if err != nil {
		return fmt.Errorf("invalid money amount: %w", err)
	}
	*m = v
	return nil
}
