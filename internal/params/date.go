package params

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate reads a calendar day as UTC midnight. An empty value yields today.
func ParseDate(value string, now time.Time) (time.Time, error) {
	if value == "" {
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}
