package scheduling

import (
	"strings"
	"time"

	apperrors "github.com/jwalitptl/therapy-scheduler/pkg/errors"
)

const (
	// DateLayout is the ISO date format used for every calendar and ledger key.
	DateLayout = "2006-01-02"
	// SlotLayout is the time-of-day token format, e.g. "07:00".
	SlotLayout = "15:04"
)

// ParseDate parses a yyyy-MM-dd date in UTC.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, apperrors.InvalidRequest("invalid date %q: expected yyyy-MM-dd", date)
	}
	return t, nil
}

// FormatDate renders t as yyyy-MM-dd.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays returns date shifted by n calendar days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// Weekday returns the day of week for date.
func Weekday(date string) (time.Weekday, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return t.Weekday(), nil
}

// DateRange returns n consecutive dates starting at start.
func DateRange(start string, n int) ([]string, error) {
	t, err := ParseDate(start)
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, FormatDate(t.AddDate(0, 0, i)))
	}
	return dates, nil
}

// ValidateSlot checks that slot is an HH:MM token.
func ValidateSlot(slot string) error {
	if _, err := time.Parse(SlotLayout, slot); err != nil {
		return apperrors.InvalidRequest("invalid slot %q: expected HH:MM", slot)
	}
	return nil
}

// ParseWeekday accepts full or three-letter English day names, any case.
func ParseWeekday(name string) (time.Weekday, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if n == full || n == full[:3] {
			return d, true
		}
	}
	return 0, false
}
