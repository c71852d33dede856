package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// DhakaTZ is used when the zone database is not available on the host.
var DhakaTZ = time.FixedZone("UTC+6", 6*60*60)

// LoadLocation resolves a zone name, falling back to DhakaTZ.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return DhakaTZ
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		fmt.Printf("[WARN] timezone %s not available, using %s\n", name, DhakaTZ)
		return DhakaTZ
	}
	return loc
}

// LocalDate is the calendar day of t in loc.
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

func MustParseDate(dateStr string) time.Time {
	t, _ := time.ParseInLocation(DateLayout, dateStr, time.UTC)
	return t
}

// ParseMonth validates a yyyy-MM month string.
func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected yyyy-MM", month)
	}
	return t, nil
}

// InMonth reports whether a yyyy-MM-dd date belongs to a yyyy-MM month.
func InMonth(date, month string) bool {
	return strings.HasPrefix(date, month+"-")
}

// PreviousMonth returns the yyyy-MM month before t.
func PreviousMonth(t time.Time) string {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, -1, 0).Format(MonthLayout)
}

func ParseISOTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, fmt.Errorf("empty time string")
	}

	// Try standard RFC3339 format (ISO 8601)
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return &t, nil
	}

	// Try with nanoseconds (e.g. 2025-10-13T09:30:00.123Z)
	t, err = time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return &t, nil
	}

	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		DateLayout,
	}
	for _, layout := range layouts {
		if tt, e := time.ParseInLocation(layout, s, time.UTC); e == nil {
			return &tt, nil
		}
	}

	return nil, fmt.Errorf("failed to parse time: %v", s)
}
