package utils

import "time"

// FormatClock renders an optional timestamp as HH:mm in loc, or "-" when missing.
func FormatClock(ts *time.Time, loc *time.Location) string {
	if ts == nil {
		return "-"
	}
	return ts.In(loc).Format("15:04")
}
