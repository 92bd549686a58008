package domain

import "time"

// ParseDate parses YYYY-MM-DD into a civil date at midnight UTC
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.UTC)
}

// DateOnly strips the clock from t, keeping its calendar date as seen in t's location
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the civil date of now in loc
func Today(now time.Time, loc *time.Location) time.Time {
	return DateOnly(now.In(loc))
}

// SlotStart returns the instant a slot starting at startMinutes on date begins in loc
func SlotStart(date time.Time, startMinutes int, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Add(time.Duration(startMinutes) * time.Minute)
}

// IsStrictlyFuture reports whether a slot start on date is strictly after now in loc
func IsStrictlyFuture(date time.Time, startMinutes int, now time.Time, loc *time.Location) bool {
	return SlotStart(date, startMinutes, loc).After(now)
}
