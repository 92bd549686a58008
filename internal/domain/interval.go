package domain

// Interval is a half-open range of minutes since midnight: [Start, End)
type Interval struct {
	Start int
	End   int
}

// Overlaps applies the half-open overlap test: a.start < b.end && b.start < a.end.
// Touching intervals (10:00-11:00 and 11:00-12:00) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

// Contains reports whether other lies entirely within i
func (i Interval) Contains(other Interval) bool {
	return i.Start <= other.Start && other.End <= i.End
}

// Duration returns the interval length in minutes
func (i Interval) Duration() int {
	return i.End - i.Start
}

// IsValid reports whether the interval is non-empty and inside a single day
func (i Interval) IsValid() bool {
	return i.Start >= 0 && i.Start < i.End && i.End <= MinutesPerDay
}

// OverlappingBookings returns the active bookings whose interval overlaps target
func OverlappingBookings(target Interval, bookings []*Booking) []*Booking {
	var out []*Booking
	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		if b.Interval().Overlaps(target) {
			out = append(out, b)
		}
	}
	return out
}
