package domain

// Default configuration values
const (
	DefaultGridMinutes        = 30
	DefaultDurationMinutes    = 60
	DefaultTimezone           = "UTC"
	DefaultAdvanceBookingDays = 0 // 0 = unlimited
)

// Business validation constants
const (
	MinutesPerDay               = 24 * 60
	MinGridMinutes              = 5
	MaxGridMinutes              = 120
	MinDurationMinutes          = 5
	MaxDurationMinutes          = 480 // 8 hours
	MinAdvanceBookingDays       = 0
	MaxAdvanceBookingDays       = 365 // 1 year
	MaxCancellationReasonLength = 500
	MaxOverrideReasonLength     = 255
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses statuses that occupy provider time
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}
