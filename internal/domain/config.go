package domain

import (
	"time"
	_ "time/tzdata" // IANA database for hosts without zoneinfo
)

// ProviderSlotsConfig holds a provider's booking settings
type ProviderSlotsConfig struct {
	ID                         int64
	ProviderID                 int64
	GridMinutes                int
	DefaultDurationMinutes     int
	Timezone                   string // IANA name, e.g. "Europe/Moscow"
	AdvanceBookingDays         int    // 0 = unlimited
	RequirePaymentConfirmation bool
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// DefaultProviderSlotsConfig returns the settings used when a provider has none stored
func DefaultProviderSlotsConfig(providerID int64) *ProviderSlotsConfig {
	return &ProviderSlotsConfig{
		ProviderID:             providerID,
		GridMinutes:            DefaultGridMinutes,
		DefaultDurationMinutes: DefaultDurationMinutes,
		Timezone:               DefaultTimezone,
		AdvanceBookingDays:     DefaultAdvanceBookingDays,
	}
}

// Location resolves the provider timezone, falling back to UTC if it cannot be loaded
func (c *ProviderSlotsConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HasAdvanceBookingLimit returns true if there's a limit on how far in advance bookings can be made
func (c *ProviderSlotsConfig) HasAdvanceBookingLimit() bool {
	return c.AdvanceBookingDays > 0
}

// InitialStatus returns the status a new booking starts in
func (c *ProviderSlotsConfig) InitialStatus() BookingStatus {
	if c.RequirePaymentConfirmation {
		return StatusPending
	}
	return StatusConfirmed
}

// IsValidGrid reports whether grid divides a day evenly and lies in the allowed range
func IsValidGrid(grid int) bool {
	return grid >= MinGridMinutes && grid <= MaxGridMinutes && MinutesPerDay%grid == 0
}
