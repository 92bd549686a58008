package domain

import (
	"cmp"
	"slices"
	"time"

	"github.com/m04kA/SMC-BeautyBooking/pkg/types"
)

// AvailabilityRule is a provider's recurring weekly working window
type AvailabilityRule struct {
	ID         int64
	ProviderID int64
	DayOfWeek  time.Weekday // 0 = Sunday
	StartTime  types.TimeString
	EndTime    types.TimeString
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Interval returns the rule window as minutes since midnight
func (r *AvailabilityRule) Interval() Interval {
	return Interval{Start: r.StartTime.Minutes(), End: r.EndTime.Minutes()}
}

// AppliesTo reports whether the rule is active on the weekday of date
func (r *AvailabilityRule) AppliesTo(date time.Time) bool {
	return r.IsActive && r.DayOfWeek == date.Weekday()
}

// ConflictsWith reports whether two active rules of the same provider and day overlap
func (r *AvailabilityRule) ConflictsWith(other *AvailabilityRule) bool {
	if r.ID != 0 && r.ID == other.ID {
		return false
	}
	if !r.IsActive || !other.IsActive {
		return false
	}
	if r.ProviderID != other.ProviderID || r.DayOfWeek != other.DayOfWeek {
		return false
	}
	return r.Interval().Overlaps(other.Interval())
}

// AvailabilityOverride supersedes recurring rules for one date.
// A blocked override closes the day. A non-blocked override with custom hours
// replaces the day's rules with a single window. A non-blocked override without
// custom hours leaves the rules in effect.
type AvailabilityOverride struct {
	ID         int64
	ProviderID int64
	Date       time.Time // civil date, midnight UTC
	IsBlocked  bool
	Reason     *string
	StartTime  *types.TimeString
	EndTime    *types.TimeString
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasCustomHours reports whether the override defines its own working window
func (o *AvailabilityOverride) HasCustomHours() bool {
	return !o.IsBlocked && o.StartTime != nil && o.EndTime != nil
}

// EffectiveRules returns the windows that apply on date given the provider's
// recurring rules and an optional override, ordered by start time.
func EffectiveRules(rules []*AvailabilityRule, override *AvailabilityOverride, date time.Time) []Interval {
	if override != nil {
		if override.IsBlocked {
			return nil
		}
		if override.HasCustomHours() {
			return []Interval{{Start: override.StartTime.Minutes(), End: override.EndTime.Minutes()}}
		}
	}

	windows := make([]Interval, 0, len(rules))
	for _, r := range rules {
		if r.AppliesTo(date) {
			windows = append(windows, r.Interval())
		}
	}
	slices.SortFunc(windows, func(a, b Interval) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return windows
}
