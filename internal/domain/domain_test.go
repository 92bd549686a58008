package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BeautyBooking/pkg/ptr"
	"github.com/m04kA/SMC-BeautyBooking/pkg/types"
)

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"same", Interval{600, 660}, Interval{600, 660}, true},
		{"partial", Interval{810, 870}, Interval{840, 900}, true},
		{"contained", Interval{600, 720}, Interval{630, 660}, true},
		{"touching end", Interval{600, 660}, Interval{660, 720}, false},
		{"touching start", Interval{660, 720}, Interval{600, 660}, false},
		{"disjoint", Interval{600, 630}, Interval{700, 730}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestOverlappingBookings_SkipsCancelled(t *testing.T) {
	bookings := []*Booking{
		{ID: 1, StartTime: types.MustTimeString("14:00"), DurationMinutes: 60, Status: StatusConfirmed},
		{ID: 2, StartTime: types.MustTimeString("14:00"), DurationMinutes: 60, Status: StatusCancelled},
		{ID: 3, StartTime: types.MustTimeString("15:00"), DurationMinutes: 30, Status: StatusPending},
	}

	got := OverlappingBookings(Interval{Start: 810, End: 870}, bookings)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestEffectiveRules(t *testing.T) {
	wednesday := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rules := []*AvailabilityRule{
		{ID: 2, DayOfWeek: time.Wednesday, StartTime: types.MustTimeString("14:00"), EndTime: types.MustTimeString("18:00"), IsActive: true},
		{ID: 1, DayOfWeek: time.Wednesday, StartTime: types.MustTimeString("09:00"), EndTime: types.MustTimeString("13:00"), IsActive: true},
		{ID: 3, DayOfWeek: time.Wednesday, StartTime: types.MustTimeString("19:00"), EndTime: types.MustTimeString("20:00"), IsActive: false},
		{ID: 4, DayOfWeek: time.Thursday, StartTime: types.MustTimeString("09:00"), EndTime: types.MustTimeString("10:00"), IsActive: true},
	}

	t.Run("rules ordered by start", func(t *testing.T) {
		got := EffectiveRules(rules, nil, wednesday)
		assert.Equal(t, []Interval{{540, 780}, {840, 1080}}, got)
	})

	t.Run("blocked override", func(t *testing.T) {
		got := EffectiveRules(rules, &AvailabilityOverride{IsBlocked: true}, wednesday)
		assert.Empty(t, got)
	})

	t.Run("custom hours override", func(t *testing.T) {
		override := &AvailabilityOverride{
			StartTime: ptr.Ptr(types.MustTimeString("10:00")),
			EndTime:   ptr.Ptr(types.MustTimeString("12:00")),
		}
		got := EffectiveRules(rules, override, wednesday)
		assert.Equal(t, []Interval{{600, 720}}, got)
	})

	t.Run("non-blocking override without hours keeps rules", func(t *testing.T) {
		got := EffectiveRules(rules, &AvailabilityOverride{}, wednesday)
		assert.Len(t, got, 2)
	})
}

func TestAvailabilityRule_ConflictsWith(t *testing.T) {
	base := &AvailabilityRule{ID: 1, ProviderID: 7, DayOfWeek: time.Monday,
		StartTime: types.MustTimeString("09:00"), EndTime: types.MustTimeString("12:00"), IsActive: true}

	overlapping := *base
	overlapping.ID = 2
	overlapping.StartTime = types.MustTimeString("11:00")
	overlapping.EndTime = types.MustTimeString("13:00")
	assert.True(t, base.ConflictsWith(&overlapping))

	adjacent := overlapping
	adjacent.StartTime = types.MustTimeString("12:00")
	assert.False(t, base.ConflictsWith(&adjacent))

	otherDay := overlapping
	otherDay.DayOfWeek = time.Tuesday
	assert.False(t, base.ConflictsWith(&otherDay))

	assert.False(t, base.ConflictsWith(base), "rule never conflicts with itself")
}

func TestConflictError_Is(t *testing.T) {
	err := fmt.Errorf("create: %w", NewConflictError(ReasonAlreadyBooked))

	assert.True(t, errors.Is(err, NewConflictError(ReasonAlreadyBooked)))
	assert.False(t, errors.Is(err, NewConflictError(ReasonProviderUnavailable)))

	var conflictErr *ConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Equal(t, ReasonAlreadyBooked, conflictErr.Reason)
}

func TestIsStrictlyFuture(t *testing.T) {
	loc := time.FixedZone("MSK", 3*3600)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, loc)
	date := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, IsStrictlyFuture(date, 9*60+30, now, loc))
	assert.False(t, IsStrictlyFuture(date, 10*60, now, loc), "start equal to now is not strictly future")
	assert.True(t, IsStrictlyFuture(date, 10*60+30, now, loc))
	assert.True(t, IsStrictlyFuture(date.AddDate(0, 0, 1), 0, now, loc))
	assert.False(t, IsStrictlyFuture(date.AddDate(0, 0, -1), 23*60, now, loc))
}

func TestProviderSlotsConfig(t *testing.T) {
	cfg := DefaultProviderSlotsConfig(5)
	assert.Equal(t, StatusConfirmed, cfg.InitialStatus())
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.RequirePaymentConfirmation = true
	assert.Equal(t, StatusPending, cfg.InitialStatus())

	assert.True(t, IsValidGrid(30))
	assert.True(t, IsValidGrid(5))
	assert.False(t, IsValidGrid(7))
	assert.False(t, IsValidGrid(240))
}
