package domain

import (
	"time"

	"github.com/m04kA/SMC-BeautyBooking/pkg/types"
)

// TimeSlot is a derived, never persisted, candidate bookable interval
type TimeSlot struct {
	Date            time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
}

// Interval returns the slot as minutes since midnight
func (s TimeSlot) Interval() Interval {
	return Interval{Start: s.StartTime.Minutes(), End: s.EndTime.Minutes()}
}

// ConflictReason explains why a slot cannot be booked
type ConflictReason string

const (
	ReasonAlreadyBooked       ConflictReason = "already-booked"
	ReasonPastTime            ConflictReason = "past-time"
	ReasonProviderBlocked     ConflictReason = "provider-blocked"
	ReasonProviderUnavailable ConflictReason = "provider-unavailable"
)

// ConflictAnnotation is the advisory availability mark attached to a slot
type ConflictAnnotation struct {
	Slot          TimeSlot
	Available     bool
	Reason        *ConflictReason
	ConflictsWith []int64 // ids of overlapping bookings, only for already-booked
}
