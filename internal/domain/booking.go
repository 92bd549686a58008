package domain

import (
	"time"

	"github.com/m04kA/SMC-BeautyBooking/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// IsValid reports whether s is a known status
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// ParseBookingStatus converts a raw string into a BookingStatus
func ParseBookingStatus(s string) (BookingStatus, bool) {
	status := BookingStatus(s)
	return status, status.IsValid()
}

// Booking is a committed reservation of a provider's time by a client
type Booking struct {
	ID              int64
	ProviderID      int64
	ServiceID       int64
	ClientID        int64
	BookingDate     time.Time // civil date, midnight UTC
	StartTime       types.TimeString
	DurationMinutes int
	Status          BookingStatus

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndTime returns the exclusive end of the booking interval.
// Interval overflow past midnight is rejected at creation time, so the error is ignored here.
func (b *Booking) EndTime() types.TimeString {
	end, _ := b.StartTime.AddMinutes(b.DurationMinutes)
	return end
}

// Interval returns the half-open [start, end) interval in minutes since midnight
func (b *Booking) Interval() Interval {
	start := b.StartTime.Minutes()
	return Interval{Start: start, End: start + b.DurationMinutes}
}

// IsActive returns true if the booking holds provider time (pending or confirmed)
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeConfirmed returns true if the booking is waiting for confirmation
func (b *Booking) CanBeConfirmed() bool {
	return b.Status == StatusPending
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.IsActive()
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// ProviderBookingsFilter фильтр бронирований мастера
type ProviderBookingsFilter struct {
	ProviderID       int64          // Обязательный параметр
	StartDate        *time.Time     // Начало периода (опционально)
	EndDate          *time.Time     // Конец периода (опционально)
	Status           *BookingStatus // Фильтр по статусу (опционально)
	IncludeCancelled bool           // Включать ли отмененные бронирования
}

// IsSingleDate returns true when the filter selects exactly one date
func (f ProviderBookingsFilter) IsSingleDate() bool {
	return f.StartDate != nil && f.EndDate != nil && f.StartDate.Equal(*f.EndDate)
}
