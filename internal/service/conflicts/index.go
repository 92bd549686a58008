package conflicts

import (
	"cmp"
	"slices"
	"time"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
)

// Index индекс активных бронирований мастера на одну дату.
// Используется только для подсказок клиенту: арбитр бронирований его не читает.
type Index struct {
	date     time.Time
	bookings []*domain.Booking
	override *domain.AvailabilityOverride
	now      time.Time
	loc      *time.Location
}

// Params параметры построения индекса
type Params struct {
	Date     time.Time
	Bookings []*domain.Booking
	Override *domain.AvailabilityOverride
	Now      time.Time
	Location *time.Location
}

// NewIndex строит индекс. Отмененные бронирования и бронирования других дат отбрасываются.
func NewIndex(p Params) *Index {
	date := domain.DateOnly(p.Date)

	active := make([]*domain.Booking, 0, len(p.Bookings))
	for _, b := range p.Bookings {
		if !b.IsActive() || !domain.DateOnly(b.BookingDate).Equal(date) {
			continue
		}
		active = append(active, b)
	}
	slices.SortFunc(active, func(a, b *domain.Booking) int {
		return cmp.Compare(a.StartTime.Minutes(), b.StartTime.Minutes())
	})

	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}

	return &Index{
		date:     date,
		bookings: active,
		override: p.Override,
		now:      p.Now,
		loc:      loc,
	}
}

// Annotate размечает слот.
// Приоритет причин: past-time, provider-blocked, already-booked.
func (idx *Index) Annotate(slot domain.TimeSlot) domain.ConflictAnnotation {
	annotation := domain.ConflictAnnotation{Slot: slot}

	if !domain.IsStrictlyFuture(slot.Date, slot.StartTime.Minutes(), idx.now, idx.loc) {
		return withReason(annotation, domain.ReasonPastTime)
	}

	if idx.override != nil && idx.override.IsBlocked {
		return withReason(annotation, domain.ReasonProviderBlocked)
	}

	overlapping := domain.OverlappingBookings(slot.Interval(), idx.bookings)
	if len(overlapping) > 0 {
		annotation = withReason(annotation, domain.ReasonAlreadyBooked)
		annotation.ConflictsWith = make([]int64, 0, len(overlapping))
		for _, b := range overlapping {
			annotation.ConflictsWith = append(annotation.ConflictsWith, b.ID)
		}
		return annotation
	}

	annotation.Available = true
	return annotation
}

// AnnotateAll размечает набор слотов, сохраняя порядок
func (idx *Index) AnnotateAll(slots []domain.TimeSlot) []domain.ConflictAnnotation {
	out := make([]domain.ConflictAnnotation, 0, len(slots))
	for _, s := range slots {
		out = append(out, idx.Annotate(s))
	}
	return out
}

// IsFree возвращает true, если слот не пересекается ни с одной активной записью
func (idx *Index) IsFree(slot domain.TimeSlot) bool {
	return len(domain.OverlappingBookings(slot.Interval(), idx.bookings)) == 0
}

// Bookings возвращает активные записи индекса по возрастанию времени начала
func (idx *Index) Bookings() []*domain.Booking {
	return idx.bookings
}

func withReason(a domain.ConflictAnnotation, reason domain.ConflictReason) domain.ConflictAnnotation {
	a.Available = false
	a.Reason = &reason
	return a
}
