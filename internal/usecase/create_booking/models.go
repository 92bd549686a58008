package create_booking

import (
	"time"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	"github.com/m04kA/SMC-BeautyBooking/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	ProviderID        int64            // ID мастера
	ServiceID         int64            // ID услуги
	ClientID          int64            // ID клиента из сессии
	Date              time.Time        // Дата бронирования (без времени)
	StartTime         types.TimeString // Время начала (например, "10:00")
	DurationMinutes   int              // Длительность в минутах
	ValidateConflicts bool             // false только для бэкфилла и тестов
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID              int64
	ProviderID      int64
	ServiceID       int64
	ClientID        int64
	BookingDate     time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func fromDomain(b *domain.Booking) *Response {
	return &Response{
		ID:              b.ID,
		ProviderID:      b.ProviderID,
		ServiceID:       b.ServiceID,
		ClientID:        b.ClientID,
		BookingDate:     b.BookingDate,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime(),
		DurationMinutes: b.DurationMinutes,
		Status:          string(b.Status),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
