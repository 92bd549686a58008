package notifier

// Типы задач, которые обрабатывают сервисы платежей и уведомлений
const (
	TypeBookingCreated   = "booking:created"
	TypeBookingConfirmed = "booking:confirmed"
	TypeBookingCancelled = "booking:cancelled"
	TypeBookingReminder  = "booking:reminder"
)

// BookingEvent полезная нагрузка событий бронирования
type BookingEvent struct {
	EventID         string  `json:"event_id"`
	BookingID       int64   `json:"booking_id"`
	ProviderID      int64   `json:"provider_id"`
	ServiceID       int64   `json:"service_id"`
	ClientID        int64   `json:"client_id"`
	Date            string  `json:"date"`       // YYYY-MM-DD
	StartTime       string  `json:"start_time"` // HH:MM
	DurationMinutes int     `json:"duration_minutes"`
	Status          string  `json:"status"`
	Reason          *string `json:"reason,omitempty"`
}
