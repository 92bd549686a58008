package bookingclient

// Availability свободные слоты мастера на дату
type Availability struct {
	ProviderID      int64   `json:"providerId"`
	Date            string  `json:"date"`
	DurationMinutes int     `json:"durationMinutes"`
	GridMinutes     int     `json:"gridMinutes"`
	Timezone        string  `json:"timezone"`
	Blocked         bool    `json:"blocked"`
	BlockedReason   *string `json:"blockedReason,omitempty"`
	Slots           []Slot  `json:"slots"`
}

// Slot интервал [startTime, endTime) в формате HH:MM
type Slot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Conflicts карта конфликтов на дату
type Conflicts struct {
	ProviderID      int64           `json:"providerId"`
	Date            string          `json:"date"`
	DurationMinutes int             `json:"durationMinutes"`
	Slots           []AnnotatedSlot `json:"slots"`
}

// AnnotatedSlot слот с отметкой доступности
type AnnotatedSlot struct {
	StartTime     string  `json:"startTime"`
	EndTime       string  `json:"endTime"`
	Available     bool    `json:"available"`
	Reason        *string `json:"reason,omitempty"`
	ConflictsWith []int64 `json:"conflictsWith,omitempty"`
}

// AvailableCount количество свободных слотов
func (c *Conflicts) AvailableCount() int {
	n := 0
	for _, s := range c.Slots {
		if s.Available {
			n++
		}
	}
	return n
}

// CreateBookingRequest запрос на создание бронирования
type CreateBookingRequest struct {
	ProviderID      int64  `json:"providerId"`
	ServiceID       int64  `json:"serviceId"`
	BookingDate     string `json:"bookingDate"` // "2025-10-15"
	StartTime       string `json:"startTime"`   // "10:00"
	DurationMinutes int    `json:"durationMinutes"`
}

// Booking созданное бронирование
type Booking struct {
	ID              int64  `json:"id"`
	ProviderID      int64  `json:"providerId"`
	ServiceID       int64  `json:"serviceId"`
	ClientID        int64  `json:"clientId"`
	BookingDate     string `json:"bookingDate"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}
