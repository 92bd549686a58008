package get_availability

import (
	"time"

	"github.com/m04kA/SMC-BeautyBooking/pkg/types"
)

// Request модель запроса на получение свободных слотов
// Длительность берется из DurationMinutes, иначе из услуги каталога, иначе из настроек мастера
type Request struct {
	ProviderID      int64
	Date            time.Time // Дата (без времени)
	DurationMinutes *int
	ServiceID       *int64
}

// Response модель ответа со списком слотов
type Response struct {
	ProviderID      int64
	Date            time.Time
	DurationMinutes int
	GridMinutes     int
	Timezone        string
	Blocked         bool    // дата закрыта исключением
	BlockedReason   *string // причина блокировки
	Slots           []Slot
}

// Slot модель временного слота
type Slot struct {
	StartTime types.TimeString
	EndTime   types.TimeString
}
