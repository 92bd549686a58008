package get_conflicts

import (
	"time"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
)

// Request модель запроса карты конфликтов на дату
type Request struct {
	ProviderID      int64
	Date            time.Time
	DurationMinutes *int // nil = длительность по умолчанию из настроек мастера
}

// Response карта конфликтов: каждый слот дня с пометкой доступности
type Response struct {
	ProviderID      int64
	Date            time.Time
	DurationMinutes int
	Slots           []domain.ConflictAnnotation
}
