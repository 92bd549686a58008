package get_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	"github.com/m04kA/SMC-BeautyBooking/internal/integrations/catalog"
)

// ConfigResolver интерфейс получения настроек мастера
type ConfigResolver interface {
	Resolve(ctx context.Context, providerID int64) (*domain.ProviderSlotsConfig, error)
}

// ScheduleReader интерфейс чтения расписания мастера
type ScheduleReader interface {
	ProviderRules(ctx context.Context, providerID int64) ([]*domain.AvailabilityRule, error)
	OverrideOn(ctx context.Context, providerID int64, date time.Time) (*domain.AvailabilityOverride, error)
}

// CatalogClient интерфейс клиента каталога услуг
type CatalogClient interface {
	GetService(ctx context.Context, serviceID int64) (*catalog.Service, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
