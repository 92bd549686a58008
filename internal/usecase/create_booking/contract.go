package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByProviderWithFilter(ctx context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error)
}

// AvailabilityRepository интерфейс чтения расписания внутри транзакции (без кэша)
type AvailabilityRepository interface {
	GetOverride(ctx context.Context, providerID int64, date time.Time) (*domain.AvailabilityOverride, error)
	ListActiveRulesByDay(ctx context.Context, providerID int64, day time.Weekday) ([]*domain.AvailabilityRule, error)
}

// ConfigResolver интерфейс получения настроек мастера
type ConfigResolver interface {
	Resolve(ctx context.Context, providerID int64) (*domain.ProviderSlotsConfig, error)
}

// RangeLocker интерфейс блокировки интервала в пределах процесса
type RangeLocker interface {
	Lock(ctx context.Context, key string, start, end int) (release func(), err error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher интерфейс публикации событий бронирования
type EventPublisher interface {
	BookingCreated(ctx context.Context, booking *domain.Booking, loc *time.Location) error
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
