package config

import (
	"context"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
)

// ConfigRepository интерфейс репозитория настроек мастера
type ConfigRepository interface {
	GetByProviderID(ctx context.Context, providerID int64) (*domain.ProviderSlotsConfig, error)
	Upsert(ctx context.Context, config *domain.ProviderSlotsConfig) (*domain.ProviderSlotsConfig, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
