package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
)

// AvailabilityRepository интерфейс репозитория правил и исключений
type AvailabilityRepository interface {
	CreateRule(ctx context.Context, rule *domain.AvailabilityRule) (*domain.AvailabilityRule, error)
	GetRuleByID(ctx context.Context, id int64) (*domain.AvailabilityRule, error)
	ListRulesByProvider(ctx context.Context, providerID int64) ([]*domain.AvailabilityRule, error)
	UpdateRule(ctx context.Context, rule *domain.AvailabilityRule) (*domain.AvailabilityRule, error)
	DeleteRule(ctx context.Context, providerID, ruleID int64) error

	UpsertOverride(ctx context.Context, override *domain.AvailabilityOverride) (*domain.AvailabilityOverride, error)
	GetOverride(ctx context.Context, providerID int64, date time.Time) (*domain.AvailabilityOverride, error)
	ListOverrides(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.AvailabilityOverride, error)
	DeleteOverride(ctx context.Context, providerID int64, date time.Time) error
}

// RulesCache интерфейс кэша правил мастера.
// Версия из GetRules передается в SetRules: запись после инвалидации отбрасывается.
type RulesCache interface {
	GetRules(ctx context.Context, providerID int64) ([]*domain.AvailabilityRule, int64, error)
	SetRules(ctx context.Context, providerID, version int64, rules []*domain.AvailabilityRule) error
	Invalidate(ctx context.Context, providerID int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
