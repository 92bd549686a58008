package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	"github.com/m04kA/SMC-BeautyBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-BeautyBooking/pkg/psqlbuilder"
)

const configTable = "provider_slots_config"

// Repository репозиторий настроек бронирования мастеров
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByProviderID получает настройки мастера
func (r *Repository) GetByProviderID(ctx context.Context, providerID int64) (*domain.ProviderSlotsConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"provider_id",
		"grid_minutes",
		"default_duration_minutes",
		"timezone",
		"advance_booking_days",
		"require_payment_confirmation",
		"created_at",
		"updated_at",
	).
		From(configTable).
		Where(squirrel.Eq{"provider_id": providerID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderID - build select query: %v", ErrBuildQuery, err)
	}

	var config domain.ProviderSlotsConfig
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&config.ID,
		&config.ProviderID,
		&config.GridMinutes,
		&config.DefaultDurationMinutes,
		&config.Timezone,
		&config.AdvanceBookingDays,
		&config.RequirePaymentConfirmation,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderID - scan config: %w", ErrScanRow, err)
	}

	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time

	return &config, nil
}

// Upsert создает или обновляет настройки мастера (одна запись на мастера)
func (r *Repository) Upsert(ctx context.Context, config *domain.ProviderSlotsConfig) (*domain.ProviderSlotsConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(configTable).
		Columns(
			"provider_id",
			"grid_minutes",
			"default_duration_minutes",
			"timezone",
			"advance_booking_days",
			"require_payment_confirmation",
		).
		Values(
			config.ProviderID,
			config.GridMinutes,
			config.DefaultDurationMinutes,
			config.Timezone,
			config.AdvanceBookingDays,
			config.RequirePaymentConfirmation,
		).
		Suffix(`ON CONFLICT (provider_id) DO UPDATE SET
			grid_minutes = EXCLUDED.grid_minutes,
			default_duration_minutes = EXCLUDED.default_duration_minutes,
			timezone = EXCLUDED.timezone,
			advance_booking_days = EXCLUDED.advance_booking_days,
			require_payment_confirmation = EXCLUDED.require_payment_confirmation,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&config.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %w", ErrExecQuery, err)
	}

	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time

	return config, nil
}
