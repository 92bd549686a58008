package config

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
)

func TestRepository_GetByProviderID(t *testing.T) {
	columns := []string{"id", "provider_id", "grid_minutes", "default_duration_minutes", "timezone",
		"advance_booking_days", "require_payment_confirmation", "created_at", "updated_at"}

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta("FROM provider_slots_config WHERE provider_id = $1")).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(1, 7, 15, 45, "Europe/Moscow", 30, true, now, now))

		cfg, err := NewRepository(db).GetByProviderID(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, 15, cfg.GridMinutes)
		assert.Equal(t, "Europe/Moscow", cfg.Timezone)
		assert.True(t, cfg.RequirePaymentConfirmation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("FROM provider_slots_config").WillReturnRows(sqlmock.NewRows(columns))

		_, err = NewRepository(db).GetByProviderID(context.Background(), 7)

		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("query error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("FROM provider_slots_config").WillReturnError(errors.New("connection reset"))

		_, err = NewRepository(db).GetByProviderID(context.Background(), 7)

		assert.ErrorIs(t, err, ErrScanRow)
	})
}

func TestRepository_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO provider_slots_config")).
		WithArgs(int64(7), 30, 60, "UTC", 0, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(3, now, now))

	cfg, err := NewRepository(db).Upsert(context.Background(), domain.DefaultProviderSlotsConfig(7))

	require.NoError(t, err)
	assert.Equal(t, int64(3), cfg.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
