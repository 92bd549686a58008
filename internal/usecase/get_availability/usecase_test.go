package get_availability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	"github.com/m04kA/SMC-BeautyBooking/internal/integrations/catalog"
	"github.com/m04kA/SMC-BeautyBooking/pkg/logger"
	"github.com/m04kA/SMC-BeautyBooking/pkg/metrics"
	"github.com/m04kA/SMC-BeautyBooking/pkg/ptr"
	"github.com/m04kA/SMC-BeautyBooking/pkg/types"
)

type fakeConfigs struct {
	config *domain.ProviderSlotsConfig
}

func (f fakeConfigs) Resolve(_ context.Context, providerID int64) (*domain.ProviderSlotsConfig, error) {
	if f.config != nil {
		return f.config, nil
	}
	return domain.DefaultProviderSlotsConfig(providerID), nil
}

type fakeSchedule struct {
	rules    []*domain.AvailabilityRule
	override *domain.AvailabilityOverride
}

func (f fakeSchedule) ProviderRules(context.Context, int64) ([]*domain.AvailabilityRule, error) {
	return f.rules, nil
}

func (f fakeSchedule) OverrideOn(context.Context, int64, time.Time) (*domain.AvailabilityOverride, error) {
	return f.override, nil
}

type fakeCatalog struct {
	services map[int64]*catalog.Service
}

func (f fakeCatalog) GetService(_ context.Context, id int64) (*catalog.Service, error) {
	if s, ok := f.services[id]; ok {
		return s, nil
	}
	return nil, catalog.ErrServiceNotFound
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

// 2025-01-01 - среда
var wednesday = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func workday() []*domain.AvailabilityRule {
	return []*domain.AvailabilityRule{{
		ID:         1,
		ProviderID: 7,
		DayOfWeek:  time.Wednesday,
		StartTime:  types.MustTimeString("09:00"),
		EndTime:    types.MustTimeString("17:00"),
		IsActive:   true,
	}}
}

func newUseCase(schedule fakeSchedule, now time.Time) *UseCase {
	uc := NewUseCase(fakeConfigs{}, schedule, fakeCatalog{services: map[int64]*catalog.Service{
		3: {ID: 3, ProviderID: 7, DurationMinutes: 90, IsActive: true},
		4: {ID: 4, ProviderID: 8, DurationMinutes: 30, IsActive: true},
	}}, nil, logger.NewNop())
	uc.timeProvider = fixedTime{now: now}
	return uc
}

func TestUseCase_PastSlotExclusion(t *testing.T) {
	uc := newUseCase(fakeSchedule{rules: workday()}, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{ProviderID: 7, Date: wednesday, DurationMinutes: ptr.Ptr(60)})

	require.NoError(t, err)
	require.NotEmpty(t, resp.Slots)
	for _, s := range resp.Slots {
		assert.False(t, s.StartTime.Minutes() <= 10*60, "slot %s starts before now", s.StartTime)
	}
	assert.Equal(t, "10:30", resp.Slots[0].StartTime.String())
}

func TestUseCase_Deterministic(t *testing.T) {
	now := time.Date(2024, 12, 30, 12, 0, 0, 0, time.UTC)
	req := &Request{ProviderID: 7, Date: wednesday, DurationMinutes: ptr.Ptr(45)}

	first, err := newUseCase(fakeSchedule{rules: workday()}, now).Execute(context.Background(), req)
	require.NoError(t, err)
	second, err := newUseCase(fakeSchedule{rules: workday()}, now).Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestUseCase_OverridePrecedence(t *testing.T) {
	uc := newUseCase(fakeSchedule{
		rules:    workday(),
		override: &domain.AvailabilityOverride{ProviderID: 7, Date: wednesday, IsBlocked: true, Reason: ptr.Ptr("праздник")},
	}, time.Date(2024, 12, 30, 12, 0, 0, 0, time.UTC))

	resp, err := uc.Execute(context.Background(), &Request{ProviderID: 7, Date: wednesday})

	require.NoError(t, err)
	assert.True(t, resp.Blocked)
	assert.Equal(t, "праздник", *resp.BlockedReason)
	assert.Empty(t, resp.Slots)
}

func TestUseCase_Duration(t *testing.T) {
	now := time.Date(2024, 12, 30, 12, 0, 0, 0, time.UTC)

	t.Run("provider default", func(t *testing.T) {
		resp, err := newUseCase(fakeSchedule{rules: workday()}, now).Execute(context.Background(), &Request{ProviderID: 7, Date: wednesday})
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultDurationMinutes, resp.DurationMinutes)
	})

	t.Run("from catalog service", func(t *testing.T) {
		resp, err := newUseCase(fakeSchedule{rules: workday()}, now).Execute(context.Background(), &Request{ProviderID: 7, Date: wednesday, ServiceID: ptr.Ptr(int64(3))})
		require.NoError(t, err)
		assert.Equal(t, 90, resp.DurationMinutes)
		assert.Equal(t, "15:30", resp.Slots[len(resp.Slots)-1].StartTime.String())
	})

	t.Run("service of another provider", func(t *testing.T) {
		_, err := newUseCase(fakeSchedule{rules: workday()}, now).Execute(context.Background(), &Request{ProviderID: 7, Date: wednesday, ServiceID: ptr.Ptr(int64(4))})
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})

	t.Run("zero duration is invalid", func(t *testing.T) {
		_, err := newUseCase(fakeSchedule{rules: workday()}, now).Execute(context.Background(), &Request{ProviderID: 7, Date: wednesday, DurationMinutes: ptr.Ptr(0)})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestUseCase_Dates(t *testing.T) {
	t.Run("past date yields no slots", func(t *testing.T) {
		resp, err := newUseCase(fakeSchedule{rules: workday()}, time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)).
			Execute(context.Background(), &Request{ProviderID: 7, Date: wednesday})
		require.NoError(t, err)
		assert.Empty(t, resp.Slots)
	})

	t.Run("beyond booking horizon", func(t *testing.T) {
		uc := newUseCase(fakeSchedule{rules: workday()}, time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC))
		config := domain.DefaultProviderSlotsConfig(7)
		config.AdvanceBookingDays = 14
		uc.configs = fakeConfigs{config: config}

		_, err := uc.Execute(context.Background(), &Request{ProviderID: 7, Date: wednesday})
		assert.ErrorIs(t, err, ErrDateTooFarInFuture)
	})
}

func TestUseCase_Metrics(t *testing.T) {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry(), "test")
	uc := newUseCase(fakeSchedule{rules: workday()}, time.Date(2024, 12, 30, 12, 0, 0, 0, time.UTC))
	uc.metrics = m

	resp, err := uc.Execute(context.Background(), &Request{ProviderID: 7, Date: wednesday, DurationMinutes: ptr.Ptr(60)})

	require.NoError(t, err)
	assert.Equal(t, float64(len(resp.Slots)), testutil.ToFloat64(m.SlotsGeneratedTotal))
}
