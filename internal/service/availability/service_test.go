package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	"github.com/m04kA/SMC-BeautyBooking/internal/infra/cache"
	availabilityRepo "github.com/m04kA/SMC-BeautyBooking/internal/infra/storage/availability"
	"github.com/m04kA/SMC-BeautyBooking/internal/service/availability/models"
	"github.com/m04kA/SMC-BeautyBooking/pkg/logger"
	"github.com/m04kA/SMC-BeautyBooking/pkg/ptr"
	"github.com/m04kA/SMC-BeautyBooking/pkg/types"
)

type mockRepo struct {
	testifymock.Mock
}

func (m *mockRepo) CreateRule(ctx context.Context, rule *domain.AvailabilityRule) (*domain.AvailabilityRule, error) {
	args := m.Called(ctx, rule)
	r, _ := args.Get(0).(*domain.AvailabilityRule)
	return r, args.Error(1)
}

func (m *mockRepo) GetRuleByID(ctx context.Context, id int64) (*domain.AvailabilityRule, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*domain.AvailabilityRule)
	return r, args.Error(1)
}

func (m *mockRepo) ListRulesByProvider(ctx context.Context, providerID int64) ([]*domain.AvailabilityRule, error) {
	args := m.Called(ctx, providerID)
	r, _ := args.Get(0).([]*domain.AvailabilityRule)
	return r, args.Error(1)
}

func (m *mockRepo) UpdateRule(ctx context.Context, rule *domain.AvailabilityRule) (*domain.AvailabilityRule, error) {
	args := m.Called(ctx, rule)
	r, _ := args.Get(0).(*domain.AvailabilityRule)
	return r, args.Error(1)
}

func (m *mockRepo) DeleteRule(ctx context.Context, providerID, ruleID int64) error {
	return m.Called(ctx, providerID, ruleID).Error(0)
}

func (m *mockRepo) UpsertOverride(ctx context.Context, override *domain.AvailabilityOverride) (*domain.AvailabilityOverride, error) {
	args := m.Called(ctx, override)
	o, _ := args.Get(0).(*domain.AvailabilityOverride)
	return o, args.Error(1)
}

func (m *mockRepo) GetOverride(ctx context.Context, providerID int64, date time.Time) (*domain.AvailabilityOverride, error) {
	args := m.Called(ctx, providerID, date)
	o, _ := args.Get(0).(*domain.AvailabilityOverride)
	return o, args.Error(1)
}

func (m *mockRepo) ListOverrides(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.AvailabilityOverride, error) {
	args := m.Called(ctx, providerID, from, to)
	o, _ := args.Get(0).([]*domain.AvailabilityOverride)
	return o, args.Error(1)
}

func (m *mockRepo) DeleteOverride(ctx context.Context, providerID int64, date time.Time) error {
	return m.Called(ctx, providerID, date).Error(0)
}

type mockCache struct {
	testifymock.Mock
}

func (m *mockCache) GetRules(ctx context.Context, providerID int64) ([]*domain.AvailabilityRule, int64, error) {
	args := m.Called(ctx, providerID)
	r, _ := args.Get(0).([]*domain.AvailabilityRule)
	return r, args.Get(1).(int64), args.Error(2)
}

func (m *mockCache) SetRules(ctx context.Context, providerID, version int64, rules []*domain.AvailabilityRule) error {
	return m.Called(ctx, providerID, version, rules).Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, providerID int64) error {
	return m.Called(ctx, providerID).Error(0)
}

type inlineTx struct{}

func (inlineTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var anyCtx = testifymock.Anything

func rule(id int64, day time.Weekday, start, end string) *domain.AvailabilityRule {
	return &domain.AvailabilityRule{
		ID:         id,
		ProviderID: 7,
		DayOfWeek:  day,
		StartTime:  types.MustTimeString(start),
		EndTime:    types.MustTimeString(end),
		IsActive:   true,
	}
}

func newService(repo *mockRepo, c *mockCache) *Service {
	if c == nil {
		return NewService(repo, nil, inlineTx{}, nil, logger.NewNop())
	}
	return NewService(repo, c, inlineTx{}, nil, logger.NewNop())
}

func TestService_CreateRule(t *testing.T) {
	t.Run("creates and invalidates cache", func(t *testing.T) {
		repo := &mockRepo{}
		c := &mockCache{}
		repo.On("ListRulesByProvider", anyCtx, int64(7)).
			Return([]*domain.AvailabilityRule{rule(1, time.Monday, "09:00", "12:00")}, nil)
		repo.On("CreateRule", anyCtx, testifymock.AnythingOfType("*domain.AvailabilityRule")).
			Return(rule(2, time.Monday, "12:00", "18:00"), nil)
		c.On("Invalidate", anyCtx, int64(7)).Return(nil)

		resp, err := newService(repo, c).CreateRule(context.Background(), &models.CreateRuleRequest{
			UserID:     7,
			ProviderID: 7,
			DayOfWeek:  int(time.Monday),
			StartTime:  types.MustTimeString("12:00"),
			EndTime:    types.MustTimeString("18:00"),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.ID)
		repo.AssertExpectations(t)
		c.AssertExpectations(t)
	})

	t.Run("overlapping rule is rejected", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("ListRulesByProvider", anyCtx, int64(7)).
			Return([]*domain.AvailabilityRule{rule(1, time.Monday, "09:00", "12:00")}, nil)

		_, err := newService(repo, nil).CreateRule(context.Background(), &models.CreateRuleRequest{
			UserID:     7,
			ProviderID: 7,
			DayOfWeek:  int(time.Monday),
			StartTime:  types.MustTimeString("11:00"),
			EndTime:    types.MustTimeString("13:00"),
		})

		assert.ErrorIs(t, err, ErrRuleOverlap)
		repo.AssertNotCalled(t, "CreateRule", testifymock.Anything, testifymock.Anything)
	})

	t.Run("constraint violation maps to overlap", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("ListRulesByProvider", anyCtx, int64(7)).Return([]*domain.AvailabilityRule{}, nil)
		repo.On("CreateRule", anyCtx, testifymock.Anything).Return(nil, availabilityRepo.ErrRuleOverlap)

		_, err := newService(repo, nil).CreateRule(context.Background(), &models.CreateRuleRequest{
			UserID:     7,
			ProviderID: 7,
			DayOfWeek:  int(time.Monday),
			StartTime:  types.MustTimeString("11:00"),
			EndTime:    types.MustTimeString("13:00"),
		})

		assert.ErrorIs(t, err, ErrRuleOverlap)
	})

	t.Run("start must be before end", func(t *testing.T) {
		_, err := newService(&mockRepo{}, nil).CreateRule(context.Background(), &models.CreateRuleRequest{
			UserID:     7,
			ProviderID: 7,
			DayOfWeek:  1,
			StartTime:  types.MustTimeString("13:00"),
			EndTime:    types.MustTimeString("13:00"),
		})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("other user cannot edit schedule", func(t *testing.T) {
		_, err := newService(&mockRepo{}, nil).CreateRule(context.Background(), &models.CreateRuleRequest{
			UserID:     8,
			ProviderID: 7,
			StartTime:  types.MustTimeString("09:00"),
			EndTime:    types.MustTimeString("10:00"),
		})

		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestService_UpdateRule(t *testing.T) {
	t.Run("rule of another provider is not found", func(t *testing.T) {
		repo := &mockRepo{}
		foreign := rule(3, time.Monday, "09:00", "10:00")
		foreign.ProviderID = 99
		repo.On("GetRuleByID", anyCtx, int64(3)).Return(foreign, nil)

		_, err := newService(repo, nil).UpdateRule(context.Background(), &models.UpdateRuleRequest{
			UserID: 7, ProviderID: 7, RuleID: 3, IsActive: ptr.Ptr(false),
		})

		assert.ErrorIs(t, err, ErrRuleNotFound)
	})

	t.Run("rule does not conflict with itself", func(t *testing.T) {
		repo := &mockRepo{}
		current := rule(1, time.Monday, "09:00", "12:00")
		repo.On("GetRuleByID", anyCtx, int64(1)).Return(current, nil)
		repo.On("ListRulesByProvider", anyCtx, int64(7)).
			Return([]*domain.AvailabilityRule{rule(1, time.Monday, "09:00", "12:00")}, nil)
		repo.On("UpdateRule", anyCtx, current).Return(current, nil)

		end := types.MustTimeString("13:00")
		resp, err := newService(repo, nil).UpdateRule(context.Background(), &models.UpdateRuleRequest{
			UserID: 7, ProviderID: 7, RuleID: 1, EndTime: &end,
		})

		require.NoError(t, err)
		assert.Equal(t, "13:00", resp.EndTime.String())
	})
}

func TestService_ProviderRules(t *testing.T) {
	rules := []*domain.AvailabilityRule{rule(1, time.Monday, "09:00", "12:00")}

	t.Run("cache hit skips repository", func(t *testing.T) {
		repo := &mockRepo{}
		c := &mockCache{}
		c.On("GetRules", anyCtx, int64(7)).Return(rules, int64(0), nil)

		got, err := newService(repo, c).ProviderRules(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, rules, got)
		repo.AssertNotCalled(t, "ListRulesByProvider", testifymock.Anything, testifymock.Anything)
	})

	t.Run("cache miss reads through", func(t *testing.T) {
		repo := &mockRepo{}
		c := &mockCache{}
		c.On("GetRules", anyCtx, int64(7)).Return(nil, int64(3), cache.ErrCacheMiss)
		c.On("SetRules", anyCtx, int64(7), int64(3), rules).Return(nil)
		repo.On("ListRulesByProvider", anyCtx, int64(7)).Return(rules, nil)

		got, err := newService(repo, c).ProviderRules(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, rules, got)
		c.AssertExpectations(t)
	})

	t.Run("cache failure falls through", func(t *testing.T) {
		repo := &mockRepo{}
		c := &mockCache{}
		c.On("GetRules", anyCtx, int64(7)).Return(nil, int64(0), errors.New("connection refused"))
		repo.On("ListRulesByProvider", anyCtx, int64(7)).Return(rules, nil)

		got, err := newService(repo, c).ProviderRules(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, rules, got)
		// Без прочитанной версии запись в кэш небезопасна
		c.AssertNotCalled(t, "SetRules", anyCtx, testifymock.Anything, testifymock.Anything, testifymock.Anything)
	})

	t.Run("rules changed during read are not cached", func(t *testing.T) {
		repo := &mockRepo{}
		c := &mockCache{}
		svc := newService(repo, c)

		// Правило обновляется, пока читатель уже получил старый список из БД
		stale := []*domain.AvailabilityRule{rule(1, time.Monday, "09:00", "12:00")}
		c.On("GetRules", anyCtx, int64(7)).Return(nil, int64(3), cache.ErrCacheMiss).Once()
		repo.On("ListRulesByProvider", anyCtx, int64(7)).Return(stale, nil).Once().Run(func(testifymock.Arguments) {
			repo.On("GetRuleByID", anyCtx, int64(1)).Return(rule(1, time.Monday, "09:00", "12:00"), nil)
			repo.On("ListRulesByProvider", anyCtx, int64(7)).Return(stale, nil)
			repo.On("UpdateRule", anyCtx, testifymock.Anything).Return(rule(1, time.Monday, "09:00", "13:00"), nil)
			c.On("Invalidate", anyCtx, int64(7)).Return(nil)

			end := types.MustTimeString("13:00")
			_, err := svc.UpdateRule(context.Background(), &models.UpdateRuleRequest{
				UserID: 7, ProviderID: 7, RuleID: 1, EndTime: &end,
			})
			require.NoError(t, err)
		})
		c.On("SetRules", anyCtx, int64(7), int64(3), stale).Return(cache.ErrStaleVersion)

		got, err := svc.ProviderRules(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, stale, got)
		c.AssertCalled(t, "Invalidate", anyCtx, int64(7))
		c.AssertCalled(t, "SetRules", anyCtx, int64(7), int64(3), stale)
	})
}

func TestService_PutOverride(t *testing.T) {
	date := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)

	t.Run("blocked day drops custom hours", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("UpsertOverride", anyCtx, testifymock.MatchedBy(func(o *domain.AvailabilityOverride) bool {
			return o.IsBlocked && o.StartTime == nil && o.EndTime == nil && o.Date.Equal(date)
		})).Return(&domain.AvailabilityOverride{ID: 1, ProviderID: 7, Date: date, IsBlocked: true}, nil)

		start := types.MustTimeString("10:00")
		end := types.MustTimeString("12:00")
		resp, err := newService(repo, nil).PutOverride(context.Background(), &models.PutOverrideRequest{
			UserID: 7, ProviderID: 7, Date: date, IsBlocked: true, StartTime: &start, EndTime: &end,
		})

		require.NoError(t, err)
		assert.Equal(t, "2025-03-08", resp.Date)
		repo.AssertExpectations(t)
	})

	t.Run("half-specified hours are invalid", func(t *testing.T) {
		start := types.MustTimeString("10:00")
		_, err := newService(&mockRepo{}, nil).PutOverride(context.Background(), &models.PutOverrideRequest{
			UserID: 7, ProviderID: 7, Date: date, StartTime: &start,
		})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestService_OverrideOn(t *testing.T) {
	date := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	repo := &mockRepo{}
	repo.On("GetOverride", anyCtx, int64(7), date).Return(nil, availabilityRepo.ErrOverrideNotFound)

	got, err := newService(repo, nil).OverrideOn(context.Background(), 7, date)

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestService_ListOverrides_InvalidRange(t *testing.T) {
	from := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)

	_, err := newService(&mockRepo{}, nil).ListOverrides(context.Background(), 7, from, from.AddDate(0, 0, -1))

	assert.ErrorIs(t, err, ErrInvalidInput)
}
