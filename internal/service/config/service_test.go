package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	configRepo "github.com/m04kA/SMC-BeautyBooking/internal/infra/storage/config"
	"github.com/m04kA/SMC-BeautyBooking/internal/service/config/models"
	"github.com/m04kA/SMC-BeautyBooking/pkg/logger"
	"github.com/m04kA/SMC-BeautyBooking/pkg/ptr"
)

type mockConfigRepo struct {
	testifymock.Mock
}

func (m *mockConfigRepo) GetByProviderID(ctx context.Context, providerID int64) (*domain.ProviderSlotsConfig, error) {
	args := m.Called(ctx, providerID)
	c, _ := args.Get(0).(*domain.ProviderSlotsConfig)
	return c, args.Error(1)
}

func (m *mockConfigRepo) Upsert(ctx context.Context, config *domain.ProviderSlotsConfig) (*domain.ProviderSlotsConfig, error) {
	args := m.Called(ctx, config)
	c, _ := args.Get(0).(*domain.ProviderSlotsConfig)
	return c, args.Error(1)
}

func TestService_Resolve(t *testing.T) {
	t.Run("defaults when nothing stored", func(t *testing.T) {
		repo := &mockConfigRepo{}
		repo.On("GetByProviderID", testifymock.Anything, int64(7)).Return(nil, configRepo.ErrConfigNotFound)

		resp, err := NewService(repo, logger.NewNop()).Get(context.Background(), 7)

		require.NoError(t, err)
		assert.True(t, resp.IsDefault)
		assert.Equal(t, domain.DefaultGridMinutes, resp.GridMinutes)
		assert.Equal(t, domain.DefaultTimezone, resp.Timezone)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := &mockConfigRepo{}
		repo.On("GetByProviderID", testifymock.Anything, int64(7)).Return(nil, errors.New("db down"))

		_, err := NewService(repo, logger.NewNop()).Resolve(context.Background(), 7)

		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestService_Update(t *testing.T) {
	t.Run("partial update over defaults", func(t *testing.T) {
		repo := &mockConfigRepo{}
		repo.On("GetByProviderID", testifymock.Anything, int64(7)).Return(nil, configRepo.ErrConfigNotFound)
		repo.On("Upsert", testifymock.Anything, testifymock.MatchedBy(func(c *domain.ProviderSlotsConfig) bool {
			return c.GridMinutes == 15 && c.Timezone == "Europe/Moscow" && c.DefaultDurationMinutes == 60
		})).Return(&domain.ProviderSlotsConfig{ID: 1, ProviderID: 7, GridMinutes: 15, DefaultDurationMinutes: 60, Timezone: "Europe/Moscow"}, nil)

		resp, err := NewService(repo, logger.NewNop()).Update(context.Background(), &models.UpdateConfigRequest{
			UserID:      7,
			ProviderID:  7,
			GridMinutes: ptr.Ptr(15),
			Timezone:    ptr.Ptr("Europe/Moscow"),
		})

		require.NoError(t, err)
		assert.False(t, resp.IsDefault)
		repo.AssertExpectations(t)
	})

	t.Run("grid must divide the day", func(t *testing.T) {
		repo := &mockConfigRepo{}
		repo.On("GetByProviderID", testifymock.Anything, int64(7)).Return(nil, configRepo.ErrConfigNotFound)

		_, err := NewService(repo, logger.NewNop()).Update(context.Background(), &models.UpdateConfigRequest{
			UserID: 7, ProviderID: 7, GridMinutes: ptr.Ptr(7),
		})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown timezone", func(t *testing.T) {
		repo := &mockConfigRepo{}
		repo.On("GetByProviderID", testifymock.Anything, int64(7)).Return(nil, configRepo.ErrConfigNotFound)

		_, err := NewService(repo, logger.NewNop()).Update(context.Background(), &models.UpdateConfigRequest{
			UserID: 7, ProviderID: 7, Timezone: ptr.Ptr("Mars/Olympus"),
		})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("only the provider may update", func(t *testing.T) {
		_, err := NewService(&mockConfigRepo{}, logger.NewNop()).Update(context.Background(), &models.UpdateConfigRequest{
			UserID: 8, ProviderID: 7,
		})

		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}
