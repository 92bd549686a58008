package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BeautyBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-BeautyBooking/internal/integrations/identity"
	"github.com/m04kA/SMC-BeautyBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-BeautyBooking/pkg/logger"
	"github.com/m04kA/SMC-BeautyBooking/pkg/ptr"
	"github.com/m04kA/SMC-BeautyBooking/pkg/types"
)

type mockBookingRepo struct {
	testifymock.Mock
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

func (m *mockBookingRepo) GetByClientID(ctx context.Context, clientID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	args := m.Called(ctx, clientID, status)
	b, _ := args.Get(0).([]*domain.Booking)
	return b, args.Error(1)
}

func (m *mockBookingRepo) GetByProviderWithFilter(ctx context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error) {
	args := m.Called(ctx, filter)
	b, _ := args.Get(0).([]*domain.Booking)
	return b, args.Error(1)
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockBookingRepo) Cancel(ctx context.Context, id int64, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

type mockPublisher struct {
	testifymock.Mock
}

func (m *mockPublisher) BookingConfirmed(ctx context.Context, booking *domain.Booking, loc *time.Location) error {
	return m.Called(ctx, booking.ID, loc).Error(0)
}

func (m *mockPublisher) BookingCancelled(ctx context.Context, booking *domain.Booking, reason string) error {
	return m.Called(ctx, booking.ID, reason).Error(0)
}

type staticConfigs struct{}

func (staticConfigs) Resolve(_ context.Context, providerID int64) (*domain.ProviderSlotsConfig, error) {
	return domain.DefaultProviderSlotsConfig(providerID), nil
}

type inlineTx struct{}

func (inlineTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func sample(status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:              10,
		ProviderID:      7,
		ServiceID:       3,
		ClientID:        42,
		BookingDate:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		StartTime:       types.MustTimeString("14:00"),
		DurationMinutes: 60,
		Status:          status,
	}
}

func newService(repo *mockBookingRepo, pub *mockPublisher) *Service {
	return NewService(repo, staticConfigs{}, pub, inlineTx{}, logger.NewNop())
}

func TestService_GetByID(t *testing.T) {
	repo := &mockBookingRepo{}
	repo.On("GetByID", testifymock.Anything, int64(10)).Return(sample(domain.StatusConfirmed), nil)
	repo.On("GetByID", testifymock.Anything, int64(11)).Return(nil, bookingRepo.ErrBookingNotFound)
	svc := newService(repo, &mockPublisher{})

	t.Run("client sees own booking", func(t *testing.T) {
		resp, err := svc.GetByID(context.Background(), 10, models.Actor{UserID: 42, Role: identity.RoleClient})
		require.NoError(t, err)
		assert.Equal(t, "15:00", resp.EndTime)
	})

	t.Run("provider sees booking", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), 10, models.Actor{UserID: 7, Role: identity.RoleProvider})
		assert.NoError(t, err)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), 10, models.Actor{UserID: 99, Role: identity.RoleClient})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), 11, models.Actor{UserID: 42})
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestService_Confirm(t *testing.T) {
	t.Run("payment service confirms pending booking", func(t *testing.T) {
		repo := &mockBookingRepo{}
		pub := &mockPublisher{}
		repo.On("GetByID", testifymock.Anything, int64(10)).Return(sample(domain.StatusPending), nil)
		repo.On("UpdateStatus", testifymock.Anything, int64(10), domain.StatusConfirmed).Return(nil)
		pub.On("BookingConfirmed", testifymock.Anything, int64(10), time.UTC).Return(nil)

		resp, err := newService(repo, pub).Confirm(context.Background(), 10, &models.ConfirmBookingRequest{
			Actor: models.Actor{UserID: 1, Role: identity.RoleService},
		})

		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
		repo.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("confirmed booking cannot be confirmed again", func(t *testing.T) {
		repo := &mockBookingRepo{}
		repo.On("GetByID", testifymock.Anything, int64(10)).Return(sample(domain.StatusConfirmed), nil)

		_, err := newService(repo, &mockPublisher{}).Confirm(context.Background(), 10, &models.ConfirmBookingRequest{
			Actor: models.Actor{UserID: 7, Role: identity.RoleProvider},
		})

		assert.ErrorIs(t, err, ErrCannotConfirm)
	})

	t.Run("client cannot confirm", func(t *testing.T) {
		repo := &mockBookingRepo{}
		repo.On("GetByID", testifymock.Anything, int64(10)).Return(sample(domain.StatusPending), nil)

		_, err := newService(repo, &mockPublisher{}).Confirm(context.Background(), 10, &models.ConfirmBookingRequest{
			Actor: models.Actor{UserID: 42, Role: identity.RoleClient},
		})

		assert.ErrorIs(t, err, ErrAccessDenied)
		repo.AssertNotCalled(t, "UpdateStatus", testifymock.Anything, testifymock.Anything, testifymock.Anything)
	})
}

func TestService_Cancel(t *testing.T) {
	t.Run("client cancels", func(t *testing.T) {
		repo := &mockBookingRepo{}
		pub := &mockPublisher{}
		repo.On("GetByID", testifymock.Anything, int64(10)).Return(sample(domain.StatusConfirmed), nil)
		repo.On("Cancel", testifymock.Anything, int64(10), "заболела").Return(nil)
		pub.On("BookingCancelled", testifymock.Anything, int64(10), "заболела").Return(nil)

		err := newService(repo, pub).Cancel(context.Background(), 10, &models.CancelBookingRequest{
			Actor:              models.Actor{UserID: 42, Role: identity.RoleClient},
			CancellationReason: "  заболела ",
		})

		require.NoError(t, err)
		pub.AssertExpectations(t)
	})

	t.Run("reason is required", func(t *testing.T) {
		err := newService(&mockBookingRepo{}, &mockPublisher{}).Cancel(context.Background(), 10, &models.CancelBookingRequest{
			Actor: models.Actor{UserID: 42},
		})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("already cancelled", func(t *testing.T) {
		repo := &mockBookingRepo{}
		repo.On("GetByID", testifymock.Anything, int64(10)).Return(sample(domain.StatusCancelled), nil)

		err := newService(repo, &mockPublisher{}).Cancel(context.Background(), 10, &models.CancelBookingRequest{
			Actor:              models.Actor{UserID: 42},
			CancellationReason: "передумала",
		})

		assert.ErrorIs(t, err, ErrCannotCancel)
	})
}

func TestService_GetProviderBookings(t *testing.T) {
	t.Run("filter is passed to repository", func(t *testing.T) {
		repo := &mockBookingRepo{}
		day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		status := domain.StatusPending
		repo.On("GetByProviderWithFilter", testifymock.Anything, domain.ProviderBookingsFilter{
			ProviderID: 7,
			StartDate:  &day,
			EndDate:    &day,
			Status:     &status,
		}).Return([]*domain.Booking{sample(domain.StatusPending)}, nil)

		resp, err := newService(repo, &mockPublisher{}).GetProviderBookings(context.Background(), &models.GetProviderBookingsRequest{
			UserID:     7,
			ProviderID: 7,
			StartDate:  &day,
			EndDate:    &day,
			Status:     ptr.Ptr("pending"),
		})

		require.NoError(t, err)
		assert.Len(t, resp.Bookings, 1)
	})

	t.Run("other provider is denied", func(t *testing.T) {
		_, err := newService(&mockBookingRepo{}, &mockPublisher{}).GetProviderBookings(context.Background(), &models.GetProviderBookingsRequest{
			UserID: 8, ProviderID: 7,
		})

		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := newService(&mockBookingRepo{}, &mockPublisher{}).GetProviderBookings(context.Background(), &models.GetProviderBookingsRequest{
			UserID: 7, ProviderID: 7, Status: ptr.Ptr("done"),
		})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
