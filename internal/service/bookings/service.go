package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BeautyBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-BeautyBooking/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo BookingRepository
	configs     ConfigResolver
	publisher   EventPublisher // nil, если уведомления выключены
	txManager   TransactionManager
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	configs ConfigResolver,
	publisher EventPublisher,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		configs:     configs,
		publisher:   publisher,
		txManager:   txManager,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
// Видят бронирование только клиент-владелец и мастер
func (s *Service) GetByID(ctx context.Context, id int64, actor models.Actor) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, actor.UserID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if !canView(booking, actor) {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", actor.UserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetClientBookings получает историю бронирований клиента
// Опционально фильтрует по статусу
func (s *Service) GetClientBookings(ctx context.Context, req *models.GetClientBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetClientBookings: fetching bookings for client=%d, status=%v", req.ClientID, req.Status)

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetClientBookings: invalid status=%s for client=%d", *req.Status, req.ClientID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByClientID(ctx, req.ClientID, domainStatus)
	if err != nil {
		s.logger.Error("GetClientBookings: repository error for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: GetClientBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetClientBookings: successfully fetched %d bookings for client=%d", len(bookings), req.ClientID)
	return models.FromDomainBookingList(bookings), nil
}

// GetProviderBookings получает бронирования мастера с фильтрацией по периоду и статусу
// Доступно только самому мастеру
func (s *Service) GetProviderBookings(ctx context.Context, req *models.GetProviderBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetProviderBookings: fetching bookings for provider=%d by user=%d", req.ProviderID, req.UserID)

	if req.UserID != req.ProviderID {
		s.logger.Warn("GetProviderBookings: user=%d is not provider=%d", req.UserID, req.ProviderID)
		return nil, ErrAccessDenied
	}

	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetProviderBookings: invalid filter for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByProviderWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetProviderBookings: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: GetProviderBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetProviderBookings: successfully fetched %d bookings for provider=%d", len(bookings), req.ProviderID)
	return models.FromDomainBookingList(bookings), nil
}

// Confirm подтверждает ожидающее бронирование (pending -> confirmed)
// Вызывается платежным сервисом или мастером
func (s *Service) Confirm(ctx context.Context, bookingID int64, req *models.ConfirmBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Confirm: confirming booking id=%d by user=%d", bookingID, req.Actor.UserID)

	var booking *domain.Booking
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		// 1. Получаем бронирование (строка блокируется до конца транзакции)
		var err error
		booking, err = s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}

		// 2. Подтверждать может мастер или платежный сервис
		if !req.Actor.IsService() && booking.ProviderID != req.Actor.UserID {
			return ErrAccessDenied
		}

		// 3. Подтвердить можно только ожидающее бронирование
		if !booking.CanBeConfirmed() {
			return ErrCannotConfirm
		}

		if err := s.bookingRepo.UpdateStatus(ctx, bookingID, domain.StatusConfirmed); err != nil {
			return err
		}
		booking.Status = domain.StatusConfirmed
		return nil
	})
	if err != nil {
		return nil, s.mapTransitionError("Confirm", bookingID, err)
	}

	// 4. Событие публикуется после фиксации транзакции
	if s.publisher != nil {
		loc := s.providerLocation(ctx, booking.ProviderID)
		if err := s.publisher.BookingConfirmed(ctx, booking, loc); err != nil {
			s.logger.Warn("Confirm: failed to publish event for booking id=%d: %v", bookingID, err)
		}
	}

	s.logger.Info("Confirm: successfully confirmed booking id=%d", bookingID)
	return models.FromDomainBooking(booking), nil
}

// Cancel отменяет бронирование
// Отменить может клиент-владелец или мастер, причина обязательна
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.Actor.UserID)

	reason := strings.TrimSpace(req.CancellationReason)
	if reason == "" {
		return fmt.Errorf("%w: cancellation reason is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: cancellation reason is longer than %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	var booking *domain.Booking
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}

		if booking.ClientID != req.Actor.UserID && booking.ProviderID != req.Actor.UserID && !req.Actor.IsService() {
			return ErrAccessDenied
		}

		if !booking.CanBeCancelled() {
			return ErrCannotCancel
		}

		if err := s.bookingRepo.Cancel(ctx, bookingID, reason); err != nil {
			return err
		}
		booking.Status = domain.StatusCancelled
		booking.CancellationReason = &reason
		return nil
	})
	if err != nil {
		return s.mapTransitionError("Cancel", bookingID, err)
	}

	if s.publisher != nil {
		if err := s.publisher.BookingCancelled(ctx, booking, reason); err != nil {
			s.logger.Warn("Cancel: failed to publish event for booking id=%d: %v", bookingID, err)
		}
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)
	return nil
}

// Вспомогательные методы

func (s *Service) mapTransitionError(op string, bookingID int64, err error) error {
	switch {
	case errors.Is(err, bookingRepo.ErrBookingNotFound):
		s.logger.Warn("%s: booking id=%d not found", op, bookingID)
		return ErrBookingNotFound
	case errors.Is(err, ErrAccessDenied), errors.Is(err, ErrCannotCancel), errors.Is(err, ErrCannotConfirm):
		s.logger.Warn("%s: booking id=%d: %v", op, bookingID, err)
		return err
	default:
		s.logger.Error("%s: repository error for booking id=%d: %v", op, bookingID, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
}

// providerLocation возвращает часовой пояс мастера, при ошибке UTC
func (s *Service) providerLocation(ctx context.Context, providerID int64) *time.Location {
	config, err := s.configs.Resolve(ctx, providerID)
	if err != nil {
		s.logger.Warn("providerLocation: failed to resolve config for provider=%d: %v", providerID, err)
		return time.UTC
	}
	return config.Location()
}

func canView(b *domain.Booking, actor models.Actor) bool {
	return b.ClientID == actor.UserID || b.ProviderID == actor.UserID || actor.IsService()
}
