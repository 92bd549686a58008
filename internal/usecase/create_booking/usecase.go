package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-BeautyBooking/internal/infra/storage/availability"
	bookingRepo "github.com/m04kA/SMC-BeautyBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-BeautyBooking/pkg/metrics"
)

// DefaultLockTimeout время ожидания блокировки интервала по умолчанию
const DefaultLockTimeout = 2 * time.Second

// UseCase use case для создания бронирования.
// Единственная точка, через которую бронирование попадает в БД: два
// пересекающихся активных бронирования одного мастера не могут быть созданы.
type UseCase struct {
	bookingRepo      BookingRepository
	availabilityRepo AvailabilityRepository
	configs          ConfigResolver
	locker           RangeLocker
	txManager        TransactionManager
	publisher        EventPublisher
	timeProvider     TimeProvider
	metrics          *metrics.Metrics
	lockTimeout      time.Duration
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	availabilityRepo AvailabilityRepository,
	configs ConfigResolver,
	locker RangeLocker,
	txManager TransactionManager,
	publisher EventPublisher,
	metricsCollector *metrics.Metrics,
	lockTimeout time.Duration,
	logger Logger,
) *UseCase {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &UseCase{
		bookingRepo:      bookingRepo,
		availabilityRepo: availabilityRepo,
		configs:          configs,
		locker:           locker,
		txManager:        txManager,
		publisher:        publisher,
		timeProvider:     &RealTimeProvider{},
		metrics:          metricsCollector,
		lockTimeout:      lockTimeout,
		logger:           logger,
	}
}

// Execute выполняет use case создания бронирования
// Использует блокировку интервала и сериализуемую транзакцию для предотвращения гонки данных
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: client=%d, provider=%d, service=%d, date=%s, time=%s, duration=%d",
		req.ClientID, req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime, req.DurationMinutes)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время и настройки мастера
	now := uc.timeProvider.Now()

	config, err := uc.configs.Resolve(ctx, req.ProviderID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to resolve config for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to resolve config: %v", ErrInternal, err)
	}
	loc := config.Location()

	// 3. Валидация даты и времени с учетом настроек
	if err := validateSchedule(req, config, now); err != nil {
		uc.logger.Warn("CreateBooking: schedule validation failed: %v", err)
		return nil, err
	}

	date := domain.DateOnly(req.Date)
	target := domain.Interval{Start: req.StartTime.Minutes(), End: req.StartTime.Minutes() + req.DurationMinutes}

	// 4. Блокируем интервал мастера на дату. Непересекающиеся интервалы не ждут друг друга.
	release, err := uc.lock(ctx, lockKey(req.ProviderID, date), target)
	if err != nil {
		return nil, err
	}
	defer release()

	if !req.ValidateConflicts {
		uc.logger.Warn("CreateBooking: conflict validation disabled for provider=%d, date=%s, time=%s",
			req.ProviderID, date.Format(domain.DateFormat), req.StartTime)
	}

	// Переменная для хранения результата
	var result *domain.Booking
	commitStarted := time.Now()

	// 5. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if req.ValidateConflicts {
			// 5.1. Исключение на дату
			override, err := uc.availabilityRepo.GetOverride(txCtx, req.ProviderID, date)
			if err != nil {
				if !errors.Is(err, availabilityRepo.ErrOverrideNotFound) {
					uc.logger.Error("CreateBooking: failed to get override: %v", err)
					return fmt.Errorf("%w: failed to get override: %v", ErrInternal, err)
				}
				override = nil
			}

			if override != nil && override.IsBlocked {
				uc.logger.Warn("CreateBooking: provider=%d blocked on %s", req.ProviderID, date.Format(domain.DateFormat))
				return ErrProviderUnavailable
			}

			// 5.2. Интервал должен лежать внутри одного рабочего окна
			rules, err := uc.availabilityRepo.ListActiveRulesByDay(txCtx, req.ProviderID, date.Weekday())
			if err != nil {
				uc.logger.Error("CreateBooking: failed to get rules: %v", err)
				return fmt.Errorf("%w: failed to get rules: %v", ErrInternal, err)
			}

			if !insideRules(target, domain.EffectiveRules(rules, override, date)) {
				uc.logger.Warn("CreateBooking: provider=%d does not work %s+%dm on %s",
					req.ProviderID, req.StartTime, req.DurationMinutes, date.Format(domain.DateFormat))
				return ErrProviderUnavailable
			}

			// 5.3. Активные бронирования мастера на дату с блокировкой (FOR UPDATE)
			bookings, err := uc.bookingRepo.GetByProviderWithFilter(txCtx, domain.ProviderBookingsFilter{
				ProviderID: req.ProviderID,
				StartDate:  &date,
				EndDate:    &date,
			})
			if err != nil {
				uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
				return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
			}

			if overlapping := domain.OverlappingBookings(target, bookings); len(overlapping) > 0 {
				uc.logger.Warn("CreateBooking: interval overlaps booking id=%d", overlapping[0].ID)
				return ErrAlreadyBooked
			}
		}

		// 5.4. Создаем бронирование
		booking, err := uc.bookingRepo.Create(txCtx, &domain.Booking{
			ProviderID:      req.ProviderID,
			ServiceID:       req.ServiceID,
			ClientID:        req.ClientID,
			BookingDate:     date,
			StartTime:       req.StartTime,
			DurationMinutes: req.DurationMinutes,
			Status:          config.InitialStatus(),
		})
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotTaken) {
				uc.logger.Warn("CreateBooking: insert rejected by exclusion constraint")
				return ErrAlreadyBooked
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = booking
		return nil
	})

	// 6. Метрики
	uc.observe(result, err, commitStarted)

	if err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) || errors.Is(err, ErrInternal) {
			return nil, err
		}
		uc.logger.Error("CreateBooking: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateBooking: created booking id=%d, status=%s", result.ID, result.Status)

	// 7. Уведомляем платежи и уведомления уже после коммита
	if err := uc.publisher.BookingCreated(ctx, result, loc); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish event for booking id=%d: %v", result.ID, err)
	}

	return fromDomain(result), nil
}

// lock блокирует интервал с ограничением по времени ожидания
func (uc *UseCase) lock(ctx context.Context, key string, target domain.Interval) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, uc.lockTimeout)
	defer cancel()

	started := time.Now()
	release, err := uc.locker.Lock(lockCtx, key, target.Start, target.End)
	if uc.metrics != nil {
		uc.metrics.BookingLockWait.Observe(time.Since(started).Seconds())
	}

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			uc.logger.Warn("CreateBooking: lock timeout for key=%s [%d, %d)", key, target.Start, target.End)
			return nil, ErrLockTimeout
		}
		uc.logger.Error("CreateBooking: failed to lock key=%s: %v", key, err)
		return nil, fmt.Errorf("%w: failed to lock interval: %v", ErrInternal, err)
	}

	return release, nil
}

// observe записывает исход транзакции в метрики
func (uc *UseCase) observe(result *domain.Booking, err error, started time.Time) {
	if uc.metrics == nil {
		return
	}

	var conflict *domain.ConflictError
	switch {
	case err == nil:
		uc.metrics.BookingCommitDuration.Observe(time.Since(started).Seconds())
		uc.metrics.BookingsCreatedTotal.WithLabelValues(string(result.Status)).Inc()
	case errors.As(err, &conflict):
		uc.metrics.BookingConflictsTotal.WithLabelValues(string(conflict.Reason)).Inc()
	}
}
