package get_conflicts

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	"github.com/m04kA/SMC-BeautyBooking/internal/service/conflicts"
	"github.com/m04kA/SMC-BeautyBooking/internal/service/slots"
)

// UseCase use case для получения карты конфликтов на дату
// Результат носит рекомендательный характер: окончательную проверку делает создание бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	configs      ConfigResolver
	schedule     ScheduleReader
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	configs ConfigResolver,
	schedule ScheduleReader,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		configs:      configs,
		schedule:     schedule,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения карты конфликтов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetConflicts: provider=%d, date=%s", req.ProviderID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetConflicts: validation failed: %v", err)
		return nil, err
	}

	// 2. Настройки мастера
	config, err := uc.configs.Resolve(ctx, req.ProviderID)
	if err != nil {
		uc.logger.Error("GetConflicts: failed to resolve config for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to resolve config: %v", ErrInternal, err)
	}

	duration := config.DefaultDurationMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}
	date := domain.DateOnly(req.Date)

	// 3. Расписание и активные бронирования на дату
	rules, err := uc.schedule.ProviderRules(ctx, req.ProviderID)
	if err != nil {
		uc.logger.Error("GetConflicts: failed to get rules for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get rules: %v", ErrInternal, err)
	}

	override, err := uc.schedule.OverrideOn(ctx, req.ProviderID, date)
	if err != nil {
		uc.logger.Error("GetConflicts: failed to get override for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get override: %v", ErrInternal, err)
	}

	bookings, err := uc.bookingRepo.GetByProviderWithFilter(ctx, domain.ProviderBookingsFilter{
		ProviderID: req.ProviderID,
		StartDate:  &date,
		EndDate:    &date,
	})
	if err != nil {
		uc.logger.Error("GetConflicts: failed to get bookings for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	// 4. Слоты дня, включая прошедшие. Для заблокированной даты слоты строятся
	// по правилам, чтобы индекс пометил их как provider-blocked.
	generatorOverride := override
	if override != nil && override.IsBlocked {
		generatorOverride = nil
	}

	now := uc.timeProvider.Now()
	seq, err := slots.Generate(slots.Input{
		Rules:           rules,
		Override:        generatorOverride,
		Date:            date,
		DurationMinutes: duration,
		GridMinutes:     config.GridMinutes,
		Now:             now,
		Location:        config.Location(),
		IncludePast:     true,
	})
	if err != nil {
		uc.logger.Error("GetConflicts: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}

	// 5. Размечаем слоты
	index := conflicts.NewIndex(conflicts.Params{
		Date:     date,
		Bookings: bookings,
		Override: override,
		Now:      now,
		Location: config.Location(),
	})

	annotations := make([]domain.ConflictAnnotation, 0)
	for slot := range seq.All() {
		annotations = append(annotations, index.Annotate(slot))
	}

	uc.logger.Info("GetConflicts: annotated %d slots against %d bookings for provider=%d",
		len(annotations), len(index.Bookings()), req.ProviderID)

	return &Response{
		ProviderID:      req.ProviderID,
		Date:            date,
		DurationMinutes: duration,
		Slots:           annotations,
	}, nil
}
