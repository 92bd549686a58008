package get_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	catalogClient "github.com/m04kA/SMC-BeautyBooking/internal/integrations/catalog"
	"github.com/m04kA/SMC-BeautyBooking/internal/service/slots"
	"github.com/m04kA/SMC-BeautyBooking/pkg/metrics"
)

// UseCase use case для получения свободных слотов мастера
// Результат зависит только от правил, исключений, длительности и текущего времени
type UseCase struct {
	configs       ConfigResolver
	schedule      ScheduleReader
	catalogClient CatalogClient
	timeProvider  TimeProvider
	metrics       *metrics.Metrics
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	configs ConfigResolver,
	schedule ScheduleReader,
	catalogClient CatalogClient,
	metricsCollector *metrics.Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		configs:       configs,
		schedule:      schedule,
		catalogClient: catalogClient,
		timeProvider:  &RealTimeProvider{},
		metrics:       metricsCollector,
		logger:        logger,
	}
}

// Execute выполняет use case получения слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: provider=%d, date=%s, duration=%v, service=%v",
		req.ProviderID, req.Date.Format(domain.DateFormat), req.DurationMinutes, req.ServiceID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем настройки мастера
	config, err := uc.configs.Resolve(ctx, req.ProviderID)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to resolve config for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to resolve config: %v", ErrInternal, err)
	}
	loc := config.Location()
	date := domain.DateOnly(req.Date)
	now := uc.timeProvider.Now()

	// 3. Проверяем горизонт бронирования
	if err := validateHorizon(date, domain.Today(now, loc), config.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailability: %v", err)
		return nil, err
	}

	// 4. Определяем длительность
	duration, err := uc.resolveDuration(ctx, req, config)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		ProviderID:      req.ProviderID,
		Date:            date,
		DurationMinutes: duration,
		GridMinutes:     config.GridMinutes,
		Timezone:        loc.String(),
		Slots:           []Slot{},
	}

	// 5. Прошедшая дата: слотов нет
	if date.Before(domain.Today(now, loc)) {
		uc.logger.Info("GetAvailability: date %s is in the past for provider=%d", date.Format(domain.DateFormat), req.ProviderID)
		return resp, nil
	}

	// 6. Читаем расписание
	rules, err := uc.schedule.ProviderRules(ctx, req.ProviderID)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get rules for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get rules: %v", ErrInternal, err)
	}

	override, err := uc.schedule.OverrideOn(ctx, req.ProviderID, date)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get override for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get override: %v", ErrInternal, err)
	}

	// 7. Генерируем слоты
	seq, err := slots.Generate(slots.Input{
		Rules:           rules,
		Override:        override,
		Date:            date,
		DurationMinutes: duration,
		GridMinutes:     config.GridMinutes,
		Now:             now,
		Location:        loc,
	})
	if err != nil {
		uc.logger.Error("GetAvailability: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}

	resp.Blocked = seq.Blocked()
	resp.BlockedReason = seq.BlockedReason()
	for slot := range seq.All() {
		resp.Slots = append(resp.Slots, Slot{StartTime: slot.StartTime, EndTime: slot.EndTime})
	}

	if uc.metrics != nil {
		uc.metrics.SlotsGeneratedTotal.Add(float64(len(resp.Slots)))
	}

	uc.logger.Info("GetAvailability: generated %d slots for provider=%d on %s",
		len(resp.Slots), req.ProviderID, date.Format(domain.DateFormat))
	return resp, nil
}

// resolveDuration определяет длительность слота
func (uc *UseCase) resolveDuration(ctx context.Context, req *Request, config *domain.ProviderSlotsConfig) (int, error) {
	if req.DurationMinutes != nil {
		return *req.DurationMinutes, nil
	}

	if req.ServiceID == nil {
		return config.DefaultDurationMinutes, nil
	}

	service, err := uc.catalogClient.GetService(ctx, *req.ServiceID)
	if err != nil {
		switch {
		case errors.Is(err, catalogClient.ErrServiceNotFound):
			uc.logger.Warn("GetAvailability: service id=%d not found", *req.ServiceID)
			return 0, ErrServiceNotFound
		case errors.Is(err, catalogClient.ErrUnavailable):
			uc.logger.Warn("GetAvailability: catalog unavailable: %v", err)
			return 0, ErrCatalogUnavailable
		default:
			uc.logger.Error("GetAvailability: failed to get service id=%d: %v", *req.ServiceID, err)
			return 0, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}
	}

	if service.ProviderID != req.ProviderID || !service.IsActive {
		uc.logger.Warn("GetAvailability: service id=%d is not offered by provider=%d", service.ID, req.ProviderID)
		return 0, ErrServiceNotFound
	}

	if err := validateDuration(service.DurationMinutes); err != nil {
		uc.logger.Error("GetAvailability: service id=%d has invalid duration %d", service.ID, service.DurationMinutes)
		return 0, fmt.Errorf("%w: service duration out of range", ErrInternal)
	}

	return service.DurationMinutes, nil
}
