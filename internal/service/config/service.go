package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	configRepo "github.com/m04kA/SMC-BeautyBooking/internal/infra/storage/config"
	"github.com/m04kA/SMC-BeautyBooking/internal/service/config/models"
)

// Service сервис настроек бронирования мастера
type Service struct {
	configRepo ConfigRepository
	logger     Logger
}

// NewService создает новый экземпляр сервиса настроек
func NewService(configRepo ConfigRepository, logger Logger) *Service {
	return &Service{
		configRepo: configRepo,
		logger:     logger,
	}
}

// Get возвращает настройки мастера
// Публичный метод - доступен всем
func (s *Service) Get(ctx context.Context, providerID int64) (*models.ConfigResponse, error) {
	config, err := s.Resolve(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return models.FromDomainConfig(config), nil
}

// Resolve возвращает настройки мастера в domain модели.
// Если мастер ничего не сохранял, действуют значения по умолчанию.
func (s *Service) Resolve(ctx context.Context, providerID int64) (*domain.ProviderSlotsConfig, error) {
	config, err := s.configRepo.GetByProviderID(ctx, providerID)
	if errors.Is(err, configRepo.ErrConfigNotFound) {
		return domain.DefaultProviderSlotsConfig(providerID), nil
	}
	if err != nil {
		s.logger.Error("Resolve: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: Resolve - repository error: %v", ErrInternal, err)
	}
	return config, nil
}

// Update частично обновляет настройки мастера
// Доступно только самому мастеру
func (s *Service) Update(ctx context.Context, req *models.UpdateConfigRequest) (*models.ConfigResponse, error) {
	s.logger.Info("Update: updating config for provider=%d by user=%d", req.ProviderID, req.UserID)

	// 1. Проверяем права доступа
	if req.UserID == 0 || req.UserID != req.ProviderID {
		s.logger.Warn("Update: user=%d is not provider=%d", req.UserID, req.ProviderID)
		return nil, ErrAccessDenied
	}

	// 2. Получаем текущие настройки (или значения по умолчанию)
	config, err := s.Resolve(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}

	// 3. Применяем изменения и валидируем результат
	req.ApplyTo(config)
	if err := validateConfig(config); err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, err
	}

	// 4. Сохраняем
	saved, err := s.configRepo.Upsert(ctx, config)
	if err != nil {
		s.logger.Error("Update: repository error: %v", err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully updated config for provider=%d", req.ProviderID)
	return models.FromDomainConfig(saved), nil
}

func validateConfig(c *domain.ProviderSlotsConfig) error {
	if !domain.IsValidGrid(c.GridMinutes) {
		return fmt.Errorf("%w: gridMinutes must be between %d and %d and divide a day",
			ErrInvalidInput, domain.MinGridMinutes, domain.MaxGridMinutes)
	}
	if c.DefaultDurationMinutes < domain.MinDurationMinutes || c.DefaultDurationMinutes > domain.MaxDurationMinutes {
		return fmt.Errorf("%w: defaultDurationMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}
	if c.AdvanceBookingDays < domain.MinAdvanceBookingDays || c.AdvanceBookingDays > domain.MaxAdvanceBookingDays {
		return fmt.Errorf("%w: advanceBookingDays must be between %d and %d",
			ErrInvalidInput, domain.MinAdvanceBookingDays, domain.MaxAdvanceBookingDays)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil || c.Timezone == "" {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, c.Timezone)
	}
	return nil
}
