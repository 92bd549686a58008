package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	"github.com/m04kA/SMC-BeautyBooking/internal/infra/cache"
	availabilityRepo "github.com/m04kA/SMC-BeautyBooking/internal/infra/storage/availability"
	"github.com/m04kA/SMC-BeautyBooking/internal/service/availability/models"
	"github.com/m04kA/SMC-BeautyBooking/pkg/metrics"
)

// maxOverridesRangeDays максимальная длина периода выборки исключений
const maxOverridesRangeDays = 366

// Service сервис управления расписанием мастера (правила и исключения)
type Service struct {
	repo      AvailabilityRepository
	cache     RulesCache // nil, если кэш выключен
	txManager TransactionManager
	metrics   *metrics.Metrics
	logger    Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	repo AvailabilityRepository,
	rulesCache RulesCache,
	txManager TransactionManager,
	metricsCollector *metrics.Metrics,
	logger Logger,
) *Service {
	return &Service{
		repo:      repo,
		cache:     rulesCache,
		txManager: txManager,
		metrics:   metricsCollector,
		logger:    logger,
	}
}

// CreateRule создает правило доступности
// Доступно только самому мастеру
func (s *Service) CreateRule(ctx context.Context, req *models.CreateRuleRequest) (*models.RuleResponse, error) {
	s.logger.Info("CreateRule: provider=%d, day=%d, %s-%s by user=%d",
		req.ProviderID, req.DayOfWeek, req.StartTime, req.EndTime, req.UserID)

	// 1. Проверяем права доступа
	if err := checkOwner(req.UserID, req.ProviderID); err != nil {
		s.logger.Warn("CreateRule: user=%d is not provider=%d", req.UserID, req.ProviderID)
		return nil, err
	}

	// 2. Валидируем правило
	rule := req.ToDomainRule()
	if err := validateRule(rule); err != nil {
		s.logger.Warn("CreateRule: validation failed: %v", err)
		return nil, err
	}

	// 3. Проверка пересечений и вставка в одной транзакции
	var created *domain.AvailabilityRule
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if err := s.checkOverlap(ctx, rule); err != nil {
			return err
		}

		var err error
		created, err = s.repo.CreateRule(ctx, rule)
		return err
	})
	if err != nil {
		return nil, s.mapWriteError("CreateRule", err)
	}

	// 4. Сбрасываем кэш правил
	s.invalidate(ctx, "CreateRule", req.ProviderID)

	s.logger.Info("CreateRule: successfully created rule id=%d", created.ID)
	return models.FromDomainRule(created), nil
}

// UpdateRule частично обновляет правило доступности
func (s *Service) UpdateRule(ctx context.Context, req *models.UpdateRuleRequest) (*models.RuleResponse, error) {
	s.logger.Info("UpdateRule: provider=%d, rule=%d by user=%d", req.ProviderID, req.RuleID, req.UserID)

	if err := checkOwner(req.UserID, req.ProviderID); err != nil {
		s.logger.Warn("UpdateRule: user=%d is not provider=%d", req.UserID, req.ProviderID)
		return nil, err
	}

	var updated *domain.AvailabilityRule
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		// 1. Получаем текущее правило
		rule, err := s.repo.GetRuleByID(ctx, req.RuleID)
		if err != nil {
			return err
		}
		if rule.ProviderID != req.ProviderID {
			return ErrRuleNotFound
		}

		// 2. Применяем изменения и валидируем результат
		req.ApplyTo(rule)
		if err := validateRule(rule); err != nil {
			return err
		}

		// 3. Проверяем пересечения с остальными правилами дня
		if err := s.checkOverlap(ctx, rule); err != nil {
			return err
		}

		updated, err = s.repo.UpdateRule(ctx, rule)
		return err
	})
	if err != nil {
		return nil, s.mapWriteError("UpdateRule", err)
	}

	s.invalidate(ctx, "UpdateRule", req.ProviderID)

	s.logger.Info("UpdateRule: successfully updated rule id=%d", updated.ID)
	return models.FromDomainRule(updated), nil
}

// DeleteRule удаляет правило доступности
func (s *Service) DeleteRule(ctx context.Context, userID, providerID, ruleID int64) error {
	s.logger.Info("DeleteRule: provider=%d, rule=%d by user=%d", providerID, ruleID, userID)

	if err := checkOwner(userID, providerID); err != nil {
		s.logger.Warn("DeleteRule: user=%d is not provider=%d", userID, providerID)
		return err
	}

	if err := s.repo.DeleteRule(ctx, providerID, ruleID); err != nil {
		return s.mapWriteError("DeleteRule", err)
	}

	s.invalidate(ctx, "DeleteRule", providerID)

	s.logger.Info("DeleteRule: successfully deleted rule id=%d", ruleID)
	return nil
}

// ListRules возвращает все правила мастера
// Публичный метод - доступен всем
func (s *Service) ListRules(ctx context.Context, providerID int64) (*models.RuleListResponse, error) {
	rules, err := s.ProviderRules(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return models.FromDomainRuleList(rules), nil
}

// ProviderRules возвращает правила мастера через кэш.
// Ошибка кэша не прерывает чтение: правила берутся из репозитория.
func (s *Service) ProviderRules(ctx context.Context, providerID int64) ([]*domain.AvailabilityRule, error) {
	// Версия читается до похода в репозиторий, иначе изменение между чтением и записью не будет замечено
	cacheable := false
	var version int64
	if s.cache != nil {
		rules, v, err := s.cache.GetRules(ctx, providerID)
		switch {
		case err == nil:
			s.recordCache("hit")
			return rules, nil
		case errors.Is(err, cache.ErrCacheMiss):
			s.recordCache("miss")
			cacheable = true
			version = v
		default:
			s.recordCache("error")
			s.logger.Warn("ProviderRules: cache read failed for provider=%d: %v", providerID, err)
		}
	}

	rules, err := s.repo.ListRulesByProvider(ctx, providerID)
	if err != nil {
		s.logger.Error("ProviderRules: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: ProviderRules - repository error: %v", ErrInternal, err)
	}

	if cacheable {
		err := s.cache.SetRules(ctx, providerID, version, rules)
		switch {
		case err == nil:
		case errors.Is(err, cache.ErrStaleVersion):
			s.logger.Info("ProviderRules: rules of provider=%d changed during read, cache not updated", providerID)
		default:
			s.logger.Warn("ProviderRules: cache write failed for provider=%d: %v", providerID, err)
		}
	}

	return rules, nil
}

// PutOverride создает или заменяет исключение на дату
func (s *Service) PutOverride(ctx context.Context, req *models.PutOverrideRequest) (*models.OverrideResponse, error) {
	s.logger.Info("PutOverride: provider=%d, date=%s, blocked=%t by user=%d",
		req.ProviderID, req.Date.Format(domain.DateFormat), req.IsBlocked, req.UserID)

	if err := checkOwner(req.UserID, req.ProviderID); err != nil {
		s.logger.Warn("PutOverride: user=%d is not provider=%d", req.UserID, req.ProviderID)
		return nil, err
	}

	override := req.ToDomainOverride()
	if err := validateOverride(override); err != nil {
		s.logger.Warn("PutOverride: validation failed: %v", err)
		return nil, err
	}

	saved, err := s.repo.UpsertOverride(ctx, override)
	if err != nil {
		s.logger.Error("PutOverride: repository error: %v", err)
		return nil, fmt.Errorf("%w: PutOverride - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("PutOverride: successfully saved override id=%d", saved.ID)
	return models.FromDomainOverride(saved), nil
}

// DeleteOverride удаляет исключение на дату
func (s *Service) DeleteOverride(ctx context.Context, userID, providerID int64, date time.Time) error {
	s.logger.Info("DeleteOverride: provider=%d, date=%s by user=%d", providerID, date.Format(domain.DateFormat), userID)

	if err := checkOwner(userID, providerID); err != nil {
		s.logger.Warn("DeleteOverride: user=%d is not provider=%d", userID, providerID)
		return err
	}

	if err := s.repo.DeleteOverride(ctx, providerID, domain.DateOnly(date)); err != nil {
		if errors.Is(err, availabilityRepo.ErrOverrideNotFound) {
			return ErrOverrideNotFound
		}
		s.logger.Error("DeleteOverride: repository error: %v", err)
		return fmt.Errorf("%w: DeleteOverride - repository error: %v", ErrInternal, err)
	}

	return nil
}

// ListOverrides возвращает исключения мастера за период [from, to]
func (s *Service) ListOverrides(ctx context.Context, providerID int64, from, to time.Time) (*models.OverrideListResponse, error) {
	from, to = domain.DateOnly(from), domain.DateOnly(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: period end is before start", ErrInvalidInput)
	}
	if to.Sub(from) > maxOverridesRangeDays*24*time.Hour {
		return nil, fmt.Errorf("%w: period longer than %d days", ErrInvalidInput, maxOverridesRangeDays)
	}

	overrides, err := s.repo.ListOverrides(ctx, providerID, from, to)
	if err != nil {
		s.logger.Error("ListOverrides: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: ListOverrides - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainOverrideList(overrides), nil
}

// OverrideOn возвращает исключение на дату или nil, если его нет
func (s *Service) OverrideOn(ctx context.Context, providerID int64, date time.Time) (*domain.AvailabilityOverride, error) {
	override, err := s.repo.GetOverride(ctx, providerID, domain.DateOnly(date))
	if errors.Is(err, availabilityRepo.ErrOverrideNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("OverrideOn: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: OverrideOn - repository error: %v", ErrInternal, err)
	}
	return override, nil
}

func (s *Service) checkOverlap(ctx context.Context, rule *domain.AvailabilityRule) error {
	if !rule.IsActive {
		return nil
	}

	existing, err := s.repo.ListRulesByProvider(ctx, rule.ProviderID)
	if err != nil {
		return err
	}

	for _, other := range existing {
		if rule.ConflictsWith(other) {
			return fmt.Errorf("%w: rule id=%d %s-%s", ErrRuleOverlap, other.ID, other.StartTime, other.EndTime)
		}
	}
	return nil
}

func (s *Service) mapWriteError(op string, err error) error {
	switch {
	case errors.Is(err, ErrRuleOverlap), errors.Is(err, availabilityRepo.ErrRuleOverlap):
		s.logger.Warn("%s: %v", op, err)
		return ErrRuleOverlap
	case errors.Is(err, ErrInvalidInput):
		s.logger.Warn("%s: validation failed: %v", op, err)
		return err
	case errors.Is(err, ErrRuleNotFound), errors.Is(err, availabilityRepo.ErrRuleNotFound):
		s.logger.Warn("%s: rule not found", op)
		return ErrRuleNotFound
	default:
		s.logger.Error("%s: repository error: %v", op, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
}

func (s *Service) invalidate(ctx context.Context, op string, providerID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, providerID); err != nil {
		s.logger.Warn("%s: failed to invalidate rules cache for provider=%d: %v", op, providerID, err)
	}
}

func (s *Service) recordCache(result string) {
	if s.metrics != nil {
		s.metrics.RulesCacheRequestsTotal.WithLabelValues(result).Inc()
	}
}

func checkOwner(userID, providerID int64) error {
	if userID == 0 || userID != providerID {
		return ErrAccessDenied
	}
	return nil
}
