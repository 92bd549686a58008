package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ClientID == 0 {
		return ErrUnauthenticated
	}

	if req.ClientID < 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}

	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if req.DurationMinutes < domain.MinDurationMinutes || req.DurationMinutes > domain.MaxDurationMinutes {
		return fmt.Errorf("%w: durationMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}

	// Бронирование не может переходить через полночь
	if _, err := req.StartTime.AddMinutes(req.DurationMinutes); err != nil {
		return fmt.Errorf("%w: booking must end by 24:00", ErrInvalidInput)
	}

	return nil
}

// validateSchedule проверяет дату и время с учетом настроек мастера
func validateSchedule(req *Request, config *domain.ProviderSlotsConfig, now time.Time) error {
	loc := config.Location()
	date := domain.DateOnly(req.Date)
	today := domain.Today(now, loc)

	// Проверяем, что дата не в прошлом
	if date.Before(today) {
		return fmt.Errorf("%w: date %s is in the past", ErrInvalidInput, date.Format(domain.DateFormat))
	}

	// Если advanceBookingDays = 0, нет ограничений на дату
	if config.HasAdvanceBookingLimit() && date.After(today.AddDate(0, 0, config.AdvanceBookingDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, config.AdvanceBookingDays)
	}

	if !req.StartTime.IsAligned(config.GridMinutes) {
		return fmt.Errorf("%w: startTime %s is not on the %d-minute grid", ErrInvalidInput, req.StartTime, config.GridMinutes)
	}

	if !domain.IsStrictlyFuture(date, req.StartTime.Minutes(), now, loc) {
		return fmt.Errorf("%w: startTime %s has already passed", ErrInvalidInput, req.StartTime)
	}

	return nil
}

// insideRules проверяет, что интервал целиком лежит в одном рабочем окне
func insideRules(target domain.Interval, windows []domain.Interval) bool {
	for _, w := range windows {
		if w.Contains(target) {
			return true
		}
	}
	return false
}

// lockKey ключ блокировки: мастер и дата
func lockKey(providerID int64, date time.Time) string {
	return fmt.Sprintf("%d:%s", providerID, date.Format(domain.DateFormat))
}
