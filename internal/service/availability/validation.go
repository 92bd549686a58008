package availability

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
)

func validateRule(rule *domain.AvailabilityRule) error {
	if rule.DayOfWeek < time.Sunday || rule.DayOfWeek > time.Saturday {
		return fmt.Errorf("%w: dayOfWeek must be in 0..6", ErrInvalidInput)
	}
	if rule.StartTime.IsZero() || rule.EndTime.IsZero() {
		return fmt.Errorf("%w: startTime and endTime are required", ErrInvalidInput)
	}
	if !rule.StartTime.IsBefore(rule.EndTime) {
		return fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
	}
	return nil
}

func validateOverride(o *domain.AvailabilityOverride) error {
	if o.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if o.Reason != nil && utf8.RuneCountInString(*o.Reason) > domain.MaxOverrideReasonLength {
		return fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidInput, domain.MaxOverrideReasonLength)
	}

	if o.IsBlocked {
		return nil
	}

	// Собственные часы задаются парой или не задаются вовсе
	if (o.StartTime == nil) != (o.EndTime == nil) {
		return fmt.Errorf("%w: startTime and endTime must be set together", ErrInvalidInput)
	}
	if o.StartTime != nil && !o.StartTime.IsBefore(*o.EndTime) {
		return fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
	}
	return nil
}
