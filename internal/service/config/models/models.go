package models

import (
	"time"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
)

// Request модели

// UpdateConfigRequest запрос на обновление настроек мастера
// Все поля опциональны - обновляются только переданные значения
type UpdateConfigRequest struct {
	UserID                     int64   `json:"-"`
	ProviderID                 int64   `json:"-"`
	GridMinutes                *int    `json:"gridMinutes,omitempty"`
	DefaultDurationMinutes     *int    `json:"defaultDurationMinutes,omitempty"`
	Timezone                   *string `json:"timezone,omitempty"`
	AdvanceBookingDays         *int    `json:"advanceBookingDays,omitempty"` // 0 = без ограничений
	RequirePaymentConfirmation *bool   `json:"requirePaymentConfirmation,omitempty"`
}

// Response модели

// ConfigResponse настройки бронирования мастера
type ConfigResponse struct {
	ProviderID                 int64      `json:"providerId"`
	GridMinutes                int        `json:"gridMinutes"`
	DefaultDurationMinutes     int        `json:"defaultDurationMinutes"`
	Timezone                   string     `json:"timezone"`
	AdvanceBookingDays         int        `json:"advanceBookingDays"`
	RequirePaymentConfirmation bool       `json:"requirePaymentConfirmation"`
	IsDefault                  bool       `json:"isDefault"` // настройки не сохранялись, действуют значения по умолчанию
	UpdatedAt                  *time.Time `json:"updatedAt,omitempty"`
}

// Методы конвертации

// ApplyTo применяет частичное обновление к настройкам
func (r *UpdateConfigRequest) ApplyTo(c *domain.ProviderSlotsConfig) {
	if r.GridMinutes != nil {
		c.GridMinutes = *r.GridMinutes
	}
	if r.DefaultDurationMinutes != nil {
		c.DefaultDurationMinutes = *r.DefaultDurationMinutes
	}
	if r.Timezone != nil {
		c.Timezone = *r.Timezone
	}
	if r.AdvanceBookingDays != nil {
		c.AdvanceBookingDays = *r.AdvanceBookingDays
	}
	if r.RequirePaymentConfirmation != nil {
		c.RequirePaymentConfirmation = *r.RequirePaymentConfirmation
	}
}

// FromDomainConfig конвертирует domain модель в DTO
func FromDomainConfig(c *domain.ProviderSlotsConfig) *ConfigResponse {
	if c == nil {
		return nil
	}

	resp := &ConfigResponse{
		ProviderID:                 c.ProviderID,
		GridMinutes:                c.GridMinutes,
		DefaultDurationMinutes:     c.DefaultDurationMinutes,
		Timezone:                   c.Timezone,
		AdvanceBookingDays:         c.AdvanceBookingDays,
		RequirePaymentConfirmation: c.RequirePaymentConfirmation,
		IsDefault:                  c.ID == 0,
	}
	if !c.UpdatedAt.IsZero() {
		updatedAt := c.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}
