package models

import (
	"time"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	"github.com/m04kA/SMC-BeautyBooking/pkg/types"
)

// Request модели

// CreateRuleRequest запрос на создание правила доступности
type CreateRuleRequest struct {
	UserID     int64            `json:"-"`
	ProviderID int64            `json:"-"`
	DayOfWeek  int              `json:"dayOfWeek"` // 0 = воскресенье
	StartTime  types.TimeString `json:"startTime"`
	EndTime    types.TimeString `json:"endTime"`
	IsActive   *bool            `json:"isActive,omitempty"` // по умолчанию true
}

// UpdateRuleRequest запрос на обновление правила
// Все поля опциональны - обновляются только переданные значения
type UpdateRuleRequest struct {
	UserID     int64             `json:"-"`
	ProviderID int64             `json:"-"`
	RuleID     int64             `json:"-"`
	DayOfWeek  *int              `json:"dayOfWeek,omitempty"`
	StartTime  *types.TimeString `json:"startTime,omitempty"`
	EndTime    *types.TimeString `json:"endTime,omitempty"`
	IsActive   *bool             `json:"isActive,omitempty"`
}

// PutOverrideRequest запрос на создание или замену исключения на дату
type PutOverrideRequest struct {
	UserID     int64             `json:"-"`
	ProviderID int64             `json:"-"`
	Date       time.Time         `json:"-"`
	IsBlocked  bool              `json:"isBlocked"`
	Reason     *string           `json:"reason,omitempty"`
	StartTime  *types.TimeString `json:"startTime,omitempty"` // собственные часы работы на дату
	EndTime    *types.TimeString `json:"endTime,omitempty"`
}

// Response модели

// RuleResponse правило доступности
type RuleResponse struct {
	ID         int64            `json:"id"`
	ProviderID int64            `json:"providerId"`
	DayOfWeek  int              `json:"dayOfWeek"`
	StartTime  types.TimeString `json:"startTime"`
	EndTime    types.TimeString `json:"endTime"`
	IsActive   bool             `json:"isActive"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// RuleListResponse список правил мастера
type RuleListResponse struct {
	Rules []RuleResponse `json:"rules"`
}

// OverrideResponse исключение на дату
type OverrideResponse struct {
	ID         int64             `json:"id"`
	ProviderID int64             `json:"providerId"`
	Date       string            `json:"date"`
	IsBlocked  bool              `json:"isBlocked"`
	Reason     *string           `json:"reason,omitempty"`
	StartTime  *types.TimeString `json:"startTime,omitempty"`
	EndTime    *types.TimeString `json:"endTime,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// OverrideListResponse список исключений за период
type OverrideListResponse struct {
	Overrides []OverrideResponse `json:"overrides"`
}

// Методы конвертации

// ToDomainRule конвертирует запрос в domain модель
func (r *CreateRuleRequest) ToDomainRule() *domain.AvailabilityRule {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &domain.AvailabilityRule{
		ProviderID: r.ProviderID,
		DayOfWeek:  time.Weekday(r.DayOfWeek),
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		IsActive:   active,
	}
}

// ApplyTo применяет частичное обновление к правилу
func (r *UpdateRuleRequest) ApplyTo(rule *domain.AvailabilityRule) {
	if r.DayOfWeek != nil {
		rule.DayOfWeek = time.Weekday(*r.DayOfWeek)
	}
	if r.StartTime != nil {
		rule.StartTime = *r.StartTime
	}
	if r.EndTime != nil {
		rule.EndTime = *r.EndTime
	}
	if r.IsActive != nil {
		rule.IsActive = *r.IsActive
	}
}

// ToDomainOverride конвертирует запрос в domain модель
func (r *PutOverrideRequest) ToDomainOverride() *domain.AvailabilityOverride {
	o := &domain.AvailabilityOverride{
		ProviderID: r.ProviderID,
		Date:       domain.DateOnly(r.Date),
		IsBlocked:  r.IsBlocked,
		Reason:     r.Reason,
	}
	// У заблокированного дня собственных часов нет
	if !r.IsBlocked {
		o.StartTime = r.StartTime
		o.EndTime = r.EndTime
	}
	return o
}

// FromDomainRule конвертирует domain модель в DTO
func FromDomainRule(r *domain.AvailabilityRule) *RuleResponse {
	if r == nil {
		return nil
	}
	return &RuleResponse{
		ID:         r.ID,
		ProviderID: r.ProviderID,
		DayOfWeek:  int(r.DayOfWeek),
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// FromDomainRuleList конвертирует список правил в DTO
func FromDomainRuleList(rules []*domain.AvailabilityRule) *RuleListResponse {
	out := make([]RuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, *FromDomainRule(r))
	}
	return &RuleListResponse{Rules: out}
}

// FromDomainOverride конвертирует domain модель в DTO
func FromDomainOverride(o *domain.AvailabilityOverride) *OverrideResponse {
	if o == nil {
		return nil
	}
	return &OverrideResponse{
		ID:         o.ID,
		ProviderID: o.ProviderID,
		Date:       o.Date.Format(domain.DateFormat),
		IsBlocked:  o.IsBlocked,
		Reason:     o.Reason,
		StartTime:  o.StartTime,
		EndTime:    o.EndTime,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

// FromDomainOverrideList конвертирует список исключений в DTO
func FromDomainOverrideList(overrides []*domain.AvailabilityOverride) *OverrideListResponse {
	out := make([]OverrideResponse, 0, len(overrides))
	for _, o := range overrides {
		out = append(out, *FromDomainOverride(o))
	}
	return &OverrideListResponse{Overrides: out}
}
