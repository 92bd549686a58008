package availability_rules

import (
	"context"

	"github.com/m04kA/SMC-BeautyBooking/internal/service/availability/models"
)

type AvailabilityService interface {
	ListRules(ctx context.Context, providerID int64) (*models.RuleListResponse, error)
	CreateRule(ctx context.Context, req *models.CreateRuleRequest) (*models.RuleResponse, error)
	UpdateRule(ctx context.Context, req *models.UpdateRuleRequest) (*models.RuleResponse, error)
	DeleteRule(ctx context.Context, userID, providerID, ruleID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
