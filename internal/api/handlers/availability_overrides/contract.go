package availability_overrides

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BeautyBooking/internal/service/availability/models"
)

type AvailabilityService interface {
	ListOverrides(ctx context.Context, providerID int64, from, to time.Time) (*models.OverrideListResponse, error)
	PutOverride(ctx context.Context, req *models.PutOverrideRequest) (*models.OverrideResponse, error)
	DeleteOverride(ctx context.Context, userID, providerID int64, date time.Time) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
