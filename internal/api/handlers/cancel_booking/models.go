package cancel_booking

import (
	"github.com/m04kA/SMC-BeautyBooking/internal/integrations/identity"
	"github.com/m04kA/SMC-BeautyBooking/internal/service/bookings/models"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelBookingRequest) ToServiceRequest(principal *identity.Principal) *models.CancelBookingRequest {
	reason := ""
	if r.CancellationReason != nil {
		reason = *r.CancellationReason
	}

	return &models.CancelBookingRequest{
		Actor:              models.Actor{UserID: principal.UserID, Role: principal.Role},
		CancellationReason: reason,
	}
}
