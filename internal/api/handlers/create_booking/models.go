package create_booking

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	createBooking "github.com/m04kA/SMC-BeautyBooking/internal/usecase/create_booking"
	"github.com/m04kA/SMC-BeautyBooking/pkg/types"
)

var (
	errInvalidDate = errors.New("invalid bookingDate")
	errInvalidTime = errors.New("invalid startTime")
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ProviderID        int64  `json:"providerId"`
	ServiceID         int64  `json:"serviceId"`
	BookingDate       string `json:"bookingDate"` // "2025-10-15"
	StartTime         string `json:"startTime"`   // "10:00"
	DurationMinutes   int    `json:"durationMinutes"`
	ValidateConflicts *bool  `json:"validateConflicts,omitempty"` // по умолчанию true
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID              int64  `json:"id"`
	ProviderID      int64  `json:"providerId"`
	ServiceID       int64  `json:"serviceId"`
	ClientID        int64  `json:"clientId"`
	BookingDate     string `json:"bookingDate"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// SkipsValidation возвращает true, если клиент явно отключил проверку конфликтов
func (r *CreateBookingRequest) SkipsValidation() bool {
	return r.ValidateConflicts != nil && !*r.ValidateConflicts
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(clientID int64) (*createBooking.Request, error) {
	bookingDate, err := domain.ParseDate(r.BookingDate)
	if err != nil {
		return nil, errInvalidDate
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, errInvalidTime
	}

	return &createBooking.Request{
		ProviderID:        r.ProviderID,
		ServiceID:         r.ServiceID,
		ClientID:          clientID,
		Date:              bookingDate,
		StartTime:         startTime,
		DurationMinutes:   r.DurationMinutes,
		ValidateConflicts: !r.SkipsValidation(),
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:              resp.ID,
		ProviderID:      resp.ProviderID,
		ServiceID:       resp.ServiceID,
		ClientID:        resp.ClientID,
		BookingDate:     resp.BookingDate.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		EndTime:         resp.EndTime.String(),
		DurationMinutes: resp.DurationMinutes,
		Status:          resp.Status,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
