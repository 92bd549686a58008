package get_availability

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	getAvailability "github.com/m04kA/SMC-BeautyBooking/internal/usecase/get_availability"
)

var (
	errMissingDate     = errors.New("date is required")
	errInvalidDate     = errors.New("invalid date")
	errInvalidDuration = errors.New("invalid durationMinutes")
	errInvalidService  = errors.New("invalid serviceId")
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	ProviderID      int64   `json:"providerId"`
	Date            string  `json:"date"`
	DurationMinutes int     `json:"durationMinutes"`
	GridMinutes     int     `json:"gridMinutes"`
	Timezone        string  `json:"timezone"`
	Blocked         bool    `json:"blocked"`
	BlockedReason   *string `json:"blockedReason,omitempty"`
	Slots           []Slot  `json:"slots"`
}

// Slot свободный интервал
type Slot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	slots := make([]Slot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = Slot{
			StartTime: slot.StartTime.String(),
			EndTime:   slot.EndTime.String(),
		}
	}

	return &AvailabilityResponse{
		ProviderID:      resp.ProviderID,
		Date:            resp.Date.Format(domain.DateFormat),
		DurationMinutes: resp.DurationMinutes,
		GridMinutes:     resp.GridMinutes,
		Timezone:        resp.Timezone,
		Blocked:         resp.Blocked,
		BlockedReason:   resp.BlockedReason,
		Slots:           slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(providerID int64, query url.Values) (*getAvailability.Request, error) {
	dateStr := query.Get("date")
	if dateStr == "" {
		return nil, errMissingDate
	}

	date, err := domain.ParseDate(dateStr)
	if err != nil {
		return nil, errInvalidDate
	}

	req := &getAvailability.Request{
		ProviderID: providerID,
		Date:       date,
	}

	if raw := query.Get("durationMinutes"); raw != "" {
		duration, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errInvalidDuration
		}
		req.DurationMinutes = &duration
	}

	if raw := query.Get("serviceId"); raw != "" {
		serviceID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || serviceID <= 0 {
			return nil, errInvalidService
		}
		req.ServiceID = &serviceID
	}

	return req, nil
}
