package get_conflicts

import (
	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	getConflicts "github.com/m04kA/SMC-BeautyBooking/internal/usecase/get_conflicts"
)

// ConflictsResponse HTTP response model
type ConflictsResponse struct {
	ProviderID      int64           `json:"providerId"`
	Date            string          `json:"date"`
	DurationMinutes int             `json:"durationMinutes"`
	Slots           []AnnotatedSlot `json:"slots"`
}

// AnnotatedSlot слот с отметкой доступности
type AnnotatedSlot struct {
	StartTime     string  `json:"startTime"`
	EndTime       string  `json:"endTime"`
	Available     bool    `json:"available"`
	Reason        *string `json:"reason,omitempty"`
	ConflictsWith []int64 `json:"conflictsWith,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getConflicts.Response) *ConflictsResponse {
	slots := make([]AnnotatedSlot, len(resp.Slots))
	for i, a := range resp.Slots {
		slot := AnnotatedSlot{
			StartTime:     a.Slot.StartTime.String(),
			EndTime:       a.Slot.EndTime.String(),
			Available:     a.Available,
			ConflictsWith: a.ConflictsWith,
		}
		if a.Reason != nil {
			reason := string(*a.Reason)
			slot.Reason = &reason
		}
		slots[i] = slot
	}

	return &ConflictsResponse{
		ProviderID:      resp.ProviderID,
		Date:            resp.Date.Format(domain.DateFormat),
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
	}
}
