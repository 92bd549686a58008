package availability_overrides

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/m04kA/SMC-BeautyBooking/internal/api/handlers"
	"github.com/m04kA/SMC-BeautyBooking/internal/api/middleware"
	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	"github.com/m04kA/SMC-BeautyBooking/internal/service/availability"
	"github.com/m04kA/SMC-BeautyBooking/internal/service/availability/models"
)

const defaultPeriodDays = 30

const (
	msgInvalidProviderID  = "некорректный ID мастера"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidOverride    = "некорректное исключение расписания"
	msgNotFound           = "исключение на дату не найдено"
	msgForbidden          = "доступ запрещен"
)

// Handler исключения расписания на конкретные даты
type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// List GET /api/v1/providers/{providerId}/overrides?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		h.logger.Warn("GET /providers/{id}/overrides - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	from, to, err := period(r)
	if err != nil {
		h.logger.Warn("GET /providers/{id}/overrides - Invalid period: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.ListOverrides(r.Context(), providerID, from, to)
	if err != nil {
		h.respondError(w, "GET /providers/{id}/overrides", providerID, err)
		return
	}

	h.logger.Info("GET /providers/{id}/overrides - Overrides retrieved successfully: provider_id=%d, count=%d",
		providerID, len(result.Overrides))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Put PUT /api/v1/providers/{providerId}/overrides/{date}
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	const op = "PUT /providers/{id}/overrides/{date}"

	providerID, userID, ok := h.owner(w, r, op)
	if !ok {
		return
	}

	dateStr, err := handlers.PathDate(r, "date")
	if err != nil {
		h.logger.Warn("%s - Invalid date: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	date, _ := domain.ParseDate(dateStr)

	var req models.PutOverrideRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID
	req.ProviderID = providerID
	req.Date = date

	override, err := h.service.PutOverride(r.Context(), &req)
	if err != nil {
		h.respondError(w, op, providerID, err)
		return
	}

	h.logger.Info("%s - Override saved successfully: provider_id=%d, date=%s, blocked=%t",
		op, providerID, dateStr, override.IsBlocked)
	handlers.RespondJSON(w, http.StatusOK, override)
}

// Delete DELETE /api/v1/providers/{providerId}/overrides/{date}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "DELETE /providers/{id}/overrides/{date}"

	providerID, userID, ok := h.owner(w, r, op)
	if !ok {
		return
	}

	dateStr, err := handlers.PathDate(r, "date")
	if err != nil {
		h.logger.Warn("%s - Invalid date: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	date, _ := domain.ParseDate(dateStr)

	if err := h.service.DeleteOverride(r.Context(), userID, providerID, date); err != nil {
		h.respondError(w, op, providerID, err)
		return
	}

	h.logger.Info("%s - Override deleted successfully: provider_id=%d, date=%s", op, providerID, dateStr)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

// period разбирает from/to. По умолчанию период начинается сегодня и длится defaultPeriodDays.
func period(r *http.Request) (from, to time.Time, err error) {
	from = domain.DateOnly(time.Now().UTC())
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = domain.ParseDate(raw); err != nil {
			return from, to, fmt.Errorf("invalid from: %q", raw)
		}
	}

	to = from.AddDate(0, 0, defaultPeriodDays)
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = domain.ParseDate(raw); err != nil {
			return from, to, fmt.Errorf("invalid to: %q", raw)
		}
	}
	return from, to, nil
}

func (h *Handler) owner(w http.ResponseWriter, r *http.Request, op string) (providerID, userID int64, ok bool) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		h.logger.Warn("%s - Invalid provider ID: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return 0, 0, false
	}

	userID, ok = middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", op)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return 0, 0, false
	}

	return providerID, userID, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, providerID int64, err error) {
	switch {
	case errors.Is(err, availability.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: provider_id=%d", op, providerID)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, availability.ErrOverrideNotFound):
		h.logger.Warn("%s - Override not found: provider_id=%d", op, providerID)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, availability.ErrInvalidInput):
		h.logger.Warn("%s - Invalid override: provider_id=%d, error=%v", op, providerID, err)
		handlers.RespondBadRequest(w, msgInvalidOverride)

	default:
		h.logger.Error("%s - Failed: provider_id=%d, error=%v", op, providerID, err)
		handlers.RespondInternalError(w)
	}
}
