package availability_rules

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BeautyBooking/internal/api/handlers"
	"github.com/m04kA/SMC-BeautyBooking/internal/api/middleware"
	"github.com/m04kA/SMC-BeautyBooking/internal/service/availability"
	"github.com/m04kA/SMC-BeautyBooking/internal/service/availability/models"
)

const (
	msgInvalidProviderID  = "некорректный ID мастера"
	msgInvalidRuleID      = "некорректный ID правила"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidRule        = "некорректное правило доступности"
	msgRuleOverlap        = "правило пересекается с другим активным правилом этого дня"
	msgNotFound           = "правило не найдено"
	msgForbidden          = "доступ запрещен"
)

// Handler управление недельным расписанием мастера
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

// List GET /api/v1/providers/{providerId}/rules
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		h.logger.Warn("GET /providers/{id}/rules - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	result, err := h.service.ListRules(r.Context(), providerID)
	if err != nil {
		h.respondError(w, "GET /providers/{id}/rules", providerID, err)
		return
	}

	h.logger.Info("GET /providers/{id}/rules - Rules retrieved successfully: provider_id=%d, count=%d",
		providerID, len(result.Rules))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Create POST /api/v1/providers/{providerId}/rules
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	providerID, userID, ok := h.owner(w, r, "POST /providers/{id}/rules")
	if !ok {
		return
	}

	var req models.CreateRuleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /providers/{id}/rules - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID
	req.ProviderID = providerID

	rule, err := h.service.CreateRule(r.Context(), &req)
	if err != nil {
		h.respondError(w, "POST /providers/{id}/rules", providerID, err)
		return
	}

	h.logger.Info("POST /providers/{id}/rules - Rule created successfully: provider_id=%d, rule_id=%d", providerID, rule.ID)
	handlers.RespondJSON(w, http.StatusCreated, rule)
}

// Update PUT /api/v1/providers/{providerId}/rules/{ruleId}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	providerID, userID, ok := h.owner(w, r, "PUT /providers/{id}/rules/{ruleId}")
	if !ok {
		return
	}

	ruleID, err := handlers.PathInt64(r, "ruleId")
	if err != nil {
		h.logger.Warn("PUT /providers/{id}/rules/{ruleId} - Invalid rule ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRuleID)
		return
	}

	var req models.UpdateRuleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /providers/{id}/rules/{ruleId} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID
	req.ProviderID = providerID
	req.RuleID = ruleID

	rule, err := h.service.UpdateRule(r.Context(), &req)
	if err != nil {
		h.respondError(w, "PUT /providers/{id}/rules/{ruleId}", providerID, err)
		return
	}

	h.logger.Info("PUT /providers/{id}/rules/{ruleId} - Rule updated successfully: provider_id=%d, rule_id=%d", providerID, ruleID)
	handlers.RespondJSON(w, http.StatusOK, rule)
}

// Delete DELETE /api/v1/providers/{providerId}/rules/{ruleId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	providerID, userID, ok := h.owner(w, r, "DELETE /providers/{id}/rules/{ruleId}")
	if !ok {
		return
	}

	ruleID, err := handlers.PathInt64(r, "ruleId")
	if err != nil {
		h.logger.Warn("DELETE /providers/{id}/rules/{ruleId} - Invalid rule ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRuleID)
		return
	}

	if err := h.service.DeleteRule(r.Context(), userID, providerID, ruleID); err != nil {
		h.respondError(w, "DELETE /providers/{id}/rules/{ruleId}", providerID, err)
		return
	}

	h.logger.Info("DELETE /providers/{id}/rules/{ruleId} - Rule deleted successfully: provider_id=%d, rule_id=%d", providerID, ruleID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

// owner извлекает мастера из пути и пользователя из контекста
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

	case errors.Is(err, availability.ErrRuleNotFound):
		h.logger.Warn("%s - Rule not found: provider_id=%d", op, providerID)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, availability.ErrRuleOverlap):
		h.logger.Warn("%s - Rule overlap: provider_id=%d", op, providerID)
		handlers.RespondError(w, http.StatusConflict, msgRuleOverlap)

	case errors.Is(err, availability.ErrInvalidInput):
		h.logger.Warn("%s - Invalid rule: provider_id=%d, error=%v", op, providerID, err)
		handlers.RespondBadRequest(w, msgInvalidRule)

	default:
		h.logger.Error("%s - Failed: provider_id=%d, error=%v", op, providerID, err)
		handlers.RespondInternalError(w)
	}
}
