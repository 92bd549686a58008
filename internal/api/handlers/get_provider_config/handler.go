package get_provider_config

import (
	"net/http"

	"github.com/m04kA/SMC-BeautyBooking/internal/api/handlers"
)

const msgInvalidProviderID = "некорректный ID мастера"

type Handler struct {
	service ConfigService
	logger  Logger
}

func NewHandler(service ConfigService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/config
// Если мастер не сохранял настройки, возвращаются значения по умолчанию
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		h.logger.Warn("GET /providers/{id}/config - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	config, err := h.service.Get(r.Context(), providerID)
	if err != nil {
		h.logger.Error("GET /providers/{id}/config - Failed to get config: provider_id=%d, error=%v", providerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /providers/{id}/config - Config retrieved successfully: provider_id=%d, default=%t",
		providerID, config.IsDefault)
	handlers.RespondJSON(w, http.StatusOK, config)
}
