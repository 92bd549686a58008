package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BeautyBooking/internal/api/handlers"
	"github.com/m04kA/SMC-BeautyBooking/internal/api/middleware"
	"github.com/m04kA/SMC-BeautyBooking/internal/domain"
	"github.com/m04kA/SMC-BeautyBooking/internal/integrations/identity"
	createBooking "github.com/m04kA/SMC-BeautyBooking/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidDate         = "некорректный формат даты бронирования, ожидается YYYY-MM-DD"
	msgInvalidTime         = "некорректный формат времени начала, ожидается HH:MM"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgInvalidBooking      = "некорректные параметры бронирования"
	msgDateTooFar          = "дата бронирования слишком далеко в будущем"
	msgAlreadyBooked       = "выбранное время уже занято"
	msgProviderUnavailable = "мастер не работает в выбранное время"
	msgSlotBusy            = "выбранное время сейчас бронируется, попробуйте еще раз"
	msgForbiddenSkip       = "отключать проверку конфликтов могут только внутренние сервисы"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Бэкфилл без проверок доступен только внутренним сервисам
	if req.SkipsValidation() && principal.Role != identity.RoleService && principal.Role != identity.RoleAdmin {
		h.logger.Warn("POST /bookings - Conflict validation skip denied: user_id=%d, role=%s", principal.UserID, principal.Role)
		handlers.RespondForbidden(w, msgForbiddenSkip)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(principal.UserID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		if errors.Is(err, errInvalidTime) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrAlreadyBooked):
			h.logger.Warn("POST /bookings - Slot already booked: client_id=%d, provider_id=%d", principal.UserID, req.ProviderID)
			handlers.RespondConflict(w, msgAlreadyBooked, domain.ReasonAlreadyBooked)

		case errors.Is(err, createBooking.ErrProviderUnavailable):
			h.logger.Warn("POST /bookings - Provider unavailable: client_id=%d, provider_id=%d", principal.UserID, req.ProviderID)
			handlers.RespondConflict(w, msgProviderUnavailable, domain.ReasonProviderUnavailable)

		case errors.Is(err, createBooking.ErrUnauthenticated):
			h.logger.Warn("POST /bookings - Unauthenticated client")
			handlers.RespondUnauthorized(w, msgMissingUserID)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid booking: client_id=%d, error=%v", principal.UserID, err)
			handlers.RespondBadRequest(w, msgInvalidBooking)

		case errors.Is(err, createBooking.ErrDateTooFarInFuture):
			h.logger.Warn("POST /bookings - Date too far in future: client_id=%d, provider_id=%d", principal.UserID, req.ProviderID)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createBooking.ErrLockTimeout):
			h.logger.Warn("POST /bookings - Lock timeout: client_id=%d, provider_id=%d", principal.UserID, req.ProviderID)
			handlers.RespondServiceUnavailable(w, msgSlotBusy)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: client_id=%d, provider_id=%d, error=%v",
				principal.UserID, req.ProviderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, client_id=%d, provider_id=%d",
		result.ID, principal.UserID, req.ProviderID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
