package cancel_reservation

import (
	"errors"
	"io"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations"
)

const (
	msgInvalidAccountID     = "некорректный ID аккаунта"
	msgInvalidReservationID = "некорректный ID бронирования"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgAccountNotFound      = "аккаунт не найден"
	msgNotFound             = "бронирование не найдено"
	msgForbidden            = "доступ запрещен"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/accounts/{accountId}/reservations/{reservationId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	accountID, ok := handlers.PathID(r, "accountId")
	if !ok {
		handlers.RespondBadRequest(w, msgInvalidAccountID)
		return
	}

	reservationID, ok := handlers.PathID(r, "reservationId")
	if !ok {
		h.logger.Warn("PATCH /accounts/{id}/reservations/{id}/cancel - Invalid reservation ID")
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Тело необязательно
	var req CancelReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("PATCH /accounts/{id}/reservations/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Cancel(r.Context(), req.ToServiceRequest(accountID, reservationID, actor))
	if err != nil {
		if handlers.RespondValidation(w, err) {
			h.logger.Warn("PATCH /accounts/{id}/reservations/{id}/cancel - Rejected: reservation_id=%d, error=%v", reservationID, err)
			return
		}

		switch {
		case errors.Is(err, reservations.ErrAccountNotFound):
			handlers.RespondNotFound(w, msgAccountNotFound)

		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("PATCH /accounts/{id}/reservations/{id}/cancel - Not found: reservation_id=%d", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("PATCH /accounts/{id}/reservations/{id}/cancel - Access denied: reservation_id=%d, user_id=%d",
				reservationID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("PATCH /accounts/{id}/reservations/{id}/cancel - Failed to cancel: reservation_id=%d, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /accounts/{id}/reservations/{id}/cancel - Reservation cancelled successfully: reservation_id=%d, user_id=%d",
		reservationID, actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
