package list_reservations

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations"
)

const (
	msgInvalidAccountID = "некорректный ID аккаунта"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgInvalidParams    = "некорректные параметры запроса"
	msgInvalidStatus    = "недопустимый статус бронирования"
	msgAccountNotFound  = "аккаунт не найден"
	msgForbidden        = "доступ запрещен"
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

// Handle GET /api/v1/accounts/{accountId}/reservations
// Query params: team_member_id, from, to, status, include_inactive (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	accountID, ok := handlers.PathID(r, "accountId")
	if !ok {
		h.logger.Warn("GET /accounts/{id}/reservations - Invalid account ID")
		handlers.RespondBadRequest(w, msgInvalidAccountID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /accounts/{id}/reservations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	serviceReq, err := ToServiceRequest(r, accountID, actor)
	if err != nil {
		h.logger.Warn("GET /accounts/{id}/reservations - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.ListForAccount(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("GET /accounts/{id}/reservations - Access denied: account_id=%d, user_id=%d",
				accountID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrInvalidStatus):
			handlers.RespondJSON(w, http.StatusBadRequest, handlers.ErrorResponse{Error: msgInvalidStatus, Field: "status"})

		case errors.Is(err, reservations.ErrAccountNotFound):
			handlers.RespondNotFound(w, msgAccountNotFound)

		default:
			h.logger.Error("GET /accounts/{id}/reservations - Failed to list reservations: account_id=%d, error=%v",
				accountID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /accounts/{id}/reservations - Reservations retrieved successfully: account_id=%d, count=%d",
		accountID, len(result.Reservations))
	handlers.RespondJSON(w, http.StatusOK, result)
}
