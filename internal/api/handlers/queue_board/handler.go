package queue_board

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/service/queue"
	"github.com/m04kA/SMC-ReservationService/internal/service/queue/models"
)

const (
	msgInvalidAccountID = "некорректный ID аккаунта"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgAccountNotFound  = "аккаунт не найден"
	msgForbidden        = "доступ запрещен"
)

type Handler struct {
	service QueueService
	logger  Logger
}

func NewHandler(service QueueService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/accounts/{accountId}/queue/board
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	accountID, ok := handlers.PathID(r, "accountId")
	if !ok {
		handlers.RespondBadRequest(w, msgInvalidAccountID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	snapshot, err := h.service.BoardForStaff(r.Context(), accountID, actor)
	if err != nil {
		if handlers.RespondValidation(w, err) {
			return
		}

		switch {
		case errors.Is(err, queue.ErrAccessDenied):
			h.logger.Warn("GET /accounts/{id}/queue/board - Access denied: account_id=%d, user_id=%d", accountID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, queue.ErrAccountNotFound):
			handlers.RespondNotFound(w, msgAccountNotFound)

		default:
			h.logger.Error("GET /accounts/{id}/queue/board - Failed to build board: account_id=%d, error=%v", accountID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /accounts/{id}/queue/board - Board built: account_id=%d, lanes=%d", accountID, len(snapshot.Lanes))
	handlers.RespondJSON(w, http.StatusOK, models.FromSnapshot(snapshot))
}
