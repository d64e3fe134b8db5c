package queue_action

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/service/queue"
	"github.com/m04kA/SMC-ReservationService/internal/service/queue/models"
)

const (
	msgInvalidAccountID   = "некорректный ID аккаунта"
	msgInvalidItemID      = "некорректный ID элемента очереди"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgAccountNotFound    = "аккаунт не найден"
	msgItemNotFound       = "элемент очереди не найден"
	msgForbidden          = "доступ запрещен"
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

// Handle POST /api/v1/accounts/{accountId}/queue/items/{itemId}/actions/{action}
// action: check_in, still_here, pre_call, call, start, done, skip, cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	accountID, ok := handlers.PathID(r, "accountId")
	if !ok {
		handlers.RespondBadRequest(w, msgInvalidAccountID)
		return
	}

	itemID, ok := handlers.PathID(r, "itemId")
	if !ok {
		h.logger.Warn("POST /accounts/{id}/queue/items/{id}/actions/{action} - Invalid item ID")
		handlers.RespondBadRequest(w, msgInvalidItemID)
		return
	}
	action := mux.Vars(r)["action"]

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ActionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("POST /accounts/{id}/queue/items/{id}/actions/{action} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Transition(r.Context(), req.ToServiceRequest(accountID, itemID, action, actor))
	if err != nil {
		if handlers.RespondValidation(w, err) {
			h.logger.Warn("POST /accounts/{id}/queue/items/{id}/actions/%s - Rejected: item_id=%d, error=%v", action, itemID, err)
			return
		}

		switch {
		case errors.Is(err, queue.ErrAccountNotFound):
			handlers.RespondNotFound(w, msgAccountNotFound)

		case errors.Is(err, queue.ErrItemNotFound):
			h.logger.Warn("POST /accounts/{id}/queue/items/{id}/actions/%s - Item not found: item_id=%d", action, itemID)
			handlers.RespondNotFound(w, msgItemNotFound)

		case errors.Is(err, queue.ErrAccessDenied):
			h.logger.Warn("POST /accounts/{id}/queue/items/{id}/actions/%s - Access denied: item_id=%d, user_id=%d",
				action, itemID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("POST /accounts/{id}/queue/items/{id}/actions/%s - Failed: item_id=%d, error=%v",
				action, itemID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /accounts/{id}/queue/items/{id}/actions/%s - Done: item_id=%d, status=%s",
		action, itemID, result.Item.Status)
	handlers.RespondJSON(w, http.StatusOK, models.FromItemView(result))
}
