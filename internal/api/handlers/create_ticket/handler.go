package create_ticket

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/service/queue"
	"github.com/m04kA/SMC-ReservationService/internal/service/queue/models"
)

const (
	msgInvalidAccountID   = "некорректный ID аккаунта"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgAccountNotFound    = "аккаунт не найден"
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

// Handle POST /api/v1/accounts/{accountId}/queue/tickets
// Гость (киоск) может взять талон без X-User-ID, указав телефон.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	accountID, ok := handlers.PathID(r, "accountId")
	if !ok {
		h.logger.Warn("POST /accounts/{id}/queue/tickets - Invalid account ID")
		handlers.RespondBadRequest(w, msgInvalidAccountID)
		return
	}

	actor, _ := middleware.GetActor(r.Context())

	var req CreateTicketRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /accounts/{id}/queue/tickets - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq, err := req.ToServiceRequest(accountID, actor)
	if err != nil {
		h.logger.Warn("POST /accounts/{id}/queue/tickets - Invalid client: %v", err)
		if !handlers.RespondValidation(w, err) {
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
		}
		return
	}

	result, err := h.service.CreateTicket(r.Context(), serviceReq)
	if err != nil {
		if handlers.RespondValidation(w, err) {
			h.logger.Warn("POST /accounts/{id}/queue/tickets - Rejected: account_id=%d, error=%v", accountID, err)
			return
		}

		switch {
		case errors.Is(err, queue.ErrAccountNotFound):
			handlers.RespondNotFound(w, msgAccountNotFound)

		case errors.Is(err, queue.ErrAccessDenied):
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("POST /accounts/{id}/queue/tickets - Failed to create ticket: account_id=%d, error=%v",
				accountID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /accounts/{id}/queue/tickets - Ticket created: account_id=%d, number=%s",
		accountID, result.Item.QueueNumber)
	handlers.RespondJSON(w, http.StatusCreated, models.FromItemView(result))
}
