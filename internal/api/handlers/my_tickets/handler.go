package my_tickets

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/queue"
	"github.com/m04kA/SMC-ReservationService/internal/service/queue/models"
)

const (
	msgInvalidAccountID = "некорректный ID аккаунта"
	msgMissingClient    = "укажите X-User-ID или телефон"
	msgAccountNotFound  = "аккаунт не найден"
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

// Handle GET /api/v1/accounts/{accountId}/queue/my-tickets
// Клиент определяется по X-User-ID, гость - по query параметру phone.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	accountID, ok := handlers.PathID(r, "accountId")
	if !ok {
		handlers.RespondBadRequest(w, msgInvalidAccountID)
		return
	}

	var userID *int64
	if actor, ok := middleware.GetActor(r.Context()); ok {
		userID = &actor.UserID
	}

	client, err := domain.ResolveClientIdentity(userID, r.URL.Query().Get("phone"), "")
	if err != nil {
		handlers.RespondValidation(w, err)
		return
	}
	if client.IsZero() {
		handlers.RespondUnauthorized(w, msgMissingClient)
		return
	}

	views, err := h.service.ClientTickets(r.Context(), accountID, client)
	if err != nil {
		if handlers.RespondValidation(w, err) {
			return
		}

		switch {
		case errors.Is(err, queue.ErrAccountNotFound):
			handlers.RespondNotFound(w, msgAccountNotFound)

		default:
			h.logger.Error("GET /accounts/{id}/queue/my-tickets - Failed to get tickets: account_id=%d, error=%v", accountID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /accounts/{id}/queue/my-tickets - Tickets retrieved: account_id=%d, count=%d", accountID, len(views))
	handlers.RespondJSON(w, http.StatusOK, models.FromItemViews(views))
}
