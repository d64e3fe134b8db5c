package create_reservation

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	createReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
)

const (
	msgInvalidAccountID   = "некорректный ID аккаунта"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgAccountNotFound    = "аккаунт не найден"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/accounts/{accountId}/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	accountID, ok := handlers.PathID(r, "accountId")
	if !ok {
		h.logger.Warn("POST /accounts/{id}/reservations - Invalid account ID")
		handlers.RespondBadRequest(w, msgInvalidAccountID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /accounts/{id}/reservations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /accounts/{id}/reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(accountID, actor)
	if err != nil {
		h.logger.Warn("POST /accounts/{id}/reservations - Invalid client: %v", err)
		if !handlers.RespondValidation(w, err) {
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		if handlers.RespondValidation(w, err) {
			h.logger.Warn("POST /accounts/{id}/reservations - Rejected: account_id=%d, user_id=%d, error=%v",
				accountID, actor.UserID, err)
			return
		}

		switch {
		case errors.Is(err, createReservation.ErrAccountNotFound):
			h.logger.Warn("POST /accounts/{id}/reservations - Account not found: account_id=%d", accountID)
			handlers.RespondNotFound(w, msgAccountNotFound)

		case errors.Is(err, createReservation.ErrInvalidInput):
			h.logger.Warn("POST /accounts/{id}/reservations - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /accounts/{id}/reservations - Failed to create reservation: account_id=%d, user_id=%d, error=%v",
				accountID, actor.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /accounts/{id}/reservations - Reservation created successfully: reservation_id=%d, account_id=%d",
		result.Reservation.ID, accountID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
