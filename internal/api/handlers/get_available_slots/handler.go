package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-ReservationService/internal/usecase/get_available_slots"
)

const (
	msgInvalidAccountID = "некорректный ID аккаунта"
	msgInvalidParams    = "некорректные параметры запроса"
	msgAccountNotFound  = "аккаунт не найден"
)

type Handler struct {
	finder SlotFinder
	logger Logger
}

func NewHandler(finder SlotFinder, logger Logger) *Handler {
	return &Handler{
		finder: finder,
		logger: logger,
	}
}

// Handle GET /api/v1/accounts/{accountId}/available-slots
// Query params: date (обязательно), date_to, team_member_id, service_id, duration_minutes
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	accountID, ok := handlers.PathID(r, "accountId")
	if !ok {
		h.logger.Warn("GET /accounts/{id}/available-slots - Invalid account ID")
		handlers.RespondBadRequest(w, msgInvalidAccountID)
		return
	}

	useCaseReq, err := ToUseCaseRequest(r, accountID)
	if err != nil {
		h.logger.Warn("GET /accounts/{id}/available-slots - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.finder.Execute(r.Context(), useCaseReq)
	if err != nil {
		if handlers.RespondValidation(w, err) {
			h.logger.Warn("GET /accounts/{id}/available-slots - Rejected: account_id=%d, error=%v", accountID, err)
			return
		}

		switch {
		case errors.Is(err, getAvailableSlots.ErrAccountNotFound):
			h.logger.Warn("GET /accounts/{id}/available-slots - Account not found: account_id=%d", accountID)
			handlers.RespondNotFound(w, msgAccountNotFound)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /accounts/{id}/available-slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /accounts/{id}/available-slots - Failed to get slots: account_id=%d, error=%v",
				accountID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /accounts/{id}/available-slots - Slots retrieved successfully: account_id=%d, team_member_id=%s, slots_count=%d",
		accountID, memberLabel(useCaseReq.TeamMemberID), len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

// memberLabel сотрудник из фильтра для логов
func memberLabel(id *int64) string {
	if id == nil {
		return "all"
	}
	return strconv.FormatInt(*id, 10)
}
