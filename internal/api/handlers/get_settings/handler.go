package get_settings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/service/settings"
	"github.com/m04kA/SMC-ReservationService/internal/service/settings/models"
)

const (
	msgInvalidAccountID    = "некорректный ID аккаунта"
	msgInvalidTeamMemberID = "некорректный ID сотрудника"
	msgAccountNotFound     = "аккаунт не найден"
)

type Handler struct {
	service SettingsService
	logger  Logger
}

func NewHandler(service SettingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/accounts/{accountId}/settings
// Query params: team_member_id (опционально, итоговые настройки сотрудника)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	accountID, ok := handlers.PathID(r, "accountId")
	if !ok {
		h.logger.Warn("GET /accounts/{id}/settings - Invalid account ID")
		handlers.RespondBadRequest(w, msgInvalidAccountID)
		return
	}

	teamMemberID, err := handlers.QueryID(r, "team_member_id")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTeamMemberID)
		return
	}

	result, err := h.service.GetResolved(r.Context(), &models.GetRequest{AccountID: accountID, TeamMemberID: teamMemberID})
	if err != nil {
		if handlers.RespondValidation(w, err) {
			return
		}

		switch {
		case errors.Is(err, settings.ErrAccountNotFound):
			h.logger.Warn("GET /accounts/{id}/settings - Account not found: account_id=%d", accountID)
			handlers.RespondNotFound(w, msgAccountNotFound)

		default:
			h.logger.Error("GET /accounts/{id}/settings - Failed to get settings: account_id=%d, error=%v", accountID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /accounts/{id}/settings - Settings retrieved successfully: account_id=%d", accountID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
