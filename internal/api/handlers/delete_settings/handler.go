package delete_settings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/service/settings"
	"github.com/m04kA/SMC-ReservationService/internal/service/settings/models"
)

const (
	msgInvalidAccountID    = "некорректный ID аккаунта"
	msgInvalidTeamMemberID = "некорректный ID сотрудника"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgNotFound            = "переопределение настроек не найдено"
	msgForbidden           = "настройки может менять только администратор"
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

// Handle DELETE /api/v1/accounts/{accountId}/settings
// Query params: team_member_id (опционально, иначе уровень аккаунта)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	accountID, ok := handlers.PathID(r, "accountId")
	if !ok {
		handlers.RespondBadRequest(w, msgInvalidAccountID)
		return
	}

	teamMemberID, err := handlers.QueryID(r, "team_member_id")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidTeamMemberID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	err = h.service.Delete(r.Context(), &models.DeleteRequest{AccountID: accountID, Actor: actor, TeamMemberID: teamMemberID})
	if err != nil {
		switch {
		case errors.Is(err, settings.ErrAccessDenied):
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, settings.ErrSettingsNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("DELETE /accounts/{id}/settings - Failed to delete settings: account_id=%d, error=%v", accountID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /accounts/{id}/settings - Settings override removed: account_id=%d, team_member=%v", accountID, teamMemberID)
	w.WriteHeader(http.StatusNoContent)
}
