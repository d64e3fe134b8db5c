package list_settings_overrides

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/service/settings"
)

const (
	msgInvalidAccountID = "некорректный ID аккаунта"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgForbidden        = "доступ запрещен"
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

// Handle GET /api/v1/accounts/{accountId}/settings/overrides
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

	result, err := h.service.ListOverrides(r.Context(), accountID, actor)
	if err != nil {
		if errors.Is(err, settings.ErrAccessDenied) {
			handlers.RespondForbidden(w, msgForbidden)
			return
		}
		h.logger.Error("GET /accounts/{id}/settings/overrides - Failed to list overrides: account_id=%d, error=%v", accountID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /accounts/{id}/settings/overrides - Overrides retrieved: account_id=%d, count=%d", accountID, len(result.Overrides))
	handlers.RespondJSON(w, http.StatusOK, result)
}
