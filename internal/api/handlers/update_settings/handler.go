package update_settings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/service/settings"
	"github.com/m04kA/SMC-ReservationService/internal/service/settings/models"
)

const (
	msgInvalidAccountID   = "некорректный ID аккаунта"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgAccountNotFound    = "аккаунт не найден"
	msgForbidden          = "настройки может менять только администратор"
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

// Handle PUT /api/v1/accounts/{accountId}/settings
// Тело заменяет переопределение уровня целиком: незаданные поля наследуются.
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

	var req models.UpsertRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /accounts/{id}/settings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.AccountID = accountID
	req.Actor = actor

	result, err := h.service.Upsert(r.Context(), &req)
	if err != nil {
		if handlers.RespondValidation(w, err) {
			h.logger.Warn("PUT /accounts/{id}/settings - Rejected: account_id=%d, error=%v", accountID, err)
			return
		}

		switch {
		case errors.Is(err, settings.ErrAccessDenied):
			h.logger.Warn("PUT /accounts/{id}/settings - Access denied: account_id=%d, user_id=%d", accountID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, settings.ErrAccountNotFound):
			handlers.RespondNotFound(w, msgAccountNotFound)

		default:
			h.logger.Error("PUT /accounts/{id}/settings - Failed to save settings: account_id=%d, error=%v", accountID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /accounts/{id}/settings - Settings saved: account_id=%d, level=%s", accountID, result.Level)
	handlers.RespondJSON(w, http.StatusOK, result)
}
