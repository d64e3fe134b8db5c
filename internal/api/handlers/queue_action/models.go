package queue_action

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/queue/models"
)

// ActionRequest HTTP request model, тело необязательно
type ActionRequest struct {
	TeamMemberID *int64 `json:"team_member_id,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *ActionRequest) ToServiceRequest(accountID, itemID int64, action string, actor domain.Actor) *models.TransitionRequest {
	return &models.TransitionRequest{
		AccountID:    accountID,
		ItemID:       itemID,
		Action:       domain.QueueAction(action),
		Actor:        actor,
		TeamMemberID: r.TeamMemberID,
	}
}
