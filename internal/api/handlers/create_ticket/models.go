package create_ticket

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/queue/models"
)

// CreateTicketRequest HTTP request model
type CreateTicketRequest struct {
	TeamMemberID    *int64 `json:"team_member_id,omitempty"`
	ServiceID       *int64 `json:"service_id,omitempty"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
	ClientUserID    *int64 `json:"client_user_id,omitempty"`
	ClientPhone     string `json:"client_phone,omitempty"`
	ClientName      string `json:"client_name,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса.
// Клиент всегда получает талон на себя, сотрудник выдает талон любому клиенту.
func (r *CreateTicketRequest) ToServiceRequest(accountID int64, actor domain.Actor) (*models.CreateTicketRequest, error) {
	userID := r.ClientUserID
	if actor.UserID > 0 && !actor.IsStaff() {
		self := actor.UserID
		userID = &self
	}

	client, err := domain.ResolveClientIdentity(userID, r.ClientPhone, r.ClientName)
	if err != nil {
		return nil, err
	}

	return &models.CreateTicketRequest{
		AccountID:       accountID,
		Actor:           actor,
		Client:          client,
		TeamMemberID:    r.TeamMemberID,
		ServiceID:       r.ServiceID,
		DurationMinutes: r.DurationMinutes,
	}, nil
}
