package create_reservation

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationsModels "github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	createReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP request model.
// starts_at/ends_at: "2025-03-03T10:00" в timezone (по умолчанию часовой пояс аккаунта) или RFC3339.
type CreateReservationRequest struct {
	TeamMemberID    int64  `json:"team_member_id"`
	ServiceID       *int64 `json:"service_id,omitempty"`
	ClientID        *int64 `json:"client_id,omitempty"`
	ClientUserID    *int64 `json:"client_user_id,omitempty"`
	ClientPhone     string `json:"client_phone,omitempty"`
	ClientName      string `json:"client_name,omitempty"`
	StartsAt        string `json:"starts_at"`
	EndsAt          string `json:"ends_at,omitempty"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
	Timezone        string `json:"timezone,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(accountID int64, actor domain.Actor) (*createReservation.Request, error) {
	client, err := domain.ResolveClientIdentity(r.ClientUserID, r.ClientPhone, r.ClientName)
	if err != nil {
		return nil, err
	}

	return &createReservation.Request{
		AccountID:       accountID,
		Actor:           actor,
		Client:          client,
		ClientID:        r.ClientID,
		TeamMemberID:    r.TeamMemberID,
		ServiceID:       r.ServiceID,
		StartsAt:        r.StartsAt,
		EndsAt:          r.EndsAt,
		DurationMinutes: r.DurationMinutes,
		Timezone:        r.Timezone,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createReservation.Response) *reservationsModels.ReservationResponse {
	return reservationsModels.FromDomainReservation(resp.Reservation, resp.CanClientModify)
}
