package reschedule_reservation

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationsModels "github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	rescheduleReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/reschedule_reservation"
)

// RescheduleReservationRequest HTTP request model
type RescheduleReservationRequest struct {
	TeamMemberID    *int64 `json:"team_member_id,omitempty"`
	StartsAt        string `json:"starts_at"`
	EndsAt          string `json:"ends_at,omitempty"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
	Timezone        string `json:"timezone,omitempty"`
}

// RescheduleReservationResponse HTTP response model
type RescheduleReservationResponse struct {
	*reservationsModels.ReservationResponse
	PreviousStartsAt string `json:"previous_starts_at"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleReservationRequest) ToUseCaseRequest(accountID, reservationID int64, actor domain.Actor) *rescheduleReservation.Request {
	return &rescheduleReservation.Request{
		AccountID:       accountID,
		ReservationID:   reservationID,
		Actor:           actor,
		TeamMemberID:    r.TeamMemberID,
		StartsAt:        r.StartsAt,
		EndsAt:          r.EndsAt,
		DurationMinutes: r.DurationMinutes,
		Timezone:        r.Timezone,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleReservation.Response) *RescheduleReservationResponse {
	return &RescheduleReservationResponse{
		ReservationResponse: reservationsModels.FromDomainReservation(resp.Reservation, resp.CanClientModify),
		PreviousStartsAt:    resp.PreviousStartsAt.UTC().Format(time.RFC3339),
	}
}
