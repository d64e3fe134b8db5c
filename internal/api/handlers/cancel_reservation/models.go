package cancel_reservation

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
)

// CancelReservationRequest HTTP request model
type CancelReservationRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CancelReservationRequest) ToServiceRequest(accountID, reservationID int64, actor domain.Actor) *models.CancelRequest {
	return &models.CancelRequest{
		AccountID:     accountID,
		ReservationID: reservationID,
		Actor:         actor,
		Reason:        r.Reason,
	}
}
