package update_reservation_status

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
)

// UpdateStatusRequest HTTP request model
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateStatusRequest) ToServiceRequest(accountID, reservationID int64, actor domain.Actor) *models.UpdateStatusRequest {
	return &models.UpdateStatusRequest{
		AccountID:     accountID,
		ReservationID: reservationID,
		Actor:         actor,
		Status:        r.Status,
	}
}
