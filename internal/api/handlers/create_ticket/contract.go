package create_ticket

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/service/queue/models"
)

type QueueService interface {
	CreateTicket(ctx context.Context, req *models.CreateTicketRequest) (*models.ItemView, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
