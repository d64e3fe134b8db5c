package my_tickets

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/queue/models"
)

type QueueService interface {
	ClientTickets(ctx context.Context, accountID int64, client domain.ClientIdentity) ([]*models.ItemView, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
