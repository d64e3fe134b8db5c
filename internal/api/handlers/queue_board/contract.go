package queue_board

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/queue/models"
)

type QueueService interface {
	BoardForStaff(ctx context.Context, accountID int64, actor domain.Actor) (*models.Snapshot, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
