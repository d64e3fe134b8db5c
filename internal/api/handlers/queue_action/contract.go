package queue_action

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/service/queue/models"
)

type QueueService interface {
	Transition(ctx context.Context, req *models.TransitionRequest) (*models.ItemView, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
