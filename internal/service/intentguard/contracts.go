package intentguard

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// TicketRepository интерфейс репозитория очереди
type TicketRepository interface {
	ListActiveTicketsForClient(ctx context.Context, accountID int64, client domain.ClientIdentity) ([]*domain.QueueItem, error)
}

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	ListActiveForClient(ctx context.Context, accountID, clientUserID int64) ([]*domain.Reservation, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
