package notifier

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Transport доставка одного события во внешний диспетчер уведомлений
type Transport interface {
	Send(ctx context.Context, event domain.NotificationEvent) error
	Close() error
}

// Metrics счетчик ошибок публикации
type Metrics interface {
	IncNotificationError(event string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type nopMetrics struct{}

func (nopMetrics) IncNotificationError(string) {}
