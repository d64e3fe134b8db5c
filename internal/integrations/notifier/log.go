package notifier

import (
	"context"
	"encoding/json"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// LogTransport пишет события в лог. Используется, когда внешний диспетчер не подключен.
type LogTransport struct {
	logger Logger
}

// NewLogTransport создает транспорт в лог
func NewLogTransport(logger Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Send(_ context.Context, event domain.NotificationEvent) error {
	body, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}
	t.logger.Info("notification %s id=%s account=%d payload=%s", event.Name, event.ID, event.AccountID, body)
	return nil
}

func (t *LogTransport) Close() error { return nil }
