// Package notifier публикует события бронирований и очереди во внешний диспетчер.
// Доставка (SMS, push, email) выполняется получателем, здесь только транспорт.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-ReservationService/internal/config"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Publisher публикует события через выбранный транспорт.
// Ошибка учитывается в метриках и возвращается вызывающему, который ее только логирует.
type Publisher struct {
	transport Transport
	metrics   Metrics
	logger    Logger
}

// NewPublisher создает publisher поверх транспорта
func NewPublisher(transport Transport, metrics Metrics, logger Logger) *Publisher {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Publisher{transport: transport, metrics: metrics, logger: logger}
}

// New собирает publisher по секции [notifications] конфигурации
func New(cfg config.NotificationsConfig, metrics Metrics, logger Logger) (*Publisher, error) {
	var (
		transport Transport
		err       error
	)

	switch cfg.Transport {
	case config.TransportLog, "":
		transport = NewLogTransport(logger)
	case config.TransportAMQP:
		transport, err = NewAMQPTransport(cfg.AMQP.URL, cfg.AMQP.Queue, logger)
	case config.TransportRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		transport = NewRedisStreamTransport(client, cfg.Redis.Stream, cfg.Redis.MaxLen)
	case config.TransportWebhook:
		transport = NewWebhookTransport(cfg.Webhook.URL, time.Duration(cfg.Webhook.Timeout)*time.Second)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, cfg.Transport)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("notifier: using %s transport", cfg.Transport)
	return NewPublisher(transport, metrics, logger), nil
}

// Publish отправляет событие
func (p *Publisher) Publish(ctx context.Context, event domain.NotificationEvent) error {
	if err := p.transport.Send(ctx, event); err != nil {
		p.metrics.IncNotificationError(string(event.Name))
		p.logger.Error("notifier: failed to publish event %s id=%s for account=%d: %v",
			event.Name, event.ID, event.AccountID, err)
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}
	return nil
}

// Close освобождает соединения транспорта
func (p *Publisher) Close() error {
	return p.transport.Close()
}
