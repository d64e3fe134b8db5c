package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// AMQPTransport публикует события в durable-очередь RabbitMQ через default exchange.
// Соединение переоткрывается при следующей отправке, если брокер его закрыл.
type AMQPTransport struct {
	url    string
	queue  string
	logger Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPTransport подключается к брокеру и объявляет очередь
func NewAMQPTransport(url, queue string, logger Logger) (*AMQPTransport, error) {
	t := &AMQPTransport{url: url, queue: queue, logger: logger}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.connect(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *AMQPTransport) connect() error {
	conn, err := amqp.Dial(t.url)
	if err != nil {
		return fmt.Errorf("%w: amqp dial: %v", ErrInternal, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("%w: amqp channel: %v", ErrInternal, err)
	}

	if _, err := ch.QueueDeclare(t.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("%w: amqp queue declare %s: %v", ErrInternal, t.queue, err)
	}

	t.conn = conn
	t.ch = ch
	return nil
}

func (t *AMQPTransport) Send(ctx context.Context, event domain.NotificationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal event: %v", ErrInternal, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil || t.conn.IsClosed() || t.ch == nil || t.ch.IsClosed() {
		t.logger.Warn("notifier: amqp connection lost, reconnecting")
		t.closeLocked()
		if err := t.connect(); err != nil {
			return err
		}
	}

	return t.ch.PublishWithContext(ctx, "", t.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         string(event.Name),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

func (t *AMQPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeLocked()
}

func (t *AMQPTransport) closeLocked() error {
	var err error
	if t.ch != nil {
		_ = t.ch.Close()
		t.ch = nil
	}
	if t.conn != nil {
		err = t.conn.Close()
		t.conn = nil
	}
	return err
}
