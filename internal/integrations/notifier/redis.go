package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// RedisStreamTransport добавляет события в Redis stream (XADD ... MAXLEN ~ n)
type RedisStreamTransport struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisStreamTransport создает транспорт поверх клиента go-redis
func NewRedisStreamTransport(client *redis.Client, stream string, maxLen int64) *RedisStreamTransport {
	return &RedisStreamTransport{client: client, stream: stream, maxLen: maxLen}
}

func (t *RedisStreamTransport) Send(ctx context.Context, event domain.NotificationEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("%w: marshal payload: %v", ErrInternal, err)
	}

	args := &redis.XAddArgs{
		Stream: t.stream,
		Values: map[string]interface{}{
			"id":          event.ID,
			"name":        string(event.Name),
			"account_id":  event.AccountID,
			"occurred_at": event.OccurredAt.Format(time.RFC3339),
			"payload":     string(payload),
		},
	}
	if t.maxLen > 0 {
		args.MaxLen = t.maxLen
		args.Approx = true
	}

	return t.client.XAdd(ctx, args).Err()
}

func (t *RedisStreamTransport) Close() error {
	return t.client.Close()
}
