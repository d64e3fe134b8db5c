package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

func TestWebhookTransport(t *testing.T) {
	ctx := context.Background()

	t.Run("Posts the event as JSON", func(t *testing.T) {
		var (
			received domain.NotificationEvent
			header   http.Header
		)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header = r.Header.Clone()
			_ = json.NewDecoder(r.Body).Decode(&received)
			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		event := testEvent()
		transport := NewWebhookTransport(server.URL, time.Second)
		require.NoError(t, transport.Send(ctx, event))

		assert.Equal(t, event.ID, received.ID)
		assert.Equal(t, domain.EventQueueCalled, received.Name)
		assert.Equal(t, int64(7), received.AccountID)
		assert.Equal(t, "application/json", header.Get("Content-Type"))
		assert.Equal(t, "queue_called", header.Get("X-Event-Name"))
	})

	t.Run("Non-2xx is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer server.Close()

		err := NewWebhookTransport(server.URL, time.Second).Send(ctx, testEvent())
		assert.ErrorIs(t, err, ErrInvalidResponse)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("Unreachable endpoint", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := server.URL
		server.Close()

		err := NewWebhookTransport(url, time.Second).Send(ctx, testEvent())
		assert.ErrorIs(t, err, ErrInternal)
	})
}
