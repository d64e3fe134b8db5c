package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventName имя события уведомления
type EventName string

const (
	EventReservationCreated     EventName = "created"
	EventReservationRescheduled EventName = "rescheduled"
	EventReservationCancelled   EventName = "cancelled"
	EventReservationStatus      EventName = "status_changed"
	EventQueueTicketCreated     EventName = "queue_ticket_created"
	EventQueuePreCalled         EventName = "queue_pre_called"
	EventQueueCalled            EventName = "queue_called"
	EventQueueGraceExpired      EventName = "queue_grace_expired"
	EventQueueCancelled         EventName = "queue_cancelled"
	EventQueueDone              EventName = "queue_done"
)

// NotificationEvent событие для внешнего диспетчера уведомлений.
// Публикуется после коммита, ошибка доставки не откатывает операцию.
type NotificationEvent struct {
	ID         string                 `json:"id"`
	Name       EventName              `json:"name"`
	AccountID  int64                  `json:"account_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}

// NewNotificationEvent создает событие с новым идентификатором
func NewNotificationEvent(name EventName, accountID int64, occurredAt time.Time, payload map[string]interface{}) NotificationEvent {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return NotificationEvent{
		ID:         uuid.NewString(),
		Name:       name,
		AccountID:  accountID,
		OccurredAt: occurredAt.UTC(),
		Payload:    payload,
	}
}

// ReservationPayload данные брони для события
func ReservationPayload(r *Reservation) map[string]interface{} {
	payload := map[string]interface{}{
		"reservation_id": r.ID,
		"team_member_id": r.TeamMemberID,
		"status":         string(r.Status),
		"starts_at":      r.StartsAt.UTC().Format(time.RFC3339),
		"ends_at":        r.EndsAt.UTC().Format(time.RFC3339),
		"timezone":       r.Timezone,
		"source":         string(r.Source),
	}
	if r.ClientUserID != nil {
		payload["client_user_id"] = *r.ClientUserID
	}
	if r.ClientID != nil {
		payload["client_id"] = *r.ClientID
	}
	return payload
}

// QueueItemPayload данные элемента очереди для события
func QueueItemPayload(q *QueueItem) map[string]interface{} {
	payload := map[string]interface{}{
		"queue_item_id": q.ID,
		"queue_number":  q.QueueNumber,
		"item_type":     string(q.ItemType),
		"status":        string(q.Status),
	}
	if q.TeamMemberID != nil {
		payload["team_member_id"] = *q.TeamMemberID
	}
	if q.ReservationID != nil {
		payload["reservation_id"] = *q.ReservationID
	}
	if q.ClientUserID != nil {
		payload["client_user_id"] = *q.ClientUserID
	}
	if phone := q.GuestPhone(); phone != "" {
		payload["guest_phone"] = phone
	}
	if q.CallExpiresAt != nil {
		payload["call_expires_at"] = q.CallExpiresAt.UTC().Format(time.RFC3339)
	}
	return payload
}
