package domain

import "time"

// QueueItemType тип элемента очереди
type QueueItemType string

const (
	ItemTicket      QueueItemType = "ticket"      // живая очередь
	ItemAppointment QueueItemType = "appointment" // зеркало бронирования
)

// QueueStatus статус элемента очереди
type QueueStatus string

const (
	QueueNotArrived QueueStatus = "not_arrived"
	QueueCheckedIn  QueueStatus = "checked_in"
	QueuePreCalled  QueueStatus = "pre_called"
	QueueCalled     QueueStatus = "called"
	QueueInService  QueueStatus = "in_service"
	QueueDone       QueueStatus = "done"
	QueueSkipped    QueueStatus = "skipped"
	QueueNoShow     QueueStatus = "no_show"
	QueueCancelled  QueueStatus = "cancelled"
	QueueLeft       QueueStatus = "left"
)

// TerminalQueueStatuses статусы, из которых переходов нет
var TerminalQueueStatuses = []QueueStatus{QueueDone, QueueCancelled, QueueNoShow, QueueLeft}

// IsTerminal статус конечный
func (s QueueStatus) IsTerminal() bool {
	for _, t := range TerminalQueueStatuses {
		if s == t {
			return true
		}
	}
	return false
}

// IsWaiting элемент ждет обслуживания
func (s QueueStatus) IsWaiting() bool {
	return !s.IsTerminal() && s != QueueInService
}

// IsCallable клиент на месте и может быть вызван
func (s QueueStatus) IsCallable() bool {
	return s == QueueCheckedIn || s == QueuePreCalled || s == QueueCalled
}

// QueueAction действие над элементом очереди
type QueueAction string

const (
	ActionCheckIn   QueueAction = "check_in"
	ActionStillHere QueueAction = "still_here"
	ActionPreCall   QueueAction = "pre_call"
	ActionCall      QueueAction = "call"
	ActionStart     QueueAction = "start"
	ActionDone      QueueAction = "done"
	ActionSkip      QueueAction = "skip"
	ActionCancel    QueueAction = "cancel"
)

// Ключи метаданных талона
const (
	MetaGuestPhone = "guest_phone"
	MetaGuestName  = "guest_name"
)

// QueueItem талон или зеркало бронирования в очереди
type QueueItem struct {
	ID            int64
	AccountID     int64
	ReservationID *int64
	ItemType      QueueItemType
	Status        QueueStatus
	TeamMemberID  *int64
	ClientUserID  *int64
	ServiceID     *int64

	Position      *int
	EtaMinutes    *int
	CallExpiresAt *time.Time

	CheckedInAt *time.Time
	PreCalledAt *time.Time
	CalledAt    *time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time

	// AnchorAt время, по которому упорядочиваются равные по статусу элементы:
	// начало брони для appointment, время отметки для ticket
	AnchorAt time.Time

	QueueNumber              string
	EstimatedDurationMinutes int
	Metadata                 map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal элемент закрыт
func (q *QueueItem) IsTerminal() bool {
	return q.Status.IsTerminal()
}

// IsAppointment элемент отражает бронирование
func (q *QueueItem) IsAppointment() bool {
	return q.ItemType == ItemAppointment
}

// ServiceMinutes оценка длительности обслуживания, не меньше 5 минут
func (q *QueueItem) ServiceMinutes() int {
	if q.EstimatedDurationMinutes < MinQueueItemDurationMinutes {
		return MinQueueItemDurationMinutes
	}
	return q.EstimatedDurationMinutes
}

// GuestPhone нормализованный телефон гостя из метаданных
func (q *QueueItem) GuestPhone() string {
	if q.Metadata == nil {
		return ""
	}
	return q.Metadata[MetaGuestPhone]
}

// BelongsTo элемент принадлежит клиенту
func (q *QueueItem) BelongsTo(client ClientIdentity) bool {
	switch client.Kind {
	case ClientRegistered:
		return q.ClientUserID != nil && *q.ClientUserID == client.UserID
	case ClientGuest:
		return client.Phone != "" && NormalizePhone(q.GuestPhone()) == client.Phone
	}
	return false
}

// CheckIn запись аудита отметки клиента, только добавление
type CheckIn struct {
	ID          int64
	AccountID   int64
	QueueItemID int64
	Action      QueueAction
	ActorUserID *int64
	CreatedAt   time.Time
}
