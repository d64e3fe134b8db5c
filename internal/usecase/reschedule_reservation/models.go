package reschedule_reservation

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Request модель запроса на перенос бронирования.
// Без DurationMinutes и EndsAt сохраняется прежняя длительность.
type Request struct {
	AccountID       int64
	ReservationID   int64
	Actor           domain.Actor
	TeamMemberID    *int64 // nil = тот же сотрудник
	StartsAt        string
	EndsAt          string
	DurationMinutes *int
	Timezone        string // пусто = часовой пояс брони
}

// Response модель ответа с перенесенным бронированием
type Response struct {
	Reservation      *domain.Reservation
	PreviousStartsAt time.Time
	CanClientModify  bool
}
