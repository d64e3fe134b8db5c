package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Request модель запроса на получение доступных слотов.
// Даты в формате YYYY-MM-DD в часовом поясе аккаунта, DateTo включительно.
type Request struct {
	AccountID       int64
	DateFrom        string
	DateTo          string // пусто = только DateFrom
	TeamMemberID    *int64 // nil = все активные сотрудники
	ServiceID       *int64 // длительность услуги, если DurationMinutes не указан
	DurationMinutes *int
}

// Response модель ответа со списком доступных слотов
type Response struct {
	AccountID       int64
	Timezone        string
	DurationMinutes int
	Slots           []Slot
}

// Slot свободный слот сотрудника
type Slot struct {
	TeamMemberID int64
	StartsAt     time.Time        // UTC
	EndsAt       time.Time        // UTC
	LocalDate    string           // YYYY-MM-DD в часовом поясе аккаунта
	StartTime    types.TimeString // HH:MM в часовом поясе аккаунта
	EndTime      types.TimeString
}
