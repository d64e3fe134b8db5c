package domain

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// WeeklyAvailability повторяющееся еженедельное окно работы сотрудника.
// Для одного дня допускается несколько строк (смены с перерывом).
type WeeklyAvailability struct {
	ID           int64
	AccountID    int64
	TeamMemberID int64
	DayOfWeek    int // 0 = воскресенье, как time.Weekday
	StartTime    types.TimeString
	EndTime      types.TimeString
	IsActive     bool
}

// ExceptionType тип исключения из расписания
type ExceptionType string

const (
	ExceptionOpen   ExceptionType = "open"
	ExceptionClosed ExceptionType = "closed"
)

// AvailabilityException исключение на конкретную дату.
// TeamMemberID = nil действует на весь аккаунт.
type AvailabilityException struct {
	ID           int64
	AccountID    int64
	TeamMemberID *int64
	Date         time.Time
	Type         ExceptionType
	StartTime    *types.TimeString
	EndTime      *types.TimeString
}

// IsAccountWide исключение для всего аккаунта
func (e *AvailabilityException) IsAccountWide() bool {
	return e.TeamMemberID == nil
}

// IsWholeDay исключение без времени (закрыт весь день)
func (e *AvailabilityException) IsWholeDay() bool {
	return e.StartTime == nil || e.EndTime == nil
}

// OnDate исключение относится к календарной дате date
func (e *AvailabilityException) OnDate(date time.Time) bool {
	y1, m1, d1 := e.Date.Date()
	y2, m2, d2 := date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
