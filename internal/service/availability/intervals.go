package availability

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/interval"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// BuildDayIntervals рабочие интервалы сотрудника на локальную дату date.
//
// Порядок применения:
//  1. еженедельные окна дня недели;
//  2. open-исключения сотрудника; общие open-исключения аккаунта, только если
//     у сотрудника нет собственного исключения на эту дату;
//  3. нормализация;
//  4. вычитание всех closed-исключений (сотрудника и аккаунта).
//     Closed без времени закрывает весь день.
func BuildDayIntervals(
	date time.Time,
	teamMemberID int64,
	weekly []*domain.WeeklyAvailability,
	exceptions []*domain.AvailabilityException,
	loc *time.Location,
) []interval.Interval {
	weekday := int(date.Weekday())

	windows := make([]interval.Interval, 0)
	for _, w := range weekly {
		if w.TeamMemberID != teamMemberID || w.DayOfWeek != weekday || !w.IsActive {
			continue
		}
		if in, ok := onDate(date, w.StartTime, w.EndTime, loc); ok {
			windows = append(windows, in)
		}
	}

	var memberExceptions, accountExceptions []*domain.AvailabilityException
	for _, e := range exceptions {
		if !e.OnDate(date) {
			continue
		}
		if e.IsAccountWide() {
			accountExceptions = append(accountExceptions, e)
		} else if *e.TeamMemberID == teamMemberID {
			memberExceptions = append(memberExceptions, e)
		}
	}

	opens := openExceptions(memberExceptions)
	if len(memberExceptions) == 0 {
		opens = append(opens, openExceptions(accountExceptions)...)
	}
	for _, e := range opens {
		if in, ok := onDate(date, *e.StartTime, *e.EndTime, loc); ok {
			windows = append(windows, in)
		}
	}

	result := interval.Normalize(windows)

	closed := append(closedExceptions(memberExceptions), closedExceptions(accountExceptions)...)
	for _, e := range closed {
		if e.IsWholeDay() {
			return []interval.Interval{}
		}
		if block, ok := onDate(date, *e.StartTime, *e.EndTime, loc); ok {
			result = interval.Subtract(result, block)
		}
	}

	return result
}

func openExceptions(exceptions []*domain.AvailabilityException) []*domain.AvailabilityException {
	result := make([]*domain.AvailabilityException, 0, len(exceptions))
	for _, e := range exceptions {
		// open без времени ничего не открывает
		if e.Type == domain.ExceptionOpen && !e.IsWholeDay() {
			result = append(result, e)
		}
	}
	return result
}

func closedExceptions(exceptions []*domain.AvailabilityException) []*domain.AvailabilityException {
	result := make([]*domain.AvailabilityException, 0, len(exceptions))
	for _, e := range exceptions {
		if e.Type == domain.ExceptionClosed {
			result = append(result, e)
		}
	}
	return result
}

func onDate(date time.Time, start, end types.TimeString, loc *time.Location) (interval.Interval, bool) {
	from, err := start.OnDate(date, loc)
	if err != nil {
		return interval.Interval{}, false
	}
	to, err := end.OnDate(date, loc)
	if err != nil {
		return interval.Interval{}, false
	}
	in := interval.New(from.UTC(), to.UTC())
	return in, !in.IsEmpty()
}

// localDates локальные даты, которые пересекает [from, to)
func localDates(from, to time.Time, loc *time.Location) []time.Time {
	dates := make([]time.Time, 0)
	day, _ := domain.DayBounds(from, loc)
	for day.Before(to) {
		dates = append(dates, day)
		day = day.AddDate(0, 0, 1)
	}
	return dates
}
