package reschedule_reservation

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/availability"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AccountID <= 0 || req.ReservationID <= 0 {
		return fmt.Errorf("%w: accountID and reservationID must be positive", ErrInvalidInput)
	}

	if req.TeamMemberID != nil && *req.TeamMemberID <= 0 {
		return domain.NewValidationError("team_member_id", domain.ErrInvalidTeamMember)
	}

	if strings.TrimSpace(req.StartsAt) == "" {
		return domain.NewValidationError("starts_at", domain.ErrInvalidDateTime)
	}

	if req.DurationMinutes != nil && (*req.DurationMinutes <= 0 || *req.DurationMinutes > domain.MaxDurationMinutes) {
		return domain.NewValidationError("duration_minutes", domain.ErrOutOfRange)
	}

	return nil
}

// resolveLocation часовой пояс запроса, затем брони, затем аккаунта
func resolveLocation(timezone string, reservation *domain.Reservation, account *domain.Account) (*time.Location, error) {
	if timezone != "" {
		loc, err := domain.LoadLocation(timezone)
		if err != nil {
			return nil, domain.NewValidationError("timezone", domain.ErrInvalidTimezone)
		}
		return loc, nil
	}
	if reservation.Timezone != "" {
		if loc, err := domain.LoadLocation(reservation.Timezone); err == nil {
			return loc, nil
		}
	}
	return account.Location()
}

// parseTimes новое начало и конец; без конца сохраняется прежняя длительность
func parseTimes(req *Request, current *domain.Reservation, loc *time.Location) (time.Time, time.Time, error) {
	start, err := domain.ParseLocalDateTime(req.StartsAt, loc)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError("starts_at", err)
	}

	if req.DurationMinutes != nil {
		return start, start.Add(time.Duration(*req.DurationMinutes) * time.Minute), nil
	}

	if strings.TrimSpace(req.EndsAt) == "" {
		duration := current.DurationMinutes
		if duration <= 0 {
			duration = int(current.EndsAt.Sub(current.StartsAt) / time.Minute)
		}
		return start, start.Add(time.Duration(duration) * time.Minute), nil
	}

	end, err := domain.ParseLocalDateTime(req.EndsAt, loc)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError("ends_at", err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, domain.NewValidationError("ends_at", domain.ErrEndBeforeStart)
	}
	if end.Sub(start) > time.Duration(domain.MaxDurationMinutes)*time.Minute {
		return time.Time{}, time.Time{}, domain.NewValidationError("ends_at", domain.ErrOutOfRange)
	}

	return start, end, nil
}

// validateClientReschedule перенос клиентом. Разрешение и порог берутся из настроек
// текущего сотрудника брони, min notice и max advance - из настроек нового.
func validateClientReschedule(current, target domain.Settings, reservation *domain.Reservation, start, now time.Time) error {
	if !current.ClientCanReschedule {
		return domain.NewValidationError("reservation", domain.ErrClientRescheduleDisabled)
	}

	if !availability.CanClientModify(reservation, current, now) {
		return domain.NewValidationError("starts_at", domain.ErrModificationClosed)
	}

	if start.Before(now.Add(time.Duration(target.MinNoticeMinutes) * time.Minute)) {
		return domain.NewValidationError("starts_at", domain.ErrTooLateToBook)
	}

	if latest, ok := target.LatestStart(now); ok && start.After(latest) {
		return domain.NewValidationError("starts_at", domain.ErrTooFarInFuture)
	}

	return nil
}
