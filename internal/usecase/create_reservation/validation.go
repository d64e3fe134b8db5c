package create_reservation

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AccountID <= 0 {
		return fmt.Errorf("%w: accountID must be positive", ErrInvalidInput)
	}

	if req.TeamMemberID <= 0 {
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

// resolveLocation часовой пояс запроса, иначе часовой пояс аккаунта
func resolveLocation(timezone string, account *domain.Account) (*time.Location, error) {
	if timezone == "" {
		return account.Location()
	}
	loc, err := domain.LoadLocation(timezone)
	if err != nil {
		return nil, domain.NewValidationError("timezone", domain.ErrInvalidTimezone)
	}
	return loc, nil
}

// parseTimes разбирает начало и конец. Без явной длительности и конца
// возвращает нулевой end, длительность тогда берется из услуги.
func parseTimes(req *Request, loc *time.Location) (time.Time, time.Time, error) {
	start, err := domain.ParseLocalDateTime(req.StartsAt, loc)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError("starts_at", err)
	}

	if req.DurationMinutes != nil {
		return start, start.Add(time.Duration(*req.DurationMinutes) * time.Minute), nil
	}

	if strings.TrimSpace(req.EndsAt) == "" {
		return start, time.Time{}, nil
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

// validateClientBooking ограничения самостоятельной записи клиента
func validateClientBooking(settings domain.Settings, start, now time.Time) error {
	if !settings.ClientCanBook {
		return domain.NewValidationError("reservation", domain.ErrClientBookingDisabled)
	}

	earliest := now.Add(time.Duration(settings.MinNoticeMinutes) * time.Minute)
	if start.Before(earliest) {
		return domain.NewValidationError("starts_at",
			fmt.Errorf("%w: must book at least %d minutes in advance", domain.ErrTooLateToBook, settings.MinNoticeMinutes))
	}

	if latest, ok := settings.LatestStart(now); ok && start.After(latest) {
		return domain.NewValidationError("starts_at",
			fmt.Errorf("%w: can only book %d days in advance", domain.ErrTooFarInFuture, settings.MaxAdvanceDays))
	}

	return nil
}
