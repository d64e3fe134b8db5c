package get_available_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AccountID <= 0 {
		return fmt.Errorf("%w: accountID must be positive", ErrInvalidInput)
	}

	if req.DateFrom == "" {
		return domain.NewValidationError("date", fmt.Errorf("%w: date is required", ErrInvalidInput))
	}

	if req.DurationMinutes != nil && (*req.DurationMinutes <= 0 || *req.DurationMinutes > domain.MaxDurationMinutes) {
		return domain.NewValidationError("duration_minutes", domain.ErrOutOfRange)
	}

	return nil
}

// parseRange переводит локальные даты [from, to] в полуинтервал UTC
func parseRange(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(domain.DateFormat, from, loc)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError("date", fmt.Errorf("%w: expected YYYY-MM-DD", ErrInvalidInput))
	}

	end := start
	if to != "" {
		end, err = time.ParseInLocation(domain.DateFormat, to, loc)
		if err != nil {
			return time.Time{}, time.Time{}, domain.NewValidationError("date_to", fmt.Errorf("%w: expected YYYY-MM-DD", ErrInvalidInput))
		}
		if end.Before(start) {
			return time.Time{}, time.Time{}, domain.NewValidationError("date_to", domain.ErrEndBeforeStart)
		}
	}

	return start.UTC(), end.AddDate(0, 0, 1).UTC(), nil
}
