package list_reservations

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
)

// ToServiceRequest собирает запрос сервиса из query параметров.
// from/to в RFC3339, include_inactive - true/false.
func ToServiceRequest(r *http.Request, accountID int64, actor domain.Actor) (*models.ListRequest, error) {
	query := r.URL.Query()

	req := &models.ListRequest{
		AccountID: accountID,
		Actor:     actor,
	}

	var err error
	if req.TeamMemberID, err = handlers.QueryID(r, "team_member_id"); err != nil {
		return nil, fmt.Errorf("team_member_id: %w", err)
	}

	if req.From, err = parseTime(query.Get("from")); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if req.To, err = parseTime(query.Get("to")); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	if raw := query.Get("include_inactive"); raw != "" {
		if req.IncludeInactive, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("include_inactive: %w", err)
		}
	}

	return req, nil
}

func parseTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
