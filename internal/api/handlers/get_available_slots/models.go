package get_available_slots

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-ReservationService/internal/usecase/get_available_slots"
)

// SlotResponse HTTP response model
type SlotResponse struct {
	TeamMemberID int64  `json:"team_member_id"`
	StartsAt     string `json:"starts_at"` // RFC3339, UTC
	EndsAt       string `json:"ends_at"`
	Date         string `json:"date"`       // YYYY-MM-DD в часовом поясе аккаунта
	StartTime    string `json:"start_time"` // HH:MM
	EndTime      string `json:"end_time"`
}

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	AccountID       int64          `json:"account_id"`
	Timezone        string         `json:"timezone"`
	DurationMinutes int            `json:"duration_minutes"`
	Slots           []SlotResponse `json:"slots"`
}

// ToUseCaseRequest собирает запрос use case из query параметров
func ToUseCaseRequest(r *http.Request, accountID int64) (*getAvailableSlots.Request, error) {
	query := r.URL.Query()

	req := &getAvailableSlots.Request{
		AccountID: accountID,
		DateFrom:  query.Get("date"),
		DateTo:    query.Get("date_to"),
	}

	var err error
	if req.TeamMemberID, err = handlers.QueryID(r, "team_member_id"); err != nil {
		return nil, fmt.Errorf("team_member_id: %w", err)
	}
	if req.ServiceID, err = handlers.QueryID(r, "service_id"); err != nil {
		return nil, fmt.Errorf("service_id: %w", err)
	}

	if raw := query.Get("duration_minutes"); raw != "" {
		duration, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("duration_minutes: %w", err)
		}
		req.DurationMinutes = &duration
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	result := &AvailableSlotsResponse{
		AccountID:       resp.AccountID,
		Timezone:        resp.Timezone,
		DurationMinutes: resp.DurationMinutes,
		Slots:           make([]SlotResponse, 0, len(resp.Slots)),
	}

	for _, s := range resp.Slots {
		result.Slots = append(result.Slots, SlotResponse{
			TeamMemberID: s.TeamMemberID,
			StartsAt:     s.StartsAt.UTC().Format(time.RFC3339),
			EndsAt:       s.EndsAt.UTC().Format(time.RFC3339),
			Date:         s.LocalDate,
			StartTime:    s.StartTime.String(),
			EndTime:      s.EndTime.String(),
		})
	}

	return result
}
