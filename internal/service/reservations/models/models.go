package models

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Request модели

// CancelRequest запрос на отмену бронирования
type CancelRequest struct {
	AccountID     int64
	ReservationID int64
	Actor         domain.Actor
	Reason        string `json:"reason"`
}

// UpdateStatusRequest запрос на смену статуса бронирования сотрудником
type UpdateStatusRequest struct {
	AccountID     int64
	ReservationID int64
	Actor         domain.Actor
	Status        string `json:"status"`
}

// ListRequest запрос списка бронирований аккаунта
type ListRequest struct {
	AccountID       int64
	Actor           domain.Actor
	TeamMemberID    *int64
	From            *time.Time
	To              *time.Time
	Status          *string
	IncludeInactive bool
}

// Response модели

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID              int64  `json:"id"`
	AccountID       int64  `json:"account_id"`
	TeamMemberID    int64  `json:"team_member_id"`
	ClientID        *int64 `json:"client_id,omitempty"`
	ClientUserID    *int64 `json:"client_user_id,omitempty"`
	ServiceID       *int64 `json:"service_id,omitempty"`
	Status          string `json:"status"`
	StartsAt        string `json:"starts_at"` // RFC3339, UTC
	EndsAt          string `json:"ends_at"`
	LocalStartsAt   string `json:"local_starts_at"` // YYYY-MM-DDTHH:MM в часовом поясе брони
	LocalEndsAt     string `json:"local_ends_at"`
	DurationMinutes int    `json:"duration_minutes"`
	BufferMinutes   int    `json:"buffer_minutes"`
	Timezone        string `json:"timezone"`
	Source          string `json:"source"`
	CanClientModify bool   `json:"can_client_modify"`

	CancellationReason *string `json:"cancellation_reason,omitempty"`
	CancelledAt        *string `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReservationListResponse ответ со списком бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation, canClientModify bool) *ReservationResponse {
	if r == nil {
		return nil
	}

	loc, err := domain.LoadLocation(r.Timezone)
	if err != nil {
		loc = time.UTC
	}

	resp := &ReservationResponse{
		ID:                 r.ID,
		AccountID:          r.AccountID,
		TeamMemberID:       r.TeamMemberID,
		ClientID:           r.ClientID,
		ClientUserID:       r.ClientUserID,
		ServiceID:          r.ServiceID,
		Status:             string(r.Status),
		StartsAt:           r.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:             r.EndsAt.UTC().Format(time.RFC3339),
		LocalStartsAt:      r.StartsAt.In(loc).Format(domain.LocalDateTime),
		LocalEndsAt:        r.EndsAt.In(loc).Format(domain.LocalDateTime),
		DurationMinutes:    r.DurationMinutes,
		BufferMinutes:      r.BufferMinutes,
		Timezone:           r.Timezone,
		Source:             string(r.Source),
		CanClientModify:    canClientModify,
		CancellationReason: r.CancellationReason,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}

	if r.CancelledAt != nil {
		cancelled := r.CancelledAt.UTC().Format(time.RFC3339)
		resp.CancelledAt = &cancelled
	}

	return resp
}

// ToDomainStatus конвертирует строку в статус бронирования
func ToDomainStatus(status string) (domain.ReservationStatus, bool) {
	s := domain.ReservationStatus(status)
	return s, s.IsValid()
}
