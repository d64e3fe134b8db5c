package models

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Request модели

// GetRequest запрос итоговых настроек; TeamMemberID = nil - уровень аккаунта
type GetRequest struct {
	AccountID    int64
	TeamMemberID *int64
}

// UpsertRequest запрос на создание или замену переопределения.
// Незаданные поля наследуются с верхнего уровня.
type UpsertRequest struct {
	AccountID               int64        `json:"-"`
	Actor                   domain.Actor `json:"-"`
	TeamMemberID            *int64       `json:"team_member_id,omitempty"`
	BufferMinutes           *int         `json:"buffer_minutes,omitempty"`
	SlotIntervalMinutes     *int         `json:"slot_interval_minutes,omitempty"`
	MinNoticeMinutes        *int         `json:"min_notice_minutes,omitempty"`
	MaxAdvanceDays          *int         `json:"max_advance_days,omitempty"`
	CancellationCutoffHours *int         `json:"cancellation_cutoff_hours,omitempty"`
	ClientCanBook           *bool        `json:"client_can_book,omitempty"`
	ClientCanCancel         *bool        `json:"client_can_cancel,omitempty"`
	ClientCanReschedule     *bool        `json:"client_can_reschedule,omitempty"`
}

// ToDomainOverride конвертирует request в domain модель
func (r *UpsertRequest) ToDomainOverride() *domain.SettingsOverride {
	return &domain.SettingsOverride{
		AccountID:               r.AccountID,
		TeamMemberID:            r.TeamMemberID,
		BufferMinutes:           r.BufferMinutes,
		SlotIntervalMinutes:     r.SlotIntervalMinutes,
		MinNoticeMinutes:        r.MinNoticeMinutes,
		MaxAdvanceDays:          r.MaxAdvanceDays,
		CancellationCutoffHours: r.CancellationCutoffHours,
		ClientCanBook:           r.ClientCanBook,
		ClientCanCancel:         r.ClientCanCancel,
		ClientCanReschedule:     r.ClientCanReschedule,
	}
}

// DeleteRequest запрос на удаление переопределения
type DeleteRequest struct {
	AccountID    int64
	Actor        domain.Actor
	TeamMemberID *int64
}

// Response модели

// SettingsResponse итоговые настройки
type SettingsResponse struct {
	AccountID               int64  `json:"account_id"`
	TeamMemberID            *int64 `json:"team_member_id,omitempty"`
	BufferMinutes           int    `json:"buffer_minutes"`
	SlotIntervalMinutes     int    `json:"slot_interval_minutes"`
	MinNoticeMinutes        int    `json:"min_notice_minutes"`
	MaxAdvanceDays          int    `json:"max_advance_days"`
	CancellationCutoffHours int    `json:"cancellation_cutoff_hours"`
	ClientCanBook           bool   `json:"client_can_book"`
	ClientCanCancel         bool   `json:"client_can_cancel"`
	ClientCanReschedule     bool   `json:"client_can_reschedule"`
}

// FromDomainSettings конвертирует итоговые настройки в DTO
func FromDomainSettings(accountID int64, teamMemberID *int64, s domain.Settings) *SettingsResponse {
	return &SettingsResponse{
		AccountID:               accountID,
		TeamMemberID:            teamMemberID,
		BufferMinutes:           s.BufferMinutes,
		SlotIntervalMinutes:     s.SlotIntervalMinutes,
		MinNoticeMinutes:        s.MinNoticeMinutes,
		MaxAdvanceDays:          s.MaxAdvanceDays,
		CancellationCutoffHours: s.CancellationCutoffHours,
		ClientCanBook:           s.ClientCanBook,
		ClientCanCancel:         s.ClientCanCancel,
		ClientCanReschedule:     s.ClientCanReschedule,
	}
}

// OverrideResponse переопределение одного уровня
type OverrideResponse struct {
	ID                      int64     `json:"id"`
	AccountID               int64     `json:"account_id"`
	TeamMemberID            *int64    `json:"team_member_id,omitempty"`
	Level                   string    `json:"level"` // "account" или "team_member"
	BufferMinutes           *int      `json:"buffer_minutes,omitempty"`
	SlotIntervalMinutes     *int      `json:"slot_interval_minutes,omitempty"`
	MinNoticeMinutes        *int      `json:"min_notice_minutes,omitempty"`
	MaxAdvanceDays          *int      `json:"max_advance_days,omitempty"`
	CancellationCutoffHours *int      `json:"cancellation_cutoff_hours,omitempty"`
	ClientCanBook           *bool     `json:"client_can_book,omitempty"`
	ClientCanCancel         *bool     `json:"client_can_cancel,omitempty"`
	ClientCanReschedule     *bool     `json:"client_can_reschedule,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// OverrideListResponse ответ со списком переопределений
type OverrideListResponse struct {
	Overrides []OverrideResponse `json:"overrides"`
}

// FromDomainOverride конвертирует domain модель в DTO
func FromDomainOverride(o *domain.SettingsOverride) *OverrideResponse {
	if o == nil {
		return nil
	}

	level := "team_member"
	if o.IsAccountLevel() {
		level = "account"
	}

	return &OverrideResponse{
		ID:                      o.ID,
		AccountID:               o.AccountID,
		TeamMemberID:            o.TeamMemberID,
		Level:                   level,
		BufferMinutes:           o.BufferMinutes,
		SlotIntervalMinutes:     o.SlotIntervalMinutes,
		MinNoticeMinutes:        o.MinNoticeMinutes,
		MaxAdvanceDays:          o.MaxAdvanceDays,
		CancellationCutoffHours: o.CancellationCutoffHours,
		ClientCanBook:           o.ClientCanBook,
		ClientCanCancel:         o.ClientCanCancel,
		ClientCanReschedule:     o.ClientCanReschedule,
		CreatedAt:               o.CreatedAt,
		UpdatedAt:               o.UpdatedAt,
	}
}
