package models

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Request модели

// CreateTicketRequest запрос на выдачу талона живой очереди
type CreateTicketRequest struct {
	AccountID       int64
	Actor           domain.Actor
	Client          domain.ClientIdentity
	TeamMemberID    *int64
	ServiceID       *int64
	DurationMinutes *int // переопределение оценки длительности
}

// TransitionRequest запрос на действие над элементом очереди
type TransitionRequest struct {
	AccountID    int64
	ItemID       int64
	Action       domain.QueueAction
	Actor        domain.Actor
	TeamMemberID *int64 // переназначение сотрудника (только персонал)
}

// Response модели

// ItemView элемент очереди с вычисленными для вызывающего флагами
type ItemView struct {
	Item                    *domain.QueueItem
	RecommendedTeamMemberID *int64 // только для нераспределенной дорожки
	Callable                bool
	CanUpdateStatus         bool
}

// Lane дорожка сотрудника; TeamMemberID = nil - нераспределенные элементы
type Lane struct {
	TeamMemberID *int64
	Items        []*ItemView
}

// Snapshot состояние очереди аккаунта после пересчета
type Snapshot struct {
	AccountID    int64
	GeneratedAt  time.Time
	DispatchMode domain.DispatchMode
	Lanes        []*Lane
}

// Items все элементы снимка в порядке дорожек
func (s *Snapshot) Items() []*ItemView {
	result := make([]*ItemView, 0)
	for _, lane := range s.Lanes {
		result = append(result, lane.Items...)
	}
	return result
}

// Find элемент снимка по ID
func (s *Snapshot) Find(itemID int64) *ItemView {
	for _, lane := range s.Lanes {
		for _, view := range lane.Items {
			if view.Item.ID == itemID {
				return view
			}
		}
	}
	return nil
}

// ItemResponse элемент очереди в ответе API
type ItemResponse struct {
	ID                       int64   `json:"id"`
	AccountID                int64   `json:"account_id"`
	ReservationID            *int64  `json:"reservation_id,omitempty"`
	ItemType                 string  `json:"item_type"`
	Status                   string  `json:"status"`
	QueueNumber              string  `json:"queue_number"`
	TeamMemberID             *int64  `json:"team_member_id,omitempty"`
	RecommendedTeamMemberID  *int64  `json:"recommended_team_member_id,omitempty"`
	ServiceID                *int64  `json:"service_id,omitempty"`
	Position                 *int    `json:"position,omitempty"`
	EtaMinutes               *int    `json:"eta_minutes,omitempty"`
	EstimatedDurationMinutes int     `json:"estimated_duration_minutes"`
	CallExpiresAt            *string `json:"call_expires_at,omitempty"`
	CheckedInAt              *string `json:"checked_in_at,omitempty"`
	CalledAt                 *string `json:"called_at,omitempty"`
	StartedAt                *string `json:"started_at,omitempty"`
	CompletedAt              *string `json:"completed_at,omitempty"`
	GuestName                string  `json:"guest_name,omitempty"`
	Callable                 bool    `json:"callable"`
	CanUpdateStatus          bool    `json:"can_update_status"`
}

// LaneResponse дорожка сотрудника в ответе API
type LaneResponse struct {
	TeamMemberID *int64         `json:"team_member_id"`
	Items        []ItemResponse `json:"items"`
}

// BoardResponse доска очереди
type BoardResponse struct {
	AccountID    int64          `json:"account_id"`
	GeneratedAt  string         `json:"generated_at"`
	DispatchMode string         `json:"dispatch_mode"`
	Lanes        []LaneResponse `json:"lanes"`
}

// FromItemView конвертирует элемент очереди в DTO.
// Телефон гостя в ответ не попадает.
func FromItemView(view *ItemView) *ItemResponse {
	if view == nil || view.Item == nil {
		return nil
	}
	item := view.Item

	resp := &ItemResponse{
		ID:                       item.ID,
		AccountID:                item.AccountID,
		ReservationID:            item.ReservationID,
		ItemType:                 string(item.ItemType),
		Status:                   string(item.Status),
		QueueNumber:              item.QueueNumber,
		TeamMemberID:             item.TeamMemberID,
		RecommendedTeamMemberID:  view.RecommendedTeamMemberID,
		ServiceID:                item.ServiceID,
		Position:                 item.Position,
		EtaMinutes:               item.EtaMinutes,
		EstimatedDurationMinutes: item.EstimatedDurationMinutes,
		CallExpiresAt:            formatTime(item.CallExpiresAt),
		CheckedInAt:              formatTime(item.CheckedInAt),
		CalledAt:                 formatTime(item.CalledAt),
		StartedAt:                formatTime(item.StartedAt),
		CompletedAt:              formatTime(item.CompletedAt),
		Callable:                 view.Callable,
		CanUpdateStatus:          view.CanUpdateStatus,
	}
	if item.Metadata != nil {
		resp.GuestName = item.Metadata[domain.MetaGuestName]
	}
	return resp
}

// FromItemViews конвертирует список элементов в DTO
func FromItemViews(views []*ItemView) []ItemResponse {
	result := make([]ItemResponse, 0, len(views))
	for _, v := range views {
		if resp := FromItemView(v); resp != nil {
			result = append(result, *resp)
		}
	}
	return result
}

// FromSnapshot конвертирует снимок очереди в DTO доски
func FromSnapshot(s *Snapshot) *BoardResponse {
	resp := &BoardResponse{
		AccountID:    s.AccountID,
		GeneratedAt:  s.GeneratedAt.UTC().Format(time.RFC3339),
		DispatchMode: string(s.DispatchMode),
		Lanes:        make([]LaneResponse, 0, len(s.Lanes)),
	}
	for _, lane := range s.Lanes {
		resp.Lanes = append(resp.Lanes, LaneResponse{
			TeamMemberID: lane.TeamMemberID,
			Items:        FromItemViews(lane.Items),
		})
	}
	return resp
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
