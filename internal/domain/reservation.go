package domain

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/pkg/interval"
)

// ReservationStatus статус бронирования
type ReservationStatus string

const (
	ReservationPending     ReservationStatus = "pending"
	ReservationConfirmed   ReservationStatus = "confirmed"
	ReservationRescheduled ReservationStatus = "rescheduled"
	ReservationCompleted   ReservationStatus = "completed"
	ReservationCancelled   ReservationStatus = "cancelled"
	ReservationNoShow      ReservationStatus = "no_show"
)

// ReservationSource кто создал бронирование
type ReservationSource string

const (
	SourceStaff  ReservationSource = "staff"
	SourceClient ReservationSource = "client"
)

// ActiveReservationStatuses статусы, которые занимают время сотрудника
var ActiveReservationStatuses = []ReservationStatus{
	ReservationPending,
	ReservationConfirmed,
	ReservationRescheduled,
}

// Reservation бронирование. StartsAt/EndsAt всегда в UTC.
type Reservation struct {
	ID              int64
	AccountID       int64
	TeamMemberID    int64
	ClientID        *int64 // профиль клиента в CRM аккаунта
	ClientUserID    *int64 // зарегистрированный пользователь
	ServiceID       *int64
	Status          ReservationStatus
	StartsAt        time.Time
	EndsAt          time.Time
	DurationMinutes int
	BufferMinutes   int
	Timezone        string
	Source          ReservationSource

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive бронирование занимает время сотрудника
func (r *Reservation) IsActive() bool {
	return r.Status.IsActive()
}

// IsActive статус входит в список активных
func (s ReservationStatus) IsActive() bool {
	for _, active := range ActiveReservationStatuses {
		if s == active {
			return true
		}
	}
	return false
}

// IsValid известный статус
func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationRescheduled,
		ReservationCompleted, ReservationCancelled, ReservationNoShow:
		return true
	}
	return false
}

// PaddedInterval интервал бронирования, расширенный буфером с обеих сторон.
// Используется max(requested, собственный буфер брони).
func (r *Reservation) PaddedInterval(requestedBuffer int) interval.Interval {
	buffer := r.BufferMinutes
	if requestedBuffer > buffer {
		buffer = requestedBuffer
	}
	return interval.New(r.StartsAt, r.EndsAt).Pad(time.Duration(buffer) * time.Minute)
}

// ConflictsWith пересекается ли [start, end) с бронированием с учетом буфера
func (r *Reservation) ConflictsWith(start, end time.Time, requestedBuffer int) bool {
	padded := r.PaddedInterval(requestedBuffer)
	return interval.Overlaps(start, end, padded.Start, padded.End)
}

// IsOwnedBy бронирование принадлежит зарегистрированному клиенту
func (r *Reservation) IsOwnedBy(userID int64) bool {
	return r.ClientUserID != nil && *r.ClientUserID == userID
}

// ReservationFilter фильтр списка бронирований аккаунта
type ReservationFilter struct {
	AccountID       int64
	TeamMemberID    *int64
	ClientUserID    *int64
	From            *time.Time // starts_at >= From
	To              *time.Time // starts_at < To
	Status          *ReservationStatus
	IncludeInactive bool
}
