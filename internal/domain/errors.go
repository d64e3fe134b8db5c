package domain

import (
	"errors"
	"fmt"
)

// Ошибки, которые пользователь может исправить сам.
// Всегда возвращаются обернутыми в ValidationError с именем поля.
var (
	ErrInvalidTeamMember        = errors.New("team member is not available")
	ErrOutsideAvailability      = errors.New("requested time is outside of working hours")
	ErrSpansMultipleDays        = errors.New("reservation must start and end on the same day")
	ErrEndBeforeStart           = errors.New("end must be after start")
	ErrSlotNotAvailable         = errors.New("slot is no longer available")
	ErrTooLateToBook            = errors.New("too late to book this slot")
	ErrTooFarInFuture           = errors.New("slot is too far in the future")
	ErrClientBookingDisabled    = errors.New("online booking is disabled")
	ErrClientCancelDisabled     = errors.New("online cancellation is disabled")
	ErrClientRescheduleDisabled = errors.New("online rescheduling is disabled")
	ErrModificationClosed       = errors.New("reservation can no longer be changed")
	ErrReservationNotActive     = errors.New("reservation is not active")
	ErrDuplicateTicket          = errors.New("client already has an active ticket")
	ErrDuplicateReservation     = errors.New("client already has an upcoming reservation")
	ErrQueueDisabled            = errors.New("queue is disabled for this account")
	ErrUnsupportedAction        = errors.New("unsupported queue action")
	ErrItemTerminal             = errors.New("queue item is already closed")
	ErrInvalidTransition        = errors.New("action is not allowed in current status")
	ErrInvalidTimezone          = errors.New("unknown timezone")
	ErrInvalidDateTime          = errors.New("invalid date time, expected YYYY-MM-DDTHH:MM")
	ErrInvalidPhone             = errors.New("invalid phone number")
	ErrOutOfRange               = errors.New("value is out of range")
)

// ValidationError ошибка валидации, привязанная к полю запроса
type ValidationError struct {
	Field string
	Err   error
}

// NewValidationError создает ошибку валидации для поля
func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// AsValidationError достает ValidationError из цепочки ошибок
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
