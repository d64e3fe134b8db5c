package reschedule_reservation

import "errors"

var (
	// ErrAccountNotFound возвращается, когда аккаунт не найден
	ErrAccountNotFound = errors.New("reschedule_reservation: account not found")

	// ErrReservationNotFound возвращается, когда бронирование не найдено в аккаунте
	ErrReservationNotFound = errors.New("reschedule_reservation: reservation not found")

	// ErrAccessDenied возвращается, когда клиент переносит чужое бронирование
	ErrAccessDenied = errors.New("reschedule_reservation: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_reservation: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_reservation: internal error")
)
