package availability

import "errors"

var (
	// ErrAccountNotFound возвращается, когда аккаунт не найден
	ErrAccountNotFound = errors.New("account not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена в аккаунте
	ErrServiceNotFound = errors.New("service not found")

	// ErrInvalidRange возвращается при некорректном диапазоне поиска слотов
	ErrInvalidRange = errors.New("invalid slots range")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("availability: internal error")
)
