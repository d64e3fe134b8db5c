package queue

import "errors"

var (
	// ErrAccountNotFound возвращается, когда аккаунт не найден
	ErrAccountNotFound = errors.New("account not found")

	// ErrItemNotFound возвращается, когда элемент очереди не найден в аккаунте
	ErrItemNotFound = errors.New("queue item not found")

	// ErrAccessDenied возвращается, когда вызывающий не может выполнить действие
	ErrAccessDenied = errors.New("access denied")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("queue: internal error")
)
