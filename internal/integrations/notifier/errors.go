package notifier

import "errors"

var (
	// ErrPublish возвращается, когда событие не удалось доставить
	ErrPublish = errors.New("notifier: publish failed")

	// ErrInvalidResponse возвращается при неуспешном ответе webhook
	ErrInvalidResponse = errors.New("notifier: invalid webhook response")

	// ErrUnknownTransport возвращается при неизвестном транспорте в конфигурации
	ErrUnknownTransport = errors.New("notifier: unknown transport")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("notifier: internal error")
)
