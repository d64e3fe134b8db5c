package domain

// Значения по умолчанию для настроек бронирования
const (
	DefaultBufferMinutes          = 0
	DefaultSlotIntervalMinutes    = 15
	DefaultMinNoticeMinutes       = 0
	DefaultMaxAdvanceDays         = 90
	DefaultCancellationCutoffHour = 0 // 0 = отмена/перенос без ограничений
	DefaultDurationMinutes        = 60
)

// Ограничения бизнес-валидации
const (
	MinBufferMinutes       = 0
	MaxBufferMinutes       = 240
	MinSlotIntervalMinutes = 5
	MaxSlotIntervalMinutes = 120
	MaxMinNoticeMinutes    = 10080 // 1 неделя
	MaxAdvanceDaysLimit    = 365
	MaxCancellationCutoff  = 720 // часов
	MaxDurationMinutes     = 720
	MaxSlotsRangeDays      = 31
	MaxCancellationReason  = 500
)

// Очередь
const (
	DefaultQueueGraceMinutes      = 5
	DefaultDuplicateWindowMinutes = 120
	MinQueueItemDurationMinutes   = 5
)

// Форматы времени
const (
	TimeFormat      = "15:04"            // HH:MM
	DateFormat      = "2006-01-02"       // YYYY-MM-DD
	LocalDateTime   = "2006-01-02T15:04" // настенное время без зоны
	QueueDateFormat = "0102"             // MMDD в номере очереди
)
