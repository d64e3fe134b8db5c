package get_available_slots

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	availabilityModels "github.com/m04kA/SMC-ReservationService/internal/service/availability/models"
)

// AccountRepository интерфейс репозитория аккаунтов
type AccountRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
}

// AvailabilityResolver интерфейс сервиса доступности
type AvailabilityResolver interface {
	// GenerateSlots свободные слоты в диапазоне
	GenerateSlots(ctx context.Context, req *availabilityModels.GenerateSlotsRequest) (*availabilityModels.SlotsResult, error)
	// DefaultDurationMinutes длительность услуги по умолчанию
	DefaultDurationMinutes(ctx context.Context, accountID int64, serviceID *int64) (int, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
