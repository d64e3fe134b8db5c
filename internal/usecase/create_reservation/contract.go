package create_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// AccountRepository интерфейс репозитория аккаунтов
type AccountRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	// LockByID блокирует строку аккаунта, на ней же сериализуется выдача талонов
	LockByID(ctx context.Context, id int64) (*domain.Account, error)
	// LockTeamMember блокирует строку сотрудника (FOR UPDATE) до конца транзакции
	LockTeamMember(ctx context.Context, accountID, teamMemberID int64) (*domain.TeamMember, error)
}

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error)
}

// AvailabilityResolver допуск времени к записи
type AvailabilityResolver interface {
	ResolveSettings(ctx context.Context, accountID int64, teamMemberID *int64) (domain.Settings, error)
	DefaultDurationMinutes(ctx context.Context, accountID int64, serviceID *int64) (int, error)
	AssertWithinAvailability(ctx context.Context, accountID, teamMemberID int64, start, end time.Time, loc *time.Location) error
	AssertNoDoubleBooking(ctx context.Context, teamMemberID int64, start, end time.Time, buffer int, excludeID *int64) error
}

// IntentGuard проверка дублирующих намерений клиента
type IntentGuard interface {
	EnsureCanCreateReservation(ctx context.Context, account *domain.Account, client domain.ClientIdentity) error
}

// QueueMirror отражение бронирования в живой очереди
type QueueMirror interface {
	MirrorReservation(ctx context.Context, account *domain.Account, reservation *domain.Reservation) error
}

// EventPublisher публикация событий уведомлений
type EventPublisher interface {
	Publish(ctx context.Context, event domain.NotificationEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчики бронирований
type Metrics interface {
	IncReservation(operation, source string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время в UTC
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}

type nopMetrics struct{}

func (nopMetrics) IncReservation(string, string) {}
