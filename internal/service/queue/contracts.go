package queue

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// QueueRepository интерфейс репозитория элементов очереди
type QueueRepository interface {
	Create(ctx context.Context, item *domain.QueueItem) (*domain.QueueItem, error)
	LockByID(ctx context.Context, id int64) (*domain.QueueItem, error)
	GetByReservationID(ctx context.Context, reservationID int64) (*domain.QueueItem, error)
	ListActive(ctx context.Context, accountID int64) ([]*domain.QueueItem, error)
	ListByReservationIDs(ctx context.Context, reservationIDs []int64) (map[int64]*domain.QueueItem, error)
	CountTicketsCreatedBetween(ctx context.Context, accountID int64, from, to time.Time) (int, error)
	Update(ctx context.Context, item *domain.QueueItem) error
	UpdateMetrics(ctx context.Context, id int64, position, etaMinutes *int) error
	InsertCheckIn(ctx context.Context, checkIn *domain.CheckIn) error
}

// AccountRepository интерфейс репозитория аккаунтов
type AccountRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	LockByID(ctx context.Context, id int64) (*domain.Account, error)
	GetTeamMember(ctx context.Context, accountID, teamMemberID int64) (*domain.TeamMember, error)
	ListActiveTeamMembers(ctx context.Context, accountID int64) ([]*domain.TeamMember, error)
}

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	ListForAccount(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error
	Cancel(ctx context.Context, id int64, reason string, cancelledAt time.Time) error
}

// AvailabilityResolver длительность по умолчанию и итоговые настройки
type AvailabilityResolver interface {
	DefaultDurationMinutes(ctx context.Context, accountID int64, serviceID *int64) (int, error)
	ResolveSettings(ctx context.Context, accountID int64, teamMemberID *int64) (domain.Settings, error)
}

// IntentGuard проверка дублирующих намерений клиента
type IntentGuard interface {
	EnsureCanCreateTicket(ctx context.Context, account *domain.Account, client domain.ClientIdentity, now time.Time) error
}

// EventPublisher публикация событий уведомлений
type EventPublisher interface {
	Publish(ctx context.Context, event domain.NotificationEvent) error
}

// TransactionManager интерфейс менеджера транзакций
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчики очереди
type Metrics interface {
	IncQueueTransition(action string)
	IncQueueGraceExpired(status string)
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

func (nopMetrics) IncQueueTransition(string)   {}
func (nopMetrics) IncQueueGraceExpired(string) {}
