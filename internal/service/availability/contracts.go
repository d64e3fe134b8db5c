package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// AccountRepository интерфейс репозитория аккаунтов
type AccountRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetTeamMember(ctx context.Context, accountID, teamMemberID int64) (*domain.TeamMember, error)
	ListActiveTeamMembers(ctx context.Context, accountID int64) ([]*domain.TeamMember, error)
	GetService(ctx context.Context, accountID, serviceID int64) (*domain.Service, error)
}

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	ListWeekly(ctx context.Context, accountID int64, teamMemberIDs []int64) ([]*domain.WeeklyAvailability, error)
	ListExceptions(ctx context.Context, accountID int64, teamMemberIDs []int64, from, to time.Time) ([]*domain.AvailabilityException, error)
}

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	ListActiveForMembers(ctx context.Context, teamMemberIDs []int64, from, to time.Time) ([]*domain.Reservation, error)
}

// SettingsRepository интерфейс репозитория настроек
type SettingsRepository interface {
	Get(ctx context.Context, accountID int64, teamMemberID *int64) (*domain.SettingsOverride, error)
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
