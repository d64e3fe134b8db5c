package settings

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// SettingsRepository интерфейс репозитория переопределений настроек
type SettingsRepository interface {
	Get(ctx context.Context, accountID int64, teamMemberID *int64) (*domain.SettingsOverride, error)
	ListByAccount(ctx context.Context, accountID int64) ([]*domain.SettingsOverride, error)
	Upsert(ctx context.Context, override *domain.SettingsOverride) (*domain.SettingsOverride, error)
	Delete(ctx context.Context, accountID int64, teamMemberID *int64) error
}

// AccountRepository интерфейс репозитория аккаунтов
type AccountRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetTeamMember(ctx context.Context, accountID, teamMemberID int64) (*domain.TeamMember, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
