package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/psqlbuilder"
)

const serviceIDsColumn = "ARRAY(SELECT tms.service_id FROM team_member_services tms " +
	"WHERE tms.team_member_id = team_members.id ORDER BY tms.service_id) AS service_ids"

// Repository репозиторий аккаунтов, сотрудников и услуг
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория аккаунтов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает аккаунт вместе с настройками очереди
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.getAccount(ctx, id, false)
}

// LockByID получает аккаунт с блокировкой строки (FOR UPDATE).
// Должен вызываться внутри транзакции: сериализует выдачу номеров талонов.
func (r *Repository) LockByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.getAccount(ctx, id, true)
}

func (r *Repository) getAccount(ctx context.Context, id int64, forUpdate bool) (*domain.Account, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"name",
		"timezone",
		"business_preset",
		"queue_enabled",
		"queue_grace_minutes",
		"queue_dispatch_mode",
		"queue_no_show_on_grace_expiry",
		"queue_duplicate_window_minutes",
	).
		From("accounts").
		Where(squirrel.Eq{"id": id})

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getAccount - build select query: %v", ErrBuildQuery, err)
	}

	var account domain.Account
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&account.ID,
		&account.Name,
		&account.Timezone,
		&account.BusinessPreset,
		&account.Queue.Enabled,
		&account.Queue.GraceMinutes,
		&account.Queue.DispatchMode,
		&account.Queue.NoShowOnGraceExpiry,
		&account.Queue.DuplicateWindowMinutes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getAccount - scan account: %v", ErrScanRow, err)
	}

	return &account, nil
}

// GetTeamMember получает сотрудника аккаунта
func (r *Repository) GetTeamMember(ctx context.Context, accountID, teamMemberID int64) (*domain.TeamMember, error) {
	return r.getTeamMember(ctx, accountID, teamMemberID, false)
}

// LockTeamMember получает сотрудника с блокировкой строки (FOR UPDATE).
// Параллельные бронирования одного сотрудника ждут друг друга на этой блокировке.
func (r *Repository) LockTeamMember(ctx context.Context, accountID, teamMemberID int64) (*domain.TeamMember, error) {
	return r.getTeamMember(ctx, accountID, teamMemberID, true)
}

func (r *Repository) getTeamMember(ctx context.Context, accountID, teamMemberID int64, forUpdate bool) (*domain.TeamMember, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "account_id", "name", "is_active", serviceIDsColumn).
		From("team_members").
		Where(squirrel.Eq{"id": teamMemberID, "account_id": accountID})

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getTeamMember - build select query: %v", ErrBuildQuery, err)
	}

	var member domain.TeamMember
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&member.ID,
		&member.AccountID,
		&member.Name,
		&member.IsActive,
		pq.Array(&member.ServiceIDs),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTeamMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getTeamMember - scan team member: %v", ErrScanRow, err)
	}

	return &member, nil
}

// ListActiveTeamMembers активные сотрудники аккаунта по возрастанию id
func (r *Repository) ListActiveTeamMembers(ctx context.Context, accountID int64) ([]*domain.TeamMember, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "account_id", "name", "is_active", serviceIDsColumn).
		From("team_members").
		Where(squirrel.Eq{"account_id": accountID, "is_active": true}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveTeamMembers - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveTeamMembers - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	members := make([]*domain.TeamMember, 0)
	for rows.Next() {
		var member domain.TeamMember
		if err := rows.Scan(
			&member.ID,
			&member.AccountID,
			&member.Name,
			&member.IsActive,
			pq.Array(&member.ServiceIDs),
		); err != nil {
			return nil, fmt.Errorf("%w: ListActiveTeamMembers - scan row: %v", ErrScanRow, err)
		}
		members = append(members, &member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveTeamMembers - rows error: %v", ErrScanRow, err)
	}

	return members, nil
}

// GetService получает услугу аккаунта
func (r *Repository) GetService(ctx context.Context, accountID, serviceID int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "account_id", "name", "duration_minutes").
		From("services").
		Where(squirrel.Eq{"id": serviceID, "account_id": accountID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var service domain.Service
	var duration sql.NullInt64
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&service.ID,
		&service.AccountID,
		&service.Name,
		&duration,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %v", ErrScanRow, err)
	}
	service.DurationMinutes = int(duration.Int64)

	return &service, nil
}
