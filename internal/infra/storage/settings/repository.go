package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/psqlbuilder"
)

var columns = []string{
	"id",
	"account_id",
	"team_member_id",
	"buffer_minutes",
	"slot_interval_minutes",
	"min_notice_minutes",
	"max_advance_days",
	"cancellation_cutoff_hours",
	"client_can_book",
	"client_can_cancel",
	"client_can_reschedule",
	"created_at",
	"updated_at",
}

// Repository репозиторий переопределений настроек бронирования
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get получает переопределение уровня аккаунта (teamMemberID = nil) или сотрудника
func (r *Repository) Get(ctx context.Context, accountID int64, teamMemberID *int64) (*domain.SettingsOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("reservation_settings").
		Where(squirrel.Eq{"account_id": accountID})

	// Фильтрация по team_member_id (NULL или конкретное значение)
	if teamMemberID == nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"team_member_id": nil})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"team_member_id": *teamMemberID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	override, err := scanOverride(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan settings: %v", ErrScanRow, err)
	}

	return override, nil
}

// ListByAccount все переопределения аккаунта, уровень аккаунта первым
func (r *Repository) ListByAccount(ctx context.Context, accountID int64) ([]*domain.SettingsOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("reservation_settings").
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("team_member_id ASC NULLS FIRST").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByAccount - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByAccount - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	overrides := make([]*domain.SettingsOverride, 0)
	for rows.Next() {
		override, err := scanOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByAccount - scan row: %v", ErrScanRow, err)
		}
		overrides = append(overrides, override)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByAccount - rows error: %v", ErrScanRow, err)
	}

	return overrides, nil
}

// Upsert создает или полностью заменяет переопределение для (account_id, team_member_id)
func (r *Repository) Upsert(ctx context.Context, override *domain.SettingsOverride) (*domain.SettingsOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("reservation_settings").
		Columns(
			"account_id",
			"team_member_id",
			"buffer_minutes",
			"slot_interval_minutes",
			"min_notice_minutes",
			"max_advance_days",
			"cancellation_cutoff_hours",
			"client_can_book",
			"client_can_cancel",
			"client_can_reschedule",
		).
		Values(
			override.AccountID,
			override.TeamMemberID,
			override.BufferMinutes,
			override.SlotIntervalMinutes,
			override.MinNoticeMinutes,
			override.MaxAdvanceDays,
			override.CancellationCutoffHours,
			override.ClientCanBook,
			override.ClientCanCancel,
			override.ClientCanReschedule,
		).
		Suffix("ON CONFLICT (account_id, COALESCE(team_member_id, 0)) DO UPDATE SET " +
			"buffer_minutes = EXCLUDED.buffer_minutes, " +
			"slot_interval_minutes = EXCLUDED.slot_interval_minutes, " +
			"min_notice_minutes = EXCLUDED.min_notice_minutes, " +
			"max_advance_days = EXCLUDED.max_advance_days, " +
			"cancellation_cutoff_hours = EXCLUDED.cancellation_cutoff_hours, " +
			"client_can_book = EXCLUDED.client_can_book, " +
			"client_can_cancel = EXCLUDED.client_can_cancel, " +
			"client_can_reschedule = EXCLUDED.client_can_reschedule, " +
			"updated_at = NOW() " +
			"RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&override.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	override.CreatedAt = createdAt.Time
	override.UpdatedAt = updatedAt.Time

	return override, nil
}

// Delete удаляет переопределение по account_id и team_member_id
func (r *Repository) Delete(ctx context.Context, accountID int64, teamMemberID *int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	deleteBuilder := psqlbuilder.Delete("reservation_settings").
		Where(squirrel.Eq{"account_id": accountID})

	if teamMemberID == nil {
		deleteBuilder = deleteBuilder.Where(squirrel.Eq{"team_member_id": nil})
	} else {
		deleteBuilder = deleteBuilder.Where(squirrel.Eq{"team_member_id": *teamMemberID})
	}

	query, args, err := deleteBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSettingsNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOverride(row rowScanner) (*domain.SettingsOverride, error) {
	var (
		o                                                   domain.SettingsOverride
		teamMemberID                                        sql.NullInt64
		buffer, slotInterval, minNotice, maxAdvance, cutoff sql.NullInt32
		canBook, canCancel, canReschedule                   sql.NullBool
		createdAt, updatedAt                                sql.NullTime
	)

	err := row.Scan(
		&o.ID,
		&o.AccountID,
		&teamMemberID,
		&buffer,
		&slotInterval,
		&minNotice,
		&maxAdvance,
		&cutoff,
		&canBook,
		&canCancel,
		&canReschedule,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if teamMemberID.Valid {
		id := teamMemberID.Int64
		o.TeamMemberID = &id
	}
	o.BufferMinutes = nullInt(buffer)
	o.SlotIntervalMinutes = nullInt(slotInterval)
	o.MinNoticeMinutes = nullInt(minNotice)
	o.MaxAdvanceDays = nullInt(maxAdvance)
	o.CancellationCutoffHours = nullInt(cutoff)
	o.ClientCanBook = nullBool(canBook)
	o.ClientCanCancel = nullBool(canCancel)
	o.ClientCanReschedule = nullBool(canReschedule)
	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time

	return &o, nil
}

func nullInt(v sql.NullInt32) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int32)
	return &i
}

func nullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}
