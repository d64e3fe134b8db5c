package availability

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/psqlbuilder"
)

// Repository репозиторий расписаний сотрудников и исключений
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListWeekly активные еженедельные окна указанных сотрудников
func (r *Repository) ListWeekly(ctx context.Context, accountID int64, teamMemberIDs []int64) ([]*domain.WeeklyAvailability, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"account_id",
		"team_member_id",
		"day_of_week",
		"start_time",
		"end_time",
		"is_active",
	).
		From("weekly_availability").
		Where(squirrel.Eq{
			"account_id":     accountID,
			"team_member_id": teamMemberIDs,
			"is_active":      true,
		}).
		OrderBy("team_member_id ASC", "day_of_week ASC", "start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListWeekly - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListWeekly - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.WeeklyAvailability, 0)
	for rows.Next() {
		var w domain.WeeklyAvailability
		if err := rows.Scan(
			&w.ID,
			&w.AccountID,
			&w.TeamMemberID,
			&w.DayOfWeek,
			&w.StartTime,
			&w.EndTime,
			&w.IsActive,
		); err != nil {
			return nil, fmt.Errorf("%w: ListWeekly - scan row: %v", ErrScanRow, err)
		}
		result = append(result, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListWeekly - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// ListExceptions исключения за период [from, to] (даты включительно):
// для указанных сотрудников и общие для аккаунта
func (r *Repository) ListExceptions(ctx context.Context, accountID int64, teamMemberIDs []int64, from, to time.Time) ([]*domain.AvailabilityException, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"account_id",
		"team_member_id",
		"date",
		"type",
		"start_time",
		"end_time",
	).
		From("availability_exceptions").
		Where(squirrel.Eq{"account_id": accountID}).
		Where(squirrel.Or{
			squirrel.Eq{"team_member_id": nil},
			squirrel.Eq{"team_member_id": teamMemberIDs},
		}).
		Where(squirrel.GtOrEq{"date": from.Format(domain.DateFormat)}).
		Where(squirrel.LtOrEq{"date": to.Format(domain.DateFormat)}).
		OrderBy("date ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListExceptions - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExceptions - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.AvailabilityException, 0)
	for rows.Next() {
		var e domain.AvailabilityException
		var teamMemberID sql.NullInt64
		if err := rows.Scan(
			&e.ID,
			&e.AccountID,
			&teamMemberID,
			&e.Date,
			&e.Type,
			&e.StartTime,
			&e.EndTime,
		); err != nil {
			return nil, fmt.Errorf("%w: ListExceptions - scan row: %v", ErrScanRow, err)
		}
		if teamMemberID.Valid {
			id := teamMemberID.Int64
			e.TeamMemberID = &id
		}
		result = append(result, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListExceptions - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}
