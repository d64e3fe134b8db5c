package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/psqlbuilder"
)

var columns = []string{
	"id",
	"account_id",
	"team_member_id",
	"client_id",
	"client_user_id",
	"service_id",
	"status",
	"starts_at",
	"ends_at",
	"duration_minutes",
	"buffer_minutes",
	"timezone",
	"source",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция, использует её.
func (r *Repository) Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("reservations").
		Columns(
			"account_id",
			"team_member_id",
			"client_id",
			"client_user_id",
			"service_id",
			"status",
			"starts_at",
			"ends_at",
			"duration_minutes",
			"buffer_minutes",
			"timezone",
			"source",
		).
		Values(
			reservation.AccountID,
			reservation.TeamMemberID,
			reservation.ClientID,
			reservation.ClientUserID,
			reservation.ServiceID,
			reservation.Status,
			reservation.StartsAt.UTC(),
			reservation.EndsAt.UTC(),
			reservation.DurationMinutes,
			reservation.BufferMinutes,
			reservation.Timezone,
			reservation.Source,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&reservation.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	reservation.CreatedAt = createdAt.Time
	reservation.UpdatedAt = updatedAt.Time

	return reservation, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	return r.get(ctx, id, false)
}

// LockByID получает бронирование с блокировкой строки (FOR UPDATE)
func (r *Repository) LockByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	return r.get(ctx, id, true)
}

func (r *Repository) get(ctx context.Context, id int64, forUpdate bool) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("reservations").
		Where(squirrel.Eq{"id": id})

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: get - build select query: %v", ErrBuildQuery, err)
	}

	reservation, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get - scan reservation: %v", ErrScanRow, err)
	}

	return reservation, nil
}

// Update сохраняет перенос: сотрудник, время, длительность, буфер, статус
func (r *Repository) Update(ctx context.Context, reservation *domain.Reservation) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("team_member_id", reservation.TeamMemberID).
		Set("starts_at", reservation.StartsAt.UTC()).
		Set("ends_at", reservation.EndsAt.UTC()).
		Set("duration_minutes", reservation.DurationMinutes).
		Set("buffer_minutes", reservation.BufferMinutes).
		Set("timezone", reservation.Timezone).
		Set("status", reservation.Status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": reservation.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "Update", query, args)
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "UpdateStatus", query, args)
}

// Cancel отменяет бронирование с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason string, cancelledAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", domain.ReservationCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", cancelledAt.UTC()).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "Cancel", query, args)
}

// ListActiveForMembers активные бронирования сотрудников, пересекающиеся с [from, to).
// Используется как оконная выборка перед точной проверкой пересечений с буфером.
func (r *Repository) ListActiveForMembers(ctx context.Context, teamMemberIDs []int64, from, to time.Time) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("reservations").
		Where(squirrel.Eq{
			"team_member_id": teamMemberIDs,
			"status":         statusStrings(domain.ActiveReservationStatuses),
		}).
		Where(squirrel.Lt{"starts_at": to.UTC()}).
		Where(squirrel.Gt{"ends_at": from.UTC()}).
		OrderBy("starts_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveForMembers - build select query: %v", ErrBuildQuery, err)
	}

	return r.query(ctx, executor, "ListActiveForMembers", query, args)
}

// ListActiveForClient активные бронирования зарегистрированного клиента в аккаунте
func (r *Repository) ListActiveForClient(ctx context.Context, accountID, clientUserID int64) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("reservations").
		Where(squirrel.Eq{
			"account_id":     accountID,
			"client_user_id": clientUserID,
			"status":         statusStrings(domain.ActiveReservationStatuses),
		}).
		OrderBy("starts_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveForClient - build select query: %v", ErrBuildQuery, err)
	}

	return r.query(ctx, executor, "ListActiveForClient", query, args)
}

// ListForAccount бронирования аккаунта с фильтрацией.
// По умолчанию только активные; Status или IncludeInactive меняют это.
func (r *Repository) ListForAccount(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("reservations").
		Where(squirrel.Eq{"account_id": filter.AccountID})

	if filter.TeamMemberID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"team_member_id": *filter.TeamMemberID})
	}
	if filter.ClientUserID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"client_user_id": *filter.ClientUserID})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"starts_at": filter.From.UTC()})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"starts_at": filter.To.UTC()})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings(domain.ActiveReservationStatuses)})
	}

	query, args, err := selectBuilder.OrderBy("starts_at ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListForAccount - build select query: %v", ErrBuildQuery, err)
	}

	return r.query(ctx, executor, "ListForAccount", query, args)
}

func (r *Repository) query(ctx context.Context, executor DBExecutor, method, query string, args []interface{}) ([]*domain.Reservation, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, method, err)
	}
	defer rows.Close()

	reservations := make([]*domain.Reservation, 0)
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, method, err)
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, method, err)
	}

	return reservations, nil
}

func (r *Repository) execAffectingOne(ctx context.Context, executor DBExecutor, method, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}

	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var (
		reservation          domain.Reservation
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&reservation.ID,
		&reservation.AccountID,
		&reservation.TeamMemberID,
		&reservation.ClientID,
		&reservation.ClientUserID,
		&reservation.ServiceID,
		&reservation.Status,
		&reservation.StartsAt,
		&reservation.EndsAt,
		&reservation.DurationMinutes,
		&reservation.BufferMinutes,
		&reservation.Timezone,
		&reservation.Source,
		&reservation.CancellationReason,
		&reservation.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	reservation.StartsAt = reservation.StartsAt.UTC()
	reservation.EndsAt = reservation.EndsAt.UTC()
	reservation.CreatedAt = createdAt.Time
	reservation.UpdatedAt = updatedAt.Time

	return &reservation, nil
}

func statusStrings(statuses []domain.ReservationStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
