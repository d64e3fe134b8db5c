package queue

import (
	"context"
	"database/sql"
	"encoding/json"
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
	"reservation_id",
	"item_type",
	"status",
	"team_member_id",
	"client_user_id",
	"service_id",
	"position",
	"eta_minutes",
	"call_expires_at",
	"checked_in_at",
	"pre_called_at",
	"called_at",
	"started_at",
	"completed_at",
	"anchor_at",
	"queue_number",
	"estimated_duration_minutes",
	"metadata",
	"created_at",
	"updated_at",
}

// Repository репозиторий элементов очереди и журнала отметок
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория очереди
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает элемент очереди
func (r *Repository) Create(ctx context.Context, item *domain.QueueItem) (*domain.QueueItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	metadata, err := encodeMetadata(item.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - encode metadata: %v", ErrMetadata, err)
	}

	query, args, err := psqlbuilder.Insert("reservation_queue_items").
		Columns(
			"account_id",
			"reservation_id",
			"item_type",
			"status",
			"team_member_id",
			"client_user_id",
			"service_id",
			"position",
			"eta_minutes",
			"call_expires_at",
			"checked_in_at",
			"pre_called_at",
			"called_at",
			"started_at",
			"completed_at",
			"anchor_at",
			"queue_number",
			"estimated_duration_minutes",
			"metadata",
		).
		Values(
			item.AccountID,
			item.ReservationID,
			item.ItemType,
			item.Status,
			item.TeamMemberID,
			item.ClientUserID,
			item.ServiceID,
			item.Position,
			item.EtaMinutes,
			item.CallExpiresAt,
			item.CheckedInAt,
			item.PreCalledAt,
			item.CalledAt,
			item.StartedAt,
			item.CompletedAt,
			item.AnchorAt.UTC(),
			item.QueueNumber,
			item.EstimatedDurationMinutes,
			metadata,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&item.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	item.CreatedAt = createdAt.Time
	item.UpdatedAt = updatedAt.Time

	return item, nil
}

// GetByID получает элемент очереди по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.QueueItem, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id}, false)
}

// LockByID получает элемент очереди с блокировкой строки (FOR UPDATE)
func (r *Repository) LockByID(ctx context.Context, id int64) (*domain.QueueItem, error) {
	return r.getOne(ctx, "LockByID", squirrel.Eq{"id": id}, true)
}

// GetByReservationID элемент-зеркало бронирования
func (r *Repository) GetByReservationID(ctx context.Context, reservationID int64) (*domain.QueueItem, error) {
	return r.getOne(ctx, "GetByReservationID", squirrel.Eq{"reservation_id": reservationID}, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) getOne(ctx context.Context, method string, where squirrel.Sqlizer, forUpdate bool) (*domain.QueueItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("reservation_queue_items").
		Where(where)

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	item, err := scanItem(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQueueItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan item: %v", ErrScanRow, method, err)
	}

	return item, nil
}

// ListActive незакрытые элементы очереди аккаунта.
// Внутри транзакции строки блокируются: пересчет очереди выполняется последовательно.
func (r *Repository) ListActive(ctx context.Context, accountID int64) ([]*domain.QueueItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("reservation_queue_items").
		Where(squirrel.Eq{"account_id": accountID}).
		Where(squirrel.NotEq{"status": terminalStatuses()}).
		OrderBy("id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - build select query: %v", ErrBuildQuery, err)
	}

	return r.query(ctx, executor, "ListActive", query, args)
}

// ListByReservationIDs элементы-зеркала указанных бронирований, ключ - reservation_id
func (r *Repository) ListByReservationIDs(ctx context.Context, reservationIDs []int64) (map[int64]*domain.QueueItem, error) {
	result := make(map[int64]*domain.QueueItem, len(reservationIDs))
	if len(reservationIDs) == 0 {
		return result, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("reservation_queue_items").
		Where(squirrel.Eq{"reservation_id": reservationIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByReservationIDs - build select query: %v", ErrBuildQuery, err)
	}

	items, err := r.query(ctx, executor, "ListByReservationIDs", query, args)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if item.ReservationID != nil {
			result[*item.ReservationID] = item
		}
	}

	return result, nil
}

// ListActiveTicketsForClient незакрытые талоны клиента.
// Гость ищется по нормализованному телефону в метаданных.
func (r *Repository) ListActiveTicketsForClient(ctx context.Context, accountID int64, client domain.ClientIdentity) ([]*domain.QueueItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From("reservation_queue_items").
		Where(squirrel.Eq{
			"account_id": accountID,
			"item_type":  domain.ItemTicket,
		}).
		Where(squirrel.NotEq{"status": terminalStatuses()})

	switch client.Kind {
	case domain.ClientRegistered:
		selectBuilder = selectBuilder.Where(squirrel.Eq{"client_user_id": client.UserID})
	case domain.ClientGuest:
		selectBuilder = selectBuilder.Where(squirrel.Expr("metadata->>'"+domain.MetaGuestPhone+"' = ?", client.Phone))
	default:
		return []*domain.QueueItem{}, nil
	}

	query, args, err := selectBuilder.OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveTicketsForClient - build select query: %v", ErrBuildQuery, err)
	}

	return r.query(ctx, executor, "ListActiveTicketsForClient", query, args)
}

// CountTicketsCreatedBetween количество талонов, созданных в [from, to)
func (r *Repository) CountTicketsCreatedBetween(ctx context.Context, accountID int64, from, to time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("reservation_queue_items").
		Where(squirrel.Eq{
			"account_id": accountID,
			"item_type":  domain.ItemTicket,
		}).
		Where(squirrel.GtOrEq{"created_at": from.UTC()}).
		Where(squirrel.Lt{"created_at": to.UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountTicketsCreatedBetween - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountTicketsCreatedBetween - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// Update сохраняет статус, назначение и отметки времени элемента
func (r *Repository) Update(ctx context.Context, item *domain.QueueItem) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	metadata, err := encodeMetadata(item.Metadata)
	if err != nil {
		return fmt.Errorf("%w: Update - encode metadata: %v", ErrMetadata, err)
	}

	query, args, err := psqlbuilder.Update("reservation_queue_items").
		Set("status", item.Status).
		Set("team_member_id", item.TeamMemberID).
		Set("service_id", item.ServiceID).
		Set("position", item.Position).
		Set("eta_minutes", item.EtaMinutes).
		Set("call_expires_at", item.CallExpiresAt).
		Set("checked_in_at", item.CheckedInAt).
		Set("pre_called_at", item.PreCalledAt).
		Set("called_at", item.CalledAt).
		Set("started_at", item.StartedAt).
		Set("completed_at", item.CompletedAt).
		Set("anchor_at", item.AnchorAt.UTC()).
		Set("estimated_duration_minutes", item.EstimatedDurationMinutes).
		Set("metadata", metadata).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": item.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "Update", query, args)
}

// UpdateMetrics сохраняет позицию и ETA
func (r *Repository) UpdateMetrics(ctx context.Context, id int64, position, etaMinutes *int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservation_queue_items").
		Set("position", position).
		Set("eta_minutes", etaMinutes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateMetrics - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "UpdateMetrics", query, args)
}

// InsertCheckIn добавляет запись в журнал отметок
func (r *Repository) InsertCheckIn(ctx context.Context, checkIn *domain.CheckIn) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("reservation_check_ins").
		Columns("account_id", "queue_item_id", "action", "actor_user_id").
		Values(checkIn.AccountID, checkIn.QueueItemID, checkIn.Action, checkIn.ActorUserID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: InsertCheckIn - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&checkIn.ID, &checkIn.CreatedAt); err != nil {
		return fmt.Errorf("%w: InsertCheckIn - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

func (r *Repository) query(ctx context.Context, executor DBExecutor, method, query string, args []interface{}) ([]*domain.QueueItem, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, method, err)
	}
	defer rows.Close()

	items := make([]*domain.QueueItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, method, err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, method, err)
	}

	return items, nil
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
		return ErrQueueItemNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*domain.QueueItem, error) {
	var (
		item                 domain.QueueItem
		metadata             []byte
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&item.ID,
		&item.AccountID,
		&item.ReservationID,
		&item.ItemType,
		&item.Status,
		&item.TeamMemberID,
		&item.ClientUserID,
		&item.ServiceID,
		&item.Position,
		&item.EtaMinutes,
		&item.CallExpiresAt,
		&item.CheckedInAt,
		&item.PreCalledAt,
		&item.CalledAt,
		&item.StartedAt,
		&item.CompletedAt,
		&item.AnchorAt,
		&item.QueueNumber,
		&item.EstimatedDurationMinutes,
		&metadata,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Metadata = map[string]string{}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &item.Metadata); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMetadata, err)
		}
	}

	item.AnchorAt = item.AnchorAt.UTC()
	item.CreatedAt = createdAt.Time
	item.UpdatedAt = updatedAt.Time

	return &item, nil
}

func encodeMetadata(metadata map[string]string) ([]byte, error) {
	if metadata == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(metadata)
}

func terminalStatuses() []string {
	result := make([]string, len(domain.TerminalQueueStatuses))
	for i, s := range domain.TerminalQueueStatuses {
		result[i] = string(s)
	}
	return result
}
