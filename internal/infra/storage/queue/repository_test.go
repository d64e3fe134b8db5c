package queue

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
)

func ticketRow(id int64, status domain.QueueStatus, anchor time.Time, metadata string) []driver.Value {
	return []driver.Value{
		id, int64(1), nil, "ticket", string(status), int64(3), nil, nil,
		nil, nil, nil, anchor, nil, nil, nil, nil,
		anchor, "T-0303-1", 30, []byte(metadata), anchor, anchor,
	}
}

func TestRepository_ListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	manager := txmanager.NewTransactionManager(dbmetrics.Wrap(db, nil, "test"))
	anchor := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	t.Run("Without transaction no row locks", func(t *testing.T) {
		mock.ExpectQuery(`FROM reservation_queue_items WHERE account_id = \$1 AND status NOT IN \(\$2,\$3,\$4,\$5\) ORDER BY id ASC$`).
			WithArgs(int64(1), "done", "cancelled", "no_show", "left").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(ticketRow(1, domain.QueueCheckedIn, anchor, `{"guest_phone":"15551234567"}`)...))

		items, err := repo.ListActive(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "15551234567", items[0].GuestPhone())
		assert.Equal(t, domain.ItemTicket, items[0].ItemType)
		assert.Nil(t, items[0].Position)
	})

	t.Run("Inside transaction locks rows", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM reservation_queue_items WHERE .+ FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(columns))
		mock.ExpectCommit()

		err := manager.Do(context.Background(), func(ctx context.Context) error {
			items, err := repo.ListActive(ctx, 1)
			assert.Empty(t, items)
			return err
		})
		require.NoError(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListActiveTicketsForClient(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Guest by phone", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("metadata->>'guest_phone' = $7")).
			WithArgs(int64(1), "ticket", "done", "cancelled", "no_show", "left", "15551234567").
			WillReturnRows(sqlmock.NewRows(columns))

		items, err := repo.ListActiveTicketsForClient(context.Background(), 1, domain.GuestClient("(555) 123-4567", ""))
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("Zero identity skips query", func(t *testing.T) {
		items, err := repo.ListActiveTicketsForClient(context.Background(), 1, domain.ClientIdentity{})
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CountTicketsCreatedBetween(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	from := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservation_queue_items")).
		WithArgs(int64(1), "ticket", from, from.AddDate(0, 0, 1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountTicketsCreatedBetween(context.Background(), 1, from, from.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateMetrics(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	position, eta := 2, 15

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservation_queue_items SET position = $1, eta_minutes = $2, updated_at = NOW() WHERE id = $3")).
		WithArgs(int64(2), int64(15), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateMetrics(context.Background(), 9, &position, &eta))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservation_queue_items")).
		WithArgs(nil, nil, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.UpdateMetrics(context.Background(), 10, nil, nil), ErrQueueItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertCheckIn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reservation_check_ins (account_id,queue_item_id,action,actor_user_id)")).
		WithArgs(int64(1), int64(9), "check_in", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(3, now))

	checkIn := &domain.CheckIn{AccountID: 1, QueueItemID: 9, Action: domain.ActionCheckIn}
	require.NoError(t, repo.InsertCheckIn(context.Background(), checkIn))
	assert.Equal(t, int64(3), checkIn.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
