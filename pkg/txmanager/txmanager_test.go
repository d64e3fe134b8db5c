package txmanager

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
)

func TestTransactionManager_Do(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	manager := NewTransactionManager(dbmetrics.Wrap(db, nil, "test"))

	t.Run("Commit on success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE queue_items`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := manager.Do(context.Background(), func(ctx context.Context) error {
			assert.True(t, dbmetrics.IsInTransaction(ctx))
			_, err := dbmetrics.GetExecutor(ctx, nil).ExecContext(ctx, "UPDATE queue_items SET position = 1")
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := manager.Do(context.Background(), func(ctx context.Context) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nested call joins outer transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectCommit()

		calls := 0
		err := manager.Do(context.Background(), func(ctx context.Context) error {
			return manager.DoSerializable(ctx, func(inner context.Context) error {
				calls++
				return nil
			})
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Begin failure", func(t *testing.T) {
		mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

		err := manager.Do(context.Background(), func(ctx context.Context) error {
			t.Fatal("fn must not run")
			return nil
		})
		assert.ErrorIs(t, err, ErrTransaction)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
