package availability

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

func TestRepository_ListWeekly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM weekly_availability WHERE .*team_member_id IN \(\$\d,\$\d\)`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "account_id", "team_member_id", "day_of_week", "start_time", "end_time", "is_active",
		}).
			AddRow(1, 1, 3, 1, "09:00:00", "13:00:00", true).
			AddRow(2, 1, 3, 1, "14:00:00", "18:00:00", true))

	rows, err := repo.ListWeekly(context.Background(), 1, []int64{3, 4})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, types.TimeString("09:00"), rows[0].StartTime)
	assert.Equal(t, types.TimeString("18:00"), rows[1].EndTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListExceptions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM availability_exceptions WHERE account_id = \$1 AND \(team_member_id IS NULL OR team_member_id IN \(\$2\)\)`).
		WithArgs(int64(1), int64(3), "2025-03-03", "2025-03-04").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "account_id", "team_member_id", "date", "type", "start_time", "end_time",
		}).
			AddRow(1, 1, nil, day, "closed", nil, nil).
			AddRow(2, 1, 3, day, "open", "18:00:00", "20:00:00"))

	rows, err := repo.ListExceptions(context.Background(), 1, []int64{3}, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.True(t, rows[0].IsAccountWide())
	assert.True(t, rows[0].IsWholeDay())
	assert.Equal(t, domain.ExceptionOpen, rows[1].Type)
	require.NotNil(t, rows[1].StartTime)
	assert.Equal(t, types.TimeString("18:00"), *rows[1].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}
