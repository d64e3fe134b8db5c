package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	accountRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/account"
	availabilityModels "github.com/m04kA/SMC-ReservationService/internal/service/availability/models"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/ptr"
)

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) GenerateSlots(ctx context.Context, req *availabilityModels.GenerateSlotsRequest) (*availabilityModels.SlotsResult, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*availabilityModels.SlotsResult)
	return r, args.Error(1)
}

func (m *MockResolver) DefaultDurationMinutes(ctx context.Context, accountID int64, serviceID *int64) (int, error) {
	args := m.Called(ctx, accountID, serviceID)
	return args.Int(0), args.Error(1)
}

type stubAccounts struct{}

func (stubAccounts) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	if id != 1 {
		return nil, accountRepo.ErrAccountNotFound
	}
	return &domain.Account{ID: 1, Timezone: "America/New_York"}, nil
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	t.Run("Uses service duration and local day range", func(t *testing.T) {
		resolver := new(MockResolver)
		uc := NewUseCase(stubAccounts{}, resolver, logger.NewNop())

		dayStart := time.Date(2025, 3, 3, 0, 0, 0, 0, ny)
		slotStart := time.Date(2025, 3, 3, 9, 0, 0, 0, ny).UTC()

		resolver.On("DefaultDurationMinutes", ctx, int64(1), ptr.Ptr(int64(7))).Return(45, nil)
		resolver.On("GenerateSlots", ctx, mock.MatchedBy(func(req *availabilityModels.GenerateSlotsRequest) bool {
			return req.RangeStart.Equal(dayStart) &&
				req.RangeEnd.Equal(dayStart.AddDate(0, 0, 1)) &&
				req.DurationMinutes == 45
		})).Return(&availabilityModels.SlotsResult{
			Timezone: "America/New_York",
			Slots: []domain.Slot{
				{TeamMemberID: 10, StartsAt: slotStart, EndsAt: slotStart.Add(45 * time.Minute)},
			},
		}, nil)

		resp, err := uc.Execute(ctx, &Request{AccountID: 1, DateFrom: "2025-03-03", ServiceID: ptr.Ptr(int64(7))})
		require.NoError(t, err)

		require.Len(t, resp.Slots, 1)
		assert.Equal(t, 45, resp.DurationMinutes)
		assert.Equal(t, "2025-03-03", resp.Slots[0].LocalDate)
		assert.Equal(t, "09:00", resp.Slots[0].StartTime.String())
		assert.Equal(t, "09:45", resp.Slots[0].EndTime.String())
		resolver.AssertExpectations(t)
	})

	t.Run("Explicit duration skips service lookup", func(t *testing.T) {
		resolver := new(MockResolver)
		uc := NewUseCase(stubAccounts{}, resolver, logger.NewNop())

		resolver.On("GenerateSlots", ctx, mock.MatchedBy(func(req *availabilityModels.GenerateSlotsRequest) bool {
			return req.DurationMinutes == 30 && req.RangeEnd.Sub(req.RangeStart) == 72*time.Hour
		})).Return(&availabilityModels.SlotsResult{Timezone: "America/New_York"}, nil)

		resp, err := uc.Execute(ctx, &Request{AccountID: 1, DateFrom: "2025-03-03", DateTo: "2025-03-05", DurationMinutes: ptr.Ptr(30)})
		require.NoError(t, err)
		assert.Empty(t, resp.Slots)
		resolver.AssertNotCalled(t, "DefaultDurationMinutes", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Invalid input", func(t *testing.T) {
		uc := NewUseCase(stubAccounts{}, new(MockResolver), logger.NewNop())

		_, err := uc.Execute(ctx, &Request{AccountID: 1, DateFrom: "03.03.2025"})
		verr, ok := domain.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "date", verr.Field)

		_, err = uc.Execute(ctx, &Request{AccountID: 1, DateFrom: "2025-03-05", DateTo: "2025-03-03"})
		assert.ErrorIs(t, err, domain.ErrEndBeforeStart)

		_, err = uc.Execute(ctx, &Request{AccountID: 1, DateFrom: "2025-03-05", DurationMinutes: ptr.Ptr(0)})
		assert.ErrorIs(t, err, domain.ErrOutOfRange)

		_, err = uc.Execute(ctx, &Request{AccountID: 2, DateFrom: "2025-03-05"})
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}
