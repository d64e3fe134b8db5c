package intentguard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/ptr"
)

type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) ListActiveTicketsForClient(ctx context.Context, accountID int64, client domain.ClientIdentity) ([]*domain.QueueItem, error) {
	args := m.Called(ctx, accountID, client)
	items, _ := args.Get(0).([]*domain.QueueItem)
	return items, args.Error(1)
}

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) ListActiveForClient(ctx context.Context, accountID, clientUserID int64) ([]*domain.Reservation, error) {
	args := m.Called(ctx, accountID, clientUserID)
	items, _ := args.Get(0).([]*domain.Reservation)
	return items, args.Error(1)
}

var now = time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)

func queueAccount() *domain.Account {
	return &domain.Account{
		ID:             1,
		BusinessPreset: domain.PresetBarber,
		Queue:          domain.QueueSettings{Enabled: true, DuplicateWindowMinutes: 60},
	}
}

func TestEnsureCanCreateTicket(t *testing.T) {
	ctx := context.Background()
	client := domain.RegisteredClient(42)

	t.Run("Queue disabled is a no-op", func(t *testing.T) {
		tickets := new(MockTicketRepository)
		reservations := new(MockReservationRepository)
		svc := NewService(tickets, reservations, logger.NewNop())

		account := queueAccount()
		account.BusinessPreset = domain.PresetRetail

		require.NoError(t, svc.EnsureCanCreateTicket(ctx, account, client, now))
		tickets.AssertNotCalled(t, "ListActiveTicketsForClient", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Active ticket is a duplicate", func(t *testing.T) {
		tickets := new(MockTicketRepository)
		reservations := new(MockReservationRepository)
		svc := NewService(tickets, reservations, logger.NewNop())

		tickets.On("ListActiveTicketsForClient", ctx, int64(1), client).
			Return([]*domain.QueueItem{{ID: 5, Status: domain.QueueCheckedIn, ClientUserID: ptr.Ptr(int64(42))}}, nil)

		err := svc.EnsureCanCreateTicket(ctx, queueAccount(), client, now)
		verr, ok := domain.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "client", verr.Field)
		assert.ErrorIs(t, err, domain.ErrDuplicateTicket)
		reservations.AssertNotCalled(t, "ListActiveForClient", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Reservation inside window", func(t *testing.T) {
		tickets := new(MockTicketRepository)
		reservations := new(MockReservationRepository)
		svc := NewService(tickets, reservations, logger.NewNop())

		tickets.On("ListActiveTicketsForClient", ctx, int64(1), client).Return([]*domain.QueueItem{}, nil)
		reservations.On("ListActiveForClient", ctx, int64(1), int64(42)).Return([]*domain.Reservation{
			{ID: 7, Status: domain.ReservationConfirmed, StartsAt: now.Add(45 * time.Minute), EndsAt: now.Add(105 * time.Minute)},
		}, nil)

		err := svc.EnsureCanCreateTicket(ctx, queueAccount(), client, now)
		assert.ErrorIs(t, err, domain.ErrDuplicateReservation)
	})

	t.Run("Reservation in progress", func(t *testing.T) {
		tickets := new(MockTicketRepository)
		reservations := new(MockReservationRepository)
		svc := NewService(tickets, reservations, logger.NewNop())

		tickets.On("ListActiveTicketsForClient", ctx, int64(1), client).Return([]*domain.QueueItem{}, nil)
		reservations.On("ListActiveForClient", ctx, int64(1), int64(42)).Return([]*domain.Reservation{
			{ID: 7, Status: domain.ReservationConfirmed, StartsAt: now.Add(-10 * time.Minute), EndsAt: now.Add(20 * time.Minute)},
		}, nil)

		assert.ErrorIs(t, svc.EnsureCanCreateTicket(ctx, queueAccount(), client, now), domain.ErrDuplicateReservation)
	})

	t.Run("Reservation outside window is allowed", func(t *testing.T) {
		tickets := new(MockTicketRepository)
		reservations := new(MockReservationRepository)
		svc := NewService(tickets, reservations, logger.NewNop())

		tickets.On("ListActiveTicketsForClient", ctx, int64(1), client).Return([]*domain.QueueItem{}, nil)
		reservations.On("ListActiveForClient", ctx, int64(1), int64(42)).Return([]*domain.Reservation{
			{ID: 7, Status: domain.ReservationConfirmed, StartsAt: now.Add(3 * time.Hour), EndsAt: now.Add(4 * time.Hour)},
			{ID: 8, Status: domain.ReservationConfirmed, StartsAt: now.Add(-2 * time.Hour), EndsAt: now.Add(-time.Hour)},
		}, nil)

		assert.NoError(t, svc.EnsureCanCreateTicket(ctx, queueAccount(), client, now))
		reservations.AssertExpectations(t)
	})

	t.Run("Closed tickets do not block", func(t *testing.T) {
		tickets := new(MockTicketRepository)
		reservations := new(MockReservationRepository)
		svc := NewService(tickets, reservations, logger.NewNop())

		tickets.On("ListActiveTicketsForClient", ctx, int64(1), client).Return([]*domain.QueueItem{
			{ID: 5, ItemType: domain.ItemTicket, Status: domain.QueueLeft, ClientUserID: ptr.Ptr(int64(42))},
			{ID: 6, ItemType: domain.ItemTicket, Status: domain.QueueCancelled, ClientUserID: ptr.Ptr(int64(42))},
		}, nil)
		reservations.On("ListActiveForClient", ctx, int64(1), int64(42)).Return([]*domain.Reservation{}, nil)

		assert.NoError(t, svc.EnsureCanCreateTicket(ctx, queueAccount(), client, now))
		tickets.AssertExpectations(t)
	})

	t.Run("Guest matched by phone", func(t *testing.T) {
		tickets := new(MockTicketRepository)
		reservations := new(MockReservationRepository)
		svc := NewService(tickets, reservations, logger.NewNop())

		guest := domain.GuestClient("+1 (555) 123-4567", "Ann")
		tickets.On("ListActiveTicketsForClient", ctx, int64(1), guest).Return([]*domain.QueueItem{
			{ID: 9, Status: domain.QueueNotArrived, Metadata: map[string]string{domain.MetaGuestPhone: "15551234567"}},
		}, nil)

		assert.ErrorIs(t, svc.EnsureCanCreateTicket(ctx, queueAccount(), guest, now), domain.ErrDuplicateTicket)
	})

	t.Run("Repository failure", func(t *testing.T) {
		tickets := new(MockTicketRepository)
		svc := NewService(tickets, new(MockReservationRepository), logger.NewNop())

		tickets.On("ListActiveTicketsForClient", ctx, int64(1), client).Return(nil, errors.New("db down"))

		assert.ErrorIs(t, svc.EnsureCanCreateTicket(ctx, queueAccount(), client, now), ErrInternal)
	})
}

func TestEnsureCanCreateReservation(t *testing.T) {
	ctx := context.Background()
	client := domain.RegisteredClient(42)

	tickets := new(MockTicketRepository)
	svc := NewService(tickets, new(MockReservationRepository), logger.NewNop())

	tickets.On("ListActiveTicketsForClient", ctx, int64(1), client).
		Return([]*domain.QueueItem{{ID: 5, Status: domain.QueueCalled, ClientUserID: ptr.Ptr(int64(42))}}, nil)

	assert.ErrorIs(t, svc.EnsureCanCreateReservation(ctx, queueAccount(), client), domain.ErrDuplicateTicket)
	assert.NoError(t, svc.EnsureCanCreateReservation(ctx, queueAccount(), domain.ClientIdentity{}))
}
