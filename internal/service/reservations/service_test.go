package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/ptr"
)

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*domain.Reservation)
	return r, args.Error(1)
}

func (m *MockReservationRepository) LockByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*domain.Reservation)
	return r, args.Error(1)
}

func (m *MockReservationRepository) ListForAccount(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	args := m.Called(ctx, filter)
	r, _ := args.Get(0).([]*domain.Reservation)
	return r, args.Error(1)
}

func (m *MockReservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockReservationRepository) Cancel(ctx context.Context, id int64, reason string, cancelledAt time.Time) error {
	return m.Called(ctx, id, reason, cancelledAt).Error(0)
}

type MockQueueMirror struct {
	mock.Mock
}

func (m *MockQueueMirror) MirrorReservation(ctx context.Context, account *domain.Account, reservation *domain.Reservation) error {
	return m.Called(ctx, account, reservation).Error(0)
}

type stubAccounts struct{}

func (stubAccounts) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	return &domain.Account{ID: id, Timezone: "UTC", BusinessPreset: domain.PresetSalon, Queue: domain.QueueSettings{Enabled: true}}, nil
}

type stubSettings struct {
	settings domain.Settings
}

func (s stubSettings) ResolveSettings(context.Context, int64, *int64) (domain.Settings, error) {
	return s.settings, nil
}

type stubTx struct{}

func (stubTx) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type stubMetrics struct {
	ops []string
}

func (m *stubMetrics) IncReservation(operation, _ string) { m.ops = append(m.ops, operation) }

type stubPublisher struct {
	events []domain.NotificationEvent
}

func (p *stubPublisher) Publish(_ context.Context, event domain.NotificationEvent) error {
	p.events = append(p.events, event)
	return nil
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

var now = time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)

func reservationAt(start time.Time) *domain.Reservation {
	return &domain.Reservation{
		ID:              7,
		AccountID:       1,
		TeamMemberID:    10,
		ClientUserID:    ptr.Ptr(int64(42)),
		Status:          domain.ReservationConfirmed,
		StartsAt:        start,
		EndsAt:          start.Add(time.Hour),
		DurationMinutes: 60,
		Timezone:        "UTC",
		Source:          domain.SourceClient,
	}
}

type env struct {
	repo      *MockReservationRepository
	mirror    *MockQueueMirror
	publisher *stubPublisher
	metrics   *stubMetrics
	svc       *Service
}

func newEnv(settings domain.Settings) *env {
	e := &env{
		repo:      new(MockReservationRepository),
		mirror:    new(MockQueueMirror),
		publisher: &stubPublisher{},
		metrics:   &stubMetrics{},
	}
	e.svc = NewService(e.repo, stubAccounts{}, stubSettings{settings: settings}, e.mirror, e.publisher, stubTx{}, e.metrics, logger.NewNop()).
		WithTimeProvider(fixedTime{now: now})
	return e
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	client := domain.Actor{UserID: 42, Role: domain.RoleClient}

	t.Run("Client cancels own reservation and queue mirror follows", func(t *testing.T) {
		e := newEnv(domain.DefaultSettings())
		e.repo.On("LockByID", ctx, int64(7)).Return(reservationAt(now.Add(48*time.Hour)), nil)
		e.repo.On("Cancel", ctx, int64(7), "sick", now).Return(nil)
		e.mirror.On("MirrorReservation", ctx, mock.Anything, mock.MatchedBy(func(r *domain.Reservation) bool {
			return r.Status == domain.ReservationCancelled
		})).Return(nil)

		resp, err := e.svc.Cancel(ctx, &models.CancelRequest{AccountID: 1, ReservationID: 7, Actor: client, Reason: "sick"})
		require.NoError(t, err)

		assert.Equal(t, "cancelled", resp.Status)
		assert.Equal(t, "sick", *resp.CancellationReason)
		require.Len(t, e.publisher.events, 1)
		assert.Equal(t, domain.EventReservationCancelled, e.publisher.events[0].Name)
		assert.Equal(t, []string{"cancel"}, e.metrics.ops)
		e.mirror.AssertExpectations(t)
	})

	t.Run("Cutoff closes client cancellation", func(t *testing.T) {
		settings := domain.DefaultSettings()
		settings.CancellationCutoffHours = 24
		e := newEnv(settings)
		e.repo.On("LockByID", ctx, int64(7)).Return(reservationAt(now.Add(3*time.Hour)), nil)

		_, err := e.svc.Cancel(ctx, &models.CancelRequest{AccountID: 1, ReservationID: 7, Actor: client})
		assert.ErrorIs(t, err, domain.ErrModificationClosed)
		e.repo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, e.publisher.events)
	})

	t.Run("Staff ignores cutoff", func(t *testing.T) {
		settings := domain.DefaultSettings()
		settings.CancellationCutoffHours = 24
		settings.ClientCanCancel = false
		e := newEnv(settings)
		e.repo.On("LockByID", ctx, int64(7)).Return(reservationAt(now.Add(time.Hour)), nil)
		e.repo.On("Cancel", ctx, int64(7), "", now).Return(nil)
		e.mirror.On("MirrorReservation", ctx, mock.Anything, mock.Anything).Return(nil)

		_, err := e.svc.Cancel(ctx, &models.CancelRequest{AccountID: 1, ReservationID: 7, Actor: domain.Actor{UserID: 1, Role: domain.RoleStaff}})
		require.NoError(t, err)
	})

	t.Run("Client cancellation disabled", func(t *testing.T) {
		settings := domain.DefaultSettings()
		settings.ClientCanCancel = false
		e := newEnv(settings)
		e.repo.On("LockByID", ctx, int64(7)).Return(reservationAt(now.Add(48*time.Hour)), nil)

		_, err := e.svc.Cancel(ctx, &models.CancelRequest{AccountID: 1, ReservationID: 7, Actor: client})
		assert.ErrorIs(t, err, domain.ErrClientCancelDisabled)
	})

	t.Run("Other client is denied", func(t *testing.T) {
		e := newEnv(domain.DefaultSettings())
		e.repo.On("LockByID", ctx, int64(7)).Return(reservationAt(now.Add(48*time.Hour)), nil)

		_, err := e.svc.Cancel(ctx, &models.CancelRequest{AccountID: 1, ReservationID: 7, Actor: domain.Actor{UserID: 43, Role: domain.RoleClient}})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("Already cancelled", func(t *testing.T) {
		e := newEnv(domain.DefaultSettings())
		r := reservationAt(now.Add(48 * time.Hour))
		r.Status = domain.ReservationCancelled
		e.repo.On("LockByID", ctx, int64(7)).Return(r, nil)

		_, err := e.svc.Cancel(ctx, &models.CancelRequest{AccountID: 1, ReservationID: 7, Actor: client})
		assert.ErrorIs(t, err, domain.ErrReservationNotActive)
	})

	t.Run("Reservation of another account", func(t *testing.T) {
		e := newEnv(domain.DefaultSettings())
		e.repo.On("LockByID", ctx, int64(7)).Return(reservationAt(now), nil)

		_, err := e.svc.Cancel(ctx, &models.CancelRequest{AccountID: 2, ReservationID: 7, Actor: client})
		assert.ErrorIs(t, err, ErrReservationNotFound)
	})

	t.Run("Not found", func(t *testing.T) {
		e := newEnv(domain.DefaultSettings())
		e.repo.On("LockByID", ctx, int64(7)).Return(nil, reservationRepo.ErrReservationNotFound)

		_, err := e.svc.Cancel(ctx, &models.CancelRequest{AccountID: 1, ReservationID: 7, Actor: client})
		assert.ErrorIs(t, err, ErrReservationNotFound)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	staff := domain.Actor{UserID: 1, Role: domain.RoleStaff, TeamMemberID: ptr.Ptr(int64(10))}

	t.Run("Complete reservation", func(t *testing.T) {
		e := newEnv(domain.DefaultSettings())
		e.repo.On("LockByID", ctx, int64(7)).Return(reservationAt(now.Add(-time.Hour)), nil)
		e.repo.On("UpdateStatus", ctx, int64(7), domain.ReservationCompleted).Return(nil)
		e.mirror.On("MirrorReservation", ctx, mock.Anything, mock.Anything).Return(nil)

		resp, err := e.svc.UpdateStatus(ctx, &models.UpdateStatusRequest{AccountID: 1, ReservationID: 7, Actor: staff, Status: "completed"})
		require.NoError(t, err)
		assert.Equal(t, "completed", resp.Status)
		assert.Equal(t, domain.EventReservationStatus, e.publisher.events[0].Name)
	})

	t.Run("Client cannot change status", func(t *testing.T) {
		e := newEnv(domain.DefaultSettings())
		_, err := e.svc.UpdateStatus(ctx, &models.UpdateStatusRequest{AccountID: 1, ReservationID: 7, Actor: domain.Actor{UserID: 42, Role: domain.RoleClient}, Status: "completed"})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("Unsupported status", func(t *testing.T) {
		e := newEnv(domain.DefaultSettings())
		for _, status := range []string{"cancelled", "rescheduled", "bogus"} {
			_, err := e.svc.UpdateStatus(ctx, &models.UpdateStatusRequest{AccountID: 1, ReservationID: 7, Actor: staff, Status: status})
			verr, ok := domain.AsValidationError(err)
			require.True(t, ok, status)
			assert.Equal(t, "status", verr.Field)
		}
	})
}

func TestListForAccount(t *testing.T) {
	ctx := context.Background()
	settings := domain.DefaultSettings()
	settings.CancellationCutoffHours = 24
	e := newEnv(settings)

	soon := reservationAt(now.Add(2 * time.Hour))
	later := reservationAt(now.Add(72 * time.Hour))
	later.ID = 8

	e.repo.On("ListForAccount", ctx, domain.ReservationFilter{AccountID: 1, ClientUserID: ptr.Ptr(int64(42))}).
		Return([]*domain.Reservation{soon, later}, nil)

	resp, err := e.svc.ListForAccount(ctx, &models.ListRequest{AccountID: 1, Actor: domain.Actor{UserID: 42, Role: domain.RoleClient}})
	require.NoError(t, err)
	require.Len(t, resp.Reservations, 2)
	assert.False(t, resp.Reservations[0].CanClientModify)
	assert.True(t, resp.Reservations[1].CanClientModify)

	_, err = e.svc.ListForAccount(ctx, &models.ListRequest{AccountID: 1, Actor: domain.Actor{UserID: 1, Role: domain.RoleStaff}, Status: ptr.Ptr("bogus")})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	e := newEnv(domain.DefaultSettings())
	e.repo.On("GetByID", ctx, int64(7)).Return(reservationAt(now.Add(time.Hour)), nil)

	resp, err := e.svc.GetByID(ctx, 1, 7, domain.Actor{UserID: 42, Role: domain.RoleClient})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-03T13:00", resp.LocalStartsAt)
	assert.True(t, resp.CanClientModify)

	_, err = e.svc.GetByID(ctx, 1, 7, domain.Actor{UserID: 43, Role: domain.RoleClient})
	assert.ErrorIs(t, err, ErrAccessDenied)
}
