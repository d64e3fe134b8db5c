package reschedule_reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/availability"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/ptr"
)

// 2025-03-03 - понедельник
var (
	monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	now    = time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
)

func at(hour, minute int) time.Time {
	return monday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

var (
	staff    = domain.Actor{UserID: 100, Role: domain.RoleStaff}
	owner    = domain.Actor{UserID: 500, Role: domain.RoleClient}
	intruder = domain.Actor{UserID: 501, Role: domain.RoleClient}
)

type fixture struct {
	store     *memStore
	mirror    *recordingMirror
	publisher *recordingPublisher
	uc        *UseCase
}

// newFixture бронь 1: сотрудник 3, 10:00-11:00, клиент 500; бронь 2: сотрудник 3, 13:00-14:00
func newFixture() *fixture {
	f := &fixture{
		store: &memStore{
			account: &domain.Account{ID: 1, Timezone: "UTC"},
			members: []*domain.TeamMember{
				{ID: 3, AccountID: 1, IsActive: true},
				{ID: 4, AccountID: 1, IsActive: true},
				{ID: 5, AccountID: 1, IsActive: false},
			},
			weekly: []*domain.WeeklyAvailability{
				{ID: 1, AccountID: 1, TeamMemberID: 3, DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsActive: true},
				{ID: 2, AccountID: 1, TeamMemberID: 4, DayOfWeek: 1, StartTime: "12:00", EndTime: "18:00", IsActive: true},
			},
		},
		mirror:    &recordingMirror{},
		publisher: &recordingPublisher{},
	}

	f.store.put(&domain.Reservation{
		ID: 1, AccountID: 1, TeamMemberID: 3, ClientUserID: ptr.Ptr(int64(500)),
		Status: domain.ReservationConfirmed, StartsAt: at(10, 0), EndsAt: at(11, 0),
		DurationMinutes: 60, Timezone: "UTC", Source: domain.SourceClient,
	})
	f.store.put(&domain.Reservation{
		ID: 2, AccountID: 1, TeamMemberID: 3,
		Status: domain.ReservationConfirmed, StartsAt: at(13, 0), EndsAt: at(14, 0),
		DurationMinutes: 60, Timezone: "UTC", Source: domain.SourceStaff,
	})

	resolver := availability.NewService(f.store, f.store, f.store, f.store, logger.NewNop()).
		WithTimeProvider(fixedTime{now: now})

	f.uc = NewUseCase(f.store, f.store, resolver, f.mirror, f.publisher, &serialTx{}, nil, logger.NewNop()).
		WithTimeProvider(fixedTime{now: now})
	return f
}

func requireField(t *testing.T, err error, field string, target error) {
	t.Helper()
	verr, ok := domain.AsValidationError(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Equal(t, field, verr.Field)
	assert.ErrorIs(t, err, target)
}

func TestExecute_MovesWithinSameMember(t *testing.T) {
	f := newFixture()

	// смещение на 30 минут пересекается только с самой собой
	resp, err := f.uc.Execute(context.Background(), &Request{
		AccountID: 1, ReservationID: 1, Actor: staff, StartsAt: "2025-03-03T10:30",
	})
	require.NoError(t, err)

	r := f.store.get(1)
	assert.Equal(t, domain.ReservationRescheduled, r.Status)
	assert.Equal(t, at(10, 30), r.StartsAt)
	assert.Equal(t, at(11, 30), r.EndsAt, "duration is preserved")
	assert.Equal(t, at(10, 0), resp.PreviousStartsAt)

	require.Len(t, f.mirror.mirrored, 1)
	assert.Equal(t, at(10, 30), f.mirror.mirrored[0].StartsAt)

	require.Len(t, f.publisher.events, 1)
	event := f.publisher.events[0]
	assert.Equal(t, domain.EventReservationRescheduled, event.Name)
	assert.Equal(t, at(10, 0).Format(time.RFC3339), event.Payload["previous_starts_at"])
}

func TestExecute_Conflicts(t *testing.T) {
	ctx := context.Background()

	t.Run("Overlaps another reservation", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Execute(ctx, &Request{AccountID: 1, ReservationID: 1, Actor: staff, StartsAt: "2025-03-03T12:30"})
		requireField(t, err, "starts_at", domain.ErrSlotNotAvailable)
		assert.Equal(t, at(10, 0), f.store.get(1).StartsAt)
	})

	t.Run("Buffer of the new member applies", func(t *testing.T) {
		f := newFixture()
		f.store.overrides = []*domain.SettingsOverride{{AccountID: 1, BufferMinutes: ptr.Ptr(30)}}
		_, err := f.uc.Execute(ctx, &Request{AccountID: 1, ReservationID: 1, Actor: staff, StartsAt: "2025-03-03T14:15"})
		requireField(t, err, "starts_at", domain.ErrSlotNotAvailable)

		_, err = f.uc.Execute(ctx, &Request{AccountID: 1, ReservationID: 1, Actor: staff, StartsAt: "2025-03-03T14:30"})
		require.NoError(t, err)
		assert.Equal(t, 30, f.store.get(1).BufferMinutes)
	})

	t.Run("Outside working hours", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Execute(ctx, &Request{AccountID: 1, ReservationID: 1, Actor: staff, StartsAt: "2025-03-03T08:00"})
		requireField(t, err, "starts_at", domain.ErrOutsideAvailability)
	})
}

func TestExecute_ChangeMember(t *testing.T) {
	ctx := context.Background()

	t.Run("Moves to another member", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Execute(ctx, &Request{
			AccountID: 1, ReservationID: 1, Actor: staff, TeamMemberID: ptr.Ptr(int64(4)),
			StartsAt: "2025-03-03T13:00",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(4), f.store.get(1).TeamMemberID)
	})

	t.Run("Outside the new member's hours", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Execute(ctx, &Request{
			AccountID: 1, ReservationID: 1, Actor: staff, TeamMemberID: ptr.Ptr(int64(4)),
			StartsAt: "2025-03-03T10:00",
		})
		requireField(t, err, "starts_at", domain.ErrOutsideAvailability)
	})

	t.Run("Inactive member", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Execute(ctx, &Request{
			AccountID: 1, ReservationID: 1, Actor: staff, TeamMemberID: ptr.Ptr(int64(5)),
			StartsAt: "2025-03-03T10:00",
		})
		requireField(t, err, "team_member_id", domain.ErrInvalidTeamMember)
	})
}

func TestExecute_Client(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner reschedules", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Execute(ctx, &Request{AccountID: 1, ReservationID: 1, Actor: owner, StartsAt: "2025-03-03T15:00"})
		require.NoError(t, err)
	})

	t.Run("Someone else's reservation", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Execute(ctx, &Request{AccountID: 1, ReservationID: 1, Actor: intruder, StartsAt: "2025-03-03T15:00"})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("Reschedule disabled", func(t *testing.T) {
		f := newFixture()
		f.store.overrides = []*domain.SettingsOverride{{AccountID: 1, ClientCanReschedule: ptr.Ptr(false)}}
		_, err := f.uc.Execute(ctx, &Request{AccountID: 1, ReservationID: 1, Actor: owner, StartsAt: "2025-03-03T15:00"})
		requireField(t, err, "reservation", domain.ErrClientRescheduleDisabled)
	})

	t.Run("Past cancellation cutoff", func(t *testing.T) {
		f := newFixture()
		// до начала 22 часа, порог 24 часа
		f.store.overrides = []*domain.SettingsOverride{{AccountID: 1, CancellationCutoffHours: ptr.Ptr(24)}}
		_, err := f.uc.Execute(ctx, &Request{AccountID: 1, ReservationID: 1, Actor: owner, StartsAt: "2025-03-03T15:00"})
		requireField(t, err, "starts_at", domain.ErrModificationClosed)

		_, err = f.uc.Execute(ctx, &Request{AccountID: 1, ReservationID: 1, Actor: staff, StartsAt: "2025-03-03T15:00"})
		assert.NoError(t, err)
	})

	t.Run("Max advance", func(t *testing.T) {
		f := newFixture()
		f.store.overrides = []*domain.SettingsOverride{{AccountID: 1, MaxAdvanceDays: ptr.Ptr(7)}}
		_, err := f.uc.Execute(ctx, &Request{AccountID: 1, ReservationID: 1, Actor: owner, StartsAt: "2025-03-10T15:00"})
		requireField(t, err, "starts_at", domain.ErrTooFarInFuture)
	})

	t.Run("Zero max advance means no limit", func(t *testing.T) {
		f := newFixture()
		f.store.overrides = []*domain.SettingsOverride{{AccountID: 1, MaxAdvanceDays: ptr.Ptr(0)}}
		_, err := f.uc.Execute(ctx, &Request{AccountID: 1, ReservationID: 1, Actor: owner, StartsAt: "2025-03-10T15:00"})
		assert.NoError(t, err)
	})
}

func TestExecute_NotActiveOrMissing(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	cancelled := f.store.get(2)
	cancelled.Status = domain.ReservationCancelled
	f.store.put(cancelled)

	_, err := f.uc.Execute(ctx, &Request{AccountID: 1, ReservationID: 2, Actor: staff, StartsAt: "2025-03-03T15:00"})
	requireField(t, err, "status", domain.ErrReservationNotActive)

	_, err = f.uc.Execute(ctx, &Request{AccountID: 1, ReservationID: 99, Actor: staff, StartsAt: "2025-03-03T15:00"})
	assert.ErrorIs(t, err, ErrReservationNotFound)

	f.store.account = &domain.Account{ID: 2, Timezone: "UTC"}
	_, err = f.uc.Execute(ctx, &Request{AccountID: 2, ReservationID: 1, Actor: staff, StartsAt: "2025-03-03T15:00"})
	assert.ErrorIs(t, err, ErrReservationNotFound)
}
