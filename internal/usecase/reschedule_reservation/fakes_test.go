package reschedule_reservation

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	accountRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/account"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	settingsRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/settings"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type memStore struct {
	mu           sync.Mutex
	account      *domain.Account
	members      []*domain.TeamMember
	weekly       []*domain.WeeklyAvailability
	overrides    []*domain.SettingsOverride
	reservations map[int64]*domain.Reservation
}

func (m *memStore) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	if m.account == nil || m.account.ID != id {
		return nil, accountRepo.ErrAccountNotFound
	}
	return m.account, nil
}

func (m *memStore) GetTeamMember(_ context.Context, _ int64, id int64) (*domain.TeamMember, error) {
	for _, member := range m.members {
		if member.ID == id {
			return member, nil
		}
	}
	return nil, accountRepo.ErrTeamMemberNotFound
}

func (m *memStore) LockTeamMember(ctx context.Context, accountID, id int64) (*domain.TeamMember, error) {
	return m.GetTeamMember(ctx, accountID, id)
}

func (m *memStore) ListActiveTeamMembers(_ context.Context, _ int64) ([]*domain.TeamMember, error) {
	return m.members, nil
}

func (m *memStore) GetService(_ context.Context, _ int64, _ int64) (*domain.Service, error) {
	return nil, accountRepo.ErrServiceNotFound
}

func (m *memStore) ListWeekly(_ context.Context, _ int64, _ []int64) ([]*domain.WeeklyAvailability, error) {
	return m.weekly, nil
}

func (m *memStore) ListExceptions(_ context.Context, _ int64, _ []int64, _, _ time.Time) ([]*domain.AvailabilityException, error) {
	return nil, nil
}

func (m *memStore) Get(_ context.Context, accountID int64, teamMemberID *int64) (*domain.SettingsOverride, error) {
	for _, o := range m.overrides {
		if o.AccountID != accountID {
			continue
		}
		if o.TeamMemberID == nil && teamMemberID == nil {
			return o, nil
		}
		if o.TeamMemberID != nil && teamMemberID != nil && *o.TeamMemberID == *teamMemberID {
			return o, nil
		}
	}
	return nil, settingsRepo.ErrSettingsNotFound
}

func (m *memStore) put(r *domain.Reservation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reservations == nil {
		m.reservations = make(map[int64]*domain.Reservation)
	}
	c := *r
	m.reservations[r.ID] = &c
}

func (m *memStore) get(id int64) *domain.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reservations[id]; ok {
		c := *r
		return &c
	}
	return nil
}

func (m *memStore) LockByID(_ context.Context, id int64) (*domain.Reservation, error) {
	if r := m.get(id); r != nil {
		return r, nil
	}
	return nil, reservationRepo.ErrReservationNotFound
}

func (m *memStore) Update(_ context.Context, r *domain.Reservation) error {
	if m.get(r.ID) == nil {
		return reservationRepo.ErrReservationNotFound
	}
	m.put(r)
	return nil
}

func (m *memStore) ListActiveForMembers(_ context.Context, ids []int64, from, to time.Time) ([]*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*domain.Reservation, 0)
	for _, r := range m.reservations {
		for _, id := range ids {
			if r.TeamMemberID == id && r.IsActive() && r.StartsAt.Before(to) && r.EndsAt.After(from) {
				c := *r
				result = append(result, &c)
			}
		}
	}
	return result, nil
}

type serialTx struct {
	mu sync.Mutex
}

func (s *serialTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx)
}

type recordingMirror struct {
	mirrored []*domain.Reservation
}

func (r *recordingMirror) MirrorReservation(_ context.Context, _ *domain.Account, reservation *domain.Reservation) error {
	c := *reservation
	r.mirrored = append(r.mirrored, &c)
	return nil
}

type recordingPublisher struct {
	events []domain.NotificationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.NotificationEvent) error {
	p.events = append(p.events, event)
	return nil
}
