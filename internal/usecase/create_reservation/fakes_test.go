package create_reservation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	accountRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/account"
	settingsRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/settings"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

// memStore аккаунт, расписание, настройки и брони в памяти.
// Закрывает все репозитории, нужные usecase и сервису доступности.
type memStore struct {
	mu           sync.Mutex
	account      *domain.Account
	members      []*domain.TeamMember
	services     map[int64]*domain.Service
	weekly       []*domain.WeeklyAvailability
	exceptions   []*domain.AvailabilityException
	overrides    []*domain.SettingsOverride
	reservations []*domain.Reservation
	nextID       int64
	steps        []string // порядок блокировок и проверок внутри транзакции
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

func (m *memStore) LockByID(ctx context.Context, id int64) (*domain.Account, error) {
	m.record("lock_account")
	return m.GetByID(ctx, id)
}

func (m *memStore) LockTeamMember(ctx context.Context, accountID, id int64) (*domain.TeamMember, error) {
	m.record("lock_member")
	return m.GetTeamMember(ctx, accountID, id)
}

func (m *memStore) record(step string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, step)
}

func (m *memStore) ListActiveTeamMembers(_ context.Context, _ int64) ([]*domain.TeamMember, error) {
	result := make([]*domain.TeamMember, 0)
	for _, member := range m.members {
		if member.IsActive {
			result = append(result, member)
		}
	}
	return result, nil
}

func (m *memStore) GetService(_ context.Context, _ int64, id int64) (*domain.Service, error) {
	if s, ok := m.services[id]; ok {
		return s, nil
	}
	return nil, accountRepo.ErrServiceNotFound
}

func (m *memStore) ListWeekly(_ context.Context, _ int64, _ []int64) ([]*domain.WeeklyAvailability, error) {
	return m.weekly, nil
}

func (m *memStore) ListExceptions(_ context.Context, _ int64, _ []int64, _, _ time.Time) ([]*domain.AvailabilityException, error) {
	return m.exceptions, nil
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

func (m *memStore) Create(_ context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	reservation.ID = m.nextID
	c := *reservation
	m.reservations = append(m.reservations, &c)
	return reservation, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reservations)
}

// serialTx сериализует транзакции, как блокировка строки сотрудника
type serialTx struct {
	mu sync.Mutex
}

func (s *serialTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx)
}

type fakeGuard struct {
	store *memStore
	err   error
}

func (f *fakeGuard) EnsureCanCreateReservation(context.Context, *domain.Account, domain.ClientIdentity) error {
	if f.store != nil {
		f.store.record("guard")
	}
	return f.err
}

type recordingMirror struct {
	mirrored []int64
	err      error
}

func (r *recordingMirror) MirrorReservation(_ context.Context, _ *domain.Account, reservation *domain.Reservation) error {
	if r.err != nil {
		return r.err
	}
	r.mirrored = append(r.mirrored, reservation.ID)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.NotificationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.NotificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *countingMetrics) IncReservation(operation, source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[operation+"/"+source]++
}

var errPublish = errors.New("broker unavailable")
