package queue

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	accountRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/account"
	queueRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/queue"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

type fixedTime struct {
	now time.Time
}

func (f *fixedTime) Now() time.Time { return f.now }

// memQueue хранит копии элементов, как это делает БД
type memQueue struct {
	mu            sync.Mutex
	nextID        int64
	items         map[int64]*domain.QueueItem
	checkIns      []*domain.CheckIn
	metricUpdates int
	updates       int
}

func newMemQueue() *memQueue {
	return &memQueue{nextID: 1, items: make(map[int64]*domain.QueueItem)}
}

func clone(item *domain.QueueItem) *domain.QueueItem {
	c := *item
	if item.Metadata != nil {
		c.Metadata = make(map[string]string, len(item.Metadata))
		for k, v := range item.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func (m *memQueue) put(item *domain.QueueItem) *domain.QueueItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.ID == 0 {
		item.ID = m.nextID
	}
	if item.ID >= m.nextID {
		m.nextID = item.ID + 1
	}
	m.items[item.ID] = clone(item)
	return item
}

func (m *memQueue) get(id int64) *domain.QueueItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok {
		return clone(item)
	}
	return nil
}

func (m *memQueue) Create(_ context.Context, item *domain.QueueItem) (*domain.QueueItem, error) {
	item.CreatedAt = time.Now().UTC()
	return m.put(item), nil
}

func (m *memQueue) LockByID(_ context.Context, id int64) (*domain.QueueItem, error) {
	if item := m.get(id); item != nil {
		return item, nil
	}
	return nil, queueRepo.ErrQueueItemNotFound
}

func (m *memQueue) GetByReservationID(_ context.Context, reservationID int64) (*domain.QueueItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ReservationID != nil && *item.ReservationID == reservationID {
			return clone(item), nil
		}
	}
	return nil, queueRepo.ErrQueueItemNotFound
}

func (m *memQueue) ListActive(_ context.Context, accountID int64) ([]*domain.QueueItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.QueueItem, 0)
	for _, item := range m.items {
		if item.AccountID == accountID && !item.IsTerminal() {
			result = append(result, clone(item))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *memQueue) ListByReservationIDs(_ context.Context, ids []int64) (map[int64]*domain.QueueItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[int64]*domain.QueueItem)
	for _, item := range m.items {
		if item.ReservationID == nil {
			continue
		}
		for _, id := range ids {
			if *item.ReservationID == id {
				result[id] = clone(item)
			}
		}
	}
	return result, nil
}

func (m *memQueue) ListActiveTicketsForClient(_ context.Context, accountID int64, client domain.ClientIdentity) ([]*domain.QueueItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.QueueItem, 0)
	for _, item := range m.items {
		if item.AccountID == accountID && item.ItemType == domain.ItemTicket && !item.IsTerminal() && item.BelongsTo(client) {
			result = append(result, clone(item))
		}
	}
	return result, nil
}

func (m *memQueue) CountTicketsCreatedBetween(_ context.Context, accountID int64, _, _ time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, item := range m.items {
		if item.AccountID == accountID && item.ItemType == domain.ItemTicket {
			count++
		}
	}
	return count, nil
}

func (m *memQueue) Update(_ context.Context, item *domain.QueueItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return queueRepo.ErrQueueItemNotFound
	}
	m.items[item.ID] = clone(item)
	m.updates++
	return nil
}

func (m *memQueue) UpdateMetrics(_ context.Context, id int64, position, eta *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return queueRepo.ErrQueueItemNotFound
	}
	item.Position = position
	item.EtaMinutes = eta
	m.metricUpdates++
	return nil
}

func (m *memQueue) InsertCheckIn(_ context.Context, checkIn *domain.CheckIn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	checkIn.ID = int64(len(m.checkIns) + 1)
	m.checkIns = append(m.checkIns, checkIn)
	return nil
}

type fakeAccounts struct {
	account *domain.Account
	members []*domain.TeamMember
}

func (f *fakeAccounts) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	if f.account == nil || f.account.ID != id {
		return nil, accountRepo.ErrAccountNotFound
	}
	a := *f.account
	return &a, nil
}

func (f *fakeAccounts) LockByID(ctx context.Context, id int64) (*domain.Account, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeAccounts) GetTeamMember(_ context.Context, accountID, teamMemberID int64) (*domain.TeamMember, error) {
	for _, m := range f.members {
		if m.AccountID == accountID && m.ID == teamMemberID {
			return m, nil
		}
	}
	return nil, accountRepo.ErrTeamMemberNotFound
}

func (f *fakeAccounts) ListActiveTeamMembers(_ context.Context, accountID int64) ([]*domain.TeamMember, error) {
	result := make([]*domain.TeamMember, 0)
	for _, m := range f.members {
		if m.AccountID == accountID && m.IsActive {
			result = append(result, m)
		}
	}
	return result, nil
}

type fakeReservations struct {
	reservations []*domain.Reservation
	statuses     map[int64]domain.ReservationStatus
}

func newFakeReservations(reservations ...*domain.Reservation) *fakeReservations {
	return &fakeReservations{reservations: reservations, statuses: make(map[int64]domain.ReservationStatus)}
}

func (f *fakeReservations) ListForAccount(_ context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	result := make([]*domain.Reservation, 0)
	for _, r := range f.reservations {
		if r.AccountID != filter.AccountID {
			continue
		}
		if filter.From != nil && r.StartsAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !r.StartsAt.Before(*filter.To) {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

func (f *fakeReservations) ListActiveForClient(_ context.Context, accountID, clientUserID int64) ([]*domain.Reservation, error) {
	result := make([]*domain.Reservation, 0)
	for _, r := range f.reservations {
		if r.AccountID == accountID && r.IsActive() && r.IsOwnedBy(clientUserID) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeReservations) UpdateStatus(_ context.Context, id int64, status domain.ReservationStatus) error {
	f.statuses[id] = status
	return nil
}

func (f *fakeReservations) Cancel(_ context.Context, id int64, _ string, _ time.Time) error {
	f.statuses[id] = domain.ReservationCancelled
	return nil
}

type fakeResolver struct {
	duration int
	settings domain.Settings
}

func (f *fakeResolver) DefaultDurationMinutes(context.Context, int64, *int64) (int, error) {
	return f.duration, nil
}

func (f *fakeResolver) ResolveSettings(context.Context, int64, *int64) (domain.Settings, error) {
	return f.settings, nil
}

type fakeGuard struct {
	err error
}

func (f *fakeGuard) EnsureCanCreateTicket(context.Context, *domain.Account, domain.ClientIdentity, time.Time) error {
	return f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.NotificationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.NotificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) named(name domain.EventName) []domain.NotificationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]domain.NotificationEvent, 0)
	for _, e := range p.events {
		if e.Name == name {
			result = append(result, e)
		}
	}
	return result
}

// serialTx сериализует транзакции, как блокировка строки в БД
type serialTx struct {
	mu sync.Mutex
}

func (t *serialTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

type countingMetrics struct {
	transitions map[string]int
	expired     map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{transitions: map[string]int{}, expired: map[string]int{}}
}

func (m *countingMetrics) IncQueueTransition(action string)   { m.transitions[action]++ }
func (m *countingMetrics) IncQueueGraceExpired(status string) { m.expired[status]++ }

var errPublish = errors.New("broker down")

type fixture struct {
	queue        *memQueue
	accounts     *fakeAccounts
	reservations *fakeReservations
	publisher    *recordingPublisher
	metrics      *countingMetrics
	clock        *fixedTime
	svc          *Service
}

func newFixture(now time.Time, reservations ...*domain.Reservation) *fixture {
	f := &fixture{
		queue: newMemQueue(),
		accounts: &fakeAccounts{
			account: &domain.Account{
				ID:             1,
				Timezone:       "UTC",
				BusinessPreset: domain.PresetBarber,
				Queue:          domain.QueueSettings{Enabled: true, GraceMinutes: 5, DispatchMode: domain.DispatchFIFO},
			},
			members: []*domain.TeamMember{
				{ID: 10, AccountID: 1, IsActive: true, ServiceIDs: []int64{100}},
				{ID: 20, AccountID: 1, IsActive: true, ServiceIDs: []int64{200}},
			},
		},
		reservations: newFakeReservations(reservations...),
		publisher:    &recordingPublisher{},
		metrics:      newCountingMetrics(),
		clock:        &fixedTime{now: now},
	}

	f.svc = NewService(
		f.queue,
		f.accounts,
		f.reservations,
		&fakeResolver{duration: 30, settings: domain.DefaultSettings()},
		&fakeGuard{},
		f.publisher,
		&serialTx{},
		f.metrics,
		logger.NewNop(),
	).WithTimeProvider(f.clock)

	return f
}
