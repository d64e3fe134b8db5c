package queue

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/queue/models"
)

// statusWeight порядок статусов внутри дорожки
var statusWeight = map[domain.QueueStatus]int{
	domain.QueueInService:  0,
	domain.QueueCalled:     1,
	domain.QueuePreCalled:  2,
	domain.QueueCheckedIn:  3,
	domain.QueueSkipped:    4,
	domain.QueueNotArrived: 5,
}

// metrics позиция и ETA элемента
type metrics struct {
	Position   *int
	EtaMinutes *int
}

func (m metrics) equal(item *domain.QueueItem) bool {
	return equalIntPtr(m.Position, item.Position) && equalIntPtr(m.EtaMinutes, item.EtaMinutes)
}

// sortItems упорядочивает элементы: вес статуса, затем (в режиме приоритета записей)
// записи раньше талонов среди ожидающих с равным весом, затем AnchorAt, затем ID
func sortItems(items []*domain.QueueItem, mode domain.DispatchMode) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]

		wa, wb := weightOf(a.Status), weightOf(b.Status)
		if wa != wb {
			return wa < wb
		}

		if mode == domain.DispatchFIFOAppointmentPriority && a.Status.IsWaiting() && a.IsAppointment() != b.IsAppointment() {
			return a.IsAppointment()
		}

		if !a.AnchorAt.Equal(b.AnchorAt) {
			return a.AnchorAt.Before(b.AnchorAt)
		}

		return a.ID < b.ID
	})
}

func weightOf(status domain.QueueStatus) int {
	if w, ok := statusWeight[status]; ok {
		return w
	}
	return len(statusWeight)
}

// laneKey ключ дорожки, 0 - нераспределенная
func laneKey(item *domain.QueueItem) int64 {
	if item.TeamMemberID == nil {
		return 0
	}
	return *item.TeamMemberID
}

// computeMetrics раскладывает упорядоченные элементы по дорожкам и считает позиции и ETA.
//
// В каждой дорожке часы стартуют с 0. Элемент in_service прибавляет свою длительность.
// Ожидающий элемент получает позицию среди ожидающих дорожки. Если клиент на месте
// (checked_in, pre_called, called), он получает ETA по текущим часам, и часы
// сдвигаются на max(длительность, 5). Остальные ожидающие получают ETA nil.
func computeMetrics(sorted []*domain.QueueItem) (map[int64]metrics, map[int64][]*domain.QueueItem) {
	result := make(map[int64]metrics, len(sorted))
	lanes := make(map[int64][]*domain.QueueItem)
	clocks := make(map[int64]int)
	positions := make(map[int64]int)

	for _, item := range sorted {
		key := laneKey(item)
		lanes[key] = append(lanes[key], item)

		if item.Status == domain.QueueInService {
			clocks[key] += item.ServiceMinutes()
			result[item.ID] = metrics{}
			continue
		}

		positions[key]++
		position := positions[key]
		m := metrics{Position: &position}

		if item.Status.IsCallable() {
			eta := clocks[key]
			m.EtaMinutes = &eta
			clocks[key] += item.ServiceMinutes()
		}

		result[item.ID] = m
	}

	return result, lanes
}

// memberAvailability свободное время сотрудника до следующей записи
type memberAvailability struct {
	member          *domain.TeamMember
	nextAppointment *time.Time
}

// recommendMember первый по ID активный сотрудник, у которого до следующей записи
// помещается длительность элемента плюс буфер. В режиме skill_based сотрудник
// также должен оказывать услугу элемента.
func recommendMember(item *domain.QueueItem, members []memberAvailability, mode domain.DispatchMode, bufferMinutes int, now time.Time) *int64 {
	need := time.Duration(item.ServiceMinutes()+bufferMinutes) * time.Minute

	for _, m := range members {
		if !m.member.IsActive {
			continue
		}
		if mode == domain.DispatchSkillBased && !m.member.OffersService(item.ServiceID) {
			continue
		}
		if m.nextAppointment != nil && m.nextAppointment.Sub(now) < need {
			continue
		}
		id := m.member.ID
		return &id
	}

	return nil
}

// buildAvailability ближайшая незакрытая запись каждого сотрудника, начинающаяся не раньше now
func buildAvailability(members []*domain.TeamMember, items []*domain.QueueItem, now time.Time) []memberAvailability {
	next := make(map[int64]time.Time)
	for _, item := range items {
		if !item.IsAppointment() || item.TeamMemberID == nil || item.IsTerminal() || item.AnchorAt.Before(now) {
			continue
		}
		current, ok := next[*item.TeamMemberID]
		if !ok || item.AnchorAt.Before(current) {
			next[*item.TeamMemberID] = item.AnchorAt
		}
	}

	sorted := make([]*domain.TeamMember, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	result := make([]memberAvailability, 0, len(sorted))
	for _, m := range sorted {
		a := memberAvailability{member: m}
		if t, ok := next[m.ID]; ok {
			a.nextAppointment = &t
		}
		result = append(result, a)
	}
	return result
}

// buildLanes дорожки снимка: сотрудники по возрастанию ID, нераспределенная последней
func buildLanes(lanes map[int64][]*domain.QueueItem) []*models.Lane {
	keys := make([]int64, 0, len(lanes))
	for key := range lanes {
		if key != 0 {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	if _, ok := lanes[0]; ok {
		keys = append(keys, 0)
	}

	result := make([]*models.Lane, 0, len(keys))
	for _, key := range keys {
		lane := &models.Lane{Items: make([]*models.ItemView, 0, len(lanes[key]))}
		if key != 0 {
			id := key
			lane.TeamMemberID = &id
		}
		for _, item := range lanes[key] {
			lane.Items = append(lane.Items, &models.ItemView{Item: item})
		}
		result = append(result, lane)
	}
	return result
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
