package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	accountRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/account"
	"github.com/m04kA/SMC-ReservationService/internal/service/availability/models"
)

// GenerateSlots свободные слоты длительностью DurationMinutes в диапазоне [RangeStart, RangeEnd).
//
// Для каждого сотрудника и каждой локальной даты диапазона интервалы обходятся с шагом
// slot_interval_minutes, выровненным от локальной полуночи. Кандидат остается, если он:
//   - целиком лежит в рабочем интервале и в запрошенном диапазоне;
//   - не раньше now + min notice и не позже now + max advance days;
//   - не пересекается с активными бронями, расширенными на max(буферы).
func (s *Service) GenerateSlots(ctx context.Context, req *models.GenerateSlotsRequest) (*models.SlotsResult, error) {
	if !req.RangeEnd.After(req.RangeStart) {
		return nil, domain.NewValidationError("range", ErrInvalidRange)
	}
	if req.RangeEnd.Sub(req.RangeStart) > time.Duration(domain.MaxSlotsRangeDays)*24*time.Hour {
		return nil, domain.NewValidationError("range", fmt.Errorf("%w: at most %d days", ErrInvalidRange, domain.MaxSlotsRangeDays))
	}
	if req.DurationMinutes <= 0 || req.DurationMinutes > domain.MaxDurationMinutes {
		return nil, domain.NewValidationError("duration_minutes", domain.ErrOutOfRange)
	}

	account, err := s.accountRepo.GetByID(ctx, req.AccountID)
	if err != nil {
		if errors.Is(err, accountRepo.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		s.logger.Error("GenerateSlots: failed to get account id=%d: %v", req.AccountID, err)
		return nil, fmt.Errorf("%w: GenerateSlots - get account: %v", ErrInternal, err)
	}

	loc, err := account.Location()
	if err != nil {
		s.logger.Error("GenerateSlots: account id=%d has invalid timezone: %v", account.ID, err)
		return nil, fmt.Errorf("%w: GenerateSlots - %v", ErrInternal, err)
	}

	members, err := s.membersInScope(ctx, req.AccountID, req.TeamMemberID)
	if err != nil {
		return nil, err
	}

	result := &models.SlotsResult{Timezone: loc.String(), Slots: []domain.Slot{}}
	if len(members) == 0 {
		return result, nil
	}

	ids := make([]int64, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}

	dates := localDates(req.RangeStart, req.RangeEnd, loc)

	weekly, err := s.scheduleRepo.ListWeekly(ctx, req.AccountID, ids)
	if err != nil {
		s.logger.Error("GenerateSlots: failed to list weekly availability: %v", err)
		return nil, fmt.Errorf("%w: GenerateSlots - list weekly: %v", ErrInternal, err)
	}

	exceptions, err := s.scheduleRepo.ListExceptions(ctx, req.AccountID, ids, dates[0], dates[len(dates)-1])
	if err != nil {
		s.logger.Error("GenerateSlots: failed to list exceptions: %v", err)
		return nil, fmt.Errorf("%w: GenerateSlots - list exceptions: %v", ErrInternal, err)
	}

	window := time.Duration(domain.MaxBufferMinutes) * time.Minute
	reservations, err := s.reservationRepo.ListActiveForMembers(ctx, ids, req.RangeStart.Add(-window), req.RangeEnd.Add(window))
	if err != nil {
		s.logger.Error("GenerateSlots: failed to list reservations: %v", err)
		return nil, fmt.Errorf("%w: GenerateSlots - list reservations: %v", ErrInternal, err)
	}

	byMember := make(map[int64][]*domain.Reservation, len(members))
	for _, r := range reservations {
		byMember[r.TeamMemberID] = append(byMember[r.TeamMemberID], r)
	}

	now := s.timeProvider.Now().UTC()
	duration := time.Duration(req.DurationMinutes) * time.Minute

	for _, member := range members {
		memberID := member.ID
		settings, err := s.ResolveSettings(ctx, req.AccountID, &memberID)
		if err != nil {
			return nil, err
		}

		earliest := now.Add(time.Duration(settings.MinNoticeMinutes) * time.Minute)
		var latest *time.Time
		if limit, ok := settings.LatestStart(now); ok {
			latest = &limit
		}

		for _, day := range dates {
			for _, working := range BuildDayIntervals(day, memberID, weekly, exceptions, loc) {
				for _, start := range alignedStarts(day, working.Start, working.End, settings.SlotIntervalMinutes, duration) {
					end := start.Add(duration)

					if start.Before(req.RangeStart) || end.After(req.RangeEnd) {
						continue
					}
					if start.Before(earliest) || (latest != nil && start.After(*latest)) {
						continue
					}
					if conflictsAny(byMember[memberID], start, end, settings.BufferMinutes) {
						continue
					}

					result.Slots = append(result.Slots, domain.Slot{
						TeamMemberID: memberID,
						StartsAt:     start.UTC(),
						EndsAt:       end.UTC(),
					})
				}
			}
		}
	}

	sort.SliceStable(result.Slots, func(i, j int) bool {
		a, b := result.Slots[i], result.Slots[j]
		if a.StartsAt.Equal(b.StartsAt) {
			return a.TeamMemberID < b.TeamMemberID
		}
		return a.StartsAt.Before(b.StartsAt)
	})

	s.logger.Info("GenerateSlots: account=%d, members=%d, days=%d, slots=%d",
		req.AccountID, len(members), len(dates), len(result.Slots))

	return result, nil
}

func (s *Service) membersInScope(ctx context.Context, accountID int64, teamMemberID *int64) ([]*domain.TeamMember, error) {
	if teamMemberID == nil {
		members, err := s.accountRepo.ListActiveTeamMembers(ctx, accountID)
		if err != nil {
			s.logger.Error("GenerateSlots: failed to list team members for account=%d: %v", accountID, err)
			return nil, fmt.Errorf("%w: GenerateSlots - list team members: %v", ErrInternal, err)
		}
		return members, nil
	}

	member, err := s.accountRepo.GetTeamMember(ctx, accountID, *teamMemberID)
	if err != nil {
		if errors.Is(err, accountRepo.ErrTeamMemberNotFound) {
			return nil, domain.NewValidationError("team_member_id", domain.ErrInvalidTeamMember)
		}
		s.logger.Error("GenerateSlots: failed to get team member id=%d: %v", *teamMemberID, err)
		return nil, fmt.Errorf("%w: GenerateSlots - get team member: %v", ErrInternal, err)
	}
	if !member.IsActive {
		return nil, domain.NewValidationError("team_member_id", domain.ErrInvalidTeamMember)
	}

	return []*domain.TeamMember{member}, nil
}

// alignedStarts начала слотов в [from, to) по сетке локального времени: минута
// от полуночи day кратна step. Несуществующее при переходе на летнее время время
// пропускается, поэтому сетка не сдвигается после перевода часов.
func alignedStarts(day, from, to time.Time, step int, duration time.Duration) []time.Time {
	first := wallMinute(day, from)
	if from.Second() != 0 || from.Nanosecond() != 0 {
		first++
	}
	if first < 0 {
		first = 0
	}

	starts := make([]time.Time, 0)
	for m := (first + step - 1) / step * step; ; m += step {
		start := atWallMinute(day, m)
		if wallMinute(day, start) != m {
			continue
		}
		if start.Add(duration).After(to) {
			break
		}
		if start.Before(from) {
			continue
		}
		starts = append(starts, start)
	}
	return starts
}

// wallMinute минута по местным часам, отсчитанная от полуночи day
func wallMinute(day, t time.Time) int {
	t = t.In(day.Location())
	y, mo, d := t.Date()
	dy, dmo, dd := day.Date()
	days := int(time.Date(y, mo, d, 0, 0, 0, 0, time.UTC).Sub(time.Date(dy, dmo, dd, 0, 0, 0, 0, time.UTC)) / (24 * time.Hour))
	return days*24*60 + t.Hour()*60 + t.Minute()
}

func atWallMinute(day time.Time, minute int) time.Time {
	y, mo, d := day.Date()
	return time.Date(y, mo, d, 0, minute, 0, 0, day.Location())
}

func conflictsAny(reservations []*domain.Reservation, start, end time.Time, buffer int) bool {
	for _, r := range reservations {
		if r.IsActive() && r.ConflictsWith(start, end, buffer) {
			return true
		}
	}
	return false
}
