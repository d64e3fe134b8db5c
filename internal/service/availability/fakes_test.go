package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	accountRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/account"
	settingsRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/settings"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fakeAccounts struct {
	account  *domain.Account
	members  []*domain.TeamMember
	services map[int64]*domain.Service
}

func (f *fakeAccounts) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	if f.account == nil || f.account.ID != id {
		return nil, accountRepo.ErrAccountNotFound
	}
	return f.account, nil
}

func (f *fakeAccounts) GetTeamMember(_ context.Context, _ int64, id int64) (*domain.TeamMember, error) {
	for _, m := range f.members {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, accountRepo.ErrTeamMemberNotFound
}

func (f *fakeAccounts) ListActiveTeamMembers(_ context.Context, _ int64) ([]*domain.TeamMember, error) {
	result := make([]*domain.TeamMember, 0)
	for _, m := range f.members {
		if m.IsActive {
			result = append(result, m)
		}
	}
	return result, nil
}

func (f *fakeAccounts) GetService(_ context.Context, _ int64, id int64) (*domain.Service, error) {
	if s, ok := f.services[id]; ok {
		return s, nil
	}
	return nil, accountRepo.ErrServiceNotFound
}

type fakeSchedule struct {
	weekly     []*domain.WeeklyAvailability
	exceptions []*domain.AvailabilityException
}

func (f *fakeSchedule) ListWeekly(_ context.Context, _ int64, _ []int64) ([]*domain.WeeklyAvailability, error) {
	return f.weekly, nil
}

func (f *fakeSchedule) ListExceptions(_ context.Context, _ int64, _ []int64, _, _ time.Time) ([]*domain.AvailabilityException, error) {
	return f.exceptions, nil
}

type fakeReservations struct {
	items []*domain.Reservation
}

func (f *fakeReservations) ListActiveForMembers(_ context.Context, ids []int64, from, to time.Time) ([]*domain.Reservation, error) {
	result := make([]*domain.Reservation, 0)
	for _, r := range f.items {
		for _, id := range ids {
			if r.TeamMemberID == id && r.IsActive() && r.StartsAt.Before(to) && r.EndsAt.After(from) {
				result = append(result, r)
			}
		}
	}
	return result, nil
}

type fakeSettings struct {
	overrides []*domain.SettingsOverride
}

func (f *fakeSettings) Get(_ context.Context, accountID int64, teamMemberID *int64) (*domain.SettingsOverride, error) {
	for _, o := range f.overrides {
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
