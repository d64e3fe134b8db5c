package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	accountRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/account"
	settingsRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/settings"
	"github.com/m04kA/SMC-ReservationService/pkg/interval"
)

// Service вычисляет доступность сотрудников: итоговые настройки,
// рабочие интервалы, свободные слоты и допуск конкретного времени к записи
type Service struct {
	accountRepo     AccountRepository
	scheduleRepo    ScheduleRepository
	reservationRepo ReservationRepository
	settingsRepo    SettingsRepository
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса доступности
func NewService(
	accountRepo AccountRepository,
	scheduleRepo ScheduleRepository,
	reservationRepo ReservationRepository,
	settingsRepo SettingsRepository,
	logger Logger,
) *Service {
	return &Service{
		accountRepo:     accountRepo,
		scheduleRepo:    scheduleRepo,
		reservationRepo: reservationRepo,
		settingsRepo:    settingsRepo,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// ResolveSettings итоговые настройки: сотрудник > аккаунт > значения по умолчанию.
// Каждый вызов читает переопределения заново.
func (s *Service) ResolveSettings(ctx context.Context, accountID int64, teamMemberID *int64) (domain.Settings, error) {
	accountLevel, err := s.getOverride(ctx, accountID, nil)
	if err != nil {
		return domain.Settings{}, err
	}

	var memberLevel *domain.SettingsOverride
	if teamMemberID != nil {
		memberLevel, err = s.getOverride(ctx, accountID, teamMemberID)
		if err != nil {
			return domain.Settings{}, err
		}
	}

	return domain.ResolveSettings(accountLevel, memberLevel), nil
}

func (s *Service) getOverride(ctx context.Context, accountID int64, teamMemberID *int64) (*domain.SettingsOverride, error) {
	override, err := s.settingsRepo.Get(ctx, accountID, teamMemberID)
	if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("ResolveSettings: failed to get settings for account=%d: %v", accountID, err)
		return nil, fmt.Errorf("%w: ResolveSettings - repository error: %v", ErrInternal, err)
	}
	return override, nil
}

// AssertWithinAvailability [start, end) целиком лежит в одном рабочем интервале
// локального дня сотрудника
func (s *Service) AssertWithinAvailability(ctx context.Context, accountID, teamMemberID int64, start, end time.Time, loc *time.Location) error {
	if !domain.SameLocalDate(start, end, loc) {
		return domain.NewValidationError("starts_at", domain.ErrSpansMultipleDays)
	}

	day, _ := domain.DayBounds(start, loc)
	ids := []int64{teamMemberID}

	weekly, err := s.scheduleRepo.ListWeekly(ctx, accountID, ids)
	if err != nil {
		s.logger.Error("AssertWithinAvailability: failed to list weekly availability for member=%d: %v", teamMemberID, err)
		return fmt.Errorf("%w: AssertWithinAvailability - list weekly: %v", ErrInternal, err)
	}

	exceptions, err := s.scheduleRepo.ListExceptions(ctx, accountID, ids, day, day)
	if err != nil {
		s.logger.Error("AssertWithinAvailability: failed to list exceptions for member=%d: %v", teamMemberID, err)
		return fmt.Errorf("%w: AssertWithinAvailability - list exceptions: %v", ErrInternal, err)
	}

	intervals := BuildDayIntervals(day, teamMemberID, weekly, exceptions, loc)
	if !interval.Covers(intervals, interval.New(start.UTC(), end.UTC())) {
		return domain.NewValidationError("starts_at", domain.ErrOutsideAvailability)
	}

	return nil
}

// AssertNoDoubleBooking [start, end) не пересекается ни с одной активной бронью
// сотрудника, расширенной на max(buffer, буфер брони). excludeID исключает переносимую бронь.
func (s *Service) AssertNoDoubleBooking(ctx context.Context, teamMemberID int64, start, end time.Time, buffer int, excludeID *int64) error {
	window := time.Duration(domain.MaxBufferMinutes) * time.Minute

	reservations, err := s.reservationRepo.ListActiveForMembers(ctx, []int64{teamMemberID}, start.Add(-window), end.Add(window))
	if err != nil {
		s.logger.Error("AssertNoDoubleBooking: failed to list reservations for member=%d: %v", teamMemberID, err)
		return fmt.Errorf("%w: AssertNoDoubleBooking - list reservations: %v", ErrInternal, err)
	}

	for _, r := range reservations {
		if excludeID != nil && r.ID == *excludeID {
			continue
		}
		if r.IsActive() && r.ConflictsWith(start, end, buffer) {
			s.logger.Warn("AssertNoDoubleBooking: member=%d conflicts with reservation id=%d", teamMemberID, r.ID)
			return domain.NewValidationError("starts_at", domain.ErrSlotNotAvailable)
		}
	}

	return nil
}

// DefaultDurationMinutes длительность услуги или 60 минут, если услуга не указана
func (s *Service) DefaultDurationMinutes(ctx context.Context, accountID int64, serviceID *int64) (int, error) {
	if serviceID == nil {
		return domain.DefaultDurationMinutes, nil
	}

	service, err := s.accountRepo.GetService(ctx, accountID, *serviceID)
	if err != nil {
		if errors.Is(err, accountRepo.ErrServiceNotFound) {
			return 0, domain.NewValidationError("service_id", ErrServiceNotFound)
		}
		s.logger.Error("DefaultDurationMinutes: failed to get service id=%d: %v", *serviceID, err)
		return 0, fmt.Errorf("%w: DefaultDurationMinutes - repository error: %v", ErrInternal, err)
	}

	if service.DurationMinutes <= 0 {
		return domain.DefaultDurationMinutes, nil
	}
	return service.DurationMinutes, nil
}

// CanClientModify клиент еще может отменить или перенести бронь.
// Порог 0 часов снимает ограничение.
func CanClientModify(reservation *domain.Reservation, settings domain.Settings, now time.Time) bool {
	if settings.CancellationCutoffHours <= 0 {
		return true
	}
	deadline := reservation.StartsAt.Add(-time.Duration(settings.CancellationCutoffHours) * time.Hour)
	return now.Before(deadline)
}
