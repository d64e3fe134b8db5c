package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	accountRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/account"
	"github.com/m04kA/SMC-ReservationService/internal/service/availability"
	availabilityModels "github.com/m04kA/SMC-ReservationService/internal/service/availability/models"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// UseCase use case для получения доступных слотов для бронирования
type UseCase struct {
	accountRepo AccountRepository
	resolver    AvailabilityResolver
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(accountRepo AccountRepository, resolver AvailabilityResolver, logger Logger) *UseCase {
	return &UseCase{
		accountRepo: accountRepo,
		resolver:    resolver,
		logger:      logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: account=%d, from=%s, to=%s, team_member=%v, service=%v",
		req.AccountID, req.DateFrom, req.DateTo, req.TeamMemberID, req.ServiceID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем аккаунт и его часовой пояс
	account, err := uc.accountRepo.GetByID(ctx, req.AccountID)
	if err != nil {
		if errors.Is(err, accountRepo.ErrAccountNotFound) {
			uc.logger.Warn("GetAvailableSlots: account id=%d not found", req.AccountID)
			return nil, ErrAccountNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get account id=%d: %v", req.AccountID, err)
		return nil, fmt.Errorf("%w: failed to get account: %v", ErrInternal, err)
	}

	loc, err := account.Location()
	if err != nil {
		uc.logger.Error("GetAvailableSlots: account id=%d has invalid timezone: %v", account.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// 3. Диапазон поиска
	rangeStart, rangeEnd, err := parseRange(req.DateFrom, req.DateTo, loc)
	if err != nil {
		return nil, err
	}

	// 4. Длительность: явная или по услуге
	duration := 0
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	} else {
		duration, err = uc.resolver.DefaultDurationMinutes(ctx, req.AccountID, req.ServiceID)
		if err != nil {
			return nil, uc.mapResolverError(err)
		}
	}

	// 5. Генерируем слоты
	result, err := uc.resolver.GenerateSlots(ctx, &availabilityModels.GenerateSlotsRequest{
		AccountID:       req.AccountID,
		RangeStart:      rangeStart,
		RangeEnd:        rangeEnd,
		DurationMinutes: duration,
		TeamMemberID:    req.TeamMemberID,
	})
	if err != nil {
		return nil, uc.mapResolverError(err)
	}

	slotsLoc, err := domain.LoadLocation(result.Timezone)
	if err != nil {
		slotsLoc = loc
	}

	resp := &Response{
		AccountID:       req.AccountID,
		Timezone:        result.Timezone,
		DurationMinutes: duration,
		Slots:           make([]Slot, 0, len(result.Slots)),
	}
	for _, s := range result.Slots {
		start := s.StartsAt.In(slotsLoc)
		end := s.EndsAt.In(slotsLoc)
		resp.Slots = append(resp.Slots, Slot{
			TeamMemberID: s.TeamMemberID,
			StartsAt:     s.StartsAt,
			EndsAt:       s.EndsAt,
			LocalDate:    start.Format(domain.DateFormat),
			StartTime:    types.NewTimeString(start),
			EndTime:      types.NewTimeString(end),
		})
	}

	uc.logger.Info("GetAvailableSlots: generated %d slots for account=%d", len(resp.Slots), req.AccountID)
	return resp, nil
}

// mapResolverError пробрасывает ошибки валидации, остальное - в ошибки usecase
func (uc *UseCase) mapResolverError(err error) error {
	if _, ok := domain.AsValidationError(err); ok {
		return err
	}
	if errors.Is(err, availability.ErrAccountNotFound) {
		return ErrAccountNotFound
	}
	uc.logger.Error("GetAvailableSlots: resolver error: %v", err)
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
