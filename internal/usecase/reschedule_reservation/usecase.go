package reschedule_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	accountRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/account"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/internal/service/availability"
)

// UseCase use case для переноса бронирования
type UseCase struct {
	accountRepo     AccountRepository
	reservationRepo ReservationRepository
	resolver        AvailabilityResolver
	queue           QueueMirror
	publisher       EventPublisher
	txManager       TransactionManager
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	accountRepo AccountRepository,
	reservationRepo ReservationRepository,
	resolver AvailabilityResolver,
	queue QueueMirror,
	publisher EventPublisher,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &UseCase{
		accountRepo:     accountRepo,
		reservationRepo: reservationRepo,
		resolver:        resolver,
		queue:           queue,
		publisher:       publisher,
		txManager:       txManager,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case переноса бронирования.
// Бронь и новый сотрудник блокируются до конца транзакции,
// сама бронь не считается конфликтом для нового времени.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleReservation: reservation=%d, account=%d, starts_at=%s, user=%d",
		req.ReservationID, req.AccountID, req.StartsAt, req.Actor.UserID)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleReservation: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	account, err := uc.accountRepo.GetByID(ctx, req.AccountID)
	if err != nil {
		if errors.Is(err, accountRepo.ErrAccountNotFound) {
			uc.logger.Warn("RescheduleReservation: account id=%d not found", req.AccountID)
			return nil, ErrAccountNotFound
		}
		uc.logger.Error("RescheduleReservation: failed to get account id=%d: %v", req.AccountID, err)
		return nil, fmt.Errorf("%w: failed to get account: %v", ErrInternal, err)
	}

	accountLoc, err := account.Location()
	if err != nil {
		uc.logger.Error("RescheduleReservation: account id=%d has invalid timezone: %v", account.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	var (
		reservation   *domain.Reservation
		previousStart time.Time
		canModify     bool
	)

	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Бронь под блокировкой
		current, err := uc.reservationRepo.LockByID(txCtx, req.ReservationID)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			return uc.wrap("lock reservation", err)
		}
		if current.AccountID != req.AccountID {
			uc.logger.Warn("RescheduleReservation: reservation id=%d does not belong to account=%d", current.ID, req.AccountID)
			return ErrReservationNotFound
		}
		if !req.Actor.IsStaff() && !current.IsOwnedBy(req.Actor.UserID) {
			uc.logger.Warn("RescheduleReservation: access denied for user=%d to reservation id=%d", req.Actor.UserID, current.ID)
			return ErrAccessDenied
		}
		if !current.IsActive() {
			return domain.NewValidationError("status", domain.ErrReservationNotActive)
		}

		// 2. Новое время
		loc, err := resolveLocation(req.Timezone, current, account)
		if err != nil {
			return err
		}
		start, end, err := parseTimes(req, current, loc)
		if err != nil {
			return err
		}

		targetMember := current.TeamMemberID
		if req.TeamMemberID != nil {
			targetMember = *req.TeamMemberID
		}

		// 3. Настройки и ограничения для клиента
		settings, err := uc.resolver.ResolveSettings(txCtx, req.AccountID, &targetMember)
		if err != nil {
			return uc.wrap("resolve settings", err)
		}

		if !req.Actor.IsStaff() {
			currentSettings := settings
			if targetMember != current.TeamMemberID {
				currentMember := current.TeamMemberID
				currentSettings, err = uc.resolver.ResolveSettings(txCtx, req.AccountID, &currentMember)
				if err != nil {
					return uc.wrap("resolve settings", err)
				}
			}
			if err := validateClientReschedule(currentSettings, settings, current, start, now); err != nil {
				uc.logger.Warn("RescheduleReservation: client reschedule rejected: %v", err)
				return err
			}
		}

		// 4. Сотрудник под блокировкой и допуск нового времени
		member, err := uc.accountRepo.LockTeamMember(txCtx, req.AccountID, targetMember)
		if err != nil {
			if errors.Is(err, accountRepo.ErrTeamMemberNotFound) {
				return domain.NewValidationError("team_member_id", domain.ErrInvalidTeamMember)
			}
			return uc.wrap("lock team member", err)
		}
		if !member.IsActive {
			return domain.NewValidationError("team_member_id", domain.ErrInvalidTeamMember)
		}

		if err := uc.resolver.AssertWithinAvailability(txCtx, req.AccountID, targetMember, start, end, accountLoc); err != nil {
			return uc.wrap("availability", err)
		}

		excludeID := current.ID
		if err := uc.resolver.AssertNoDoubleBooking(txCtx, targetMember, start, end, settings.BufferMinutes, &excludeID); err != nil {
			return uc.wrap("double booking", err)
		}

		// 5. Сохраняем
		previousStart = current.StartsAt
		current.TeamMemberID = targetMember
		current.StartsAt = start.UTC()
		current.EndsAt = end.UTC()
		current.DurationMinutes = int(end.Sub(start) / time.Minute)
		current.BufferMinutes = settings.BufferMinutes
		current.Timezone = loc.String()
		current.Status = domain.ReservationRescheduled

		if err := uc.reservationRepo.Update(txCtx, current); err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			return uc.wrap("update reservation", err)
		}
		reservation = current
		canModify = availability.CanClientModify(reservation, settings, now)

		if uc.queue != nil {
			if err := uc.queue.MirrorReservation(txCtx, account, reservation); err != nil {
				return uc.wrap("mirror to queue", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.IncReservation("reschedule", string(req.Actor.Source()))

	payload := domain.ReservationPayload(reservation)
	payload["previous_starts_at"] = previousStart.UTC().Format(time.RFC3339)
	uc.publish(ctx, domain.NewNotificationEvent(domain.EventReservationRescheduled, account.ID, now, payload))

	uc.logger.Info("RescheduleReservation: successfully rescheduled reservation id=%d", reservation.ID)
	return &Response{Reservation: reservation, PreviousStartsAt: previousStart, CanClientModify: canModify}, nil
}

// wrap ошибки валидации отдаются как есть, остальные становятся внутренними
func (uc *UseCase) wrap(step string, err error) error {
	if _, ok := domain.AsValidationError(err); ok {
		uc.logger.Warn("RescheduleReservation: %s rejected: %v", step, err)
		return err
	}
	uc.logger.Error("RescheduleReservation: %s failed: %v", step, err)
	return fmt.Errorf("%w: %s: %v", ErrInternal, step, err)
}

func (uc *UseCase) publish(ctx context.Context, event domain.NotificationEvent) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("RescheduleReservation: failed to publish event %s: %v", event.Name, err)
	}
}
