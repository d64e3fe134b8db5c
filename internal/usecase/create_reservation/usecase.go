package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	accountRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/account"
	"github.com/m04kA/SMC-ReservationService/internal/service/availability"
)

// UseCase use case для создания бронирования
type UseCase struct {
	accountRepo     AccountRepository
	reservationRepo ReservationRepository
	resolver        AvailabilityResolver
	guard           IntentGuard
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
	guard IntentGuard,
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
		guard:           guard,
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

// Execute выполняет use case создания бронирования.
// Проверки доступности и пересечений выполняются под блокировкой строки сотрудника,
// поэтому из двух одновременных записей на одно время проходит только одна.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: account=%d, team_member=%d, starts_at=%s, user=%d",
		req.AccountID, req.TeamMemberID, req.StartsAt, req.Actor.UserID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Аккаунт и часовой пояс
	account, err := uc.accountRepo.GetByID(ctx, req.AccountID)
	if err != nil {
		if errors.Is(err, accountRepo.ErrAccountNotFound) {
			uc.logger.Warn("CreateReservation: account id=%d not found", req.AccountID)
			return nil, ErrAccountNotFound
		}
		uc.logger.Error("CreateReservation: failed to get account id=%d: %v", req.AccountID, err)
		return nil, fmt.Errorf("%w: failed to get account: %v", ErrInternal, err)
	}

	accountLoc, err := account.Location()
	if err != nil {
		uc.logger.Error("CreateReservation: account id=%d has invalid timezone: %v", account.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	loc, err := resolveLocation(req.Timezone, account)
	if err != nil {
		return nil, err
	}

	// 3. Время и длительность
	start, end, err := parseTimes(req, loc)
	if err != nil {
		uc.logger.Warn("CreateReservation: invalid time: %v", err)
		return nil, err
	}
	if end.IsZero() {
		duration, err := uc.resolver.DefaultDurationMinutes(ctx, req.AccountID, req.ServiceID)
		if err != nil {
			return nil, uc.wrap("default duration", err)
		}
		end = start.Add(time.Duration(duration) * time.Minute)
	}

	// 4. Итоговые настройки сотрудника
	memberID := req.TeamMemberID
	settings, err := uc.resolver.ResolveSettings(ctx, req.AccountID, &memberID)
	if err != nil {
		return nil, uc.wrap("resolve settings", err)
	}

	// 5. Ограничения для клиента
	source := req.Actor.Source()
	client := req.Client
	if source == domain.SourceClient {
		if err := validateClientBooking(settings, start, now); err != nil {
			uc.logger.Warn("CreateReservation: client booking rejected: %v", err)
			return nil, err
		}
		client = domain.RegisteredClient(req.Actor.UserID)
	}

	reservation := &domain.Reservation{
		AccountID:       req.AccountID,
		TeamMemberID:    req.TeamMemberID,
		ClientID:        req.ClientID,
		ServiceID:       req.ServiceID,
		Status:          initialStatus(source),
		StartsAt:        start.UTC(),
		EndsAt:          end.UTC(),
		DurationMinutes: int(end.Sub(start) / time.Minute),
		BufferMinutes:   settings.BufferMinutes,
		Timezone:        loc.String(),
		Source:          source,
	}
	if client.Kind == domain.ClientRegistered {
		userID := client.UserID
		reservation.ClientUserID = &userID
	}

	// 6. Проверки и запись в одной транзакции
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// Нельзя держать бронь и активный талон одновременно. Проверка идет под
		// блокировкой аккаунта, как и выдача талона в очереди.
		if account.QueueFeaturesEnabled() && !client.IsZero() {
			locked, err := uc.accountRepo.LockByID(txCtx, req.AccountID)
			if err != nil {
				if errors.Is(err, accountRepo.ErrAccountNotFound) {
					return ErrAccountNotFound
				}
				return uc.wrap("lock account", err)
			}
			if err := uc.guard.EnsureCanCreateReservation(txCtx, locked, client); err != nil {
				uc.logger.Warn("CreateReservation: intent guard rejected: %v", err)
				return err
			}
		}

		member, err := uc.accountRepo.LockTeamMember(txCtx, req.AccountID, req.TeamMemberID)
		if err != nil {
			if errors.Is(err, accountRepo.ErrTeamMemberNotFound) {
				return domain.NewValidationError("team_member_id", domain.ErrInvalidTeamMember)
			}
			return uc.wrap("lock team member", err)
		}
		if !member.IsActive {
			uc.logger.Warn("CreateReservation: team member id=%d is inactive", member.ID)
			return domain.NewValidationError("team_member_id", domain.ErrInvalidTeamMember)
		}

		if err := uc.resolver.AssertWithinAvailability(txCtx, req.AccountID, req.TeamMemberID, start, end, accountLoc); err != nil {
			return uc.wrap("availability", err)
		}

		if err := uc.resolver.AssertNoDoubleBooking(txCtx, req.TeamMemberID, start, end, settings.BufferMinutes, nil); err != nil {
			return uc.wrap("double booking", err)
		}

		created, err := uc.reservationRepo.Create(txCtx, reservation)
		if err != nil {
			return uc.wrap("create reservation", err)
		}
		reservation = created

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

	uc.metrics.IncReservation("create", string(source))
	uc.publish(ctx, domain.NewNotificationEvent(domain.EventReservationCreated, account.ID, now, domain.ReservationPayload(reservation)))

	uc.logger.Info("CreateReservation: successfully created reservation id=%d", reservation.ID)
	return &Response{
		Reservation:     reservation,
		CanClientModify: availability.CanClientModify(reservation, settings, now),
	}, nil
}

// initialStatus бронь сотрудника сразу подтверждена, клиентская ждет подтверждения
func initialStatus(source domain.ReservationSource) domain.ReservationStatus {
	if source == domain.SourceStaff {
		return domain.ReservationConfirmed
	}
	return domain.ReservationPending
}

// wrap ошибки валидации отдаются как есть, остальные становятся внутренними
func (uc *UseCase) wrap(step string, err error) error {
	if _, ok := domain.AsValidationError(err); ok {
		uc.logger.Warn("CreateReservation: %s rejected: %v", step, err)
		return err
	}
	uc.logger.Error("CreateReservation: %s failed: %v", step, err)
	return fmt.Errorf("%w: %s: %v", ErrInternal, step, err)
}

func (uc *UseCase) publish(ctx context.Context, event domain.NotificationEvent) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("CreateReservation: failed to publish event %s: %v", event.Name, err)
	}
}
