package reservations

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	accountRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/account"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/internal/service/availability"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
)

// Service сервис для работы с бронированиями: чтение, отмена, смена статуса
type Service struct {
	reservationRepo ReservationRepository
	accountRepo     AccountRepository
	settings        SettingsResolver
	queue           QueueMirror
	publisher       EventPublisher
	txManager       TransactionManager
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	reservationRepo ReservationRepository,
	accountRepo AccountRepository,
	settings SettingsResolver,
	queue QueueMirror,
	publisher EventPublisher,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		accountRepo:     accountRepo,
		settings:        settings,
		queue:           queue,
		publisher:       publisher,
		txManager:       txManager,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID получает бронирование по ID.
// Клиент видит только свое бронирование, сотрудник - любое в аккаунте.
func (s *Service) GetByID(ctx context.Context, accountID, id int64, actor domain.Actor) (*models.ReservationResponse, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapReservationError("GetByID", id, err)
	}
	if reservation.AccountID != accountID {
		s.logger.Warn("GetByID: reservation id=%d does not belong to account=%d", id, accountID)
		return nil, ErrReservationNotFound
	}

	if err := checkAccess(reservation, actor); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to reservation id=%d", actor.UserID, id)
		return nil, err
	}

	canModify, err := s.canClientModify(ctx, reservation, nil)
	if err != nil {
		return nil, err
	}

	return models.FromDomainReservation(reservation, canModify), nil
}

// ListForAccount бронирования аккаунта с фильтрами.
// Для клиента список всегда ограничен его собственными бронированиями.
func (s *Service) ListForAccount(ctx context.Context, req *models.ListRequest) (*models.ReservationListResponse, error) {
	filter := domain.ReservationFilter{
		AccountID:       req.AccountID,
		TeamMemberID:    req.TeamMemberID,
		From:            req.From,
		To:              req.To,
		IncludeInactive: req.IncludeInactive,
	}

	if req.Status != nil {
		status, ok := models.ToDomainStatus(*req.Status)
		if !ok {
			return nil, domain.NewValidationError("status", ErrInvalidStatus)
		}
		filter.Status = &status
	}

	if !req.Actor.IsStaff() {
		userID := req.Actor.UserID
		filter.ClientUserID = &userID
	}

	reservations, err := s.reservationRepo.ListForAccount(ctx, filter)
	if err != nil {
		s.logger.Error("ListForAccount: repository error for account=%d: %v", req.AccountID, err)
		return nil, fmt.Errorf("%w: ListForAccount - repository error: %v", ErrInternal, err)
	}

	cache := make(map[int64]domain.Settings)
	result := &models.ReservationListResponse{Reservations: make([]models.ReservationResponse, 0, len(reservations))}
	for _, r := range reservations {
		canModify, err := s.canClientModify(ctx, r, cache)
		if err != nil {
			return nil, err
		}
		result.Reservations = append(result.Reservations, *models.FromDomainReservation(r, canModify))
	}

	s.logger.Info("ListForAccount: fetched %d reservations for account=%d", len(result.Reservations), req.AccountID)
	return result, nil
}

// Cancel отменяет бронирование.
// Клиент может отменить только свое бронирование, если это разрешено настройками
// и порог отмены еще не пройден. Зеркало в очереди закрывается в той же транзакции.
func (s *Service) Cancel(ctx context.Context, req *models.CancelRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Cancel: cancelling reservation id=%d by user=%d", req.ReservationID, req.Actor.UserID)

	if utf8.RuneCountInString(req.Reason) > domain.MaxCancellationReason {
		return nil, domain.NewValidationError("reason", domain.ErrOutOfRange)
	}

	now := s.timeProvider.Now()
	account, err := s.getAccount(ctx, "Cancel", req.AccountID)
	if err != nil {
		return nil, err
	}

	var reservation *domain.Reservation
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		reservation, err = s.lock(ctx, "Cancel", req.AccountID, req.ReservationID)
		if err != nil {
			return err
		}

		if err := checkAccess(reservation, req.Actor); err != nil {
			s.logger.Warn("Cancel: access denied for user=%d to reservation id=%d", req.Actor.UserID, reservation.ID)
			return err
		}

		if !reservation.IsActive() {
			s.logger.Warn("Cancel: reservation id=%d cannot be cancelled, status=%s", reservation.ID, reservation.Status)
			return domain.NewValidationError("status", domain.ErrReservationNotActive)
		}

		if !req.Actor.IsStaff() {
			settings, err := s.resolve(ctx, reservation)
			if err != nil {
				return err
			}
			if !settings.ClientCanCancel {
				return domain.NewValidationError("reservation", domain.ErrClientCancelDisabled)
			}
			if !availability.CanClientModify(reservation, settings, now) {
				return domain.NewValidationError("starts_at", domain.ErrModificationClosed)
			}
		}

		if err := s.reservationRepo.Cancel(ctx, reservation.ID, req.Reason, now); err != nil {
			return s.mapReservationError("Cancel", reservation.ID, err)
		}

		cancelledAt := now.UTC()
		reservation.Status = domain.ReservationCancelled
		reservation.CancelledAt = &cancelledAt
		if req.Reason != "" {
			reason := req.Reason
			reservation.CancellationReason = &reason
		}

		return s.mirror(ctx, "Cancel", account, reservation)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncReservation("cancel", string(req.Actor.Source()))
	s.publish(ctx, domain.NewNotificationEvent(domain.EventReservationCancelled, account.ID, now, domain.ReservationPayload(reservation)))

	s.logger.Info("Cancel: successfully cancelled reservation id=%d", reservation.ID)
	return models.FromDomainReservation(reservation, false), nil
}

// UpdateStatus меняет статус бронирования. Доступно только сотрудникам.
// Разрешены confirmed, completed и no_show из активного статуса.
func (s *Service) UpdateStatus(ctx context.Context, req *models.UpdateStatusRequest) (*models.ReservationResponse, error) {
	s.logger.Info("UpdateStatus: updating reservation id=%d to status=%s by user=%d",
		req.ReservationID, req.Status, req.Actor.UserID)

	if !req.Actor.IsStaff() {
		return nil, ErrAccessDenied
	}

	status, ok := models.ToDomainStatus(req.Status)
	if !ok || !isStaffSettableStatus(status) {
		s.logger.Warn("UpdateStatus: invalid status=%s for reservation id=%d", req.Status, req.ReservationID)
		return nil, domain.NewValidationError("status", ErrInvalidStatus)
	}

	now := s.timeProvider.Now()
	account, err := s.getAccount(ctx, "UpdateStatus", req.AccountID)
	if err != nil {
		return nil, err
	}

	var reservation *domain.Reservation
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		reservation, err = s.lock(ctx, "UpdateStatus", req.AccountID, req.ReservationID)
		if err != nil {
			return err
		}

		if !reservation.IsActive() {
			return domain.NewValidationError("status", domain.ErrReservationNotActive)
		}

		if err := s.reservationRepo.UpdateStatus(ctx, reservation.ID, status); err != nil {
			return s.mapReservationError("UpdateStatus", reservation.ID, err)
		}
		reservation.Status = status

		return s.mirror(ctx, "UpdateStatus", account, reservation)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncReservation("status_"+string(status), string(req.Actor.Source()))
	s.publish(ctx, domain.NewNotificationEvent(domain.EventReservationStatus, account.ID, now, domain.ReservationPayload(reservation)))

	s.logger.Info("UpdateStatus: successfully updated reservation id=%d to status=%s", reservation.ID, status)
	return models.FromDomainReservation(reservation, false), nil
}

// Вспомогательные методы

// checkAccess клиент имеет доступ только к своему бронированию
func checkAccess(reservation *domain.Reservation, actor domain.Actor) error {
	if actor.IsStaff() || reservation.IsOwnedBy(actor.UserID) {
		return nil
	}
	return ErrAccessDenied
}

func isStaffSettableStatus(status domain.ReservationStatus) bool {
	switch status {
	case domain.ReservationConfirmed, domain.ReservationCompleted, domain.ReservationNoShow:
		return true
	}
	return false
}

// canClientModify флаг для ответа; cache хранит настройки по сотруднику в пределах одного запроса
func (s *Service) canClientModify(ctx context.Context, reservation *domain.Reservation, cache map[int64]domain.Settings) (bool, error) {
	if !reservation.IsActive() {
		return false, nil
	}

	settings, ok := cache[reservation.TeamMemberID]
	if !ok {
		var err error
		settings, err = s.resolve(ctx, reservation)
		if err != nil {
			return false, err
		}
		if cache != nil {
			cache[reservation.TeamMemberID] = settings
		}
	}

	return availability.CanClientModify(reservation, settings, s.timeProvider.Now()), nil
}

func (s *Service) resolve(ctx context.Context, reservation *domain.Reservation) (domain.Settings, error) {
	memberID := reservation.TeamMemberID
	settings, err := s.settings.ResolveSettings(ctx, reservation.AccountID, &memberID)
	if err != nil {
		s.logger.Error("resolve: failed to resolve settings for reservation id=%d: %v", reservation.ID, err)
		return domain.Settings{}, fmt.Errorf("%w: resolve - settings: %v", ErrInternal, err)
	}
	return settings, nil
}

func (s *Service) lock(ctx context.Context, method string, accountID, id int64) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.LockByID(ctx, id)
	if err != nil {
		return nil, s.mapReservationError(method, id, err)
	}
	if reservation.AccountID != accountID {
		s.logger.Warn("%s: reservation id=%d does not belong to account=%d", method, id, accountID)
		return nil, ErrReservationNotFound
	}
	return reservation, nil
}

func (s *Service) mirror(ctx context.Context, method string, account *domain.Account, reservation *domain.Reservation) error {
	if s.queue == nil {
		return nil
	}
	if err := s.queue.MirrorReservation(ctx, account, reservation); err != nil {
		s.logger.Error("%s: failed to mirror reservation id=%d to queue: %v", method, reservation.ID, err)
		return fmt.Errorf("%w: %s - mirror: %v", ErrInternal, method, err)
	}
	return nil
}

func (s *Service) getAccount(ctx context.Context, method string, accountID int64) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, accountRepo.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		s.logger.Error("%s: failed to get account id=%d: %v", method, accountID, err)
		return nil, fmt.Errorf("%w: %s - get account: %v", ErrInternal, method, err)
	}
	return account, nil
}

func (s *Service) mapReservationError(method string, id int64, err error) error {
	if errors.Is(err, reservationRepo.ErrReservationNotFound) {
		s.logger.Warn("%s: reservation id=%d not found", method, id)
		return ErrReservationNotFound
	}
	s.logger.Error("%s: repository error for reservation id=%d: %v", method, id, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
}

func (s *Service) publish(ctx context.Context, event domain.NotificationEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish: failed to publish event %s for account=%d: %v", event.Name, event.AccountID, err)
	}
}
