// Package queue ведет живую очередь аккаунта: талоны и зеркала бронирований,
// переходы статусов, порядок вызова, позиции и ETA
package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	accountRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/account"
	queueRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/queue"
	"github.com/m04kA/SMC-ReservationService/internal/service/queue/models"
)

// Service сервис очереди
type Service struct {
	queueRepo       QueueRepository
	accountRepo     AccountRepository
	reservationRepo ReservationRepository
	resolver        AvailabilityResolver
	guard           IntentGuard
	publisher       EventPublisher
	txManager       TransactionManager
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса очереди
func NewService(
	queueRepo QueueRepository,
	accountRepo AccountRepository,
	reservationRepo ReservationRepository,
	resolver AvailabilityResolver,
	guard IntentGuard,
	publisher EventPublisher,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Service{
		queueRepo:       queueRepo,
		accountRepo:     accountRepo,
		reservationRepo: reservationRepo,
		resolver:        resolver,
		guard:           guard,
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

// CreateTicket выдает талон живой очереди. Номер T-{MMDD}-{n} считается
// под блокировкой строки аккаунта, n - порядковый номер талона за локальные сутки.
func (s *Service) CreateTicket(ctx context.Context, req *models.CreateTicketRequest) (*models.ItemView, error) {
	now := s.timeProvider.Now()

	account, err := s.getAccount(ctx, "CreateTicket", req.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.QueueFeaturesEnabled() {
		return nil, domain.NewValidationError("queue", domain.ErrQueueDisabled)
	}

	loc, err := account.Location()
	if err != nil {
		s.logger.Error("CreateTicket: account=%d has invalid timezone: %v", account.ID, err)
		return nil, fmt.Errorf("%w: CreateTicket - location: %v", ErrInternal, err)
	}

	if req.TeamMemberID != nil {
		if err := s.ensureActiveMember(ctx, "CreateTicket", account.ID, *req.TeamMemberID); err != nil {
			return nil, err
		}
	}

	duration, err := s.ticketDuration(ctx, account.ID, req)
	if err != nil {
		return nil, err
	}

	client := req.Client
	if client.IsZero() && req.Actor.Role == domain.RoleClient && req.Actor.UserID > 0 {
		client = domain.RegisteredClient(req.Actor.UserID)
	}

	var (
		created  *domain.QueueItem
		snapshot *models.Snapshot
		events   []domain.NotificationEvent
	)
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		locked, err := s.accountRepo.LockByID(ctx, account.ID)
		if err != nil {
			return s.mapAccountError("CreateTicket", account.ID, err)
		}

		if err := s.guard.EnsureCanCreateTicket(ctx, locked, client, now); err != nil {
			return err
		}

		dayStart, dayEnd := domain.DayBounds(now, loc)
		count, err := s.queueRepo.CountTicketsCreatedBetween(ctx, account.ID, dayStart.UTC(), dayEnd.UTC())
		if err != nil {
			s.logger.Error("CreateTicket: failed to count tickets for account=%d: %v", account.ID, err)
			return fmt.Errorf("%w: CreateTicket - count tickets: %v", ErrInternal, err)
		}

		checkedInAt := now.UTC()
		item := &domain.QueueItem{
			AccountID:                account.ID,
			ItemType:                 domain.ItemTicket,
			Status:                   domain.QueueCheckedIn,
			TeamMemberID:             req.TeamMemberID,
			ServiceID:                req.ServiceID,
			CheckedInAt:              &checkedInAt,
			AnchorAt:                 checkedInAt,
			QueueNumber:              fmt.Sprintf("T-%s-%d", now.In(loc).Format(domain.QueueDateFormat), count+1),
			EstimatedDurationMinutes: duration,
			Metadata:                 guestMetadata(client),
		}
		if client.Kind == domain.ClientRegistered {
			userID := client.UserID
			item.ClientUserID = &userID
		}

		created, err = s.queueRepo.Create(ctx, item)
		if err != nil {
			s.logger.Error("CreateTicket: failed to create ticket for account=%d: %v", account.ID, err)
			return fmt.Errorf("%w: CreateTicket - create item: %v", ErrInternal, err)
		}

		if err := s.audit(ctx, created, domain.ActionCheckIn, req.Actor); err != nil {
			return err
		}

		snapshot, events, err = s.refreshInTx(ctx, locked, now)
		if err != nil {
			return err
		}

		events = append(events, domain.NewNotificationEvent(domain.EventQueueTicketCreated, account.ID, now, domain.QueueItemPayload(created)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("CreateTicket: ticket %s created in account=%d", created.QueueNumber, account.ID)
	s.publish(ctx, events)

	view := snapshot.Find(created.ID)
	if view == nil {
		view = &models.ItemView{Item: created}
	}
	decorate(view, req.Actor)
	return view, nil
}

// Transition применяет действие к элементу очереди.
// Клиент может только отметиться или отменить свой элемент, сотрудник - работать в своей дорожке.
func (s *Service) Transition(ctx context.Context, req *models.TransitionRequest) (*models.ItemView, error) {
	now := s.timeProvider.Now()

	account, err := s.getAccount(ctx, "Transition", req.AccountID)
	if err != nil {
		return nil, err
	}

	var (
		item     *domain.QueueItem
		snapshot *models.Snapshot
		events   []domain.NotificationEvent
	)
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.queueRepo.LockByID(ctx, req.ItemID)
		if err != nil {
			if isNotFound(err) {
				return ErrItemNotFound
			}
			s.logger.Error("Transition: failed to lock item id=%d: %v", req.ItemID, err)
			return fmt.Errorf("%w: Transition - lock item: %v", ErrInternal, err)
		}
		if item.AccountID != account.ID {
			return ErrItemNotFound
		}

		if err := authorize(req.Actor, item, req.Action); err != nil {
			s.logger.Warn("Transition: user=%d cannot %s item id=%d", req.Actor.UserID, req.Action, item.ID)
			return err
		}

		if req.TeamMemberID != nil {
			if !req.Actor.IsStaff() {
				return ErrAccessDenied
			}
			if err := s.ensureActiveMember(ctx, "Transition", account.ID, *req.TeamMemberID); err != nil {
				return err
			}
		}

		result, err := applyTransition(item, transitionInput{
			Action:       req.Action,
			Now:          now,
			GraceMinutes: account.GraceMinutes(),
			ByClient:     !req.Actor.IsStaff(),
		})
		if err != nil {
			return err
		}

		if req.TeamMemberID != nil {
			item.TeamMemberID = req.TeamMemberID
		}

		if err := s.queueRepo.Update(ctx, item); err != nil {
			s.logger.Error("Transition: failed to update item id=%d: %v", item.ID, err)
			return fmt.Errorf("%w: Transition - update item: %v", ErrInternal, err)
		}

		if result.Audit {
			if err := s.audit(ctx, item, req.Action, req.Actor); err != nil {
				return err
			}
		}

		if err := s.syncReservation(ctx, item, now); err != nil {
			return err
		}

		snapshot, events, err = s.refreshInTx(ctx, account, now)
		if err != nil {
			return err
		}

		if name, ok := actionEvent(req.Action); ok {
			events = append(events, domain.NewNotificationEvent(name, account.ID, now, domain.QueueItemPayload(item)))
		}

		s.logger.Info("Transition: item %s %s -> %s by user=%d", item.QueueNumber, result.From, result.To, req.Actor.UserID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncQueueTransition(string(req.Action))
	s.publish(ctx, events)

	view := snapshot.Find(item.ID)
	if view == nil {
		view = &models.ItemView{Item: item}
	}
	decorate(view, req.Actor)
	return view, nil
}

// ClientTickets незакрытые элементы клиента после пересчета очереди
func (s *Service) ClientTickets(ctx context.Context, accountID int64, client domain.ClientIdentity) ([]*models.ItemView, error) {
	if client.IsZero() {
		return []*models.ItemView{}, nil
	}

	snapshot, err := s.RefreshMetrics(ctx, accountID)
	if err != nil {
		return nil, err
	}

	result := make([]*models.ItemView, 0)
	for _, view := range snapshot.Items() {
		if !view.Item.BelongsTo(client) {
			continue
		}
		view.Callable = false
		view.CanUpdateStatus = !view.Item.IsTerminal()
		result = append(result, view)
	}

	return result, nil
}

// BoardForStaff доска очереди: зеркала сегодняшних бронирований, пересчет,
// флаги действий по дорожкам сотрудника
func (s *Service) BoardForStaff(ctx context.Context, accountID int64, actor domain.Actor) (*models.Snapshot, error) {
	if !actor.IsStaff() {
		return nil, ErrAccessDenied
	}

	now := s.timeProvider.Now()

	account, err := s.getAccount(ctx, "BoardForStaff", accountID)
	if err != nil {
		return nil, err
	}
	if !account.QueueFeaturesEnabled() {
		return nil, domain.NewValidationError("queue", domain.ErrQueueDisabled)
	}

	loc, err := account.Location()
	if err != nil {
		s.logger.Error("BoardForStaff: account=%d has invalid timezone: %v", account.ID, err)
		return nil, fmt.Errorf("%w: BoardForStaff - location: %v", ErrInternal, err)
	}

	var (
		snapshot *models.Snapshot
		events   []domain.NotificationEvent
	)
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		dayStart, dayEnd := domain.DayBounds(now, loc)
		if err := s.syncWindowInTx(ctx, account.ID, dayStart.UTC(), dayEnd.UTC()); err != nil {
			return err
		}

		var err error
		snapshot, events, err = s.refreshInTx(ctx, account, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)

	for _, view := range snapshot.Items() {
		decorate(view, actor)
	}
	return snapshot, nil
}

// authorize права на действие над элементом
func authorize(actor domain.Actor, item *domain.QueueItem, action domain.QueueAction) error {
	if actor.IsStaff() {
		if !actor.OwnsLane(item.TeamMemberID) {
			return ErrAccessDenied
		}
		return nil
	}

	if actor.UserID <= 0 || !item.BelongsTo(domain.RegisteredClient(actor.UserID)) {
		return ErrAccessDenied
	}
	switch action {
	case domain.ActionCheckIn, domain.ActionStillHere, domain.ActionCancel:
		return nil
	}
	return ErrAccessDenied
}

func decorate(view *models.ItemView, actor domain.Actor) {
	owns := actor.OwnsLane(view.Item.TeamMemberID)
	view.Callable = owns && CanApply(view.Item, domain.ActionCall)
	view.CanUpdateStatus = owns && !view.Item.IsTerminal()
}

func (s *Service) audit(ctx context.Context, item *domain.QueueItem, action domain.QueueAction, actor domain.Actor) error {
	checkIn := &domain.CheckIn{
		AccountID:   item.AccountID,
		QueueItemID: item.ID,
		Action:      action,
	}
	if actor.UserID > 0 {
		userID := actor.UserID
		checkIn.ActorUserID = &userID
	}

	if err := s.queueRepo.InsertCheckIn(ctx, checkIn); err != nil {
		s.logger.Error("audit: failed to insert check-in for item id=%d: %v", item.ID, err)
		return fmt.Errorf("%w: audit - insert check-in: %v", ErrInternal, err)
	}
	return nil
}

func (s *Service) ticketDuration(ctx context.Context, accountID int64, req *models.CreateTicketRequest) (int, error) {
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 || *req.DurationMinutes > domain.MaxDurationMinutes {
			return 0, domain.NewValidationError("duration_minutes", domain.ErrOutOfRange)
		}
		return *req.DurationMinutes, nil
	}

	duration, err := s.resolver.DefaultDurationMinutes(ctx, accountID, req.ServiceID)
	if err != nil {
		if _, ok := domain.AsValidationError(err); ok {
			return 0, err
		}
		s.logger.Error("CreateTicket: failed to resolve duration for account=%d: %v", accountID, err)
		return 0, fmt.Errorf("%w: CreateTicket - default duration: %v", ErrInternal, err)
	}
	return duration, nil
}

func (s *Service) ensureActiveMember(ctx context.Context, method string, accountID, teamMemberID int64) error {
	member, err := s.accountRepo.GetTeamMember(ctx, accountID, teamMemberID)
	if err != nil {
		if errors.Is(err, accountRepo.ErrTeamMemberNotFound) {
			return domain.NewValidationError("team_member_id", domain.ErrInvalidTeamMember)
		}
		s.logger.Error("%s: failed to get team member id=%d: %v", method, teamMemberID, err)
		return fmt.Errorf("%w: %s - get team member: %v", ErrInternal, method, err)
	}
	if !member.IsActive {
		return domain.NewValidationError("team_member_id", domain.ErrInvalidTeamMember)
	}
	return nil
}

func (s *Service) getAccount(ctx context.Context, method string, accountID int64) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, s.mapAccountError(method, accountID, err)
	}
	return account, nil
}

func (s *Service) mapAccountError(method string, accountID int64, err error) error {
	if errors.Is(err, accountRepo.ErrAccountNotFound) {
		return ErrAccountNotFound
	}
	s.logger.Error("%s: failed to get account id=%d: %v", method, accountID, err)
	return fmt.Errorf("%w: %s - get account: %v", ErrInternal, method, err)
}

func guestMetadata(client domain.ClientIdentity) map[string]string {
	if client.Kind != domain.ClientGuest {
		return nil
	}
	metadata := map[string]string{domain.MetaGuestPhone: client.Phone}
	if client.Name != "" {
		metadata[domain.MetaGuestName] = client.Name
	}
	return metadata
}

func isNotFound(err error) bool {
	return errors.Is(err, queueRepo.ErrQueueItemNotFound)
}
