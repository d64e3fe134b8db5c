package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/queue/models"
)

// RefreshMetrics пересчитывает очередь аккаунта: просроченные вызовы, порядок,
// позиции и ETA. Повторный вызов без изменений ничего не записывает.
func (s *Service) RefreshMetrics(ctx context.Context, accountID int64) (*models.Snapshot, error) {
	now := s.timeProvider.Now()

	account, err := s.getAccount(ctx, "RefreshMetrics", accountID)
	if err != nil {
		return nil, err
	}

	var (
		snapshot *models.Snapshot
		events   []domain.NotificationEvent
	)
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		var txErr error
		snapshot, events, txErr = s.refreshInTx(ctx, account, now)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	return snapshot, nil
}

// refreshInTx выполняется внутри транзакции вызывающего. События возвращаются
// вызывающему и публикуются только после коммита.
func (s *Service) refreshInTx(ctx context.Context, account *domain.Account, now time.Time) (*models.Snapshot, []domain.NotificationEvent, error) {
	items, err := s.queueRepo.ListActive(ctx, account.ID)
	if err != nil {
		s.logger.Error("refreshInTx: failed to list queue items for account=%d: %v", account.ID, err)
		return nil, nil, fmt.Errorf("%w: refreshInTx - list items: %v", ErrInternal, err)
	}

	var events []domain.NotificationEvent
	active := make([]*domain.QueueItem, 0, len(items))

	for _, item := range items {
		if callExpired(item, now) {
			status := expireCall(item, account.Queue.NoShowOnGraceExpiry)
			if item.IsTerminal() {
				completedAt := now.UTC()
				item.CompletedAt = &completedAt
			}

			if err := s.queueRepo.Update(ctx, item); err != nil {
				s.logger.Error("refreshInTx: failed to expire item id=%d: %v", item.ID, err)
				return nil, nil, fmt.Errorf("%w: refreshInTx - expire item: %v", ErrInternal, err)
			}
			if err := s.syncReservation(ctx, item, now); err != nil {
				return nil, nil, err
			}

			s.logger.Info("refreshInTx: call grace expired for item %s, status=%s", item.QueueNumber, status)
			s.metrics.IncQueueGraceExpired(string(status))
			events = append(events, domain.NewNotificationEvent(domain.EventQueueGraceExpired, account.ID, now, domain.QueueItemPayload(item)))
		}

		if !item.IsTerminal() {
			active = append(active, item)
		}
	}

	mode := account.DispatchMode()
	sortItems(active, mode)
	computed, lanes := computeMetrics(active)

	for _, item := range active {
		m := computed[item.ID]
		if m.equal(item) {
			continue
		}
		if err := s.queueRepo.UpdateMetrics(ctx, item.ID, m.Position, m.EtaMinutes); err != nil {
			s.logger.Error("refreshInTx: failed to update metrics for item id=%d: %v", item.ID, err)
			return nil, nil, fmt.Errorf("%w: refreshInTx - update metrics: %v", ErrInternal, err)
		}
		item.Position = m.Position
		item.EtaMinutes = m.EtaMinutes
	}

	snapshot := &models.Snapshot{
		AccountID:    account.ID,
		GeneratedAt:  now.UTC(),
		DispatchMode: mode,
		Lanes:        buildLanes(lanes),
	}

	if unassigned, ok := lanes[0]; ok && len(unassigned) > 0 {
		if err := s.recommend(ctx, account, snapshot, active, now); err != nil {
			return nil, nil, err
		}
	}

	return snapshot, events, nil
}

// recommend заполняет рекомендованного сотрудника для нераспределенной дорожки
func (s *Service) recommend(ctx context.Context, account *domain.Account, snapshot *models.Snapshot, items []*domain.QueueItem, now time.Time) error {
	members, err := s.accountRepo.ListActiveTeamMembers(ctx, account.ID)
	if err != nil {
		s.logger.Error("recommend: failed to list team members for account=%d: %v", account.ID, err)
		return fmt.Errorf("%w: recommend - list team members: %v", ErrInternal, err)
	}

	settings, err := s.resolver.ResolveSettings(ctx, account.ID, nil)
	if err != nil {
		s.logger.Error("recommend: failed to resolve settings for account=%d: %v", account.ID, err)
		return fmt.Errorf("%w: recommend - resolve settings: %v", ErrInternal, err)
	}

	availability := buildAvailability(members, items, now)
	for _, lane := range snapshot.Lanes {
		if lane.TeamMemberID != nil {
			continue
		}
		for _, view := range lane.Items {
			if view.Item.Status == domain.QueueInService {
				continue
			}
			view.RecommendedTeamMemberID = recommendMember(view.Item, availability, snapshot.DispatchMode, settings.BufferMinutes, now)
		}
	}

	return nil
}

// syncReservation переносит закрытие элемента-зеркала на бронирование
func (s *Service) syncReservation(ctx context.Context, item *domain.QueueItem, now time.Time) error {
	if !item.IsAppointment() || item.ReservationID == nil {
		return nil
	}

	status, ok := reservationStatusFor(item.Status)
	if !ok {
		return nil
	}

	var err error
	if status == domain.ReservationCancelled {
		err = s.reservationRepo.Cancel(ctx, *item.ReservationID, "cancelled in queue", now.UTC())
	} else {
		err = s.reservationRepo.UpdateStatus(ctx, *item.ReservationID, status)
	}
	if err != nil {
		s.logger.Error("syncReservation: failed to set reservation id=%d to %s: %v", *item.ReservationID, status, err)
		return fmt.Errorf("%w: syncReservation - update reservation: %v", ErrInternal, err)
	}

	return nil
}

// publish отправляет события после коммита. Ошибка доставки только логируется.
func (s *Service) publish(ctx context.Context, events []domain.NotificationEvent) {
	if s.publisher == nil {
		return
	}
	for _, event := range events {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish: failed to publish event %s for account=%d: %v", event.Name, event.AccountID, err)
		}
	}
}
