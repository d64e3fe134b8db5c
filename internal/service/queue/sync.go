package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// SyncAppointmentsForWindow отражает бронирования с началом в [from, to) в очередь.
// Для неактивных бронирований без зеркала элемент не создается.
func (s *Service) SyncAppointmentsForWindow(ctx context.Context, accountID int64, from, to time.Time) error {
	account, err := s.getAccount(ctx, "SyncAppointmentsForWindow", accountID)
	if err != nil {
		return err
	}
	if !account.QueueFeaturesEnabled() {
		return nil
	}

	return s.txManager.Do(ctx, func(ctx context.Context) error {
		return s.syncWindowInTx(ctx, accountID, from, to)
	})
}

func (s *Service) syncWindowInTx(ctx context.Context, accountID int64, from, to time.Time) error {
	reservations, err := s.reservationRepo.ListForAccount(ctx, domain.ReservationFilter{
		AccountID:       accountID,
		From:            &from,
		To:              &to,
		IncludeInactive: true,
	})
	if err != nil {
		s.logger.Error("SyncAppointmentsForWindow: failed to list reservations for account=%d: %v", accountID, err)
		return fmt.Errorf("%w: SyncAppointmentsForWindow - list reservations: %v", ErrInternal, err)
	}
	if len(reservations) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(reservations))
	for _, r := range reservations {
		ids = append(ids, r.ID)
	}

	existing, err := s.queueRepo.ListByReservationIDs(ctx, ids)
	if err != nil {
		s.logger.Error("SyncAppointmentsForWindow: failed to list mirrored items for account=%d: %v", accountID, err)
		return fmt.Errorf("%w: SyncAppointmentsForWindow - list items: %v", ErrInternal, err)
	}

	for _, r := range reservations {
		if err := s.mirror(ctx, r, existing[r.ID]); err != nil {
			return err
		}
	}

	return nil
}

// MirrorReservation обновляет элемент-зеркало одного бронирования.
// Вызывается внутри транзакции, изменившей бронирование.
func (s *Service) MirrorReservation(ctx context.Context, account *domain.Account, reservation *domain.Reservation) error {
	if !account.QueueFeaturesEnabled() {
		return nil
	}

	item, err := s.queueRepo.GetByReservationID(ctx, reservation.ID)
	if err != nil && !isNotFound(err) {
		s.logger.Error("MirrorReservation: failed to get item for reservation id=%d: %v", reservation.ID, err)
		return fmt.Errorf("%w: MirrorReservation - get item: %v", ErrInternal, err)
	}

	return s.mirror(ctx, reservation, item)
}

func (s *Service) mirror(ctx context.Context, r *domain.Reservation, item *domain.QueueItem) error {
	status := mirroredStatus(r.Status, item)

	if item == nil {
		if !r.IsActive() {
			return nil
		}

		created, err := s.queueRepo.Create(ctx, &domain.QueueItem{
			AccountID:                r.AccountID,
			ReservationID:            &r.ID,
			ItemType:                 domain.ItemAppointment,
			Status:                   status,
			TeamMemberID:             &r.TeamMemberID,
			ClientUserID:             r.ClientUserID,
			ServiceID:                r.ServiceID,
			AnchorAt:                 r.StartsAt.UTC(),
			QueueNumber:              appointmentNumber(r),
			EstimatedDurationMinutes: r.DurationMinutes,
		})
		if err != nil {
			s.logger.Error("mirror: failed to create item for reservation id=%d: %v", r.ID, err)
			return fmt.Errorf("%w: mirror - create item: %v", ErrInternal, err)
		}

		s.logger.Info("mirror: reservation id=%d mirrored as %s", r.ID, created.QueueNumber)
		return nil
	}

	changed := item.Status != status ||
		!item.AnchorAt.Equal(r.StartsAt) ||
		item.EstimatedDurationMinutes != r.DurationMinutes ||
		item.TeamMemberID == nil || *item.TeamMemberID != r.TeamMemberID
	if !changed {
		return nil
	}

	item.Status = status
	item.AnchorAt = r.StartsAt.UTC()
	item.EstimatedDurationMinutes = r.DurationMinutes
	item.TeamMemberID = &r.TeamMemberID
	item.ServiceID = r.ServiceID
	if status != domain.QueueCalled {
		item.CallExpiresAt = nil
	}
	if item.IsTerminal() && item.CompletedAt == nil {
		completedAt := r.UpdatedAt.UTC()
		if r.CancelledAt != nil {
			completedAt = r.CancelledAt.UTC()
		}
		item.CompletedAt = &completedAt
	}

	if err := s.queueRepo.Update(ctx, item); err != nil {
		s.logger.Error("mirror: failed to update item id=%d: %v", item.ID, err)
		return fmt.Errorf("%w: mirror - update item: %v", ErrInternal, err)
	}

	return nil
}

// mirroredStatus статус зеркала по статусу бронирования.
// Для активной брони сохраняется незакрытый статус элемента.
func mirroredStatus(status domain.ReservationStatus, item *domain.QueueItem) domain.QueueStatus {
	switch status {
	case domain.ReservationCancelled:
		return domain.QueueCancelled
	case domain.ReservationCompleted:
		return domain.QueueDone
	case domain.ReservationNoShow:
		return domain.QueueNoShow
	}
	if item != nil && !item.IsTerminal() {
		return item.Status
	}
	return domain.QueueNotArrived
}

// appointmentNumber номер зеркала A-{MMDD}-{id}, дата в часовом поясе брони
func appointmentNumber(r *domain.Reservation) string {
	loc, err := domain.LoadLocation(r.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return fmt.Sprintf("A-%s-%d", r.StartsAt.In(loc).Format(domain.QueueDateFormat), r.ID)
}
