// Package intentguard не дает клиенту одновременно держать талон и бронь
// или два талона в одной очереди
package intentguard

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Service проверки дублирующих намерений клиента
type Service struct {
	ticketRepo      TicketRepository
	reservationRepo ReservationRepository
	logger          Logger
}

// NewService создает новый экземпляр сервиса проверок
func NewService(ticketRepo TicketRepository, reservationRepo ReservationRepository, logger Logger) *Service {
	return &Service{
		ticketRepo:      ticketRepo,
		reservationRepo: reservationRepo,
		logger:          logger,
	}
}

// EnsureCanCreateTicket клиент может встать в живую очередь:
// у него нет активного талона, и (для зарегистрированных) нет активной брони,
// которая уже идет или начнется в пределах окна дублей.
// Без очереди в аккаунте проверка ничего не делает.
func (s *Service) EnsureCanCreateTicket(ctx context.Context, account *domain.Account, client domain.ClientIdentity, now time.Time) error {
	if !account.QueueFeaturesEnabled() || client.IsZero() {
		return nil
	}

	if err := s.ensureNoActiveTicket(ctx, account.ID, client); err != nil {
		return err
	}

	if client.Kind != domain.ClientRegistered {
		return nil
	}

	reservations, err := s.reservationRepo.ListActiveForClient(ctx, account.ID, client.UserID)
	if err != nil {
		s.logger.Error("EnsureCanCreateTicket: failed to list reservations for user=%d: %v", client.UserID, err)
		return fmt.Errorf("%w: EnsureCanCreateTicket - list reservations: %v", ErrInternal, err)
	}

	windowEnd := now.Add(time.Duration(account.DuplicateWindowMinutes()) * time.Minute)
	for _, r := range reservations {
		upcoming := !r.StartsAt.Before(now) && !r.StartsAt.After(windowEnd)
		inProgress := r.StartsAt.Before(now) && r.EndsAt.After(now)
		if upcoming || inProgress {
			s.logger.Warn("EnsureCanCreateTicket: user=%d has reservation id=%d at %s",
				client.UserID, r.ID, r.StartsAt.Format(time.RFC3339))
			return domain.NewValidationError("client", domain.ErrDuplicateReservation)
		}
	}

	return nil
}

// EnsureCanCreateReservation у клиента нет активного талона
func (s *Service) EnsureCanCreateReservation(ctx context.Context, account *domain.Account, client domain.ClientIdentity) error {
	if !account.QueueFeaturesEnabled() || client.IsZero() {
		return nil
	}
	return s.ensureNoActiveTicket(ctx, account.ID, client)
}

func (s *Service) ensureNoActiveTicket(ctx context.Context, accountID int64, client domain.ClientIdentity) error {
	tickets, err := s.ticketRepo.ListActiveTicketsForClient(ctx, accountID, client)
	if err != nil {
		s.logger.Error("ensureNoActiveTicket: failed to list tickets for account=%d: %v", accountID, err)
		return fmt.Errorf("%w: ensureNoActiveTicket - list tickets: %v", ErrInternal, err)
	}

	for _, t := range tickets {
		if !t.IsTerminal() && t.BelongsTo(client) {
			s.logger.Warn("ensureNoActiveTicket: client already holds ticket %s in account=%d", t.QueueNumber, accountID)
			return domain.NewValidationError("client", domain.ErrDuplicateTicket)
		}
	}

	return nil
}
