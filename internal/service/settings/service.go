package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	accountRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/account"
	settingsRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/settings"
	"github.com/m04kA/SMC-ReservationService/internal/service/settings/models"
)

// Service сервис управления настройками бронирования.
// Иерархия: сотрудник > аккаунт > значения по умолчанию.
type Service struct {
	settingsRepo SettingsRepository
	accountRepo  AccountRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса настроек
func NewService(settingsRepo SettingsRepository, accountRepo AccountRepository, logger Logger) *Service {
	return &Service{
		settingsRepo: settingsRepo,
		accountRepo:  accountRepo,
		logger:       logger,
	}
}

// GetResolved итоговые настройки для аккаунта или сотрудника
func (s *Service) GetResolved(ctx context.Context, req *models.GetRequest) (*models.SettingsResponse, error) {
	if err := s.ensureScope(ctx, "GetResolved", req.AccountID, req.TeamMemberID); err != nil {
		return nil, err
	}

	accountLevel, err := s.find(ctx, req.AccountID, nil)
	if err != nil {
		return nil, err
	}

	var memberLevel *domain.SettingsOverride
	if req.TeamMemberID != nil {
		memberLevel, err = s.find(ctx, req.AccountID, req.TeamMemberID)
		if err != nil {
			return nil, err
		}
	}

	return models.FromDomainSettings(req.AccountID, req.TeamMemberID, domain.ResolveSettings(accountLevel, memberLevel)), nil
}

// ListOverrides все переопределения аккаунта. Доступно только администратору.
func (s *Service) ListOverrides(ctx context.Context, accountID int64, actor domain.Actor) (*models.OverrideListResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrAccessDenied
	}

	overrides, err := s.settingsRepo.ListByAccount(ctx, accountID)
	if err != nil {
		s.logger.Error("ListOverrides: repository error for account=%d: %v", accountID, err)
		return nil, fmt.Errorf("%w: ListOverrides - repository error: %v", ErrInternal, err)
	}

	result := &models.OverrideListResponse{Overrides: make([]models.OverrideResponse, 0, len(overrides))}
	for _, o := range overrides {
		result.Overrides = append(result.Overrides, *models.FromDomainOverride(o))
	}
	return result, nil
}

// Upsert создает или заменяет переопределение уровня. Доступно только администратору.
func (s *Service) Upsert(ctx context.Context, req *models.UpsertRequest) (*models.OverrideResponse, error) {
	s.logger.Info("Upsert: saving settings for account=%d, team_member=%v by user=%d",
		req.AccountID, req.TeamMemberID, req.Actor.UserID)

	if !req.Actor.IsAdmin() {
		s.logger.Warn("Upsert: user=%d is not an admin of account=%d", req.Actor.UserID, req.AccountID)
		return nil, ErrAccessDenied
	}

	if err := validate(req); err != nil {
		s.logger.Warn("Upsert: validation failed: %v", err)
		return nil, err
	}

	if err := s.ensureScope(ctx, "Upsert", req.AccountID, req.TeamMemberID); err != nil {
		return nil, err
	}

	saved, err := s.settingsRepo.Upsert(ctx, req.ToDomainOverride())
	if err != nil {
		s.logger.Error("Upsert: repository error: %v", err)
		return nil, fmt.Errorf("%w: Upsert - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Upsert: saved settings override id=%d", saved.ID)
	return models.FromDomainOverride(saved), nil
}

// Delete удаляет переопределение уровня. Доступно только администратору.
func (s *Service) Delete(ctx context.Context, req *models.DeleteRequest) error {
	if !req.Actor.IsAdmin() {
		return ErrAccessDenied
	}

	if err := s.settingsRepo.Delete(ctx, req.AccountID, req.TeamMemberID); err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			return ErrSettingsNotFound
		}
		s.logger.Error("Delete: repository error for account=%d: %v", req.AccountID, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: removed settings override for account=%d, team_member=%v", req.AccountID, req.TeamMemberID)
	return nil
}

func (s *Service) find(ctx context.Context, accountID int64, teamMemberID *int64) (*domain.SettingsOverride, error) {
	override, err := s.settingsRepo.Get(ctx, accountID, teamMemberID)
	if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("find: repository error for account=%d: %v", accountID, err)
		return nil, fmt.Errorf("%w: find - repository error: %v", ErrInternal, err)
	}
	return override, nil
}

// ensureScope аккаунт существует, сотрудник (если указан) принадлежит аккаунту
func (s *Service) ensureScope(ctx context.Context, method string, accountID int64, teamMemberID *int64) error {
	if _, err := s.accountRepo.GetByID(ctx, accountID); err != nil {
		if errors.Is(err, accountRepo.ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		s.logger.Error("%s: failed to get account id=%d: %v", method, accountID, err)
		return fmt.Errorf("%w: %s - get account: %v", ErrInternal, method, err)
	}

	if teamMemberID == nil {
		return nil
	}

	if _, err := s.accountRepo.GetTeamMember(ctx, accountID, *teamMemberID); err != nil {
		if errors.Is(err, accountRepo.ErrTeamMemberNotFound) {
			return domain.NewValidationError("team_member_id", domain.ErrInvalidTeamMember)
		}
		s.logger.Error("%s: failed to get team member id=%d: %v", method, *teamMemberID, err)
		return fmt.Errorf("%w: %s - get team member: %v", ErrInternal, method, err)
	}
	return nil
}

func validate(req *models.UpsertRequest) error {
	checks := []struct {
		field  string
		value  *int
		lo, hi int
	}{
		{"buffer_minutes", req.BufferMinutes, domain.MinBufferMinutes, domain.MaxBufferMinutes},
		{"slot_interval_minutes", req.SlotIntervalMinutes, domain.MinSlotIntervalMinutes, domain.MaxSlotIntervalMinutes},
		{"min_notice_minutes", req.MinNoticeMinutes, 0, domain.MaxMinNoticeMinutes},
		{"max_advance_days", req.MaxAdvanceDays, 0, domain.MaxAdvanceDaysLimit},
		{"cancellation_cutoff_hours", req.CancellationCutoffHours, 0, domain.MaxCancellationCutoff},
	}

	for _, c := range checks {
		if c.value != nil && (*c.value < c.lo || *c.value > c.hi) {
			return domain.NewValidationError(c.field, domain.ErrOutOfRange)
		}
	}
	return nil
}
