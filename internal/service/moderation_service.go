package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"forumhub/internal/clock"
	apperrors "forumhub/internal/errors"
	"forumhub/internal/model"
	"forumhub/internal/repository"
)

// ModerationService maintains the warning ledger and the live ban state.
type ModerationService interface {
	Warn(ctx context.Context, target, moderator uuid.UUID, comment *string, banDays int) (*model.Warning, error)
	Unban(ctx context.Context, target uuid.UUID) error
	IsBanned(ctx context.Context, target uuid.UUID) (bool, error)
	ListWarnings(ctx context.Context, target uuid.UUID, since *time.Time) ([]model.Warning, error)
}

type moderationService struct {
	users    repository.UserRepository
	warnings repository.WarningRepository
	now      clock.Now
}

// NewModerationService creates a new moderation service.
func NewModerationService(users repository.UserRepository, warnings repository.WarningRepository, now clock.Now) ModerationService {
	return &moderationService{
		users:    users,
		warnings: warnings,
		now:      now,
	}
}

// Warn appends a warning to the target's ledger. A positive banDays also
// sets banned_until = now + banDays, overwriting any existing ban end; bans
// do not stack. banDays <= 0 means no ban and changes no ban state.
func (s *moderationService) Warn(ctx context.Context, target, moderator uuid.UUID, comment *string, banDays int) (*model.Warning, error) {
	if _, err := s.users.FindByID(ctx, target); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("warn target: %w", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("find warn target: %w", err)
	}

	now := s.now()
	warning := &model.Warning{
		UserID:   target,
		WarnTime: now,
		Comment:  comment,
		WarnedBy: moderator,
		Banned:   banDays > 0,
	}
	if err := s.warnings.Create(ctx, warning); err != nil {
		return nil, fmt.Errorf("append warning: %w", err)
	}

	if banDays > 0 {
		until := now.AddDate(0, 0, banDays)
		if err := s.users.SetBannedUntil(ctx, target, &until); err != nil {
			return nil, fmt.Errorf("apply ban: %w", err)
		}
	}

	return warning, nil
}

// Unban clears the live ban field. Warning history is never touched.
func (s *moderationService) Unban(ctx context.Context, target uuid.UUID) error {
	if _, err := s.users.FindByID(ctx, target); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("unban target: %w", apperrors.ErrNotFound)
		}
		return fmt.Errorf("find unban target: %w", err)
	}
	return s.users.SetBannedUntil(ctx, target, nil)
}

// IsBanned reports whether the target currently has an active ban.
func (s *moderationService) IsBanned(ctx context.Context, target uuid.UUID) (bool, error) {
	user, err := s.users.FindByID(ctx, target)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("ban check target: %w", apperrors.ErrNotFound)
		}
		return false, fmt.Errorf("find ban check target: %w", err)
	}
	return user.IsBanned(s.now()), nil
}

// ListWarnings returns the target's warnings newest first, optionally only
// those after since.
func (s *moderationService) ListWarnings(ctx context.Context, target uuid.UUID, since *time.Time) ([]model.Warning, error) {
	warnings, err := s.warnings.ListByUser(ctx, target, since)
	if err != nil {
		return nil, fmt.Errorf("list warnings: %w", err)
	}
	return warnings, nil
}
