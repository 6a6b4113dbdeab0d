package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"forumhub/internal/model"
)

// WarningRepository persists the append-only moderation ledger.
type WarningRepository interface {
	Create(ctx context.Context, warning *model.Warning) error
	ListByUser(ctx context.Context, userID uuid.UUID, since *time.Time) ([]model.Warning, error)
}

type warningRepository struct {
	db *gorm.DB
}

// NewWarningRepository builds a GORM-backed repository.
func NewWarningRepository(db *gorm.DB) WarningRepository {
	return &warningRepository{db: db}
}

func (r *warningRepository) Create(ctx context.Context, warning *model.Warning) error {
	return r.db.WithContext(ctx).Create(warning).Error
}

func (r *warningRepository) ListByUser(ctx context.Context, userID uuid.UUID, since *time.Time) ([]model.Warning, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if since != nil {
		q = q.Where("warn_time > ?", *since)
	}
	var warnings []model.Warning
	if err := q.Order("warn_time DESC").Find(&warnings).Error; err != nil {
		return nil, err
	}
	return warnings, nil
}
