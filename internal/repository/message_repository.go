package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"forumhub/internal/model"
)

// MessageRepository persists private messages.
type MessageRepository interface {
	Create(ctx context.Context, message *model.PrivateMessage) error
	ListByReceiver(ctx context.Context, receiver uuid.UUID, page, limit int) ([]model.PrivateMessage, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository builds a GORM-backed repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *model.PrivateMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) ListByReceiver(ctx context.Context, receiver uuid.UUID, page, limit int) ([]model.PrivateMessage, error) {
	var messages []model.PrivateMessage
	err := r.db.WithContext(ctx).
		Where("receiver = ?", receiver).
		Order("created_at DESC").
		Offset(pageOffset(page, limit)).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
