package repository

import (
	"context"

	"gorm.io/gorm"

	"forumhub/internal/model"
)

// ChatRepository persists the site-wide chat feed.
type ChatRepository interface {
	Create(ctx context.Context, message *model.ChatMessage) error
	Latest(ctx context.Context, limit int) ([]model.ChatMessage, error)
	Delete(ctx context.Context, id int64) error
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository builds a GORM-backed repository.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, message *model.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// Latest returns the newest messages with author names resolved.
func (r *chatRepository) Latest(ctx context.Context, limit int) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	err := r.db.WithContext(ctx).Model(&model.ChatMessage{}).
		Select("chat_messages.*, users.name AS author_name").
		Joins("JOIN users ON users.id = chat_messages.author").
		Order("chat_messages.added DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *chatRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.ChatMessage{}, id).Error
}
