package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"forumhub/internal/model"
)

// PostRepository persists posts inside threads.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id int64) (*model.Post, error)
	UpdateContent(ctx context.Context, id int64, content string, modifiedAt time.Time) error
	Delete(ctx context.Context, id int64) error
	CountAfter(ctx context.Context, post *model.Post) (int64, error)
	ListByThread(ctx context.Context, threadID int64, page, limit int) ([]model.Post, error)
	ListByAuthor(ctx context.Context, author uuid.UUID) ([]model.Post, error)
	IncrementLikes(ctx context.Context, id int64) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository builds a GORM-backed repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) UpdateContent(ctx context.Context, id int64, content string, modifiedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).
		Updates(map[string]interface{}{"content": content, "modified_at": modifiedAt}).Error
}

func (r *postRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Post{}, id).Error
}

// CountAfter returns how many posts in the same thread were created after the
// given post. The reply-chain guard deletes only when this is zero.
func (r *postRepository) CountAfter(ctx context.Context, post *model.Post) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("thread_id = ? AND created_at > ?", post.ThreadID, post.CreatedAt).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postRepository) ListByThread(ctx context.Context, threadID int64, page, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at").
		Offset(pageOffset(page, limit)).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, author uuid.UUID) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Where("author = ?", author).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) IncrementLikes(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).
		Update("likes", gorm.Expr("likes + 1")).Error
}
