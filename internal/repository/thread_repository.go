package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"forumhub/internal/model"
)

// ThreadRepository persists threads and their hashtags.
type ThreadRepository interface {
	Create(ctx context.Context, thread *model.Thread, tags []string) error
	FindByID(ctx context.Context, id int64) (*model.Thread, error)
	Update(ctx context.Context, id int64, title, content string) error
	SetLocked(ctx context.Context, id int64, locked bool) error
	SetSticky(ctx context.Context, id int64, sticky bool) error
	Delete(ctx context.Context, id int64) error
	ListBySection(ctx context.Context, sectionID int64, page, limit int) ([]model.Thread, error)
	ListByAuthor(ctx context.Context, author uuid.UUID) ([]model.Thread, error)
}

type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository builds a GORM-backed repository.
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

// Create inserts the thread and its hashtag rows in one transaction.
func (r *threadRepository) Create(ctx context.Context, thread *model.Thread, tags []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(thread).Error; err != nil {
			return err
		}
		for _, tag := range tags {
			if err := tx.Create(&model.Hashtag{Tag: tag, ThreadID: thread.ID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *threadRepository) FindByID(ctx context.Context, id int64) (*model.Thread, error) {
	var thread model.Thread
	if err := r.db.WithContext(ctx).First(&thread, id).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *threadRepository) Update(ctx context.Context, id int64, title, content string) error {
	return r.db.WithContext(ctx).Model(&model.Thread{}).Where("id = ?", id).
		Updates(map[string]interface{}{"title": title, "content": content}).Error
}

func (r *threadRepository) SetLocked(ctx context.Context, id int64, locked bool) error {
	return r.db.WithContext(ctx).Model(&model.Thread{}).Where("id = ?", id).
		Update("locked", locked).Error
}

func (r *threadRepository) SetSticky(ctx context.Context, id int64, sticky bool) error {
	return r.db.WithContext(ctx).Model(&model.Thread{}).Where("id = ?", id).
		Update("sticky", sticky).Error
}

func (r *threadRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id = ?", id).Delete(&model.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("thread_id = ?", id).Delete(&model.Hashtag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Thread{}, id).Error
	})
}

func (r *threadRepository) ListBySection(ctx context.Context, sectionID int64, page, limit int) ([]model.Thread, error) {
	var threads []model.Thread
	err := r.db.WithContext(ctx).
		Where("section_id = ?", sectionID).
		Order("sticky DESC, created_at DESC").
		Offset(pageOffset(page, limit)).
		Limit(limit).
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	return threads, nil
}

func (r *threadRepository) ListByAuthor(ctx context.Context, author uuid.UUID) ([]model.Thread, error) {
	var threads []model.Thread
	err := r.db.WithContext(ctx).
		Where("author = ?", author).
		Order("created_at DESC").
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	return threads, nil
}
