package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"forumhub/internal/model"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByName(ctx context.Context, name string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*model.User, error)
	FindByResetToken(ctx context.Context, token string) (*model.User, error)
	List(ctx context.Context, page, limit int) ([]model.User, error)
	Count(ctx context.Context) (int64, error)
	RecentlyOnline(ctx context.Context, since time.Time, page, limit int) ([]model.User, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateProfile(ctx context.Context, id uuid.UUID, description, facebook, xID *string) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatar *string) error
	SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id uuid.UUID) error
	SetBannedUntil(ctx context.Context, id uuid.UUID, until *time.Time) error
	TouchLastOnline(ctx context.Context, id uuid.UUID, at time.Time) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepository) FindByName(ctx context.Context, name string) (*model.User, error) {
	return r.findOne(ctx, "name = ?", name)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userRepository) FindByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	return r.findOne(ctx, "verification_token = ?", token)
}

func (r *userRepository) FindByResetToken(ctx context.Context, token string) (*model.User, error) {
	return r.findOne(ctx, "reset_token = ?", token)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, page, limit int) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Order("created_at").
		Offset(pageOffset(page, limit)).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *userRepository) RecentlyOnline(ctx context.Context, since time.Time, page, limit int) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("last_online > ?", since).
		Order("last_online DESC").
		Offset(pageOffset(page, limit)).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return r.updates(ctx, id, map[string]interface{}{"name": name})
}

func (r *userRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	return r.updates(ctx, id, map[string]interface{}{"role": role})
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.updates(ctx, id, map[string]interface{}{"password_hash": passwordHash})
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, description, facebook, xID *string) error {
	return r.updates(ctx, id, map[string]interface{}{
		"description": description,
		"facebook":    facebook,
		"x_id":        xID,
	})
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatar *string) error {
	return r.updates(ctx, id, map[string]interface{}{"avatar": avatar})
}

func (r *userRepository) SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	return r.updates(ctx, id, map[string]interface{}{
		"verification_token": token,
		"token_expires_at":   expiresAt,
	})
}

// MarkVerified flips verified and clears the token columns in one statement,
// so a second validation of the same token cannot succeed.
func (r *userRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return r.updates(ctx, id, map[string]interface{}{
		"verified":           true,
		"verification_token": nil,
		"token_expires_at":   nil,
	})
}

func (r *userRepository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	return r.updates(ctx, id, map[string]interface{}{
		"reset_token":      token,
		"reset_expires_at": expiresAt,
	})
}

func (r *userRepository) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	return r.updates(ctx, id, map[string]interface{}{
		"reset_token":      nil,
		"reset_expires_at": nil,
	})
}

func (r *userRepository) SetBannedUntil(ctx context.Context, id uuid.UUID, until *time.Time) error {
	return r.updates(ctx, id, map[string]interface{}{"banned_until": until})
}

func (r *userRepository) TouchLastOnline(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.updates(ctx, id, map[string]interface{}{"last_online": at})
}

func (r *userRepository) updates(ctx context.Context, id uuid.UUID, values map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(values).Error
}

func pageOffset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
