package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "forumhub/internal/errors"
	"forumhub/internal/model"
	"forumhub/internal/policy"
	"forumhub/internal/repository"
)

// deletedUserName is shown where an author account no longer exists.
const deletedUserName = "Deleted User"

// UserService handles profile, listing and private-message operations.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	PublicName(ctx context.Context, id uuid.UUID) (string, error)
	List(ctx context.Context, page, limit int) ([]model.User, int64, error)
	RecentlyOnline(ctx context.Context, since time.Time, page, limit int) ([]model.User, error)
	UpdateName(ctx context.Context, actor *model.User, name string) error
	UpdateProfile(ctx context.Context, actor *model.User, description, facebook, xID *string) error
	UpdateAvatar(ctx context.Context, actor *model.User, avatar *string) error
	ChangePassword(ctx context.Context, actor *model.User, oldPassword, newPassword string) error
	ChangeRole(ctx context.Context, actor *model.User, target uuid.UUID, role model.Role) error
	Threads(ctx context.Context, userID uuid.UUID) ([]model.Thread, error)
	Posts(ctx context.Context, userID uuid.UUID) ([]model.Post, error)
	SendMessage(ctx context.Context, actor *model.User, recipient uuid.UUID, content string) error
	Inbox(ctx context.Context, actor *model.User, page, limit int) ([]model.PrivateMessage, error)
}

type userService struct {
	users    repository.UserRepository
	threads  repository.ThreadRepository
	posts    repository.PostRepository
	messages repository.MessageRepository
}

// NewUserService creates a new user service.
func NewUserService(
	users repository.UserRepository,
	threads repository.ThreadRepository,
	posts repository.PostRepository,
	messages repository.MessageRepository,
) UserService {
	return &userService{
		users:    users,
		threads:  threads,
		posts:    posts,
		messages: messages,
	}
}

// GetUser retrieves a user by ID.
func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// PublicName resolves an author reference to a display name, falling back
// for removed accounts.
func (s *userService) PublicName(ctx context.Context, id uuid.UUID) (string, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return deletedUserName, nil
		}
		return "", fmt.Errorf("find user: %w", err)
	}
	return user.Name, nil
}

// List returns a page of users plus the total count.
func (s *userService) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	users, err := s.users.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, count, nil
}

// RecentlyOnline returns users seen after the given instant.
func (s *userService) RecentlyOnline(ctx context.Context, since time.Time, page, limit int) ([]model.User, error) {
	users, err := s.users.RecentlyOnline(ctx, since, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list recently online: %w", err)
	}
	return users, nil
}

// UpdateName changes the actor's display name.
func (s *userService) UpdateName(ctx context.Context, actor *model.User, name string) error {
	existing, err := s.users.FindByName(ctx, name)
	if err == nil && existing != nil && existing.ID != actor.ID {
		return fmt.Errorf("name taken: %w", apperrors.ErrConflict)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check name: %w", err)
	}
	return s.users.UpdateName(ctx, actor.ID, name)
}

// UpdateProfile changes the actor's description and social links.
func (s *userService) UpdateProfile(ctx context.Context, actor *model.User, description, facebook, xID *string) error {
	return s.users.UpdateProfile(ctx, actor.ID, description, facebook, xID)
}

// UpdateAvatar changes the actor's avatar reference.
func (s *userService) UpdateAvatar(ctx context.Context, actor *model.User, avatar *string) error {
	return s.users.UpdateAvatar(ctx, actor.ID, avatar)
}

// ChangePassword verifies the old password before storing the new hash.
func (s *userService) ChangePassword(ctx context.Context, actor *model.User, oldPassword, newPassword string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(actor.PasswordHash), []byte(oldPassword)); err != nil {
		return fmt.Errorf("old password mismatch: %w", apperrors.ErrForbidden)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, actor.ID, string(hashed))
}

// ChangeRole assigns a role to the target account. Admin only.
func (s *userService) ChangeRole(ctx context.Context, actor *model.User, target uuid.UUID, role model.Role) error {
	if actor.Role != model.RoleAdmin {
		return apperrors.ErrForbidden
	}
	if !policy.Valid(role) {
		return fmt.Errorf("unknown role %q: %w", role, apperrors.ErrConflict)
	}
	if _, err := s.users.FindByID(ctx, target); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user: %w", apperrors.ErrNotFound)
		}
		return fmt.Errorf("find user: %w", err)
	}
	return s.users.UpdateRole(ctx, target, role)
}

// Threads lists threads authored by a user.
func (s *userService) Threads(ctx context.Context, userID uuid.UUID) ([]model.Thread, error) {
	threads, err := s.threads.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user threads: %w", err)
	}
	return threads, nil
}

// Posts lists posts authored by a user.
func (s *userService) Posts(ctx context.Context, userID uuid.UUID) ([]model.Post, error) {
	posts, err := s.posts.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user posts: %w", err)
	}
	return posts, nil
}

// SendMessage delivers a private message; the recipient must exist.
func (s *userService) SendMessage(ctx context.Context, actor *model.User, recipient uuid.UUID, content string) error {
	if _, err := s.users.FindByID(ctx, recipient); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("recipient: %w", apperrors.ErrNotFound)
		}
		return fmt.Errorf("find recipient: %w", err)
	}
	author := actor.ID
	message := &model.PrivateMessage{
		Author:   &author,
		Receiver: recipient,
		Content:  content,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Inbox returns the actor's received messages, newest first.
func (s *userService) Inbox(ctx context.Context, actor *model.User, page, limit int) ([]model.PrivateMessage, error) {
	messages, err := s.messages.ListByReceiver(ctx, actor.ID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	return messages, nil
}
