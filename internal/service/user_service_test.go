package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "forumhub/internal/errors"
	"forumhub/internal/model"
)

func TestUserService_PublicName(t *testing.T) {
	id := uuid.New()

	t.Run("existing account", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByID", mock.Anything, id).Return(&model.User{ID: id, Name: "alice"}, nil)

		service := NewUserService(mockUsers, new(MockThreadRepository), new(MockPostRepository), new(MockMessageRepository))
		name, err := service.PublicName(context.Background(), id)
		assert.NoError(t, err)
		assert.Equal(t, "alice", name)
	})

	t.Run("removed account falls back", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		service := NewUserService(mockUsers, new(MockThreadRepository), new(MockPostRepository), new(MockMessageRepository))
		name, err := service.PublicName(context.Background(), id)
		assert.NoError(t, err)
		assert.Equal(t, deletedUserName, name)
	})
}

func TestUserService_UpdateName(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Name: "alice", Role: model.RoleUser}

	t.Run("free name is taken over", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByName", mock.Anything, "alicia").Return(nil, gorm.ErrRecordNotFound)
		mockUsers.On("UpdateName", mock.Anything, actor.ID, "alicia").Return(nil)

		service := NewUserService(mockUsers, new(MockThreadRepository), new(MockPostRepository), new(MockMessageRepository))
		assert.NoError(t, service.UpdateName(context.Background(), actor, "alicia"))
		mockUsers.AssertExpectations(t)
	})

	t.Run("name held by someone else conflicts", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByName", mock.Anything, "bob").Return(&model.User{ID: uuid.New(), Name: "bob"}, nil)

		service := NewUserService(mockUsers, new(MockThreadRepository), new(MockPostRepository), new(MockMessageRepository))
		assert.ErrorIs(t, service.UpdateName(context.Background(), actor, "bob"), apperrors.ErrConflict)
	})

	t.Run("renaming to your own name is a no-op conflict-wise", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByName", mock.Anything, "alice").Return(actor, nil)
		mockUsers.On("UpdateName", mock.Anything, actor.ID, "alice").Return(nil)

		service := NewUserService(mockUsers, new(MockThreadRepository), new(MockPostRepository), new(MockMessageRepository))
		assert.NoError(t, service.UpdateName(context.Background(), actor, "alice"))
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("oldpassword"), bcryptCost)
	actor := &model.User{ID: uuid.New(), PasswordHash: string(hash)}

	t.Run("correct old password", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("UpdatePassword", mock.Anything, actor.ID, mock.AnythingOfType("string")).Return(nil)

		service := NewUserService(mockUsers, new(MockThreadRepository), new(MockPostRepository), new(MockMessageRepository))
		assert.NoError(t, service.ChangePassword(context.Background(), actor, "oldpassword", "newpassword"))
		mockUsers.AssertExpectations(t)
	})

	t.Run("wrong old password", func(t *testing.T) {
		mockUsers := new(MockUserRepository)

		service := NewUserService(mockUsers, new(MockThreadRepository), new(MockPostRepository), new(MockMessageRepository))
		err := service.ChangePassword(context.Background(), actor, "guess", "newpassword")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		mockUsers.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserService_ChangeRole(t *testing.T) {
	admin := &model.User{ID: uuid.New(), Role: model.RoleAdmin}
	mod := &model.User{ID: uuid.New(), Role: model.RoleMod}
	target := uuid.New()

	tests := []struct {
		name          string
		actor         *model.User
		role          model.Role
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "admin promotes a user to mod",
			actor: admin,
			role:  model.RoleMod,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, target).Return(&model.User{ID: target, Role: model.RoleUser}, nil)
				m.On("UpdateRole", mock.Anything, target, model.RoleMod).Return(nil)
			},
		},
		{
			name:          "mod cannot assign roles",
			actor:         mod,
			role:          model.RoleMod,
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:          "unknown role is rejected",
			actor:         admin,
			role:          model.Role("root"),
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrConflict,
		},
		{
			name:  "missing target",
			actor: admin,
			role:  model.RoleUser,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, target).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			tt.setupMock(mockUsers)

			service := NewUserService(mockUsers, new(MockThreadRepository), new(MockPostRepository), new(MockMessageRepository))
			err := service.ChangeRole(context.Background(), tt.actor, target, tt.role)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			mockUsers.AssertExpectations(t)
		})
	}
}

func TestUserService_SendMessage(t *testing.T) {
	actor := &model.User{ID: uuid.New(), Role: model.RoleUser}
	recipient := uuid.New()

	t.Run("delivers to an existing recipient", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockMessages := new(MockMessageRepository)
		mockUsers.On("FindByID", mock.Anything, recipient).Return(&model.User{ID: recipient}, nil)
		mockMessages.On("Create", mock.Anything, mock.MatchedBy(func(msg *model.PrivateMessage) bool {
			return msg.Receiver == recipient && msg.Author != nil && *msg.Author == actor.ID
		})).Return(nil)

		service := NewUserService(mockUsers, new(MockThreadRepository), new(MockPostRepository), mockMessages)
		assert.NoError(t, service.SendMessage(context.Background(), actor, recipient, "hello"))
		mockMessages.AssertExpectations(t)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("FindByID", mock.Anything, recipient).Return(nil, gorm.ErrRecordNotFound)

		service := NewUserService(mockUsers, new(MockThreadRepository), new(MockPostRepository), new(MockMessageRepository))
		err := service.SendMessage(context.Background(), actor, recipient, "hello")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
