package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "forumhub/internal/errors"
	"forumhub/internal/model"
	"forumhub/internal/policy"
)

type forumMocks struct {
	sections *MockSectionRepository
	threads  *MockThreadRepository
	posts    *MockPostRepository
	chat     *MockChatRepository
}

func newForumServiceForTest(now time.Time) (ForumService, *forumMocks) {
	m := &forumMocks{
		sections: new(MockSectionRepository),
		threads:  new(MockThreadRepository),
		posts:    new(MockPostRepository),
		chat:     new(MockChatRepository),
	}
	guard := policy.NewGuard(policy.DefaultGuardConfig())
	// nil cache behaves as a permanent miss
	service := NewForumService(m.sections, m.threads, m.posts, m.chat, guard, nil, fixedClock(now))
	return service, m
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestForumService_CreateSection(t *testing.T) {
	admin := &model.User{ID: uuid.New(), Role: model.RoleAdmin}
	user := &model.User{ID: uuid.New(), Role: model.RoleUser}

	t.Run("elevated actor creates section with deduplicated roles", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.sections.On("Create", mock.Anything, mock.AnythingOfType("*model.Section")).Run(func(args mock.Arguments) {
			section := args.Get(1).(*model.Section)
			assert.Len(t, section.AllowedFor, 2)
		}).Return(nil)

		section, err := service.CreateSection(context.Background(), admin, "General", nil,
			[]model.Role{model.RoleUser, model.RoleMod, model.RoleUser})
		assert.NoError(t, err)
		assert.NotNil(t, section)
		m.sections.AssertExpectations(t)
	})

	t.Run("plain user is forbidden", func(t *testing.T) {
		service, _ := newForumServiceForTest(testNow)
		_, err := service.CreateSection(context.Background(), user, "General", nil, []model.Role{model.RoleUser})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("empty allowed set is rejected before any write", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		_, err := service.CreateSection(context.Background(), admin, "Ghost", nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		m.sections.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown role in allowed set is rejected", func(t *testing.T) {
		service, _ := newForumServiceForTest(testNow)
		_, err := service.CreateSection(context.Background(), admin, "Weird", nil, []model.Role{model.Role("root")})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestForumService_VisibleSections(t *testing.T) {
	service, m := newForumServiceForTest(testNow)
	user := &model.User{ID: uuid.New(), Role: model.RoleUser}

	m.sections.On("ListForRole", mock.Anything, model.RoleUser).Return([]model.Section{
		{ID: 1, Name: "General"},
	}, nil)

	sections, err := service.VisibleSections(context.Background(), user)
	assert.NoError(t, err)
	assert.Len(t, sections, 1)
	m.sections.AssertExpectations(t)
}

func TestForumService_CreateThread(t *testing.T) {
	user := &model.User{ID: uuid.New(), Role: model.RoleUser}
	everyone := []model.Role{model.RoleAdmin, model.RoleMod, model.RoleUser}
	staffOnly := []model.Role{model.RoleAdmin, model.RoleMod}

	t.Run("member opens a thread", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.sections.On("AllowedRoles", mock.Anything, int64(1)).Return(everyone, nil)
		m.threads.On("Create", mock.Anything, mock.AnythingOfType("*model.Thread"), []string{"intro"}).Return(nil)

		thread, err := service.CreateThread(context.Background(), user, 1, "Hello", "First thread", []string{"intro"})
		assert.NoError(t, err)
		assert.Equal(t, user.ID, thread.Author)
		assert.Equal(t, testNow, thread.CreatedAt)
		m.threads.AssertExpectations(t)
	})

	t.Run("non-member is forbidden", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.sections.On("AllowedRoles", mock.Anything, int64(2)).Return(staffOnly, nil)

		_, err := service.CreateThread(context.Background(), user, 2, "Hello", "Body", nil)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		m.threads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("section with no roles reads as missing", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.sections.On("AllowedRoles", mock.Anything, int64(3)).Return([]model.Role{}, nil)

		_, err := service.CreateThread(context.Background(), user, 3, "Hello", "Body", nil)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestForumService_UpdateThread(t *testing.T) {
	owner := &model.User{ID: uuid.New(), Role: model.RoleUser}
	stranger := &model.User{ID: uuid.New(), Role: model.RoleUser}
	mod := &model.User{ID: uuid.New(), Role: model.RoleMod}
	thread := &model.Thread{ID: 1, Author: owner.ID}

	tests := []struct {
		name          string
		actor         *model.User
		expectedError error
	}{
		{"author edits own thread", owner, nil},
		{"mod edits any thread", mod, nil},
		{"stranger is forbidden", stranger, apperrors.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := newForumServiceForTest(testNow)
			m.threads.On("FindByID", mock.Anything, int64(1)).Return(thread, nil)
			if tt.expectedError == nil {
				m.threads.On("Update", mock.Anything, int64(1), "New", "Body").Return(nil)
			}

			err := service.UpdateThread(context.Background(), tt.actor, 1, "New", "Body")
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			m.threads.AssertExpectations(t)
		})
	}
}

func TestForumService_DeleteThread(t *testing.T) {
	mod := &model.User{ID: uuid.New(), Role: model.RoleMod}
	owner := &model.User{ID: uuid.New(), Role: model.RoleUser}
	thread := &model.Thread{ID: 1, Author: owner.ID}

	t.Run("elevated actor deletes", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.threads.On("FindByID", mock.Anything, int64(1)).Return(thread, nil)
		m.threads.On("Delete", mock.Anything, int64(1)).Return(nil)

		assert.NoError(t, service.DeleteThread(context.Background(), mod, 1))
		m.threads.AssertExpectations(t)
	})

	t.Run("even the author cannot delete without an elevated role", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		err := service.DeleteThread(context.Background(), owner, 1)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		m.threads.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestForumService_LockThread(t *testing.T) {
	mod := &model.User{ID: uuid.New(), Role: model.RoleMod}
	user := &model.User{ID: uuid.New(), Role: model.RoleUser}
	thread := &model.Thread{ID: 1}

	t.Run("mod locks a thread", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.threads.On("FindByID", mock.Anything, int64(1)).Return(thread, nil)
		m.threads.On("SetLocked", mock.Anything, int64(1), true).Return(nil)

		assert.NoError(t, service.LockThread(context.Background(), mod, 1, true))
		m.threads.AssertExpectations(t)
	})

	t.Run("user cannot lock", func(t *testing.T) {
		service, _ := newForumServiceForTest(testNow)
		assert.ErrorIs(t, service.LockThread(context.Background(), user, 1, true), apperrors.ErrForbidden)
	})
}

func TestForumService_CreatePost(t *testing.T) {
	user := &model.User{ID: uuid.New(), Role: model.RoleUser}
	mod := &model.User{ID: uuid.New(), Role: model.RoleMod}

	t.Run("reply to an open thread", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.threads.On("FindByID", mock.Anything, int64(1)).Return(&model.Thread{ID: 1}, nil)
		m.posts.On("Create", mock.Anything, mock.AnythingOfType("*model.Post")).Return(nil)

		post, err := service.CreatePost(context.Background(), user, 1, "me too")
		assert.NoError(t, err)
		assert.Equal(t, user.ID, *post.Author)
		assert.Equal(t, testNow, post.CreatedAt)
	})

	t.Run("user cannot reply in a locked thread", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.threads.On("FindByID", mock.Anything, int64(2)).Return(&model.Thread{ID: 2, Locked: true}, nil)

		_, err := service.CreatePost(context.Background(), user, 2, "me too")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		m.posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("mod can still reply in a locked thread", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.threads.On("FindByID", mock.Anything, int64(2)).Return(&model.Thread{ID: 2, Locked: true}, nil)
		m.posts.On("Create", mock.Anything, mock.AnythingOfType("*model.Post")).Return(nil)

		_, err := service.CreatePost(context.Background(), mod, 2, "closing this out")
		assert.NoError(t, err)
	})
}

func TestForumService_UpdatePost(t *testing.T) {
	ownerID := uuid.New()
	owner := &model.User{ID: ownerID, Role: model.RoleUser}
	stranger := &model.User{ID: uuid.New(), Role: model.RoleUser}
	admin := &model.User{ID: uuid.New(), Role: model.RoleAdmin}

	t.Run("author edits own post", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.posts.On("FindByID", mock.Anything, int64(1)).Return(&model.Post{ID: 1, Author: &ownerID}, nil)
		m.posts.On("UpdateContent", mock.Anything, int64(1), "fixed typo", testNow).Return(nil)

		assert.NoError(t, service.UpdatePost(context.Background(), owner, 1, "fixed typo"))
		m.posts.AssertExpectations(t)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.posts.On("FindByID", mock.Anything, int64(1)).Return(&model.Post{ID: 1, Author: &ownerID}, nil)

		assert.ErrorIs(t, service.UpdatePost(context.Background(), stranger, 1, "x"), apperrors.ErrForbidden)
	})

	t.Run("orphaned post is staff-only", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.posts.On("FindByID", mock.Anything, int64(2)).Return(&model.Post{ID: 2, Author: nil}, nil)
		m.posts.On("UpdateContent", mock.Anything, int64(2), "moderated", testNow).Return(nil)

		assert.NoError(t, service.UpdatePost(context.Background(), admin, 2, "moderated"))
	})
}

func TestForumService_DeletePost(t *testing.T) {
	ownerID := uuid.New()
	owner := &model.User{ID: ownerID, Role: model.RoleUser}
	admin := &model.User{ID: uuid.New(), Role: model.RoleAdmin}
	post := &model.Post{ID: 1, Author: &ownerID, ThreadID: 5, CreatedAt: testNow.Add(-time.Hour)}

	t.Run("author deletes an unanswered post", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.posts.On("FindByID", mock.Anything, int64(1)).Return(post, nil)
		m.posts.On("CountAfter", mock.Anything, post).Return(int64(0), nil)
		m.posts.On("Delete", mock.Anything, int64(1)).Return(nil)

		assert.NoError(t, service.DeletePost(context.Background(), owner, 1))
		m.posts.AssertExpectations(t)
	})

	t.Run("answered post cannot be deleted even by an admin", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.posts.On("FindByID", mock.Anything, int64(1)).Return(post, nil)
		m.posts.On("CountAfter", mock.Anything, post).Return(int64(2), nil)

		err := service.DeletePost(context.Background(), admin, 1)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		m.posts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing post", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.posts.On("FindByID", mock.Anything, int64(9)).Return(nil, gorm.ErrRecordNotFound)

		assert.ErrorIs(t, service.DeletePost(context.Background(), owner, 9), apperrors.ErrNotFound)
	})
}

func TestForumService_Chat(t *testing.T) {
	user := &model.User{ID: uuid.New(), Name: "alice", Role: model.RoleUser}
	mod := &model.User{ID: uuid.New(), Role: model.RoleMod}

	t.Run("feed returns the latest messages", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.chat.On("Latest", mock.Anything, chatFeedLimit).Return([]model.ChatMessage{
			{ID: 2, Content: "hi"},
			{ID: 1, Content: "hello"},
		}, nil)

		messages, err := service.ChatFeed(context.Background())
		assert.NoError(t, err)
		assert.Len(t, messages, 2)
	})

	t.Run("posting fills the author name", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.chat.On("Create", mock.Anything, mock.AnythingOfType("*model.ChatMessage")).Return(nil)

		message, err := service.PostChat(context.Background(), user, "hello")
		assert.NoError(t, err)
		assert.Equal(t, "alice", message.AuthorName)
		assert.Equal(t, testNow, message.Added)
	})

	t.Run("delete is elevated-only", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.chat.On("Delete", mock.Anything, int64(1)).Return(nil)

		assert.NoError(t, service.DeleteChat(context.Background(), mod, 1))
		assert.ErrorIs(t, service.DeleteChat(context.Background(), user, 2), apperrors.ErrForbidden)
	})
}

func TestForumService_ThreadWithPosts(t *testing.T) {
	user := &model.User{ID: uuid.New(), Role: model.RoleUser}
	thread := &model.Thread{ID: 1, SectionID: 7}

	t.Run("visible thread returns a page of posts", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.threads.On("FindByID", mock.Anything, int64(1)).Return(thread, nil)
		m.sections.On("AllowedRoles", mock.Anything, int64(7)).Return([]model.Role{model.RoleUser}, nil)
		m.posts.On("ListByThread", mock.Anything, int64(1), 1, 10).Return([]model.Post{{ID: 1}}, nil)

		got, posts, err := service.ThreadWithPosts(context.Background(), user, 1, 1, 10)
		assert.NoError(t, err)
		assert.Equal(t, thread, got)
		assert.Len(t, posts, 1)
	})

	t.Run("thread in a hidden section is forbidden", func(t *testing.T) {
		service, m := newForumServiceForTest(testNow)
		m.threads.On("FindByID", mock.Anything, int64(1)).Return(thread, nil)
		m.sections.On("AllowedRoles", mock.Anything, int64(7)).Return([]model.Role{model.RoleAdmin}, nil)

		_, _, err := service.ThreadWithPosts(context.Background(), user, 1, 1, 10)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}
