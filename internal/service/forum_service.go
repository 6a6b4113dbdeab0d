package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"forumhub/internal/cache"
	"forumhub/internal/clock"
	apperrors "forumhub/internal/errors"
	"forumhub/internal/model"
	"forumhub/internal/policy"
	"forumhub/internal/repository"
)

const (
	sectionCacheTTL = 5 * time.Minute
	chatCacheTTL    = 30 * time.Second
	chatFeedLimit   = 50
)

// ForumService covers sections, threads, posts and the chat feed. Every
// mutating operation consults the role policy or the ownership guard before
// touching storage.
type ForumService interface {
	CreateSection(ctx context.Context, actor *model.User, name string, description *string, allowed []model.Role) (*model.Section, error)
	DeleteSection(ctx context.Context, actor *model.User, id int64) error
	VisibleSections(ctx context.Context, actor *model.User) ([]model.Section, error)

	CreateThread(ctx context.Context, actor *model.User, sectionID int64, title, content string, tags []string) (*model.Thread, error)
	UpdateThread(ctx context.Context, actor *model.User, threadID int64, title, content string) error
	DeleteThread(ctx context.Context, actor *model.User, threadID int64) error
	LockThread(ctx context.Context, actor *model.User, threadID int64, locked bool) error
	StickyThread(ctx context.Context, actor *model.User, threadID int64, sticky bool) error
	SectionThreads(ctx context.Context, actor *model.User, sectionID int64, page, limit int) ([]model.Thread, error)
	ThreadWithPosts(ctx context.Context, actor *model.User, threadID int64, page, limit int) (*model.Thread, []model.Post, error)

	CreatePost(ctx context.Context, actor *model.User, threadID int64, content string) (*model.Post, error)
	UpdatePost(ctx context.Context, actor *model.User, postID int64, content string) error
	DeletePost(ctx context.Context, actor *model.User, postID int64) error
	LikePost(ctx context.Context, postID int64) error

	ChatFeed(ctx context.Context) ([]model.ChatMessage, error)
	PostChat(ctx context.Context, actor *model.User, content string) (*model.ChatMessage, error)
	DeleteChat(ctx context.Context, actor *model.User, id int64) error
}

type forumService struct {
	sections repository.SectionRepository
	threads  repository.ThreadRepository
	posts    repository.PostRepository
	chat     repository.ChatRepository
	guard    *policy.Guard
	cache    *cache.Client
	now      clock.Now
}

// NewForumService creates a new forum service.
func NewForumService(
	sections repository.SectionRepository,
	threads repository.ThreadRepository,
	posts repository.PostRepository,
	chat repository.ChatRepository,
	guard *policy.Guard,
	cacheClient *cache.Client,
	now clock.Now,
) ForumService {
	return &forumService{
		sections: sections,
		threads:  threads,
		posts:    posts,
		chat:     chat,
		guard:    guard,
		cache:    cacheClient,
		now:      now,
	}
}

func sectionCacheKey(role model.Role) string {
	return fmt.Sprintf("sections:role:%s", role)
}

const chatCacheKey = "chat:recent"

// CreateSection rejects an empty allowed-role set before any write.
func (s *forumService) CreateSection(ctx context.Context, actor *model.User, name string, description *string, allowed []model.Role) (*model.Section, error) {
	if !policy.Elevated(actor.Role) {
		return nil, apperrors.ErrForbidden
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("section needs at least one allowed role: %w", apperrors.ErrConflict)
	}

	seen := map[model.Role]bool{}
	roles := make([]model.SectionRole, 0, len(allowed))
	for _, r := range allowed {
		if !policy.Valid(r) {
			return nil, fmt.Errorf("unknown role %q: %w", r, apperrors.ErrConflict)
		}
		if seen[r] {
			continue
		}
		seen[r] = true
		roles = append(roles, model.SectionRole{Role: r})
	}

	section := &model.Section{
		Name:        name,
		Description: description,
		AllowedFor:  roles,
	}
	if err := s.sections.Create(ctx, section); err != nil {
		return nil, fmt.Errorf("create section: %w", err)
	}

	s.invalidateSectionCache(ctx)
	return section, nil
}

// DeleteSection removes the section and its allowed-role rows.
func (s *forumService) DeleteSection(ctx context.Context, actor *model.User, id int64) error {
	if !policy.Elevated(actor.Role) {
		return apperrors.ErrForbidden
	}
	if _, err := s.sections.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("section: %w", apperrors.ErrNotFound)
		}
		return fmt.Errorf("find section: %w", err)
	}
	if err := s.sections.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	s.invalidateSectionCache(ctx)
	return nil
}

// VisibleSections lists the sections the actor's role may view, cached per
// role.
func (s *forumService) VisibleSections(ctx context.Context, actor *model.User) ([]model.Section, error) {
	key := sectionCacheKey(actor.Role)
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached []model.Section
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	sections, err := s.sections.ListForRole(ctx, actor.Role)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}

	if payload, err := json.Marshal(sections); err == nil {
		_ = s.cache.Set(ctx, key, payload, sectionCacheTTL)
	}
	return sections, nil
}

func (s *forumService) invalidateSectionCache(ctx context.Context) {
	_ = s.cache.Delete(ctx,
		sectionCacheKey(model.RoleAdmin),
		sectionCacheKey(model.RoleMod),
		sectionCacheKey(model.RoleUser),
	)
}

// CreateThread requires the target section to be visible to the actor.
func (s *forumService) CreateThread(ctx context.Context, actor *model.User, sectionID int64, title, content string, tags []string) (*model.Thread, error) {
	allowed, err := s.sections.AllowedRoles(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("load section roles: %w", err)
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("section: %w", apperrors.ErrNotFound)
	}
	if !policy.CanView(actor.Role, allowed) {
		return nil, apperrors.ErrForbidden
	}

	thread := &model.Thread{
		Title:     title,
		Content:   content,
		Author:    actor.ID,
		SectionID: sectionID,
		CreatedAt: s.now(),
	}
	if err := s.threads.Create(ctx, thread, tags); err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	return thread, nil
}

// UpdateThread lets elevated roles and the author edit.
func (s *forumService) UpdateThread(ctx context.Context, actor *model.User, threadID int64, title, content string) error {
	thread, err := s.loadThread(ctx, threadID)
	if err != nil {
		return err
	}
	if d := s.guard.CanEditThread(actor, thread); !d.Allowed {
		return fmt.Errorf("%s: %w", d.Reason, d.Err)
	}
	if err := s.threads.Update(ctx, threadID, title, content); err != nil {
		return fmt.Errorf("update thread: %w", err)
	}
	return nil
}

// DeleteThread is elevated-only.
func (s *forumService) DeleteThread(ctx context.Context, actor *model.User, threadID int64) error {
	if policy.RequiresElevated(policy.ActionDeleteThread) && !policy.Elevated(actor.Role) {
		return apperrors.ErrForbidden
	}
	if _, err := s.loadThread(ctx, threadID); err != nil {
		return err
	}
	if err := s.threads.Delete(ctx, threadID); err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}
	return nil
}

// LockThread is elevated-only.
func (s *forumService) LockThread(ctx context.Context, actor *model.User, threadID int64, locked bool) error {
	if policy.RequiresElevated(policy.ActionLockThread) && !policy.Elevated(actor.Role) {
		return apperrors.ErrForbidden
	}
	if _, err := s.loadThread(ctx, threadID); err != nil {
		return err
	}
	if err := s.threads.SetLocked(ctx, threadID, locked); err != nil {
		return fmt.Errorf("lock thread: %w", err)
	}
	return nil
}

// StickyThread is elevated-only.
func (s *forumService) StickyThread(ctx context.Context, actor *model.User, threadID int64, sticky bool) error {
	if !policy.Elevated(actor.Role) {
		return apperrors.ErrForbidden
	}
	if _, err := s.loadThread(ctx, threadID); err != nil {
		return err
	}
	if err := s.threads.SetSticky(ctx, threadID, sticky); err != nil {
		return fmt.Errorf("sticky thread: %w", err)
	}
	return nil
}

// SectionThreads lists a visible section's threads, sticky first.
func (s *forumService) SectionThreads(ctx context.Context, actor *model.User, sectionID int64, page, limit int) ([]model.Thread, error) {
	allowed, err := s.sections.AllowedRoles(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("load section roles: %w", err)
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("section: %w", apperrors.ErrNotFound)
	}
	if !policy.CanView(actor.Role, allowed) {
		return nil, apperrors.ErrForbidden
	}
	threads, err := s.threads.ListBySection(ctx, sectionID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	return threads, nil
}

// ThreadWithPosts returns a thread and one page of its posts. The section
// visibility rule applies to the thread's section.
func (s *forumService) ThreadWithPosts(ctx context.Context, actor *model.User, threadID int64, page, limit int) (*model.Thread, []model.Post, error) {
	thread, err := s.loadThread(ctx, threadID)
	if err != nil {
		return nil, nil, err
	}
	allowed, err := s.sections.AllowedRoles(ctx, thread.SectionID)
	if err != nil {
		return nil, nil, fmt.Errorf("load section roles: %w", err)
	}
	if !policy.CanView(actor.Role, allowed) {
		return nil, nil, apperrors.ErrForbidden
	}
	posts, err := s.posts.ListByThread(ctx, threadID, page, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("list posts: %w", err)
	}
	return thread, posts, nil
}

// CreatePost applies the locked-thread rule before inserting.
func (s *forumService) CreatePost(ctx context.Context, actor *model.User, threadID int64, content string) (*model.Post, error) {
	thread, err := s.loadThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if d := s.guard.CanPostInThread(actor, thread); !d.Allowed {
		return nil, fmt.Errorf("%s: %w", d.Reason, d.Err)
	}

	author := actor.ID
	post := &model.Post{
		Content:   content,
		Author:    &author,
		ThreadID:  threadID,
		CreatedAt: s.now(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// UpdatePost lets elevated roles and the author edit; an orphaned post
// (author account removed) is elevated-only.
func (s *forumService) UpdatePost(ctx context.Context, actor *model.User, postID int64, content string) error {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}
	if d := s.guard.CanEditPost(actor, post); !d.Allowed {
		return fmt.Errorf("%s: %w", d.Reason, d.Err)
	}
	if err := s.posts.UpdateContent(ctx, postID, content, s.now()); err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// DeletePost applies the edit rule and then the reply-chain rule: a post
// with later posts in its thread cannot be deleted by anyone.
func (s *forumService) DeletePost(ctx context.Context, actor *model.User, postID int64) error {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}
	repliesAfter, err := s.posts.CountAfter(ctx, post)
	if err != nil {
		return fmt.Errorf("count replies: %w", err)
	}
	if d := s.guard.CanDeletePost(actor, post, repliesAfter); !d.Allowed {
		return fmt.Errorf("%s: %w", d.Reason, d.Err)
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// LikePost bumps the like counter.
func (s *forumService) LikePost(ctx context.Context, postID int64) error {
	if _, err := s.loadPost(ctx, postID); err != nil {
		return err
	}
	if err := s.posts.IncrementLikes(ctx, postID); err != nil {
		return fmt.Errorf("like post: %w", err)
	}
	return nil
}

// ChatFeed returns the latest chat messages, briefly cached.
func (s *forumService) ChatFeed(ctx context.Context) ([]model.ChatMessage, error) {
	if data, _ := s.cache.Get(ctx, chatCacheKey); data != nil {
		var cached []model.ChatMessage
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	messages, err := s.chat.Latest(ctx, chatFeedLimit)
	if err != nil {
		return nil, fmt.Errorf("load chat feed: %w", err)
	}

	if payload, err := json.Marshal(messages); err == nil {
		_ = s.cache.Set(ctx, chatCacheKey, payload, chatCacheTTL)
	}
	return messages, nil
}

// PostChat appends to the chat feed.
func (s *forumService) PostChat(ctx context.Context, actor *model.User, content string) (*model.ChatMessage, error) {
	message := &model.ChatMessage{
		Added:   s.now(),
		Author:  actor.ID,
		Content: content,
	}
	if err := s.chat.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("post chat message: %w", err)
	}
	_ = s.cache.Delete(ctx, chatCacheKey)
	message.AuthorName = actor.Name
	return message, nil
}

// DeleteChat is elevated-only.
func (s *forumService) DeleteChat(ctx context.Context, actor *model.User, id int64) error {
	if policy.RequiresElevated(policy.ActionDeleteChat) && !policy.Elevated(actor.Role) {
		return apperrors.ErrForbidden
	}
	if err := s.chat.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete chat message: %w", err)
	}
	_ = s.cache.Delete(ctx, chatCacheKey)
	return nil
}

func (s *forumService) loadThread(ctx context.Context, id int64) (*model.Thread, error) {
	thread, err := s.threads.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("thread: %w", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("find thread: %w", err)
	}
	return thread, nil
}

func (s *forumService) loadPost(ctx context.Context, id int64) (*model.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post: %w", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return post, nil
}
