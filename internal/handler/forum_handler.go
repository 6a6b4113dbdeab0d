package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"forumhub/internal/auth"
	"forumhub/internal/model"
	"forumhub/internal/service"
)

// ForumHandler handles section, thread and post endpoints.
type ForumHandler struct {
	forumService service.ForumService
}

// NewForumHandler creates a new forum handler.
func NewForumHandler(forumService service.ForumService) *ForumHandler {
	return &ForumHandler{forumService: forumService}
}

// CreateSectionRequest creates a section with its allowed-role set.
type CreateSectionRequest struct {
	Name        string       `json:"name" validate:"required,min=3,max=255"`
	Description *string      `json:"description" validate:"omitempty,max=1024"`
	AllowedFor  []model.Role `json:"allowed_for" validate:"required,min=1,dive,oneof=admin mod user"`
}

// CreateThreadRequest opens a thread in a section.
type CreateThreadRequest struct {
	SectionID int64    `json:"section_id" validate:"required"`
	Title     string   `json:"title" validate:"required,min=3,max=255"`
	Content   string   `json:"content" validate:"required"`
	Hashtags  []string `json:"hashtags" validate:"omitempty,dive,min=1,max=64"`
}

// UpdateThreadRequest edits a thread's title and content.
type UpdateThreadRequest struct {
	ThreadID int64  `json:"thread_id" validate:"required"`
	Title    string `json:"title" validate:"required,min=3,max=255"`
	Content  string `json:"content" validate:"required"`
}

// DeleteThreadRequest removes a thread.
type DeleteThreadRequest struct {
	ThreadID int64 `json:"thread_id" validate:"required"`
}

// LockThreadRequest locks or unlocks a thread.
type LockThreadRequest struct {
	ThreadID int64 `json:"thread_id" validate:"required"`
	Locked   bool  `json:"locked"`
}

// StickyThreadRequest pins or unpins a thread.
type StickyThreadRequest struct {
	ThreadID int64 `json:"thread_id" validate:"required"`
	Sticky   bool  `json:"sticky"`
}

// CreatePostRequest replies to a thread.
type CreatePostRequest struct {
	ThreadID int64  `json:"thread_id" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

// UpdatePostRequest edits a post.
type UpdatePostRequest struct {
	PostID  int64  `json:"post_id" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// DeletePostRequest removes a post.
type DeletePostRequest struct {
	PostID int64 `json:"post_id" validate:"required"`
}

// Sections godoc
// @Summary Sections visible to the caller
// @Tags forum
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /forum [get]
func (h *ForumHandler) Sections(c echo.Context) error {
	user := auth.MustCurrentUser(c)
	sections, err := h.forumService.VisibleSections(c.Request().Context(), user)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"sections": sections})
}

// CreateSection godoc
// @Summary Create a section
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSectionRequest true "Section"
// @Success 201 {object} model.Section
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /forum/sections [post]
func (h *ForumHandler) CreateSection(c echo.Context) error {
	user, req := auth.MustCurrentUser(c), new(CreateSectionRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	section, err := h.forumService.CreateSection(c.Request().Context(), user, req.Name, req.Description, req.AllowedFor)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, section)
}

// DeleteSection godoc
// @Summary Delete a section
// @Tags forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /forum/sections/{id} [delete]
func (h *ForumHandler) DeleteSection(c echo.Context) error {
	user := auth.MustCurrentUser(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid section id")
	}
	if err := h.forumService.DeleteSection(c.Request().Context(), user, id); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "section deleted"})
}

// SectionThreads godoc
// @Summary Threads in a section
// @Tags forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.ErrorResponse
// @Router /forum/section/{id} [get]
func (h *ForumHandler) SectionThreads(c echo.Context) error {
	user := auth.MustCurrentUser(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid section id")
	}
	page, limit := pagination(c)
	threads, err := h.forumService.SectionThreads(c.Request().Context(), user, id, page, limit)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"threads": threads})
}

// CreateThread godoc
// @Summary Open a thread
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateThreadRequest true "Thread"
// @Success 201 {object} model.Thread
// @Failure 403 {object} errors.ErrorResponse
// @Router /forum/threads [post]
func (h *ForumHandler) CreateThread(c echo.Context) error {
	user, req := auth.MustCurrentUser(c), new(CreateThreadRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	thread, err := h.forumService.CreateThread(c.Request().Context(), user, req.SectionID, req.Title, req.Content, req.Hashtags)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, thread)
}

// UpdateThread godoc
// @Summary Edit a thread
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateThreadRequest true "Thread edit"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Router /forum/threads [put]
func (h *ForumHandler) UpdateThread(c echo.Context) error {
	user, req := auth.MustCurrentUser(c), new(UpdateThreadRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	if err := h.forumService.UpdateThread(c.Request().Context(), user, req.ThreadID, req.Title, req.Content); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "thread updated"})
}

// DeleteThread godoc
// @Summary Delete a thread
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DeleteThreadRequest true "Thread"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Router /forum/threads [delete]
func (h *ForumHandler) DeleteThread(c echo.Context) error {
	user, req := auth.MustCurrentUser(c), new(DeleteThreadRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	if err := h.forumService.DeleteThread(c.Request().Context(), user, req.ThreadID); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "thread deleted"})
}

// LockThread godoc
// @Summary Lock or unlock a thread
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LockThreadRequest true "Lock state"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Router /forum/threads/lock [put]
func (h *ForumHandler) LockThread(c echo.Context) error {
	user, req := auth.MustCurrentUser(c), new(LockThreadRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	if err := h.forumService.LockThread(c.Request().Context(), user, req.ThreadID, req.Locked); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "thread lock updated"})
}

// StickyThread godoc
// @Summary Pin or unpin a thread
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StickyThreadRequest true "Sticky state"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Router /forum/threads/sticky [put]
func (h *ForumHandler) StickyThread(c echo.Context) error {
	user, req := auth.MustCurrentUser(c), new(StickyThreadRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	if err := h.forumService.StickyThread(c.Request().Context(), user, req.ThreadID, req.Sticky); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "thread sticky updated"})
}

// GetThread godoc
// @Summary Thread with one page of posts
// @Tags forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thread ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /forum/threads/{id} [get]
func (h *ForumHandler) GetThread(c echo.Context) error {
	user := auth.MustCurrentUser(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid thread id")
	}
	page, limit := pagination(c)
	thread, posts, err := h.forumService.ThreadWithPosts(c.Request().Context(), user, id, page, limit)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"info":  thread,
		"posts": posts,
	})
}

// CreatePost godoc
// @Summary Reply to a thread
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePostRequest true "Post"
// @Success 201 {object} model.Post
// @Failure 403 {object} errors.ErrorResponse
// @Router /forum/post [post]
func (h *ForumHandler) CreatePost(c echo.Context) error {
	user, req := auth.MustCurrentUser(c), new(CreatePostRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	post, err := h.forumService.CreatePost(c.Request().Context(), user, req.ThreadID, req.Content)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// UpdatePost godoc
// @Summary Edit a post
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdatePostRequest true "Post edit"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Router /forum/post [put]
func (h *ForumHandler) UpdatePost(c echo.Context) error {
	user, req := auth.MustCurrentUser(c), new(UpdatePostRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	if err := h.forumService.UpdatePost(c.Request().Context(), user, req.PostID, req.Content); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "post updated"})
}

// DeletePost godoc
// @Summary Delete a post
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DeletePostRequest true "Post"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /forum/post [delete]
func (h *ForumHandler) DeletePost(c echo.Context) error {
	user, req := auth.MustCurrentUser(c), new(DeletePostRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	if err := h.forumService.DeletePost(c.Request().Context(), user, req.PostID); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "post deleted"})
}

// LikePost godoc
// @Summary Like a post
// @Tags forum
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /forum/post/{id}/like [put]
func (h *ForumHandler) LikePost(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}
	if err := h.forumService.LikePost(c.Request().Context(), id); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "post liked"})
}
