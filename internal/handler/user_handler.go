package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"forumhub/internal/auth"
	"forumhub/internal/model"
	"forumhub/internal/service"
)

// UserHandler handles profile, moderation and private-message endpoints.
type UserHandler struct {
	userService service.UserService
	moderation  service.ModerationService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService, moderation service.ModerationService) *UserHandler {
	return &UserHandler{userService: userService, moderation: moderation}
}

// UpdateNameRequest changes the display name.
type UpdateNameRequest struct {
	Name string `json:"name" validate:"required,min=3,max=64"`
}

// UpdateProfileRequest changes description and social links.
type UpdateProfileRequest struct {
	Description *string `json:"description" validate:"omitempty,max=1024"`
	Facebook    *string `json:"facebook" validate:"omitempty,max=255"`
	XID         *string `json:"x_id" validate:"omitempty,max=255"`
}

// UpdateAvatarRequest changes the avatar reference.
type UpdateAvatarRequest struct {
	Avatar *string `json:"avatar" validate:"omitempty,max=512"`
}

// ChangePasswordRequest changes the password after checking the old one.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// ChangeRoleRequest assigns a role to a user. Admin only.
type ChangeRoleRequest struct {
	UserID uuid.UUID  `json:"user_id" validate:"required"`
	Role   model.Role `json:"role" validate:"required,oneof=admin mod user"`
}

// WarnRequest appends a warning, optionally with a ban.
type WarnRequest struct {
	UserID  uuid.UUID `json:"user_id" validate:"required"`
	Comment *string   `json:"comment" validate:"omitempty,max=1024"`
	BanDays int       `json:"ban_days"`
}

// UnbanRequest lifts a user's ban.
type UnbanRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// SendMessageRequest sends a private message.
type SendMessageRequest struct {
	RecipientID uuid.UUID `json:"recipient_id" validate:"required"`
	Content     string    `json:"content" validate:"required,max=65535"`
}

// Me godoc
// @Summary Current account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Router /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, user)
}

// GetUser godoc
// @Summary Public name of a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} map[string]string
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	name, err := h.userService.PublicName(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"name": name})
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	page, limit := pagination(c)
	users, count, err := h.userService.List(c.Request().Context(), page, limit)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"users":   users,
		"results": count,
	})
}

// RecentlyOnline godoc
// @Summary Users seen online recently
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param since query string false "RFC3339 lower bound, default 15 minutes ago"
// @Success 200 {object} map[string]interface{}
// @Router /users/online [get]
func (h *UserHandler) RecentlyOnline(c echo.Context) error {
	since := time.Now().Add(-15 * time.Minute)
	if raw := c.QueryParam("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid since timestamp")
		}
		since = parsed
	}
	page, limit := pagination(c)
	users, err := h.userService.RecentlyOnline(c.Request().Context(), since, page, limit)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"users": users})
}

// UpdateName godoc
// @Summary Change display name
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateNameRequest true "New name"
// @Success 200 {object} map[string]string
// @Router /users/name [put]
func (h *UserHandler) UpdateName(c echo.Context) error {
	user, req := auth.MustCurrentUser(c), new(UpdateNameRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	if err := h.userService.UpdateName(c.Request().Context(), user, req.Name); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "name changed"})
}

// UpdateProfile godoc
// @Summary Change profile fields
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} map[string]string
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user, req := auth.MustCurrentUser(c), new(UpdateProfileRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	if err := h.userService.UpdateProfile(c.Request().Context(), user, req.Description, req.Facebook, req.XID); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "profile updated"})
}

// UpdateAvatar godoc
// @Summary Change avatar
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateAvatarRequest true "Avatar reference"
// @Success 200 {object} map[string]string
// @Router /users/avatar [put]
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	user, req := auth.MustCurrentUser(c), new(UpdateAvatarRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	if err := h.userService.UpdateAvatar(c.Request().Context(), user, req.Avatar); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "avatar updated"})
}

// ChangePassword godoc
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Old and new password"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Router /users/password [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	user, req := auth.MustCurrentUser(c), new(ChangePasswordRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	if err := h.userService.ChangePassword(c.Request().Context(), user, req.OldPassword, req.NewPassword); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "password updated"})
}

// ChangeRole godoc
// @Summary Assign a role
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangeRoleRequest true "Target user and role"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Router /users/role [put]
func (h *UserHandler) ChangeRole(c echo.Context) error {
	user, req := auth.MustCurrentUser(c), new(ChangeRoleRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	if err := h.userService.ChangeRole(c.Request().Context(), user, req.UserID, req.Role); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "role changed"})
}

// Warn godoc
// @Summary Warn a user, optionally banning them
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body WarnRequest true "Warning"
// @Success 200 {object} model.Warning
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /mod/warn [post]
func (h *UserHandler) Warn(c echo.Context) error {
	moderator, req := auth.MustCurrentUser(c), new(WarnRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	warning, err := h.moderation.Warn(c.Request().Context(), req.UserID, moderator.ID, req.Comment, req.BanDays)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, warning)
}

// Unban godoc
// @Summary Lift a user's ban
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UnbanRequest true "Target user"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /mod/unban [post]
func (h *UserHandler) Unban(c echo.Context) error {
	req := new(UnbanRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	if err := h.moderation.Unban(c.Request().Context(), req.UserID); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "user unbanned"})
}

// Warnings godoc
// @Summary Warning history of a user
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param since query string false "RFC3339 lower bound"
// @Success 200 {object} map[string]interface{}
// @Router /mod/warnings/{id} [get]
func (h *UserHandler) Warnings(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	var since *time.Time
	if raw := c.QueryParam("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid since timestamp")
		}
		since = &parsed
	}
	warnings, err := h.moderation.ListWarnings(c.Request().Context(), id, since)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"warnings": warnings})
}

// UserThreads godoc
// @Summary Threads authored by a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /users/{id}/threads [get]
func (h *UserHandler) UserThreads(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	threads, err := h.userService.Threads(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"threads": threads})
}

// UserPosts godoc
// @Summary Posts authored by a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /users/{id}/posts [get]
func (h *UserHandler) UserPosts(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	posts, err := h.userService.Posts(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"posts": posts})
}

// SendMessage godoc
// @Summary Send a private message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SendMessageRequest true "Message"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /messages [post]
func (h *UserHandler) SendMessage(c echo.Context) error {
	user, req := auth.MustCurrentUser(c), new(SendMessageRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	if err := h.userService.SendMessage(c.Request().Context(), user, req.RecipientID, req.Content); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "private message sent"})
}

// Inbox godoc
// @Summary Received private messages
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /messages [get]
func (h *UserHandler) Inbox(c echo.Context) error {
	user := auth.MustCurrentUser(c)
	page, limit := pagination(c)
	messages, err := h.userService.Inbox(c.Request().Context(), user, page, limit)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"pms": messages})
}

// bindAndValidate binds the JSON body and runs validator tags.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// pagination reads page/limit query parameters with defaults.
func pagination(c echo.Context) (page, limit int) {
	page, limit = 1, 10
	if raw := c.QueryParam("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	return page, limit
}
