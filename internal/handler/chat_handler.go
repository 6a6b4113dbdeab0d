package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"forumhub/internal/auth"
	"forumhub/internal/service"
)

// ChatHandler handles the site-wide chat feed.
type ChatHandler struct {
	forumService service.ForumService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(forumService service.ForumService) *ChatHandler {
	return &ChatHandler{forumService: forumService}
}

// PostChatRequest appends a chat message.
type PostChatRequest struct {
	Content string `json:"content" validate:"required,max=1024"`
}

// Feed godoc
// @Summary Latest chat messages
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /chat [get]
func (h *ChatHandler) Feed(c echo.Context) error {
	messages, err := h.forumService.ChatFeed(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"messages": messages})
}

// Post godoc
// @Summary Post a chat message
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PostChatRequest true "Message"
// @Success 201 {object} model.ChatMessage
// @Router /chat [post]
func (h *ChatHandler) Post(c echo.Context) error {
	user, req := auth.MustCurrentUser(c), new(PostChatRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}
	message, err := h.forumService.PostChat(c.Request().Context(), user, req.Content)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, message)
}

// Delete godoc
// @Summary Delete a chat message
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Router /chat/{id} [delete]
func (h *ChatHandler) Delete(c echo.Context) error {
	user := auth.MustCurrentUser(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid message id")
	}
	if err := h.forumService.DeleteChat(c.Request().Context(), user, id); err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "chat message deleted"})
}
