package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"forumhub/internal/auth"
	"forumhub/internal/config"
	"forumhub/internal/handler"
	"forumhub/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authMW *auth.Middleware,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	forumHandler *handler.ForumHandler,
	chatHandler *handler.ChatHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/verify/:token", authHandler.VerifyEmail)
	api.POST("/auth/forgot-password", authHandler.ForgotPassword)
	api.POST("/auth/reset-password", authHandler.ResetPassword)

	// Secured routes: signature check, then a fresh principal load with the
	// ban gate.
	secured := api.Group("", authMW.Verify(), authMW.Resolve)

	secured.GET("/me", userHandler.Me)
	secured.GET("/users", userHandler.ListUsers)
	secured.GET("/users/online", userHandler.RecentlyOnline)
	secured.GET("/users/:id", userHandler.GetUser)
	secured.GET("/users/:id/threads", userHandler.UserThreads)
	secured.GET("/users/:id/posts", userHandler.UserPosts)
	secured.PUT("/users/name", userHandler.UpdateName)
	secured.PUT("/users/profile", userHandler.UpdateProfile)
	secured.PUT("/users/avatar", userHandler.UpdateAvatar)
	secured.PUT("/users/password", userHandler.ChangePassword)

	// Private messages
	secured.POST("/messages", userHandler.SendMessage)
	secured.GET("/messages", userHandler.Inbox)

	// Forum routes
	secured.GET("/forum", forumHandler.Sections)
	secured.GET("/forum/section/:id", forumHandler.SectionThreads)
	secured.POST("/forum/threads", forumHandler.CreateThread)
	secured.PUT("/forum/threads", forumHandler.UpdateThread)
	secured.GET("/forum/threads/:id", forumHandler.GetThread)
	secured.POST("/forum/post", forumHandler.CreatePost)
	secured.PUT("/forum/post", forumHandler.UpdatePost)
	secured.DELETE("/forum/post", forumHandler.DeletePost)
	secured.PUT("/forum/post/:id/like", forumHandler.LikePost)

	// Chat routes
	secured.GET("/chat", chatHandler.Feed)
	secured.POST("/chat", chatHandler.Post)

	// Moderation routes (admin and mod)
	elevated := secured.Group("", authMW.RequireRole(model.RoleAdmin, model.RoleMod))
	elevated.POST("/mod/warn", userHandler.Warn)
	elevated.POST("/mod/unban", userHandler.Unban)
	elevated.GET("/mod/warnings/:id", userHandler.Warnings)
	elevated.DELETE("/forum/threads", forumHandler.DeleteThread)
	elevated.PUT("/forum/threads/lock", forumHandler.LockThread)
	elevated.PUT("/forum/threads/sticky", forumHandler.StickyThread)
	elevated.DELETE("/chat/:id", chatHandler.Delete)

	// Admin-only routes
	admin := secured.Group("", authMW.RequireRole(model.RoleAdmin))
	admin.POST("/forum/sections", forumHandler.CreateSection)
	admin.DELETE("/forum/sections/:id", forumHandler.DeleteSection)
	admin.PUT("/users/role", userHandler.ChangeRole)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
