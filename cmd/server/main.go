package main

import (
	"log"
	"net/http"

	_ "forumhub/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"forumhub/internal/auth"
	"forumhub/internal/cache"
	"forumhub/internal/clock"
	"forumhub/internal/config"
	"forumhub/internal/db"
	"forumhub/internal/handler"
	"forumhub/internal/mail"
	"forumhub/internal/model"
	"forumhub/internal/policy"
	"forumhub/internal/repository"
	"forumhub/internal/router"
	"forumhub/internal/service"
)

// @title ForumHub API
// @version 1.0
// @description Discussion forum API with role-based sections, moderation and JWT authentication.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Warning{},
		&model.Section{},
		&model.SectionRole{},
		&model.Thread{},
		&model.Hashtag{},
		&model.Post{},
		&model.PrivateMessage{},
		&model.ChatMessage{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	warningRepo := repository.NewWarningRepository(gormDB)
	sectionRepo := repository.NewSectionRepository(gormDB)
	threadRepo := repository.NewThreadRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)
	messageRepo := repository.NewMessageRepository(gormDB)
	chatRepo := repository.NewChatRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)
	tokenService := auth.NewTokenService(userRepo, clock.System)
	authMW := auth.NewMiddleware(jwtService, userRepo, clock.System)

	var mailer mail.Mailer
	if cfg.ResendAPIKey != "" {
		mailer = mail.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom, cfg.HostURL)
	} else {
		log.Println("RESEND_API_KEY not set, mail goes to the process log")
		mailer = mail.LogMailer{}
	}

	guard := policy.NewGuard(policy.DefaultGuardConfig())

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenService, tokenStore, mailer, cfg.RequireVerifiedEmail, clock.System)
	userService := service.NewUserService(userRepo, threadRepo, postRepo, messageRepo)
	moderationService := service.NewModerationService(userRepo, warningRepo, clock.System)
	forumService := service.NewForumService(sectionRepo, threadRepo, postRepo, chatRepo, guard, cacheClient, clock.System)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, moderationService)
	forumHandler := handler.NewForumHandler(forumService)
	chatHandler := handler.NewChatHandler(forumService)

	// Register routes
	router.Register(
		e,
		cfg,
		authMW,
		authHandler,
		userHandler,
		forumHandler,
		chatHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
