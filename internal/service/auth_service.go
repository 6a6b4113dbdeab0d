package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"forumhub/internal/auth"
	"forumhub/internal/clock"
	apperrors "forumhub/internal/errors"
	"forumhub/internal/mail"
	"forumhub/internal/model"
	"forumhub/internal/repository"
)

const bcryptCost = 10

// AuthService handles registration, login and account recovery.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
	VerifyEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type authService struct {
	users           repository.UserRepository
	jwtService      *auth.JWTService
	tokens          *auth.TokenService
	tokenStore      auth.TokenStoreInterface
	mailer          mail.Mailer
	requireVerified bool
	now             clock.Now
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	jwtService *auth.JWTService,
	tokens *auth.TokenService,
	tokenStore auth.TokenStoreInterface,
	mailer mail.Mailer,
	requireVerified bool,
	now clock.Now,
) AuthService {
	return &authService{
		users:           users,
		jwtService:      jwtService,
		tokens:          tokens,
		tokenStore:      tokenStore,
		mailer:          mailer,
		requireVerified: requireVerified,
		now:             now,
	}
}

// Register creates an unverified user-role account, issues a verification
// token and mails it. Mail failure is logged, not returned.
func (s *authService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	for _, find := range []func() (*model.User, error){
		func() (*model.User, error) { return s.users.FindByEmail(ctx, email) },
		func() (*model.User, error) { return s.users.FindByName(ctx, name) },
	} {
		existing, err := find()
		if err == nil && existing != nil {
			return nil, apperrors.ErrUserAlreadyExists
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check user existence: %w", err)
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         model.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(ctx, user.ID, auth.TokenVerification, auth.VerificationTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue verification token: %w", err)
	}

	if err := s.mailer.SendVerification(ctx, user.Email, user.Name, token); err != nil {
		log.Printf("send verification mail to %s: %v", user.Email, err)
	}

	return user, nil
}

// Login authenticates a user and returns access and refresh tokens. Unknown
// email and wrong password produce the same error.
func (s *authService) Login(ctx context.Context, email, password string) (string, string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", nil, apperrors.ErrInvalidCredential
		}
		return "", "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, apperrors.ErrInvalidCredential
	}

	if user.IsBanned(s.now()) {
		return "", "", nil, apperrors.ErrBanned
	}

	if s.requireVerified && !user.Verified {
		return "", "", nil, fmt.Errorf("email not verified: %w", apperrors.ErrForbidden)
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Role, auth.RefreshTokenExpiry); err != nil {
		return "", "", nil, fmt.Errorf("store refresh token: %w", err)
	}

	return accessToken, refreshToken, user, nil
}

// Refresh validates a refresh token and returns a new access token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return "", apperrors.ErrInvalidCredential
	}

	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return "", apperrors.ErrInvalidCredential
	}

	storedUserID, storedRole, err := s.tokenStore.GetRefreshToken(ctx, tokenID)
	if err != nil {
		return "", apperrors.ErrInvalidCredential
	}

	if storedUserID != claims.UserID || storedRole != claims.Role {
		return "", apperrors.ErrInvalidCredential
	}

	accessToken, err := s.jwtService.GenerateAccessToken(claims.UserID, claims.Role)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}

	return accessToken, nil
}

// Logout invalidates a refresh token.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return apperrors.ErrInvalidCredential
	}
	return s.tokenStore.DeleteRefreshToken(ctx, tokenID)
}

// VerifyEmail validates a verification token and consumes it, marking the
// account verified. A second call with the same token fails.
func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.tokens.Validate(ctx, token, auth.TokenVerification)
	if err != nil {
		return err
	}
	if err := s.tokens.Consume(ctx, user.ID, auth.TokenVerification); err != nil {
		return fmt.Errorf("consume verification token: %w", err)
	}
	return nil
}

// RequestPasswordReset issues a reset token and mails it. Unknown addresses
// are answered as success so callers cannot probe for accounts.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	token, err := s.tokens.Issue(ctx, user.ID, auth.TokenReset, auth.ResetTokenTTL)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, token); err != nil {
		log.Printf("send reset mail to %s: %v", user.Email, err)
	}
	return nil
}

// ResetPassword validates a reset token and persists the new password. The
// token is cleared only after the credential write succeeds, so a failed
// write leaves it valid and the caller can retry.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.tokens.Validate(ctx, token, auth.TokenReset)
	if err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.tokens.Consume(ctx, user.ID, auth.TokenReset); err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}
	return nil
}
