package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"forumhub/internal/clock"
	apperrors "forumhub/internal/errors"
	"forumhub/internal/model"
	"forumhub/internal/repository"
)

// TokenKind distinguishes the two identity-proof token flows.
type TokenKind string

const (
	// TokenVerification proves email ownership at registration.
	TokenVerification TokenKind = "verification"
	// TokenReset proves email ownership to authorize a password change.
	TokenReset TokenKind = "reset"
)

const (
	// VerificationTokenTTL is how long a verification token stays valid.
	VerificationTokenTTL = 24 * time.Hour
	// ResetTokenTTL is how long a password-reset token stays valid.
	ResetTokenTTL = time.Hour
)

// TokenService issues and validates single-use identity-proof tokens. Each
// user holds at most one live token per kind; issuing overwrites the prior
// one. A token whose expiry is not strictly in the future is invalid.
type TokenService struct {
	users repository.UserRepository
	now   clock.Now
}

// NewTokenService creates a token service around the user store.
func NewTokenService(users repository.UserRepository, now clock.Now) *TokenService {
	return &TokenService{users: users, now: now}
}

// Issue generates an opaque token for the user and persists it with an
// absolute expiry of now + ttl, replacing any prior token of the same kind.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID, kind TokenKind, ttl time.Duration) (string, error) {
	token, err := opaqueToken()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	expiresAt := s.now().Add(ttl)

	switch kind {
	case TokenVerification:
		err = s.users.SetVerificationToken(ctx, userID, token, expiresAt)
	case TokenReset:
		err = s.users.SetResetToken(ctx, userID, token, expiresAt)
	default:
		return "", fmt.Errorf("unknown token kind %q", kind)
	}
	if err != nil {
		return "", fmt.Errorf("store %s token: %w", kind, err)
	}
	return token, nil
}

// Validate resolves a token to its user. Unknown tokens and tokens whose
// expiry is now or earlier fail with ErrTokenInvalid; storage failures are
// surfaced as-is. Validate does not consume the token.
func (s *TokenService) Validate(ctx context.Context, token string, kind TokenKind) (*model.User, error) {
	if token == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	var (
		user *model.User
		err  error
	)
	switch kind {
	case TokenVerification:
		user, err = s.users.FindByVerificationToken(ctx, token)
	case TokenReset:
		user, err = s.users.FindByResetToken(ctx, token)
	default:
		return nil, fmt.Errorf("unknown token kind %q", kind)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, fmt.Errorf("lookup %s token: %w", kind, err)
	}

	expiresAt := user.TokenExpiresAt
	if kind == TokenReset {
		expiresAt = user.ResetExpiresAt
	}
	// now == expiry counts as expired; only a strictly future expiry is live.
	if expiresAt == nil || !s.now().Before(*expiresAt) {
		return nil, apperrors.ErrTokenInvalid
	}

	return user, nil
}

// Consume invalidates the user's live token of the given kind. For
// verification tokens the user is marked verified in the same update.
func (s *TokenService) Consume(ctx context.Context, userID uuid.UUID, kind TokenKind) error {
	switch kind {
	case TokenVerification:
		return s.users.MarkVerified(ctx, userID)
	case TokenReset:
		return s.users.ClearResetToken(ctx, userID)
	default:
		return fmt.Errorf("unknown token kind %q", kind)
	}
}

// opaqueToken returns an unguessable URL-safe string.
func opaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
