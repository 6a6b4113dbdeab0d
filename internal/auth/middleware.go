package auth

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"forumhub/internal/clock"
	apperrors "forumhub/internal/errors"
	"forumhub/internal/model"
	"forumhub/internal/policy"
	"forumhub/internal/repository"
)

// userContextKey is where the resolved principal lives on the echo context.
const userContextKey = "auth_user"

// claimsContextKey is where echo-jwt stores the verified claims.
const claimsContextKey = "user"

// Middleware resolves bearer credentials into an authenticated user for
// every protected request: verify signature, load the account fresh, reject
// active bans, then expose the user to handlers.
type Middleware struct {
	jwt   *JWTService
	users repository.UserRepository
	now   clock.Now
}

// NewMiddleware creates the auth middleware.
func NewMiddleware(jwt *JWTService, users repository.UserRepository, now clock.Now) *Middleware {
	return &Middleware{jwt: jwt, users: users, now: now}
}

// Verify checks the bearer credential's signature and expiry and stores the
// claims on the context. A missing credential and a garbled one map to
// distinct codes; neither reveals anything about account existence.
func (m *Middleware) Verify() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: claimsContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return m.jwt.ValidateToken(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, echojwt.ErrJWTMissing) {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: apperrors.ErrUnauthenticated.Error(),
					Code:  "UNAUTHENTICATED",
				})
			}
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: apperrors.ErrInvalidCredential.Error(),
				Code:  "INVALID_CREDENTIAL",
			})
		},
	})
}

// Resolve loads the principal referenced by verified claims. A missing
// account is indistinguishable from a bad credential; an actively banned
// account is rejected outright.
func (m *Middleware) Resolve(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get(claimsContextKey).(*Claims)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: apperrors.ErrInvalidCredential.Error(),
				Code:  "INVALID_CREDENTIAL",
			})
		}

		ctx := c.Request().Context()
		user, err := m.users.FindByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: apperrors.ErrInvalidCredential.Error(),
					Code:  "INVALID_CREDENTIAL",
				})
			}
			return echo.NewHTTPError(http.StatusInternalServerError, apperrors.ErrorResponse{
				Error: "internal server error",
				Code:  "INTERNAL_ERROR",
			})
		}

		if user.IsBanned(m.now()) {
			return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
				Error: apperrors.ErrBanned.Error(),
				Code:  "BANNED",
			})
		}

		// Best-effort presence tracking; failures never block the request.
		_ = m.users.TouchLastOnline(ctx, user.ID, m.now())

		c.Set(userContextKey, user)
		return next(c)
	}
}

// RequireRole layers an elevated-role gate on top of a resolved context.
func (m *Middleware) RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: apperrors.ErrUnauthenticated.Error(),
					Code:  "UNAUTHENTICATED",
				})
			}
			for _, r := range roles {
				if user.Role == r && policy.Valid(r) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
				Error: apperrors.ErrForbidden.Error(),
				Code:  "FORBIDDEN",
			})
		}
	}
}

// CurrentUser returns the resolved principal for this request.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(userContextKey).(*model.User)
	return user, ok
}

// MustCurrentUser returns the resolved principal and panics when called on a
// route that is not behind Resolve. Only for handlers on protected groups.
func MustCurrentUser(c echo.Context) *model.User {
	user, ok := CurrentUser(c)
	if !ok {
		panic("auth: MustCurrentUser on unprotected route")
	}
	return user
}
