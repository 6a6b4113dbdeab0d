package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound is returned when a user, section, thread or post is absent.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated is returned when no bearer credential was presented.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidCredential is returned for garbled, expired or unresolvable credentials.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrForbidden is returned when the authenticated user lacks role or ownership.
	ErrForbidden = errors.New("not authorized")
	// ErrBanned is returned when an active ban blocks the action.
	ErrBanned = errors.New("account is banned")
	// ErrConflict is returned for integrity violations such as deleting an
	// answered post or creating a section with no allowed roles.
	ErrConflict = errors.New("conflict")
	// ErrTokenInvalid is returned for expired, consumed or unknown proof tokens.
	ErrTokenInvalid = errors.New("invalid or expired token")
	// ErrUserAlreadyExists is returned when registering a taken name or email.
	ErrUserAlreadyExists = errors.New("user already exists")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrInvalidCredential):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIAL")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrBanned):
		return NewHTTPError(http.StatusForbidden, err.Error(), "BANNED")
	case errors.Is(err, ErrConflict):
		return NewHTTPError(http.StatusConflict, err.Error(), "CONFLICT")
	case errors.Is(err, ErrTokenInvalid):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "TOKEN_INVALID")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "USER_ALREADY_EXISTS")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
