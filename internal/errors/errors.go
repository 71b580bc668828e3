// Package errors provides custom error types for the Orbit API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches AppErrors by code, so a wrapped or re-messaged copy of a
// sentinel still satisfies errors.Is against the sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrInvalidResetToken  = &AppError{Code: "INVALID_RESET_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusBadRequest}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "Email not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "User already exists", StatusCode: http.StatusBadRequest}
	ErrEmailSend      = &AppError{Code: "EMAIL_SEND_FAILED", Message: "Email could not be sent", StatusCode: http.StatusInternalServerError}
)

// Ledger errors.
var (
	ErrInvalidLedger = &AppError{Code: "INVALID_LEDGER", Message: "Ledger data is invalid", StatusCode: http.StatusBadRequest}
	ErrInvalidMonth  = &AppError{Code: "INVALID_MONTH", Message: "Month must look like 2026-10", StatusCode: http.StatusBadRequest}
	ErrStaleLedger   = &AppError{Code: "STALE_LEDGER", Message: "Ledger was changed by another session", StatusCode: http.StatusConflict}
)

// Budget errors.
var (
	ErrInvalidLimit = &AppError{Code: "INVALID_LIMIT", Message: "Please provide category and a positive limit", StatusCode: http.StatusBadRequest}
)

// Advisor errors.
var (
	ErrAdvisorUnavailable    = &AppError{Code: "ADVISOR_UNAVAILABLE", Message: "The advisor is offline. Please try again later", StatusCode: http.StatusServiceUnavailable}
	ErrAdvisorQuota          = &AppError{Code: "ADVISOR_QUOTA_EXCEEDED", Message: "The advisor is out of quota. Please try again later", StatusCode: http.StatusTooManyRequests}
	ErrNoAdvisorSession      = &AppError{Code: "NO_ADVISOR_SESSION", Message: "Let me look at your data first", StatusCode: http.StatusBadRequest}
	ErrInvalidAdvisorSession = &AppError{Code: "INVALID_ADVISOR_SESSION", Message: "This conversation cannot be continued. Start a new checkup", StatusCode: http.StatusBadRequest}
)
