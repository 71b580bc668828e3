package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "orbit/internal/errors"
	"orbit/internal/ledger"
	"orbit/internal/middleware"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString("userID")
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parseMonth reads the month query parameter. An absent value means the
// current calendar month.
func parseMonth(c *gin.Context, now time.Time) (ledger.MonthKey, error) {
	return monthOrNow(c.Query("month"), now)
}

func monthOrNow(raw string, now time.Time) (ledger.MonthKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ledger.KeyFor(now), nil
	}
	key, err := ledger.ParseMonthKey(raw)
	if err != nil {
		return ledger.MonthKey{}, apperrors.ErrInvalidMonth
	}
	return key, nil
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}

// bindError converts a binding failure into an INVALID_INPUT response error.
func bindError(err error) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse is a plain confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}
