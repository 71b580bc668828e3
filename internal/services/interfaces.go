package services

import (
	"context"

	"orbit/internal/aggregate"
	"orbit/internal/ledger"
	"orbit/internal/models"
	"orbit/internal/shield"
)

// UserServicer defines the contract for account and credential business logic.
type UserServicer interface {
	Register(name, email, password string) (*models.User, error)
	Login(email, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	CountUsers() (int64, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(token, newPassword string) error
}

// LedgerState is a user's stored ledger together with its write version.
type LedgerState struct {
	OrbitData ledger.Ledger `json:"orbitData"`
	Version   int64         `json:"version"`
}

// LedgerServicer defines the contract for ledger persistence and analytics.
type LedgerServicer interface {
	GetLedger(userID string) (*LedgerState, error)
	// SyncLedger replaces the stored ledger. A nil data keeps the stored one.
	// When expectedVersion is set the write only succeeds if it matches.
	SyncLedger(userID string, data *ledger.Ledger, expectedVersion *int64) (*LedgerState, error)
	// GetSummary narrows the listed entries to search when it is not blank.
	GetSummary(userID string, key ledger.MonthKey, search string) (*aggregate.Summary, error)
}

// BudgetServicer defines the contract for category shields.
type BudgetServicer interface {
	GetBudgetMap(userID string) (shield.Map, error)
	SetLimit(userID, category string, limit float64) (*models.Budget, error)
	RemoveLimit(userID, category string) error
	GetShieldReport(userID string, key ledger.MonthKey) ([]shield.Shield, error)
}
