package testutil

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"orbit/internal/ledger"
	"orbit/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email and an empty ledger.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:      fmt.Sprintf("Test User %d", nextID()),
		Email:     email,
		Password:  string(hash),
		OrbitData: ledger.Ledger{},
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// SeedLedger overwrites the stored ledger of a user without touching its version.
func SeedLedger(t *testing.T, db *gorm.DB, userID string, l ledger.Ledger) {
	t.Helper()

	raw, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("failed to encode ledger: %v", err)
	}
	if err := db.Model(&models.User{}).Where("id = ?", userID).Update("orbit_data", string(raw)).Error; err != nil {
		t.Fatalf("failed to seed ledger: %v", err)
	}
}

// CreateTestBudget stores a limit for category.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, category string, limit float64) *models.Budget {
	t.Helper()

	budget := &models.Budget{UserID: userID, Category: category, Limit: limit}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// Expense builds an expense entry dated in the middle of month key.
func Expense(id, name string, amount float64, key ledger.MonthKey) ledger.Entry {
	return ledger.Entry{
		ID:     id,
		Name:   name,
		Amount: amount,
		Type:   ledger.TypeExpense,
		Date:   key.Time().AddDate(0, 0, 14),
		Count:  1,
	}
}

// Income builds an income entry dated in the middle of month key.
func Income(id, name string, amount float64, key ledger.MonthKey) ledger.Entry {
	e := Expense(id, name, amount, key)
	e.Type = ledger.TypeIncome
	return e
}

// Month is a shorthand for a MonthKey literal.
func Month(year int, month time.Month) ledger.MonthKey {
	return ledger.MonthKey{Year: year, Month: month}
}
