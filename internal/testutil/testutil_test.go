package testutil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"orbit/internal/errors"
	"orbit/internal/ledger"
	"orbit/internal/models"
	"orbit/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"users", "budgets"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDBIsolated(t *testing.T) {
	a := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, a)
	b := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, b)

	testutil.CreateTestUser(t, a)

	var count int64
	b.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected second database to be empty, got %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	oct := testutil.Month(2026, time.October)
	testutil.SeedLedger(t, db, user.ID, ledger.Ledger{
		oct: {testutil.Expense("e1", "Rent", 1200, oct), testutil.Income("i1", "Salary", 3000, oct)},
	})

	var stored models.User
	if err := db.First(&stored, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if got := len(stored.OrbitData.Items(oct)); got != 2 {
		t.Errorf("expected 2 seeded entries, got %d", got)
	}

	budget := testutil.CreateTestBudget(t, db, user.ID, "Rent", 1500)
	if budget.Limit != 1500 {
		t.Errorf("expected limit 1500, got %f", budget.Limit)
	}
}

func TestAssertAppError(t *testing.T) {
	testutil.AssertAppError(t, errors.ErrNotFound, "NOT_FOUND")
	testutil.AssertAppError(t, errors.Wrap(errors.ErrStaleLedger, nil), "STALE_LEDGER")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}

func TestAssertErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusConflict)
	_, _ = rec.WriteString(`{"error":{"code":"STALE_LEDGER","message":"Ledger was changed by another session"}}`)

	testutil.AssertErrorResponse(t, rec, http.StatusConflict, "STALE_LEDGER")
}
