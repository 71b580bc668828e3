package services

import (
	"testing"
	"time"

	"orbit/internal/ledger"
	"orbit/internal/models"
	"orbit/internal/shield"
	"orbit/internal/testutil"
)

func TestSetLimit(t *testing.T) {
	t.Run("creates_then_updates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewLedgerService(db))
		user := testutil.CreateTestUser(t, db)

		first, err := svc.SetLimit(user.ID, "Food", 300)
		testutil.AssertNoError(t, err)
		second, err := svc.SetLimit(user.ID, "Food", 450)
		testutil.AssertNoError(t, err)

		if first.ID != second.ID {
			t.Errorf("expected upsert to keep row %s, got %s", first.ID, second.ID)
		}
		if second.Limit != 450 {
			t.Errorf("expected limit 450, got %f", second.Limit)
		}

		var count int64
		db.Model(&models.Budget{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected one row per category, got %d", count)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewLedgerService(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.SetLimit(user.ID, "", 100)
		testutil.AssertAppError(t, err, "INVALID_LIMIT")
		_, err = svc.SetLimit(user.ID, "Food", 0)
		testutil.AssertAppError(t, err, "INVALID_LIMIT")
		_, err = svc.SetLimit(user.ID, "Food", -10)
		testutil.AssertAppError(t, err, "INVALID_LIMIT")
	})

	t.Run("scoped_per_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewLedgerService(db))
		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)

		_, err := svc.SetLimit(alice.ID, "Food", 300)
		testutil.AssertNoError(t, err)
		_, err = svc.SetLimit(bob.ID, "Food", 100)
		testutil.AssertNoError(t, err)

		m, err := svc.GetBudgetMap(alice.ID)
		testutil.AssertNoError(t, err)
		if m.Limit("Food") != 300 {
			t.Errorf("expected alice's limit 300, got %f", m.Limit("Food"))
		}
	})
}

func TestGetBudgetMap(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db, NewLedgerService(db))
	user := testutil.CreateTestUser(t, db)

	empty, err := svc.GetBudgetMap(user.ID)
	testutil.AssertNoError(t, err)
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil map, got %v", empty)
	}

	testutil.CreateTestBudget(t, db, user.ID, "Food", 300)
	testutil.CreateTestBudget(t, db, user.ID, "Fuel", 120)

	m, err := svc.GetBudgetMap(user.ID)
	testutil.AssertNoError(t, err)
	if len(m) != 2 || m["Food"] != 300 || m["Fuel"] != 120 {
		t.Errorf("unexpected map %v", m)
	}
}

func TestRemoveLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db, NewLedgerService(db))
	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestBudget(t, db, user.ID, "Food", 300)

	testutil.AssertNoError(t, svc.RemoveLimit(user.ID, "Food"))
	testutil.AssertNoError(t, svc.RemoveLimit(user.ID, "Food"))

	m, _ := svc.GetBudgetMap(user.ID)
	if _, ok := m["Food"]; ok {
		t.Error("expected Food limit to be removed")
	}

	// A removed category can be shielded again.
	_, err := svc.SetLimit(user.ID, "Food", 200)
	testutil.AssertNoError(t, err)
}

func TestGetShieldReport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db, NewLedgerService(db))
	user := testutil.CreateTestUser(t, db)

	oct := testutil.Month(2026, time.October)
	testutil.SeedLedger(t, db, user.ID, ledger.Ledger{
		oct: {
			testutil.Expense("1", "Food", 850, oct),
			testutil.Expense("2", "Fuel", 60, oct),
			testutil.Income("3", "Salary", 3000, oct),
		},
	})
	testutil.CreateTestBudget(t, db, user.ID, "Food", 1000)
	testutil.CreateTestBudget(t, db, user.ID, "Gym", 50)

	report, err := svc.GetShieldReport(user.ID, oct)
	testutil.AssertNoError(t, err)

	want := []struct {
		name   string
		status shield.Status
	}{
		{"Food", shield.StatusCritical},
		{"Fuel", shield.StatusUnshielded},
		{"Gym", shield.StatusActive},
	}
	if len(report) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), report)
	}
	for i, w := range want {
		if report[i].Category != w.name || report[i].Status != w.status {
			t.Errorf("row %d: expected %s/%s, got %s/%s", i, w.name, w.status, report[i].Category, report[i].Status)
		}
	}
}
