package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "orbit/internal/errors"
	"orbit/internal/ledger"
	"orbit/internal/models"
	"orbit/internal/shield"
)

// budgetService handles category shields.
type budgetService struct {
	db      *gorm.DB
	ledgers LedgerServicer
}

// NewBudgetService creates a new BudgetServicer. The ledger service supplies
// the month spend for shield reports.
func NewBudgetService(db *gorm.DB, ledgers LedgerServicer) BudgetServicer {
	return &budgetService{db: db, ledgers: ledgers}
}

// GetBudgetMap returns every limit the user has set, keyed by category.
func (s *budgetService) GetBudgetMap(userID string) (shield.Map, error) {
	var budgets []models.Budget
	if err := s.db.Where("user_id = ?", userID).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	m := make(shield.Map, len(budgets))
	for _, b := range budgets {
		m[b.Category] = b.Limit
	}
	return m, nil
}

// SetLimit creates or replaces the limit for category.
func (s *budgetService) SetLimit(userID, category string, limit float64) (*models.Budget, error) {
	if _, err := shield.SetLimit(nil, category, limit); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidLimit, err)
	}

	budget := &models.Budget{UserID: userID, Category: category, Limit: limit}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "category"}},
		DoUpdates: clause.AssignmentColumns([]string{"limit_amount", "updated_at"}),
	}).Create(budget).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// On conflict the generated ID is not the stored one; read the row back.
	var stored models.Budget
	if err := s.db.Where("user_id = ? AND category = ?", userID, category).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &stored, nil
}

// RemoveLimit deletes the limit for category. Deleting an absent limit succeeds.
func (s *budgetService) RemoveLimit(userID, category string) error {
	if err := s.db.Where("user_id = ? AND category = ?", userID, category).Delete(&models.Budget{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetShieldReport classifies every category with spend or a limit in month key.
func (s *budgetService) GetShieldReport(userID string, key ledger.MonthKey) ([]shield.Shield, error) {
	limits, err := s.GetBudgetMap(userID)
	if err != nil {
		return nil, err
	}
	state, err := s.ledgers.GetLedger(userID)
	if err != nil {
		return nil, err
	}
	return shield.Report(state.OrbitData.Items(key), limits), nil
}
