package services

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"orbit/internal/aggregate"
	apperrors "orbit/internal/errors"
	"orbit/internal/ledger"
	"orbit/internal/models"
)

// ledgerService persists each user's ledger as a single versioned document.
type ledgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB) LedgerServicer {
	return &ledgerService{db: db}
}

// GetLedger returns the stored ledger and its version.
func (s *ledgerService) GetLedger(userID string) (*LedgerState, error) {
	var user models.User
	err := s.db.Select("id", "orbit_data", "ledger_version").Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrNotFound, "User not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if user.OrbitData == nil {
		user.OrbitData = ledger.Ledger{}
	}
	return &LedgerState{OrbitData: user.OrbitData, Version: user.LedgerVersion}, nil
}

// SyncLedger replaces the whole stored ledger in one UPDATE and bumps its
// version. With expectedVersion set, the UPDATE is conditional on the stored
// version and a mismatch returns ErrStaleLedger.
func (s *ledgerService) SyncLedger(userID string, data *ledger.Ledger, expectedVersion *int64) (*LedgerState, error) {
	current, err := s.GetLedger(userID)
	if err != nil {
		return nil, err
	}
	if expectedVersion != nil && *expectedVersion != current.Version {
		return nil, apperrors.ErrStaleLedger
	}
	if data == nil {
		return current, nil
	}

	doc := *data
	if doc == nil {
		doc = ledger.Ledger{}
	}
	if err := ledger.Validate(doc); err != nil {
		return nil, apperrors.Wrap(apperrors.WithMessage(apperrors.ErrInvalidLedger, err.Error()), err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	q := s.db.Model(&models.User{}).Where("id = ?", userID)
	if expectedVersion != nil {
		q = q.Where("ledger_version = ?", *expectedVersion)
	}
	res := q.Updates(map[string]interface{}{
		"orbit_data":     string(raw),
		"ledger_version": gorm.Expr("ledger_version + 1"),
	})
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		// The row exists, so only a concurrent versioned write can get here.
		return nil, apperrors.ErrStaleLedger
	}

	return s.GetLedger(userID)
}

// GetSummary computes the aggregation bundle for one month of the stored ledger.
func (s *ledgerService) GetSummary(userID string, key ledger.MonthKey, search string) (*aggregate.Summary, error) {
	state, err := s.GetLedger(userID)
	if err != nil {
		return nil, err
	}
	summary := aggregate.Summarize(state.OrbitData, key).Search(search)
	return &summary, nil
}
