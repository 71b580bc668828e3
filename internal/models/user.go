package models

import (
	"time"

	"orbit/internal/ledger"
)

// User is an account holder. The whole ledger lives on the row as one JSON
// document; LedgerVersion increments on every accepted sync.
type User struct {
	Base
	Name                string        `gorm:"not null" json:"name"`
	Email               string        `gorm:"uniqueIndex;not null" json:"email"`
	Password            string        `gorm:"not null" json:"-"`
	OrbitData           ledger.Ledger `gorm:"type:jsonb;serializer:json;not null" json:"orbitData"`
	LedgerVersion       int64         `gorm:"not null;default:0" json:"version"`
	ResetPasswordToken  string        `gorm:"size:64;index;not null;default:''" json:"-"`
	ResetPasswordExpire *time.Time    `json:"-"`
	Budgets             []Budget      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
