package models

// Budget is a spending limit ("shield") for one category. A user has at most
// one row per category.
type Budget struct {
	Base
	UserID   string  `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_user_category" json:"userId"`
	Category string  `gorm:"not null;uniqueIndex:idx_budgets_user_category" json:"category"`
	Limit    float64 `gorm:"column:limit_amount;not null" json:"limit"`
}
