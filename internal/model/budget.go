package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	DefaultMonthlyBudget = decimal.NewFromInt(10000)
	DefaultDailyBudget   = decimal.NewFromInt(500)
)

// DefaultCategories returns a fresh copy of the starter category set.
func DefaultCategories() []string {
	return []string{"Food", "Travel", "Shopping", "Bills", "Rent", "Medical", "Utilities"}
}

// BudgetConfig holds a user's spending limits and category set.
type BudgetConfig struct {
	UserID        uuid.UUID       `json:"user_id"`
	MonthlyBudget decimal.Decimal `json:"monthly_budget"`
	DailyBudget   decimal.Decimal `json:"daily_budget"`
	Categories    []string        `json:"categories"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewDefaultBudgetConfig builds the config a user gets on first access.
func NewDefaultBudgetConfig(userID uuid.UUID) *BudgetConfig {
	return &BudgetConfig{
		UserID:        userID,
		MonthlyBudget: DefaultMonthlyBudget,
		DailyBudget:   DefaultDailyBudget,
		Categories:    DefaultCategories(),
		UpdatedAt:     time.Now(),
	}
}

// HasCategory reports whether name is already in the category set.
func (b *BudgetConfig) HasCategory(name string) bool {
	for _, c := range b.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// BudgetUpdate is a partial update; nil fields are left unchanged.
type BudgetUpdate struct {
	MonthlyBudget *decimal.Decimal `json:"monthly_budget,omitempty"`
	DailyBudget   *decimal.Decimal `json:"daily_budget,omitempty"`
}

// AddCategoryRequest is the body of the add-category call.
type AddCategoryRequest struct {
	Category string `json:"category"`
}
