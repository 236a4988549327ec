package repository

import (
	"context"
	"fmt"

	"expense_ledger/internal/model"

	"github.com/google/uuid"
)

// BudgetRepository stores one BudgetConfig per user
type BudgetRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.BudgetConfig, error)
	UpdateBudget(ctx context.Context, userID uuid.UUID, update model.BudgetUpdate) (*model.BudgetConfig, error)
	AddCategory(ctx context.Context, userID uuid.UUID, name string) (bool, error)
}

type budgetRepository struct {
	db DBTX
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(db DBTX) BudgetRepository {
	return &budgetRepository{db: db}
}

// GetOrCreate returns the user's config, inserting the defaults if there is
// none. The no-op DO UPDATE makes RETURNING yield the existing row, so the
// whole operation is one statement and concurrent first accesses converge on
// a single row.
func (r *budgetRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.BudgetConfig, error) {
	def := model.NewDefaultBudgetConfig(userID)
	sql := `INSERT INTO budget_configs (user_id, monthly_budget, daily_budget, categories)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
            RETURNING user_id, monthly_budget, daily_budget, categories, updated_at`

	cfg := &model.BudgetConfig{}
	err := r.db.QueryRow(ctx, sql, userID, def.MonthlyBudget, def.DailyBudget, def.Categories).Scan(
		&cfg.UserID, &cfg.MonthlyBudget, &cfg.DailyBudget, &cfg.Categories, &cfg.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create budget config: %w", err)
	}
	return cfg, nil
}

// UpdateBudget applies the non-nil fields of update in one statement.
func (r *budgetRepository) UpdateBudget(ctx context.Context, userID uuid.UUID, update model.BudgetUpdate) (*model.BudgetConfig, error) {
	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	sql := `UPDATE budget_configs
            SET monthly_budget = COALESCE($2, monthly_budget),
                daily_budget = COALESCE($3, daily_budget),
                updated_at = NOW()
            WHERE user_id = $1
            RETURNING user_id, monthly_budget, daily_budget, categories, updated_at`

	cfg := &model.BudgetConfig{}
	err := r.db.QueryRow(ctx, sql, userID, update.MonthlyBudget, update.DailyBudget).Scan(
		&cfg.UserID, &cfg.MonthlyBudget, &cfg.DailyBudget, &cfg.Categories, &cfg.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}
	return cfg, nil
}

// AddCategory appends name to the user's categories unless it is already
// there. It reports whether the set changed.
func (r *budgetRepository) AddCategory(ctx context.Context, userID uuid.UUID, name string) (bool, error) {
	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return false, err
	}

	sql := `UPDATE budget_configs
            SET categories = array_append(categories, $2::text), updated_at = NOW()
            WHERE user_id = $1 AND NOT ($2::text = ANY(categories))`
	cmdTag, err := r.db.Exec(ctx, sql, userID, name)
	if err != nil {
		return false, fmt.Errorf("failed to add category: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}
