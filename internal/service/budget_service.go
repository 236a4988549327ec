package service

import (
	"context"
	"fmt"
	"strings"

	"expense_ledger/internal/events"
	"expense_ledger/internal/model"
	"expense_ledger/internal/repository"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// BudgetService manages per-user limits and the category set.
type BudgetService interface {
	Get(ctx context.Context, userID uuid.UUID) (*model.BudgetConfig, error)
	UpdateBudget(ctx context.Context, userID uuid.UUID, update model.BudgetUpdate) (*model.BudgetConfig, error)
	AddCategory(ctx context.Context, userID uuid.UUID, name string) (*model.BudgetConfig, bool, error)
}

type budgetService struct {
	repo      repository.BudgetRepository
	publisher events.Publisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(repo repository.BudgetRepository, publisher events.Publisher) BudgetService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &budgetService{repo: repo, publisher: publisher}
}

func (s *budgetService) Get(ctx context.Context, userID uuid.UUID) (*model.BudgetConfig, error) {
	cfg, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget config: %w", err)
	}
	return cfg, nil
}

// UpdateBudget checks every provided field before writing anything, so a
// rejected request leaves the config untouched.
func (s *budgetService) UpdateBudget(ctx context.Context, userID uuid.UUID, update model.BudgetUpdate) (*model.BudgetConfig, error) {
	if update.MonthlyBudget != nil {
		if err := checkMoney("monthly_budget", *update.MonthlyBudget); err != nil {
			return nil, err
		}
	}
	if update.DailyBudget != nil {
		if err := checkMoney("daily_budget", *update.DailyBudget); err != nil {
			return nil, err
		}
	}
	if update.MonthlyBudget == nil && update.DailyBudget == nil {
		return s.Get(ctx, userID)
	}

	cfg, err := s.repo.UpdateBudget(ctx, userID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}
	return cfg, nil
}

// AddCategory adds name to the user's categories if missing and reports
// whether it was added.
func (s *budgetService) AddCategory(ctx context.Context, userID uuid.UUID, name string) (*model.BudgetConfig, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, invalid("category", "must not be empty")
	}

	added, err := s.repo.AddCategory(ctx, userID, name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to add category: %w", err)
	}
	if added {
		publish(ctx, s.publisher, events.CategoryAdded(userID, name))
	}

	cfg, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, added, fmt.Errorf("failed to load budget config: %w", err)
	}
	return cfg, added, nil
}

// publish sends ev and only logs failures.
func publish(ctx context.Context, p events.Publisher, ev events.Event) {
	if err := p.Publish(ctx, ev); err != nil {
		log.Warn("event not published", "type", ev.Type, "user_id", ev.UserID, "err", err)
	}
}
