package service

import (
	"context"
	"fmt"
	"time"

	"expense_ledger/internal/analytics"
	"expense_ledger/internal/model"
	"expense_ledger/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// RecentTransactionsLimit is how many ledger entries the dashboard lists.
const RecentTransactionsLimit = 5

// Dashboard is every view of one user's spending at one instant.
type Dashboard struct {
	Window            string                    `json:"window"`
	Config            *model.BudgetConfig       `json:"config"`
	Rollups           analytics.Rollups         `json:"rollups"`
	Series            []analytics.Bucket        `json:"series"`
	Categories        []analytics.CategoryTotal `json:"categories"`
	Summary           analytics.WindowSummary   `json:"summary"`
	Daily             []analytics.DailyPoint    `json:"daily"`
	Recent            []model.Transaction       `json:"recent"`
	TransactionCount  int                       `json:"transaction_count"`
	ForecastAvailable bool                      `json:"forecast_available"`
	Forecast          model.ForecastResult      `json:"forecast"`
	GeneratedAt       time.Time                 `json:"generated_at"`
}

// DashboardService assembles dashboard snapshots.
type DashboardService interface {
	Dashboard(ctx context.Context, userID uuid.UUID, kind analytics.WindowKind) (*Dashboard, error)
}

type dashboardService struct {
	ledger   repository.TransactionRepository
	budgets  repository.BudgetRepository
	forecast ForecastService
	loc      *time.Location
	now      func() time.Time
}

// NewDashboardService creates a new DashboardService. forecast may be nil.
func NewDashboardService(ledger repository.TransactionRepository, budgets repository.BudgetRepository, forecast ForecastService, loc *time.Location) DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &dashboardService{ledger: ledger, budgets: budgets, forecast: forecast, loc: loc, now: time.Now}
}

// loadSnapshot reads the ledger and the config concurrently.
func loadSnapshot(ctx context.Context, ledger repository.TransactionRepository, budgets repository.BudgetRepository, userID uuid.UUID) ([]model.Transaction, *model.BudgetConfig, error) {
	var (
		txs []model.Transaction
		cfg *model.BudgetConfig
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = ledger.List(gctx, userID, model.TransactionFilters{})
		if err != nil {
			return fmt.Errorf("failed to load ledger: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		cfg, err = budgets.GetOrCreate(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load budget config: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return txs, cfg, nil
}

// Dashboard computes the views from one snapshot. A forecast failure never
// fails the call; it only clears ForecastAvailable.
func (s *dashboardService) Dashboard(ctx context.Context, userID uuid.UUID, kind analytics.WindowKind) (*Dashboard, error) {
	txs, cfg, err := loadSnapshot(ctx, s.ledger, s.budgets, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	local := make([]model.Transaction, len(txs))
	for i, t := range txs {
		t.Date = t.Date.In(s.loc)
		local[i] = t
	}

	d := &Dashboard{
		Window:           kind.String(),
		Config:           cfg,
		Rollups:          analytics.ScalarRollups(local, cfg.DailyBudget, cfg.MonthlyBudget, now),
		Series:           analytics.WindowSeries(local, kind, cfg.DailyBudget, cfg.MonthlyBudget, now),
		Categories:       analytics.CategoryTotals(analytics.FilterWindow(local, kind, now)),
		Summary:          analytics.Summarize(local, kind, cfg.MonthlyBudget, now),
		Daily:            analytics.DashboardDailySeries(local, s.loc),
		Recent:           local[:min(len(local), RecentTransactionsLimit)],
		TransactionCount: len(local),
		GeneratedAt:      now,
	}

	if s.forecast != nil {
		d.Forecast = s.forecast.Forecast(ctx, userID, local)
	} else {
		d.Forecast = model.ForecastResult{Status: model.ForecastUnavailable, Message: msgForecastUnavailable}
	}
	d.ForecastAvailable = d.Forecast.Available()
	return d, nil
}
