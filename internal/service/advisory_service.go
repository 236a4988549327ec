package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"expense_ledger/internal/model"
	"expense_ledger/internal/repository"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdvicePromptTransactions is how many ledger entries go into the prompt.
const AdvicePromptTransactions = 30

// Completer returns a model's reply to a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Advice is a generated spending report.
type Advice struct {
	Report            string    `json:"report"`
	ForecastAvailable bool      `json:"forecast_available"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// AdvisoryService produces natural-language spending advice.
type AdvisoryService interface {
	Advise(ctx context.Context, userID uuid.UUID) (*Advice, error)
}

type advisoryService struct {
	ledger    repository.TransactionRepository
	budgets   repository.BudgetRepository
	forecast  ForecastService
	completer Completer
}

// NewAdvisoryService creates a new AdvisoryService. forecast may be nil.
func NewAdvisoryService(ledger repository.TransactionRepository, budgets repository.BudgetRepository, forecast ForecastService, completer Completer) AdvisoryService {
	return &advisoryService{ledger: ledger, budgets: budgets, forecast: forecast, completer: completer}
}

// Advise builds the prompt from the snapshot and the forecast (when there is
// one) and returns the model's text untouched. Completion failures surface
// as ErrAdvisoryUnavailable.
func (s *advisoryService) Advise(ctx context.Context, userID uuid.UUID) (*Advice, error) {
	txs, cfg, err := loadSnapshot(ctx, s.ledger, s.budgets, userID)
	if err != nil {
		return nil, err
	}

	var fc model.ForecastResult
	if s.forecast != nil {
		fc = s.forecast.Forecast(ctx, userID, txs)
	}

	prompt := BuildAdvicePrompt(cfg.MonthlyBudget, txs, fc)
	report, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		log.Warn("advisory completion failed", "user_id", userID, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrAdvisoryUnavailable, err)
	}

	return &Advice{Report: report, ForecastAvailable: fc.Available(), GeneratedAt: time.Now()}, nil
}

// BuildAdvicePrompt renders the advisor prompt. txs is newest first; only the
// first AdvicePromptTransactions entries are listed.
func BuildAdvicePrompt(monthlyBudget decimal.Decimal, txs []model.Transaction, fc model.ForecastResult) string {
	totalSpent := decimal.Zero
	for _, t := range txs {
		totalSpent = totalSpent.Add(t.Amount)
	}

	predicted := decimal.Zero
	details := "Prediction data unavailable (not enough history)."
	if fc.Available() {
		predicted = fc.Series.TotalPredicted
		trend := "DECREASE"
		if predicted.GreaterThan(totalSpent) {
			trend = "INCREASE"
		}
		details = fmt.Sprintf("- Predicted Total Spend Next %d Days: ₹%s\n- Trend Analysis: The model predicts spending will %s compared to previous history.",
			model.ForecastHorizonDays, predicted.StringFixed(2), trend)
	}

	var recent strings.Builder
	for i, t := range txs {
		if i == AdvicePromptTransactions {
			break
		}
		fmt.Fprintf(&recent, "- %s: ₹%s (%s)\n", t.Title, t.Amount.String(), t.Category)
	}

	return fmt.Sprintf(`Act as a ruthlessly efficient Indian financial advisor (CA style).

**FINANCIAL CONTEXT:**
- Monthly Budget: ₹%s
- Total Past Spending: ₹%s
- **AI FORECAST (Next %d Days):** ₹%s

**DETAILS:**
%s

**RECENT TRANSACTIONS:**
%s
**YOUR TASK:**
Analyze the gap between the budget and the PREDICTED future spending.

**OUTPUT FORMAT (Markdown):**
1. **Risk Status:** (Safe / Warning / Critical). If Forecast > Budget, set status to Critical.
2. **Future Outlook:** Explain the prediction.
3. **Action Plan:** 3 specific ways to cut costs based on their actual categories.
4. **The Roast:** One short, funny, slightly mean sentence about their spending habits.
`, monthlyBudget.String(), totalSpent.String(), model.ForecastHorizonDays, predicted.StringFixed(2), details, recent.String())
}
