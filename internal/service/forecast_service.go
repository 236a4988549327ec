package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expense_ledger/internal/analytics"
	"expense_ledger/internal/forecast"
	"expense_ledger/internal/model"
	"expense_ledger/internal/repository"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	msgInsufficientHistory = "Not enough data. Add expenses for at least 5 different days."
	msgForecastUnavailable = "Prediction service is unavailable."
)

// ForecastClient fetches a user's forecast series from the forecasting collaborator.
type ForecastClient interface {
	GetForecast(ctx context.Context, userID uuid.UUID) (*model.ForecastSeries, error)
}

// ForecastService turns collaborator outcomes into a ForecastResult.
type ForecastService interface {
	// Forecast evaluates txs, an already loaded ledger of userID.
	Forecast(ctx context.Context, userID uuid.UUID, txs []model.Transaction) model.ForecastResult
	// ForUser loads the ledger first; only a ledger failure is an error.
	ForUser(ctx context.Context, userID uuid.UUID) (model.ForecastResult, error)
}

type forecastService struct {
	client ForecastClient
	ledger repository.TransactionRepository
	loc    *time.Location
}

// NewForecastService creates a new ForecastService. A nil client makes
// every forecast unavailable.
func NewForecastService(client ForecastClient, ledger repository.TransactionRepository, loc *time.Location) ForecastService {
	if loc == nil {
		loc = time.Local
	}
	return &forecastService{client: client, ledger: ledger, loc: loc}
}

func (s *forecastService) Forecast(ctx context.Context, userID uuid.UUID, txs []model.Transaction) model.ForecastResult {
	if analytics.DistinctDays(txs, s.loc) < model.MinForecastHistoryDays {
		return model.ForecastResult{Status: model.ForecastInsufficientHistory, Message: msgInsufficientHistory}
	}
	if s.client == nil {
		return model.ForecastResult{Status: model.ForecastUnavailable, Message: msgForecastUnavailable}
	}

	series, err := s.client.GetForecast(ctx, userID)
	switch {
	case err == nil:
		return model.ForecastResult{Status: model.ForecastAvailable, Series: series}
	case errors.Is(err, forecast.ErrInsufficientHistory):
		return model.ForecastResult{Status: model.ForecastInsufficientHistory, Message: msgInsufficientHistory}
	default:
		log.Warn("forecast unavailable", "user_id", userID, "err", err)
		return model.ForecastResult{Status: model.ForecastUnavailable, Message: msgForecastUnavailable}
	}
}

func (s *forecastService) ForUser(ctx context.Context, userID uuid.UUID) (model.ForecastResult, error) {
	txs, err := s.ledger.List(ctx, userID, model.TransactionFilters{})
	if err != nil {
		return model.ForecastResult{}, fmt.Errorf("failed to load ledger: %w", err)
	}
	return s.Forecast(ctx, userID, txs), nil
}
