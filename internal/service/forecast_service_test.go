package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"expense_ledger/internal/forecast"
	"expense_ledger/internal/model"
	"expense_ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ledgerOverDays returns one transaction on each of n consecutive days ending at refNow.
func ledgerOverDays(userID uuid.UUID, n int) []model.Transaction {
	txs := make([]model.Transaction, 0, n)
	for i := 0; i < n; i++ {
		txs = append(txs, model.Transaction{
			ID: uuid.New(), UserID: userID, Title: "t", Amount: money(100), Category: "Food",
			Date: refNow.AddDate(0, 0, -i),
		})
	}
	return txs
}

func sampleSeries() *model.ForecastSeries {
	return &model.ForecastSeries{
		Points:         []model.ForecastPoint{{Date: "2025-06-16", PredictedAmount: money(300)}},
		TotalPredicted: money(9000),
	}
}

func TestForecastService_InsufficientHistorySkipsCollaborator(t *testing.T) {
	client := &MockForecastClient{}
	svc := NewForecastService(client, nil, time.UTC)
	userID := uuid.New()

	res := svc.Forecast(context.Background(), userID, ledgerOverDays(userID, 4))

	assert.Equal(t, model.ForecastInsufficientHistory, res.Status)
	assert.False(t, res.Available())
	client.AssertNotCalled(t, "GetForecast", mock.Anything, mock.Anything)
}

func TestForecastService_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		series     *model.ForecastSeries
		err        error
		wantStatus model.ForecastStatus
	}{
		{"available", sampleSeries(), nil, model.ForecastAvailable},
		{"collaborator says too little history", nil, forecast.ErrInsufficientHistory, model.ForecastInsufficientHistory},
		{"collaborator down", nil, forecast.ErrUnavailable, model.ForecastUnavailable},
		{"unexpected error", nil, errors.New("boom"), model.ForecastUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &MockForecastClient{}
			userID := uuid.New()
			client.On("GetForecast", mock.Anything, userID).Return(tt.series, tt.err).Once()
			svc := NewForecastService(client, nil, time.UTC)

			res := svc.Forecast(context.Background(), userID, ledgerOverDays(userID, 5))

			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantStatus == model.ForecastAvailable, res.Available())
			if tt.wantStatus != model.ForecastAvailable {
				assert.NotEmpty(t, res.Message)
			}
			client.AssertExpectations(t)
		})
	}
}

func TestForecastService_NilClientIsUnavailable(t *testing.T) {
	svc := NewForecastService(nil, nil, time.UTC)
	userID := uuid.New()

	res := svc.Forecast(context.Background(), userID, ledgerOverDays(userID, 10))

	assert.Equal(t, model.ForecastUnavailable, res.Status)
}

func TestForecastService_ForUser(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()
	for _, tx := range ledgerOverDays(userID, 6) {
		_, err := store.Append(ctx, userID, model.TransactionDraft{Title: tx.Title, Amount: tx.Amount, Category: tx.Category, Date: tx.Date})
		require.NoError(t, err)
	}
	client := &MockForecastClient{}
	client.On("GetForecast", mock.Anything, userID).Return(sampleSeries(), nil).Once()

	res, err := NewForecastService(client, store, time.UTC).ForUser(ctx, userID)

	require.NoError(t, err)
	assert.True(t, res.Available())
	assert.True(t, res.Series.TotalPredicted.Equal(money(9000)))
}

func TestForecastService_ForUserLedgerFailure(t *testing.T) {
	_, err := NewForecastService(&MockForecastClient{}, failingLedger{}, time.UTC).ForUser(context.Background(), uuid.New())

	assert.ErrorIs(t, err, errStoreDown)
}
