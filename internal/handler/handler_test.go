package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"expense_ledger/internal/middleware"
	"expense_ledger/internal/model"
	"expense_ledger/internal/repository"
	"expense_ledger/internal/service"
	"expense_ledger/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockForecastClient struct {
	mock.Mock
}

func (m *MockForecastClient) GetForecast(ctx context.Context, userID uuid.UUID) (*model.ForecastSeries, error) {
	args := m.Called(ctx, userID)
	series, _ := args.Get(0).(*model.ForecastSeries)
	return series, args.Error(1)
}

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockReceiptExtractor struct {
	mock.Mock
}

func (m *MockReceiptExtractor) Extract(ctx context.Context, data []byte, mimeType string, categories []string) (*model.ReceiptExtraction, error) {
	args := m.Called(ctx, data, mimeType, categories)
	ex, _ := args.Get(0).(*model.ReceiptExtraction)
	return ex, args.Error(1)
}

// testAPI is a router over a fresh memory store. Every protected route sees
// userID as the authenticated caller.
type testAPI struct {
	router    *gin.Engine
	store     *repository.MemoryStore
	userID    uuid.UUID
	forecast  *MockForecastClient
	completer *MockCompleter
	extractor *MockReceiptExtractor
}

func asUser(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.AuthUserKey, id)
		c.Next()
	}
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	api := &testAPI{
		store:     repository.NewMemoryStore(),
		userID:    uuid.New(),
		forecast:  new(MockForecastClient),
		completer: new(MockCompleter),
		extractor: new(MockReceiptExtractor),
	}

	txService := service.NewTransactionService(api.store, api.store, nil, service.WithReceiptExtractor(api.extractor))
	budgetService := service.NewBudgetService(api.store, nil)
	forecastService := service.NewForecastService(api.forecast, api.store, nil)
	dashboardService := service.NewDashboardService(api.store, api.store, forecastService, nil)
	advisoryService := service.NewAdvisoryService(api.store, api.store, forecastService, api.completer)
	authService := service.NewAuthService(api.store, api.store, utils.NewJWTUtil("test-secret", 1), nil)

	api.router = gin.New()
	v1 := api.router.Group("/api/v1")
	authMW := asUser(api.userID)
	NewAuthHandler(authService).RegisterAuthRoutes(v1)
	NewTransactionHandler(txService, nil).RegisterTransactionRoutes(v1, authMW)
	NewBudgetHandler(budgetService).RegisterBudgetRoutes(v1, authMW)
	NewDashboardHandler(dashboardService, forecastService, advisoryService).RegisterDashboardRoutes(v1, authMW)

	t.Cleanup(func() {
		api.forecast.AssertExpectations(t)
		api.completer.AssertExpectations(t)
		api.extractor.AssertExpectations(t)
	})
	return api
}

func (api *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
