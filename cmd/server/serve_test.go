package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expense_ledger/internal/config"
	"expense_ledger/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		ServerPort:         "0",
		GinMode:            "test",
		Storage:            config.StorageMemory,
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		Location:           time.UTC,
		ForecastURL:        "http://127.0.0.1:1",
		ForecastTimeout:    time.Second,
		LLMTimeout:         time.Second,
	}
}

func TestNewRouter_HealthOnMemoryStorage(t *testing.T) {
	c := memoryConfig()
	st, err := openStores(t.Context(), c)
	require.NoError(t, err)
	defer st.Close()

	router := newRouter(c, st, events.Noop{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","storage":"memory"}`, rec.Body.String())
}

func TestNewRouter_ProtectedRoutesNeedToken(t *testing.T) {
	c := memoryConfig()
	st, err := openStores(t.Context(), c)
	require.NoError(t, err)

	router := newRouter(c, st, events.Noop{})
	for _, path := range []string{"/api/v1/transactions", "/api/v1/settings", "/api/v1/dashboard", "/api/v1/forecast"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestNewRouter_Preflight(t *testing.T) {
	c := memoryConfig()
	st, err := openStores(t.Context(), c)
	require.NoError(t, err)

	router := newRouter(c, st, events.Noop{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/transactions", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
