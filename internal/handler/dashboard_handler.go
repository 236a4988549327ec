package handler

import (
	"net/http"

	"expense_ledger/internal/analytics"
	"expense_ledger/internal/model"
	"expense_ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the read-only reporting endpoints.
type DashboardHandler struct {
	dashboard service.DashboardService
	forecast  service.ForecastService
	advisory  service.AdvisoryService
}

// NewDashboardHandler creates a new DashboardHandler. advisory may be nil,
// in which case /advice always answers 502.
func NewDashboardHandler(dashboard service.DashboardService, forecast service.ForecastService, advisory service.AdvisoryService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, forecast: forecast, advisory: advisory}
}

func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, ok := getAuthUserID(c)
	if !ok {
		return
	}

	kind, err := analytics.ParseWindowKind(c.Query("window"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid window, use monthly or yearly", "field": "window"})
		return
	}

	dashboard, err := h.dashboard.Dashboard(c.Request.Context(), userID, kind)
	if err != nil {
		respondError(c, err, "Failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GetForecast answers 200 with a series, 422 when the ledger is too short
// and 503 when the forecasting service could not be reached.
func (h *DashboardHandler) GetForecast(c *gin.Context) {
	userID, ok := getAuthUserID(c)
	if !ok {
		return
	}

	result, err := h.forecast.ForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to build forecast")
		return
	}

	switch result.Status {
	case model.ForecastAvailable:
		c.JSON(http.StatusOK, result)
	case model.ForecastInsufficientHistory:
		c.JSON(http.StatusUnprocessableEntity, result)
	default:
		c.JSON(http.StatusServiceUnavailable, result)
	}
}

func (h *DashboardHandler) GetAdvice(c *gin.Context) {
	userID, ok := getAuthUserID(c)
	if !ok {
		return
	}
	if h.advisory == nil {
		respondError(c, service.ErrAdvisoryUnavailable, "")
		return
	}

	advice, err := h.advisory.Advise(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to generate advice")
		return
	}
	c.JSON(http.StatusOK, advice)
}

// RegisterDashboardRoutes registers reporting routes behind authMW.
func (h *DashboardHandler) RegisterDashboardRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	reports := rg.Group("")
	reports.Use(authMW)
	{
		reports.GET("/dashboard", h.GetDashboard)
		reports.GET("/forecast", h.GetForecast)
		reports.POST("/advice", h.GetAdvice)
	}
}
