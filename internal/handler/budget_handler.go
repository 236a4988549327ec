package handler

import (
	"net/http"

	"expense_ledger/internal/model"
	"expense_ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// BudgetHandler serves the budget configuration of the caller.
type BudgetHandler struct {
	service service.BudgetService
}

func NewBudgetHandler(s service.BudgetService) *BudgetHandler {
	return &BudgetHandler{service: s}
}

func (h *BudgetHandler) GetSettings(c *gin.Context) {
	userID, ok := getAuthUserID(c)
	if !ok {
		return
	}

	cfg, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Settings Error")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, ok := getAuthUserID(c)
	if !ok {
		return
	}

	var req model.BudgetUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	cfg, err := h.service.UpdateBudget(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Update Failed")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *BudgetHandler) AddCategory(c *gin.Context) {
	userID, ok := getAuthUserID(c)
	if !ok {
		return
	}

	var req model.AddCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	cfg, added, err := h.service.AddCategory(c.Request.Context(), userID, req.Category)
	if err != nil {
		respondError(c, err, "Category Error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": cfg, "added": added})
}

// RegisterBudgetRoutes registers settings routes behind authMW.
func (h *BudgetHandler) RegisterBudgetRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	settings := rg.Group("/settings")
	settings.Use(authMW)
	{
		settings.GET("", h.GetSettings)
		settings.PUT("/budget", h.UpdateBudget)
		settings.POST("/categories", h.AddCategory)
	}
}
