package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"expense_ledger/internal/model"
	"expense_ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles ledger requests
type TransactionHandler struct {
	service service.TransactionService
	loc     *time.Location
}

// NewTransactionHandler creates a new TransactionHandler. Date-only inputs
// are read as calendar days in loc.
func NewTransactionHandler(s service.TransactionService, loc *time.Location) *TransactionHandler {
	if loc == nil {
		loc = time.Local
	}
	return &TransactionHandler{service: s, loc: loc}
}

type createTransactionRequest struct {
	Title       string          `json:"title" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	PaymentMode string          `json:"payment_mode"`
	Description string          `json:"description"`
}

// parseDate accepts RFC3339 or YYYY-MM-DD. A bare date is midnight in loc
// and reported as dateOnly.
func parseDate(s string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err = time.ParseInLocation("2006-01-02", s, loc)
	return t, err == nil, err
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, ok := getAuthUserID(c)
	if !ok {
		return
	}

	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	create := model.CreateTransactionRequest{
		Title:       req.Title,
		Amount:      req.Amount,
		Category:    req.Category,
		PaymentMode: req.PaymentMode,
		Description: req.Description,
	}
	if req.Date != "" {
		date, _, err := parseDate(req.Date, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format for 'date', use YYYY-MM-DD or RFC3339", "field": "date"})
			return
		}
		create.Date = &date
	}

	result, err := h.service.AddTransaction(c.Request.Context(), userID, create)
	if err != nil {
		respondError(c, err, "Failed to create transaction")
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *TransactionHandler) GetMyTransactions(c *gin.Context) {
	userID, ok := getAuthUserID(c)
	if !ok {
		return
	}

	var filters model.TransactionFilters
	if categoryParam := strings.TrimSpace(c.Query("category")); categoryParam != "" {
		filters.Category = &categoryParam
	}
	for _, bound := range []struct {
		name string
		dst  **time.Time
	}{{"from", &filters.From}, {"to", &filters.To}} {
		param := c.Query(bound.name)
		if param == "" {
			continue
		}
		parsed, dateOnly, err := parseDate(param, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid date format for '%s', use YYYY-MM-DD", bound.name), "field": bound.name})
			return
		}
		// "to=2025-06-10" covers the whole day
		if dateOnly && bound.name == "to" {
			parsed = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		*bound.dst = &parsed
	}

	transactions, err := h.service.List(c.Request.Context(), userID, filters)
	if err != nil {
		respondError(c, err, "Failed to retrieve transactions")
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// DeleteTransaction removes one entry. Ids that are unknown or belong to
// someone else are answered the same way as a real delete.
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, ok := getAuthUserID(c)
	if !ok {
		return
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction ID"})
		return
	}

	if err := h.service.DeleteOne(c.Request.Context(), userID, transactionID); err != nil {
		respondError(c, err, "Failed to delete transaction")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

func (h *TransactionHandler) ResetLedger(c *gin.Context) {
	userID, ok := getAuthUserID(c)
	if !ok {
		return
	}

	var req struct {
		Confirm string `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	deleted, err := h.service.ResetLedger(c.Request.Context(), userID, req.Confirm)
	if err != nil {
		respondError(c, err, "Failed to reset ledger")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All transactions deleted", "deleted": deleted})
}

// ScanReceipt reads an expense off the uploaded "receipt" file and records it.
func (h *TransactionHandler) ScanReceipt(c *gin.Context) {
	userID, ok := getAuthUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Receipt file is required: " + err.Error()})
		return
	}
	if file.Size > service.MaxFileSize {
		respondError(c, service.ErrFileSizeExceeded, "")
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, fmt.Errorf("failed to open uploaded file: %w", err), "Failed to scan receipt")
		return
	}
	defer src.Close()

	result, err := h.service.ScanReceipt(c.Request.Context(), userID, service.Upload{
		Filename: file.Filename,
		Size:     file.Size,
		Content:  src,
	})
	if err != nil {
		respondError(c, err, "Failed to scan receipt")
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *TransactionHandler) ExportCSV(c *gin.Context) {
	userID, ok := getAuthUserID(c)
	if !ok {
		return
	}

	csvBuffer, err := h.service.ExportCSV(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to export transactions to CSV")
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename=expenses.csv")
	c.Data(http.StatusOK, "text/csv", csvBuffer.Bytes())
}

// RegisterTransactionRoutes registers ledger routes behind authMW.
func (h *TransactionHandler) RegisterTransactionRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	txRoutes := rg.Group("/transactions")
	txRoutes.Use(authMW)
	{
		txRoutes.POST("", h.CreateTransaction)
		txRoutes.GET("", h.GetMyTransactions)
		txRoutes.GET("/export.csv", h.ExportCSV)
		txRoutes.POST("/scan", h.ScanReceipt)
		txRoutes.POST("/reset", h.ResetLedger)
		txRoutes.DELETE("/:id", h.DeleteTransaction)
	}
}
