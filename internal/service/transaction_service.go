package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"expense_ledger/internal/events"
	"expense_ledger/internal/model"
	"expense_ledger/internal/repository"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ResetConfirmation must be sent verbatim to clear a ledger.
const ResetConfirmation = "DELETE ALL"

const MaxFileSize = 5 * 1024 * 1024 // 5MB

// ScannedTitle is the title of a scanned expense whose merchant could not be read.
const ScannedTitle = "Receipt"

var receiptTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".pdf":  "application/pdf",
	".webp": "image/webp",
}

var csvHeader = []string{"Title", "Amount", "Category", "Date", "Mode", "Description"}

// ReceiptExtractor reads an expense off a receipt image.
type ReceiptExtractor interface {
	Extract(ctx context.Context, data []byte, mimeType string, categories []string) (*model.ReceiptExtraction, error)
}

// Upload is a receipt file received from a client.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// AddTransactionResult is the outcome of recording an expense.
type AddTransactionResult struct {
	Transaction   *model.Transaction `json:"transaction"`
	CategoryAdded bool               `json:"category_added"`
}

// TransactionService defines operations on a user's ledger
type TransactionService interface {
	AddTransaction(ctx context.Context, userID uuid.UUID, req model.CreateTransactionRequest) (*AddTransactionResult, error)
	List(ctx context.Context, userID uuid.UUID, filters model.TransactionFilters) ([]model.Transaction, error)
	DeleteOne(ctx context.Context, userID, id uuid.UUID) error
	ResetLedger(ctx context.Context, userID uuid.UUID, confirm string) (int64, error)
	ScanReceipt(ctx context.Context, userID uuid.UUID, upload Upload) (*AddTransactionResult, error)
	ExportCSV(ctx context.Context, userID uuid.UUID) (*bytes.Buffer, error)
}

type transactionService struct {
	ledger    repository.TransactionRepository
	budgets   repository.BudgetRepository
	extractor ReceiptExtractor
	publisher events.Publisher
	loc       *time.Location
	now       func() time.Time
}

// TransactionServiceOption configures a TransactionService.
type TransactionServiceOption func(*transactionService)

// WithReceiptExtractor enables ScanReceipt.
func WithReceiptExtractor(e ReceiptExtractor) TransactionServiceOption {
	return func(s *transactionService) { s.extractor = e }
}

// WithPublisher sets where ledger events go.
func WithPublisher(p events.Publisher) TransactionServiceOption {
	return func(s *transactionService) { s.publisher = p }
}

// WithClock overrides the time source; used by tests.
func WithClock(now func() time.Time) TransactionServiceOption {
	return func(s *transactionService) { s.now = now }
}

// NewTransactionService creates a new TransactionService. Dates are
// interpreted and exported in loc.
func NewTransactionService(ledger repository.TransactionRepository, budgets repository.BudgetRepository, loc *time.Location, opts ...TransactionServiceOption) TransactionService {
	if loc == nil {
		loc = time.Local
	}
	s := &transactionService{
		ledger:    ledger,
		budgets:   budgets,
		publisher: events.Noop{},
		loc:       loc,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *transactionService) AddTransaction(ctx context.Context, userID uuid.UUID, req model.CreateTransactionRequest) (*AddTransactionResult, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("title", "is required")
	}
	if err := checkMoney("amount", req.Amount); err != nil {
		return nil, err
	}
	mode, err := model.ParsePaymentMode(req.PaymentMode)
	if err != nil {
		return nil, invalid("payment_mode", "must be UPI or Cash")
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = model.DefaultCategory
	}

	date := s.now()
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
	}

	return s.record(ctx, userID, model.TransactionDraft{
		Title:       title,
		Amount:      req.Amount,
		Category:    category,
		Date:        date.In(s.loc),
		PaymentMode: mode,
		Description: strings.TrimSpace(req.Description),
	})
}

// record adds the draft's category to the user's set, then appends the
// draft. The two writes are separate; a failed append leaves the category.
func (s *transactionService) record(ctx context.Context, userID uuid.UUID, draft model.TransactionDraft) (*AddTransactionResult, error) {
	added, err := s.budgets.AddCategory(ctx, userID, draft.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert category: %w", err)
	}

	t, err := s.ledger.Append(ctx, userID, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	if added {
		publish(ctx, s.publisher, events.CategoryAdded(userID, draft.Category))
	}
	publish(ctx, s.publisher, events.TransactionCreated(userID, t.ID, t.Amount, t.Category))

	return &AddTransactionResult{Transaction: t, CategoryAdded: added}, nil
}

// List returns the user's transactions newest first. Both bounds are
// inclusive instants.
func (s *transactionService) List(ctx context.Context, userID uuid.UUID, filters model.TransactionFilters) ([]model.Transaction, error) {
	if filters.From != nil && filters.To != nil && filters.To.Before(*filters.From) {
		return nil, invalid("to", "must not be before from")
	}

	transactions, err := s.ledger.List(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

// DeleteOne removes a transaction. Unknown or foreign ids succeed silently.
func (s *transactionService) DeleteOne(ctx context.Context, userID, id uuid.UUID) error {
	deleted, err := s.ledger.DeleteOne(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if deleted {
		publish(ctx, s.publisher, events.TransactionDeleted(userID, id))
	}
	return nil
}

// ResetLedger deletes every transaction of the user when confirm matches
// ResetConfirmation. The budget config is kept.
func (s *transactionService) ResetLedger(ctx context.Context, userID uuid.UUID, confirm string) (int64, error) {
	if confirm != ResetConfirmation {
		return 0, ErrConfirmationRequired
	}

	n, err := s.ledger.DeleteAll(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to reset ledger: %w", err)
	}
	log.Info("ledger reset", "user_id", userID, "deleted", n)
	publish(ctx, s.publisher, events.LedgerReset(userID, n))
	return n, nil
}

// ScanReceipt extracts an expense from a receipt image and records it.
// The extracted amount is stored as read, rounded to cents.
func (s *transactionService) ScanReceipt(ctx context.Context, userID uuid.UUID, upload Upload) (*AddTransactionResult, error) {
	if upload.Size > MaxFileSize {
		return nil, ErrFileSizeExceeded
	}
	mimeType, ok := receiptTypes[strings.ToLower(filepath.Ext(upload.Filename))]
	if !ok {
		return nil, ErrInvalidFileFormat
	}
	if s.extractor == nil {
		return nil, fmt.Errorf("%w: no extractor configured", ErrExtractionFailed)
	}

	data, err := io.ReadAll(io.LimitReader(upload.Content, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, ErrFileSizeExceeded
	}

	cfg, err := s.budgets.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget config: %w", err)
	}

	extraction, err := s.extractor.Extract(ctx, data, mimeType, cfg.Categories)
	if err != nil {
		log.Warn("receipt extraction failed", "user_id", userID, "file", upload.Filename, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	amount := extraction.Amount.Round(moneyScale)
	if amount.Abs().GreaterThanOrEqual(maxMoney) {
		return nil, fmt.Errorf("%w: amount %s out of range", ErrExtractionFailed, amount)
	}

	title := extraction.Merchant
	if title == "" {
		title = ScannedTitle
	}
	category := extraction.Category
	if category == "" {
		category = model.DefaultCategory
	}

	return s.record(ctx, userID, model.TransactionDraft{
		Title:       title,
		Amount:      amount,
		Category:    category,
		Date:        s.now().In(s.loc),
		PaymentMode: model.PaymentModeCash,
		Description: model.ScannedReceiptDescription,
		SourceScan:  true,
	})
}

// ExportCSV writes the user's ledger, newest first, as CSV.
func (s *transactionService) ExportCSV(ctx context.Context, userID uuid.UUID) (*bytes.Buffer, error) {
	transactions, err := s.ledger.List(ctx, userID, model.TransactionFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for CSV export: %w", err)
	}

	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)

	if err := writer.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, t := range transactions {
		mode := t.PaymentMode
		if mode == "" {
			mode = model.PaymentModeCash
		}
		row := []string{
			t.Title,
			t.Amount.String(),
			t.Category,
			t.Date.In(s.loc).Format("1/2/2006"),
			string(mode),
			t.Description,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("error flushing CSV writer: %w", err)
	}
	return buffer, nil
}
