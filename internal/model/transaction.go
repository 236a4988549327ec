package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMode is how an expense was paid.
type PaymentMode string

const (
	PaymentModeUPI  PaymentMode = "UPI"
	PaymentModeCash PaymentMode = "Cash"
)

// ParsePaymentMode maps user input onto a PaymentMode. Empty input yields Cash.
func ParsePaymentMode(s string) (PaymentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return PaymentModeCash, nil
	case "cash":
		return PaymentModeCash, nil
	case "upi":
		return PaymentModeUPI, nil
	}
	return "", fmt.Errorf("unknown payment mode %q", s)
}

// DefaultCategory is used when an expense arrives without a category.
const DefaultCategory = "Other"

// ScannedReceiptDescription marks expenses created from a receipt image.
const ScannedReceiptDescription = "Scanned Receipt"

// Transaction is a single expense in a user's ledger. It is never mutated after creation.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	PaymentMode PaymentMode     `json:"payment_mode"`
	Description string          `json:"description"`
	SourceScan  bool            `json:"source_scan"` // created by receipt extraction
	CreatedAt   time.Time       `json:"created_at"`
}

// TransactionDraft is what the ledger needs to append a transaction.
type TransactionDraft struct {
	Title       string
	Amount      decimal.Decimal
	Category    string
	Date        time.Time // zero means "now"
	PaymentMode PaymentMode
	Description string
	SourceScan  bool
}

// CreateTransactionRequest is used for creating a new transaction
type CreateTransactionRequest struct {
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        *time.Time      `json:"date"`
	PaymentMode string          `json:"payment_mode"`
	Description string          `json:"description"`
}

// TransactionFilters narrows a ledger listing. Nil fields are ignored.
type TransactionFilters struct {
	Category *string
	From     *time.Time
	To       *time.Time
}

// ReceiptExtraction is what the receipt-extraction collaborator returns.
type ReceiptExtraction struct {
	Merchant string          `json:"merchant"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
}
