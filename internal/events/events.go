// Package events publishes ledger change notifications.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types, also used as routing keys.
const (
	TypeTransactionCreated = "transaction.created"
	TypeTransactionDeleted = "transaction.deleted"
	TypeLedgerReset        = "ledger.reset"
	TypeCategoryAdded      = "category.added"
)

// Event is the JSON body of a published message.
type Event struct {
	Type          string           `json:"type"`
	UserID        uuid.UUID        `json:"user_id"`
	TransactionID *uuid.UUID       `json:"transaction_id,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Category      string           `json:"category,omitempty"`
	Count         int64            `json:"count,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// Publisher delivers events. Callers treat failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

func TransactionCreated(userID, txID uuid.UUID, amount decimal.Decimal, category string) Event {
	return Event{
		Type:          TypeTransactionCreated,
		UserID:        userID,
		TransactionID: &txID,
		Amount:        &amount,
		Category:      category,
		OccurredAt:    time.Now().UTC(),
	}
}

func TransactionDeleted(userID, txID uuid.UUID) Event {
	return Event{Type: TypeTransactionDeleted, UserID: userID, TransactionID: &txID, OccurredAt: time.Now().UTC()}
}

func LedgerReset(userID uuid.UUID, count int64) Event {
	return Event{Type: TypeLedgerReset, UserID: userID, Count: count, OccurredAt: time.Now().UTC()}
}

func CategoryAdded(userID uuid.UUID, category string) Event {
	return Event{Type: TypeCategoryAdded, UserID: userID, Category: category, OccurredAt: time.Now().UTC()}
}

// Noop drops every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
