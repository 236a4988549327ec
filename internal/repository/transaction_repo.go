package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"expense_ledger/internal/model"

	"github.com/google/uuid"
)

// TransactionRepository defines operations for the ledger
type TransactionRepository interface {
	Append(ctx context.Context, userID uuid.UUID, draft model.TransactionDraft) (*model.Transaction, error)
	List(ctx context.Context, userID uuid.UUID, filters model.TransactionFilters) ([]model.Transaction, error)
	DeleteOne(ctx context.Context, userID, id uuid.UUID) (bool, error)
	DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error)
}

type transactionRepository struct {
	db DBTX
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db DBTX) TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, user_id, title, amount, category, date, payment_mode, description, source_scan, created_at`

// Append inserts a new transaction for userID. A zero draft date becomes now.
func (r *transactionRepository) Append(ctx context.Context, userID uuid.UUID, d model.TransactionDraft) (*model.Transaction, error) {
	t := newTransaction(userID, d, time.Now())

	sql := `INSERT INTO transactions (` + transactionColumns + `)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(ctx, sql, t.ID, t.UserID, t.Title, t.Amount, t.Category, t.Date, t.PaymentMode, t.Description, t.SourceScan, t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}
	return t, nil
}

// List retrieves the user's transactions, newest first
func (r *transactionRepository) List(ctx context.Context, userID uuid.UUID, filters model.TransactionFilters) ([]model.Transaction, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`)
	args := []any{userID}

	if filters.Category != nil && *filters.Category != "" {
		args = append(args, *filters.Category)
		queryBuilder.WriteString(fmt.Sprintf(" AND category = $%d", len(args)))
	}
	if filters.From != nil {
		args = append(args, *filters.From)
		queryBuilder.WriteString(fmt.Sprintf(" AND date >= $%d", len(args)))
	}
	if filters.To != nil {
		args = append(args, *filters.To)
		queryBuilder.WriteString(fmt.Sprintf(" AND date <= $%d", len(args)))
	}
	queryBuilder.WriteString(" ORDER BY date DESC, created_at DESC")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Title, &t.Amount, &t.Category, &t.Date,
			&t.PaymentMode, &t.Description, &t.SourceScan, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}

// DeleteOne removes one of the user's transactions. A missing or foreign id is not an error.
func (r *transactionRepository) DeleteOne(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete transaction: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// DeleteAll removes every transaction owned by userID
func (r *transactionRepository) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

func newTransaction(userID uuid.UUID, d model.TransactionDraft, now time.Time) *model.Transaction {
	date := d.Date
	if date.IsZero() {
		date = now
	}
	mode := d.PaymentMode
	if mode == "" {
		mode = model.PaymentModeCash
	}
	return &model.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       d.Title,
		Amount:      d.Amount,
		Category:    d.Category,
		Date:        date,
		PaymentMode: mode,
		Description: d.Description,
		SourceScan:  d.SourceScan,
		CreatedAt:   now,
	}
}
