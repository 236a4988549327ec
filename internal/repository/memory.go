package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"expense_ledger/internal/model"

	"github.com/google/uuid"
)

// MemoryStore keeps users, budget configs and ledgers in process memory. It
// implements UserRepository, BudgetRepository and TransactionRepository with
// the same contracts as the Postgres repositories; every method holds the
// store lock for its whole duration, so each call is atomic.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]*model.User
	budgets      map[uuid.UUID]*model.BudgetConfig
	transactions map[uuid.UUID][]model.Transaction // by owner, insertion order
	now          func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[uuid.UUID]*model.User),
		budgets:      make(map[uuid.UUID]*model.BudgetConfig),
		transactions: make(map[uuid.UUID][]model.Transaction),
		now:          time.Now,
	}
}

var (
	_ UserRepository        = (*MemoryStore)(nil)
	_ BudgetRepository      = (*MemoryStore)(nil)
	_ TransactionRepository = (*MemoryStore)(nil)
)

// --- users ---

func (m *MemoryStore) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	u := *user
	m.users[u.ID] = &u
	return nil
}

func (m *MemoryStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// --- budget configs ---

func (m *MemoryStore) GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.BudgetConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return cloneBudget(m.getOrCreateLocked(userID)), nil
}

func (m *MemoryStore) UpdateBudget(ctx context.Context, userID uuid.UUID, update model.BudgetUpdate) (*model.BudgetConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg := m.getOrCreateLocked(userID)
	if update.MonthlyBudget != nil {
		cfg.MonthlyBudget = *update.MonthlyBudget
	}
	if update.DailyBudget != nil {
		cfg.DailyBudget = *update.DailyBudget
	}
	cfg.UpdatedAt = m.now()
	return cloneBudget(cfg), nil
}

func (m *MemoryStore) AddCategory(ctx context.Context, userID uuid.UUID, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg := m.getOrCreateLocked(userID)
	if cfg.HasCategory(name) {
		return false, nil
	}
	cfg.Categories = append(cfg.Categories, name)
	cfg.UpdatedAt = m.now()
	return true, nil
}

func (m *MemoryStore) getOrCreateLocked(userID uuid.UUID) *model.BudgetConfig {
	cfg, ok := m.budgets[userID]
	if !ok {
		cfg = model.NewDefaultBudgetConfig(userID)
		cfg.UpdatedAt = m.now()
		m.budgets[userID] = cfg
	}
	return cfg
}

// BudgetConfigCount reports how many configs exist; used by tests.
func (m *MemoryStore) BudgetConfigCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.budgets)
}

func cloneBudget(cfg *model.BudgetConfig) *model.BudgetConfig {
	cp := *cfg
	cp.Categories = append([]string(nil), cfg.Categories...)
	return &cp
}

// --- ledger ---

func (m *MemoryStore) Append(ctx context.Context, userID uuid.UUID, d model.TransactionDraft) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := newTransaction(userID, d, m.now())
	m.transactions[userID] = append(m.transactions[userID], *t)
	return t, nil
}

func (m *MemoryStore) List(ctx context.Context, userID uuid.UUID, filters model.TransactionFilters) ([]model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []model.Transaction{}
	for _, t := range m.transactions[userID] {
		if filters.Category != nil && *filters.Category != "" && t.Category != *filters.Category {
			continue
		}
		if filters.From != nil && t.Date.Before(*filters.From) {
			continue
		}
		if filters.To != nil && t.Date.After(*filters.To) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) DeleteOne(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ledger := m.transactions[userID]
	for i, t := range ledger {
		if t.ID == id {
			m.transactions[userID] = append(ledger[:i:i], ledger[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := int64(len(m.transactions[userID]))
	delete(m.transactions, userID)
	return n, nil
}
