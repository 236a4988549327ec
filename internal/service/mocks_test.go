package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"expense_ledger/internal/events"
	"expense_ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

var refNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return refNow }

func money(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

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

type MockGoogleVerifier struct {
	mock.Mock
}

func (m *MockGoogleVerifier) Verify(ctx context.Context, credential string) (*GoogleIdentity, error) {
	args := m.Called(ctx, credential)
	id, _ := args.Get(0).(*GoogleIdentity)
	return id, args.Error(1)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

var errStoreDown = errors.New("store down")

// failingLedger fails every call.
type failingLedger struct{}

func (failingLedger) Append(context.Context, uuid.UUID, model.TransactionDraft) (*model.Transaction, error) {
	return nil, errStoreDown
}

func (failingLedger) List(context.Context, uuid.UUID, model.TransactionFilters) ([]model.Transaction, error) {
	return nil, errStoreDown
}

func (failingLedger) DeleteOne(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, errStoreDown
}

func (failingLedger) DeleteAll(context.Context, uuid.UUID) (int64, error) { return 0, errStoreDown }
