package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"expense_ledger/internal/model"

	"github.com/shopspring/decimal"
)

// ReceiptExtractor reads merchant, total and category off a receipt image
// with a vision model.
type ReceiptExtractor struct {
	client *Client
	model  string
}

// NewReceiptExtractor uses visionModel, or the client's default model when empty.
func NewReceiptExtractor(client *Client, visionModel string) *ReceiptExtractor {
	if visionModel == "" {
		visionModel = client.model
	}
	return &ReceiptExtractor{client: client, model: visionModel}
}

func receiptPrompt(categories []string) string {
	return fmt.Sprintf(`Analyze this receipt image. Extract:
1. Merchant Name (Title)
2. Total Amount (number only)
3. Category (choose one of: %s)

Return ONLY a JSON object: {"merchant": "...", "amount": 0.0, "category": "..."}`, strings.Join(categories, ", "))
}

// Extract sends the image and parses the model's JSON answer.
func (e *ReceiptExtractor) Extract(ctx context.Context, data []byte, mimeType string, categories []string) (*model.ReceiptExtraction, error) {
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
	messages := []Message{{
		Role: "user",
		Content: []ContentPart{
			{Type: "text", Text: receiptPrompt(categories)},
			{Type: "image_url", ImageURL: &ImageURL{URL: dataURL}},
		},
	}}

	content, err := e.client.Chat(ctx, e.model, messages, true)
	if err != nil {
		return nil, err
	}
	return parseReceipt(content)
}

func parseReceipt(content string) (*model.ReceiptExtraction, error) {
	var raw struct {
		Merchant string          `json:"merchant"`
		Amount   json.RawMessage `json:"amount"`
		Category string          `json:"category"`
	}
	if err := json.Unmarshal([]byte(cleanMarkdownWrapper(content)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	amount, err := parseAmount(raw.Amount)
	if err != nil {
		return nil, err
	}

	return &model.ReceiptExtraction{
		Merchant: strings.TrimSpace(raw.Merchant),
		Amount:   amount,
		Category: strings.TrimSpace(raw.Category),
	}, nil
}

// parseAmount accepts a JSON number or a string such as "₹1,250.00".
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	s = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if s == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", string(raw), err)
	}
	return d, nil
}
