package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replyWith(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
	})
	return string(body)
}

func TestClient_Complete(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(replyWith("Spend less on food.")))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL + "/", Model: "llama-3.3-70b-versatile", Timeout: time.Second})
	got, err := client.Complete(context.Background(), "advise me")

	require.NoError(t, err)
	assert.Equal(t, "Spend less on food.", got)
	assert.Equal(t, "llama-3.3-70b-versatile", captured.Model)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "advise me", captured.Messages[0].Content)
	assert.Nil(t, captured.ResponseFormat)
}

func TestClient_NotConfigured(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://unused"}).Complete(context.Background(), "hi")

	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"api error", http.StatusTooManyRequests, `{"error":"rate limited"}`, "status 429"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no completion choices"},
		{"bad json", http.StatusOK, `not json`, "failed to parse response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(Config{APIKey: "k", BaseURL: server.URL}).Complete(context.Background(), "x")

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	_, err := NewClient(Config{APIKey: "k", BaseURL: server.URL, Timeout: 50 * time.Millisecond}).Complete(context.Background(), "x")

	assert.Error(t, err)
}

func TestReceiptExtractor_Extract(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(replyWith("```json\n{\"merchant\": \"Cafe Coffee Day\", \"amount\": 245.5, \"category\": \"Food\"}\n```")))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "text-model"})
	extractor := NewReceiptExtractor(client, "vision-model")

	got, err := extractor.Extract(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg", []string{"Food", "Travel"})

	require.NoError(t, err)
	assert.Equal(t, "Cafe Coffee Day", got.Merchant)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("245.5")))
	assert.Equal(t, "Food", got.Category)

	assert.Equal(t, "vision-model", captured["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, captured["response_format"])
	body, _ := json.Marshal(captured["messages"])
	assert.Contains(t, string(body), "data:image/jpeg;base64,/9g=")
	assert.Contains(t, string(body), "Food, Travel")
}

func TestParseReceipt(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantAmount string
		wantErr    bool
	}{
		{"number", `{"merchant":"A","amount":120,"category":"Food"}`, "120", false},
		{"string with currency", `{"merchant":"A","amount":"₹1,250.00","category":"Food"}`, "1250", false},
		{"missing amount", `{"merchant":"A","category":"Food"}`, "0", false},
		{"fenced", "```\n{\"merchant\":\"A\",\"amount\":9.99}\n```", "9.99", false},
		{"not json", `I could not read this receipt`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseReceipt(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Amount.Equal(decimal.RequireFromString(tt.wantAmount)), "got %s", got.Amount)
		})
	}
}

func TestCleanMarkdownWrapper(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanMarkdownWrapper("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanMarkdownWrapper(`  {"a":1} `))
	assert.True(t, strings.HasPrefix(cleanMarkdownWrapper("```JSON\n{}\n```"), "{"))
}
