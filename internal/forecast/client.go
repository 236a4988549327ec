// Package forecast talks to the spending-forecast service.
//
// The service answers GET /predict/{user} with a 30-day series. It replies
// 400 when the user has too little history, which is reported here as
// ErrInsufficientHistory; every other failure is ErrUnavailable.
package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"expense_ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInsufficientHistory = errors.New("not enough spending history to forecast")
	ErrUnavailable         = errors.New("forecast service unavailable")
)

// Client calls the forecast service. Concurrent requests for the same user
// share one upstream call.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	group      singleflight.Group
}

// NewClient creates a Client for baseURL with a per-call timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

type predictPoint struct {
	Date            string          `json:"date"`
	PredictedAmount decimal.Decimal `json:"predicted_amount"`
	LowerBound      decimal.Decimal `json:"lower_bound"`
	UpperBound      decimal.Decimal `json:"upper_bound"`
}

type predictResponse struct {
	Forecast            []predictPoint   `json:"forecast"`
	TotalPredictedSpend *decimal.Decimal `json:"total_predicted_spend"`
	Error               string           `json:"error"`
}

// GetForecast returns the user's forecast series. If ctx ends first the
// caller gets ErrUnavailable while the shared upstream call runs to its own
// timeout.
func (c *Client) GetForecast(ctx context.Context, userID uuid.UUID) (*model.ForecastSeries, error) {
	ch := c.group.DoChan(userID.String(), func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.fetch(fctx, userID)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.ForecastSeries), nil
	}
}

func (c *Client) fetch(ctx context.Context, userID uuid.UUID) (*model.ForecastSeries, error) {
	endpoint := c.baseURL + "/predict/" + url.PathEscape(userID.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		var payload predictResponse
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientHistory, payload.Error)
		}
		return nil, ErrInsufficientHistory
	default:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload predictResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if len(payload.Forecast) == 0 {
		return nil, ErrInsufficientHistory
	}

	series := &model.ForecastSeries{Points: make([]model.ForecastPoint, 0, len(payload.Forecast))}
	sum := decimal.Zero
	for _, p := range payload.Forecast {
		series.Points = append(series.Points, model.ForecastPoint{
			Date:            p.Date,
			PredictedAmount: p.PredictedAmount,
			LowerBound:      p.LowerBound,
			UpperBound:      p.UpperBound,
		})
		sum = sum.Add(p.PredictedAmount)
	}
	if payload.TotalPredictedSpend != nil {
		series.TotalPredicted = *payload.TotalPredictedSpend
	} else {
		series.TotalPredicted = sum
	}
	return series, nil
}
