package model

import "github.com/shopspring/decimal"

// ForecastHorizonDays is how far ahead the forecasting collaborator predicts.
const ForecastHorizonDays = 30

// MinForecastHistoryDays is the number of distinct spending days the
// forecasting collaborator needs before it will produce a prediction.
const MinForecastHistoryDays = 5

// ForecastPoint is one predicted day.
type ForecastPoint struct {
	Date            string          `json:"date"` // YYYY-MM-DD
	PredictedAmount decimal.Decimal `json:"predicted_amount"`
	LowerBound      decimal.Decimal `json:"lower_bound"`
	UpperBound      decimal.Decimal `json:"upper_bound"`
}

// ForecastSeries is a normalized forecast.
type ForecastSeries struct {
	Points         []ForecastPoint `json:"points"`
	TotalPredicted decimal.Decimal `json:"total_predicted"`
}

// ForecastStatus tells callers which of the three forecast outcomes happened.
type ForecastStatus string

const (
	ForecastAvailable           ForecastStatus = "available"
	ForecastInsufficientHistory ForecastStatus = "insufficient_history"
	ForecastUnavailable         ForecastStatus = "unavailable"
)

// ForecastResult is the forecast as presented to dashboard consumers.
type ForecastResult struct {
	Status  ForecastStatus  `json:"status"`
	Series  *ForecastSeries `json:"series,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Available reports whether a usable series is attached.
func (r ForecastResult) Available() bool {
	return r.Status == ForecastAvailable && r.Series != nil
}
