package collector

import "StockForecaster/internal/model"

// Fetcher retrieves daily price history from a market data provider.
type Fetcher interface {
	FetchDailyBars(symbol string, days int) ([]model.StockRecord, error)
	Name() string
}
