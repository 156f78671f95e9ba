package collector

import (
	"fmt"
	"time"

	"StockForecaster/internal/logger"
	"StockForecaster/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.StockRecord
	Err       error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(symbol string, days int) ([]model.StockRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return generateMockBars(symbol, m.Price, days), nil
}

func generateMockBars(symbol string, basePrice float64, count int) []model.StockRecord {
	bars := make([]model.StockRecord, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.StockRecord{
			Symbol: symbol,
			Date:   time.Now().AddDate(0, 0, -(count - i)).Format(time.DateOnly),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// SeriesWriter persists a symbol's history.
type SeriesWriter interface {
	WriteRecords(symbol string, records []model.StockRecord) error
}

// Collector refreshes stored history from a Fetcher.
type Collector struct {
	Fetcher Fetcher
	Sink    SeriesWriter
	Days    int
	Log     *logger.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, sink SeriesWriter, days int, l *logger.Logger) *Collector {
	return &Collector{Fetcher: fetcher, Sink: sink, Days: days, Log: l}
}

// Collect fetches symbol's recent daily bars and overwrites its stored series.
// An empty fetch leaves the stored series untouched.
func (c *Collector) Collect(symbol string) (int, error) {
	bars, err := c.Fetcher.FetchDailyBars(symbol, c.Days)
	if err != nil {
		return 0, fmt.Errorf("fetch daily bars for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("fetch daily bars for %s: no bars returned", symbol)
	}
	if err := c.Sink.WriteRecords(symbol, bars); err != nil {
		return 0, fmt.Errorf("store series for %s: %w", symbol, err)
	}
	c.Log.Debug("series collected",
		logger.String("symbol", symbol),
		logger.String("source", c.Fetcher.Name()),
		logger.Int("bars", len(bars)),
		logger.String("last", bars[len(bars)-1].Date),
	)
	return len(bars), nil
}
