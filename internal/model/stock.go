package model

// StockRecord represents one trading-day observation for a symbol.
// Values are taken as parsed; no cross-field checks (high >= low etc.) apply.
type StockRecord struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// PredictionRun describes one orchestrated prediction, successful or not.
type PredictionRun struct {
	ID         string         `json:"id"`
	Symbol     string         `json:"symbol"`
	Algorithm  string         `json:"algorithm"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Points     int            `json:"points"`
	Error      string         `json:"error,omitempty"`
	DurationMs int64          `json:"duration_ms"`
	CreatedAt  int64          `json:"created_at"`
}
