package algorithm

import (
	"fmt"

	"StockForecaster/internal/calculator"
	"StockForecaster/internal/model"
)

const (
	// DefaultWindow is the SMA window used when none is configured.
	DefaultWindow = 5
	MinWindow     = 2
	MaxWindow     = 200

	// WindowSizeKey is the parameter key for the SMA window.
	WindowSizeKey = "window_size"
)

// SimpleMovingAverage forecasts with the trailing mean of the last window closes.
type SimpleMovingAverage struct {
	window int
}

// NewSimpleMovingAverage creates an SMA with the given window.
func NewSimpleMovingAverage(window int) (*SimpleMovingAverage, error) {
	s := &SimpleMovingAverage{window: window}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SimpleMovingAverage) Name() string { return "SMA" }

func (s *SimpleMovingAverage) Description() string {
	return fmt.Sprintf("Simple Moving Average (SMA) using %d day window", s.window)
}

// Window returns the live window size.
func (s *SimpleMovingAverage) Window() int { return s.window }

// Predict returns len(closes)-window+1 values, the i-th being the mean of closes[i:i+window].
func (s *SimpleMovingAverage) Predict(records []model.StockRecord) ([]float64, error) {
	closes := calculator.ExtractCloses(records)
	if len(closes) < s.window {
		return nil, fmt.Errorf("%w: %d data points for a %d day window", ErrInsufficientData, len(closes), s.window)
	}
	return calculator.RollingSMA(closes, s.window)
}

// Configure applies window_size when present. An invalid value is rejected
// and the previous window is kept.
func (s *SimpleMovingAverage) Configure(params Params) error {
	window, ok, err := intParam(params, WindowSizeKey)
	if err != nil {
		return err
	}
	if !ok {
		return s.Validate()
	}
	if err := validateWindow(window); err != nil {
		return err
	}
	s.window = window
	return nil
}

func (s *SimpleMovingAverage) Parameters() Params {
	return Params{
		WindowSizeKey: s.window,
		"min_window":  MinWindow,
		"max_window":  MaxWindow,
	}
}

func (s *SimpleMovingAverage) Validate() error {
	return validateWindow(s.window)
}

func validateWindow(window int) error {
	if window < MinWindow || window > MaxWindow {
		return fmt.Errorf("%w: window size must be between %d and %d, got %d", ErrInvalidParameter, MinWindow, MaxWindow, window)
	}
	return nil
}
