// Package algorithm provides the pluggable forecasting strategies.
//
// Every strategy owns one scalar parameter with fixed bounds and is otherwise
// a pure function of its configuration and the input series.
package algorithm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"StockForecaster/internal/model"
)

var (
	// ErrInvalidParameter is returned when a configuration value is out of bounds or malformed.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInsufficientData is returned when the series is shorter than the moving-average window.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrNoData is returned when the series is empty.
	ErrNoData = errors.New("no data")
)

// Params carries algorithm parameters keyed by name, e.g. {"window_size": 5}.
type Params map[string]any

// Algorithm is the capability set shared by all forecasting strategies.
type Algorithm interface {
	// Predict derives a forecast series from the records, oldest first.
	Predict(records []model.StockRecord) ([]float64, error)

	// Name returns the short algorithm name, e.g. "SMA".
	Name() string

	// Description returns a human readable summary including the live parameter.
	Description() string

	// Configure overrides the parameter if params carries its key, then validates.
	Configure(params Params) error

	// Parameters returns the live parameter and its bounds.
	Parameters() Params

	// Validate reports ErrInvalidParameter when the live parameter is out of bounds.
	Validate() error
}

func intParam(params Params, key string) (int, bool, error) {
	v, ok := params[key]
	if !ok {
		return 0, false, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %s: %v", ErrInvalidParameter, key, err)
	}
	if f != math.Trunc(f) {
		return 0, true, fmt.Errorf("%w: %s must be an integer, got %v", ErrInvalidParameter, key, v)
	}
	return int(f), true, nil
}

func floatParam(params Params, key string) (float64, bool, error) {
	v, ok := params[key]
	if !ok {
		return 0, false, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %s: %v", ErrInvalidParameter, key, err)
	}
	return f, true, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
