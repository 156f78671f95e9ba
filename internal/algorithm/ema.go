package algorithm

import (
	"fmt"

	"StockForecaster/internal/calculator"
	"StockForecaster/internal/model"
)

const (
	// DefaultAlpha is the EMA smoothing factor used when none is configured.
	DefaultAlpha = 0.2
	MinAlpha     = 0.0001
	MaxAlpha     = 1.0

	// AlphaKey is the parameter key for the EMA smoothing factor.
	AlphaKey = "alpha"
)

// ExponentialMovingAverage forecasts with a recursively smoothed close price.
type ExponentialMovingAverage struct {
	alpha float64
}

// NewExponentialMovingAverage creates an EMA with the given smoothing factor.
func NewExponentialMovingAverage(alpha float64) (*ExponentialMovingAverage, error) {
	e := &ExponentialMovingAverage{alpha: alpha}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *ExponentialMovingAverage) Name() string { return "EMA" }

func (e *ExponentialMovingAverage) Description() string {
	return fmt.Sprintf("Exponential Moving Average (EMA) with smoothing factor %f", e.alpha)
}

// Alpha returns the live smoothing factor.
func (e *ExponentialMovingAverage) Alpha() float64 { return e.alpha }

// Predict emits one value per close, seeded with the first close.
func (e *ExponentialMovingAverage) Predict(records []model.StockRecord) ([]float64, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no data points provided for prediction", ErrNoData)
	}
	return calculator.EMASeries(calculator.ExtractCloses(records), e.alpha)
}

// Configure applies alpha when present. An invalid value is rejected and the
// previous factor is kept.
func (e *ExponentialMovingAverage) Configure(params Params) error {
	alpha, ok, err := floatParam(params, AlphaKey)
	if err != nil {
		return err
	}
	if !ok {
		return e.Validate()
	}
	if err := validateAlpha(alpha); err != nil {
		return err
	}
	e.alpha = alpha
	return nil
}

func (e *ExponentialMovingAverage) Parameters() Params {
	return Params{
		AlphaKey:    e.alpha,
		"min_alpha": MinAlpha,
		"max_alpha": MaxAlpha,
	}
}

func (e *ExponentialMovingAverage) Validate() error {
	return validateAlpha(e.alpha)
}

// The lower bound is exclusive: alpha must lie in (MinAlpha, MaxAlpha].
func validateAlpha(alpha float64) error {
	if !(alpha > MinAlpha && alpha <= MaxAlpha) {
		return fmt.Errorf("%w: smoothing factor (alpha) must be in (%g, %g], got %g", ErrInvalidParameter, MinAlpha, MaxAlpha, alpha)
	}
	return nil
}
