package calculator

import (
	"errors"

	"gonum.org/v1/gonum/floats"

	"StockForecaster/internal/model"
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	return floats.Sum(prices[len(prices)-period:]) / float64(period), nil
}

// RollingSMA returns the trailing simple moving average for every full window:
// out[i] is the mean of prices[i : i+window], len(out) = len(prices)-window+1.
func RollingSMA(prices []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	if len(prices) < window {
		return nil, errors.New("not enough data for SMA calculation")
	}
	out := make([]float64, 0, len(prices)-window+1)
	for end := window; end <= len(prices); end++ {
		v, err := CalculateSMA(prices[:end], window)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// EMASeries seeds with the first price and applies
// ema = alpha*price + (1-alpha)*ema for every later price.
// The output has the same length as the input.
func EMASeries(prices []float64, alpha float64) ([]float64, error) {
	if len(prices) == 0 {
		return nil, errors.New("no prices for EMA calculation")
	}
	out := make([]float64, len(prices))
	ema := prices[0]
	out[0] = ema
	for i := 1; i < len(prices); i++ {
		ema = alpha*prices[i] + (1-alpha)*ema
		out[i] = ema
	}
	return out, nil
}

// ExtractCloses returns the closing prices of records in order.
func ExtractCloses(records []model.StockRecord) []float64 {
	closes := make([]float64, len(records))
	for i, r := range records {
		closes[i] = r.Close
	}
	return closes
}
