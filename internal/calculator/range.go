package calculator

import (
	"errors"
	"math"

	"StockForecaster/internal/model"
)

// SeriesRange scans the most recent lookback records and returns the highest
// high and the lowest low. A lookback <= 0 scans the whole series.
func SeriesRange(records []model.StockRecord, lookback int) (high, low float64, err error) {
	if len(records) == 0 {
		return 0, 0, errors.New("no records provided")
	}
	n := len(records)
	start := 0
	if lookback > 0 && n > lookback {
		start = n - lookback
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if records[i].High > high {
			high = records[i].High
		}
		if records[i].Low < low {
			low = records[i].Low
		}
	}
	return high, low, nil
}

// RangePosition returns where price sits within [low, high], clamped to 0.0~1.0.
func RangePosition(price, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (price - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
