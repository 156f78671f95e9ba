// Package datastore translates between the on-disk CSV layout and StockRecord series.
//
// Layout under the storage root:
//
//	<root>/<SYMBOL>.csv              Date,Open,High,Low,Close,Volume
//	<root>/<SYMBOL>_predictions.csv  Date,Predicted_Close
package datastore

import (
	"errors"

	"StockForecaster/internal/model"
)

var (
	// ErrNotFound is returned when a symbol's series cannot be opened.
	ErrNotFound = errors.New("series not found")
	// ErrWriteFailed is returned when a prediction artifact cannot be created.
	ErrWriteFailed = errors.New("write failed")
)

// Store reads a symbol's history and persists computed series.
type Store interface {
	ReadSeries(symbol string) ([]model.StockRecord, error)
	WriteSeries(symbol string, values []float64) error
	Root() string
}
