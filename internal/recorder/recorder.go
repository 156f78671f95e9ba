package recorder

import "StockForecaster/internal/model"

// Recorder persists prediction runs for later inspection.
type Recorder interface {
	RecordRun(run *model.PredictionRun) error
	RecentRuns(limit int) ([]model.PredictionRun, error)
	Close() error
}
