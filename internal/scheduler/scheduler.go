package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"StockForecaster/internal/logger"
	"StockForecaster/internal/metrics"
	"StockForecaster/internal/notifier"
)

// Forecaster is the part of the predictor the scheduler drives.
type Forecaster interface {
	Predict(symbol, algorithm string) ([]float64, error)
}

// SeriesCollector refreshes a symbol's stored history before it is forecast.
type SeriesCollector interface {
	Collect(symbol string) (int, error)
}

// Notifier delivers refresh reports.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

const reportRetries = 2

// Scheduler refreshes forecasts for a fixed set of symbols on a cron schedule.
type Scheduler struct {
	Cron       *cron.Cron
	Forecaster Forecaster
	Collector  SeriesCollector // optional
	Notifier   Notifier        // optional
	Symbols    []string
	Algorithms []string
	Metrics    *metrics.Recorder
	Log        *logger.Logger

	running sync.WaitGroup // passes started by RunAsync
}

// RefreshResult summarizes one refresh pass.
type RefreshResult struct {
	Succeeded int
	Failed    map[string]error // "SYMBOL/ALGORITHM" -> error
	Collected int
	Stale     map[string]error // symbols whose history could not be refreshed
}

// NewScheduler creates a new Scheduler.
func NewScheduler(f Forecaster, symbols, algorithms []string, m *metrics.Recorder, l *logger.Logger) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Forecaster: f,
		Symbols:    symbols,
		Algorithms: algorithms,
		Metrics:    m,
		Log:        l,
	}
}

// Register adds the refresh task under spec (six-field, seconds first).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.RunNow() }); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started",
		logger.Strings("symbols", s.Symbols),
		logger.Strings("algorithms", s.Algorithms),
	)
}

// Stop stops the cron scheduler and waits for running refreshes, cron or
// RunAsync, to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.running.Wait()
	s.Log.Info("scheduler stopped")
}

// RunAsync starts a refresh pass in the background. Stop waits for it.
func (s *Scheduler) RunAsync() {
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		s.RunNow()
	}()
}

// RunNow runs every symbol through every algorithm. When a Collector is set,
// each symbol's history is refreshed first; a failed refresh forecasts the
// stored series as is. A failure is logged and counted, and the pass
// continues with the next pair.
func (s *Scheduler) RunNow() RefreshResult {
	s.Log.Info("running forecast refresh")
	res := RefreshResult{Failed: make(map[string]error), Stale: make(map[string]error)}
	for _, symbol := range s.Symbols {
		if s.Collector != nil {
			_, err := s.Collector.Collect(symbol)
			s.Metrics.ObserveCollect(err)
			if err != nil {
				s.Log.Warn("series refresh failed, using stored history",
					logger.String("symbol", symbol),
					logger.Error(err),
				)
				res.Stale[symbol] = err
			} else {
				res.Collected++
			}
		}
		for _, alg := range s.Algorithms {
			_, err := s.Forecaster.Predict(symbol, alg)
			s.Metrics.ObserveRefresh(err)
			if err != nil {
				s.Log.Error("forecast refresh failed",
					logger.String("symbol", symbol),
					logger.String("algorithm", alg),
					logger.Error(err),
				)
				res.Failed[symbol+"/"+alg] = err
				continue
			}
			res.Succeeded++
		}
	}
	s.Log.Info("forecast refresh finished",
		logger.Int("succeeded", res.Succeeded),
		logger.Int("failed", len(res.Failed)),
		logger.Int("collected", res.Collected),
	)
	if s.Notifier != nil {
		report := notifier.FormatRefreshReport(time.Now(), res.Succeeded, res.Failed, res.Stale)
		if err := s.Notifier.SendWithRetry(context.Background(), report, reportRetries); err != nil {
			s.Log.Error("send refresh report", logger.Error(err))
		}
	}
	return res
}
