// Package predictor binds a named algorithm to data retrieval and result persistence.
package predictor

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"StockForecaster/internal/algorithm"
	"StockForecaster/internal/datastore"
	"StockForecaster/internal/logger"
	"StockForecaster/internal/metrics"
	"StockForecaster/internal/model"
	"StockForecaster/internal/recorder"
)

// ErrUnknownAlgorithm is returned when no algorithm is registered under a name.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// AlgorithmInfo describes a registered algorithm for display.
type AlgorithmInfo struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Parameters  algorithm.Params `json:"parameters"`
}

// Predictor owns the name -> algorithm registry.
//
// Registration and configuration take the exclusive lock; lookups and the
// algorithm computation take the shared lock. Storage I/O runs unlocked, so
// two concurrent predictions for the same symbol race on the artifact and
// the last writer wins.
type Predictor struct {
	store      datastore.Store
	mu         sync.RWMutex
	algorithms map[string]algorithm.Algorithm
	recorder   recorder.Recorder
	metrics    *metrics.Recorder
	log        *logger.Logger
	now        func() time.Time
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithRecorder records every prediction run.
func WithRecorder(r recorder.Recorder) Option {
	return func(p *Predictor) { p.recorder = r }
}

// WithMetrics observes every prediction run.
func WithMetrics(m *metrics.Recorder) Option {
	return func(p *Predictor) { p.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Predictor) { p.log = l }
}

// New creates a Predictor with an empty registry.
func New(store datastore.Store, opts ...Option) *Predictor {
	p := &Predictor{
		store:      store,
		algorithms: make(map[string]algorithm.Algorithm),
		recorder:   recorder.NewNoopRecorder(),
		log:        logger.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewWithDefaults creates a Predictor with "SMA" (window 5) and "EMA" (alpha 0.2) registered.
func NewWithDefaults(store datastore.Store, opts ...Option) (*Predictor, error) {
	p := New(store, opts...)
	if err := p.RegisterDefaults(algorithm.DefaultWindow, algorithm.DefaultAlpha); err != nil {
		return nil, err
	}
	return p, nil
}

// RegisterDefaults registers "SMA" and "EMA" with the given parameters.
func (p *Predictor) RegisterDefaults(window int, alpha float64) error {
	sma, err := algorithm.NewSimpleMovingAverage(window)
	if err != nil {
		return fmt.Errorf("init SMA: %w", err)
	}
	ema, err := algorithm.NewExponentialMovingAverage(alpha)
	if err != nil {
		return fmt.Errorf("init EMA: %w", err)
	}
	p.RegisterAlgorithm("SMA", sma)
	p.RegisterAlgorithm("EMA", ema)
	return nil
}

// RegisterAlgorithm inserts or replaces the algorithm registered under name.
// The Predictor owns alg from here on; callers must not configure it directly.
func (p *Predictor) RegisterAlgorithm(name string, alg algorithm.Algorithm) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, replaced := p.algorithms[name]
	p.algorithms[name] = alg
	p.log.Debug("algorithm registered",
		logger.String("name", name),
		logger.String("description", alg.Description()),
		logger.Bool("replaced", replaced),
	)
}

// ListAlgorithms returns every registered name, sorted.
func (p *Predictor) ListAlgorithms() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.algorithms))
	for name := range p.algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns name, description and parameters of every registered algorithm.
func (p *Predictor) Describe() []AlgorithmInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	infos := make([]AlgorithmInfo, 0, len(p.algorithms))
	for name, alg := range p.algorithms {
		infos = append(infos, AlgorithmInfo{
			Name:        name,
			Description: alg.Description(),
			Parameters:  alg.Parameters(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// ConfigureAlgorithm applies params to the algorithm registered under name.
func (p *Predictor) ConfigureAlgorithm(name string, params algorithm.Params) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	alg, ok := p.algorithms[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
	if err := alg.Configure(params); err != nil {
		return fmt.Errorf("configure %s: %w", name, err)
	}
	return nil
}

// AlgorithmParameters returns the live parameters of the algorithm registered under name.
func (p *Predictor) AlgorithmParameters(name string) (algorithm.Params, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	alg, ok := p.algorithms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
	return alg.Parameters(), nil
}

// HistoricalData returns symbol's stored series.
func (p *Predictor) HistoricalData(symbol string) ([]model.StockRecord, error) {
	return p.store.ReadSeries(symbol)
}

// DataDirectory returns the storage root.
func (p *Predictor) DataDirectory() string {
	return p.store.Root()
}

// Predict runs the named algorithm over symbol's series and persists the
// result before returning it. A failure anywhere leaves any earlier artifact
// untouched.
func (p *Predictor) Predict(symbol, name string) ([]float64, error) {
	values, _, err := p.run(symbol, name, nil)
	return values, err
}

// PredictWith is Predict preceded by ConfigureAlgorithm(name, params) when
// params is non-nil. Configuration, the parameter read and the computation
// happen under one exclusive lock, so the returned parameters are the ones
// the forecast was computed with.
func (p *Predictor) PredictWith(symbol, name string, params algorithm.Params) ([]float64, algorithm.Params, error) {
	return p.run(symbol, name, params)
}

func (p *Predictor) run(symbol, name string, configure algorithm.Params) ([]float64, algorithm.Params, error) {
	start := p.now()
	values, params, err := p.predict(symbol, name, configure)
	elapsed := p.now().Sub(start)

	p.metrics.ObservePrediction(name, len(values), elapsed, err)
	p.record(symbol, name, params, len(values), elapsed, start, err)

	if err != nil {
		p.log.Warn("prediction failed",
			logger.String("symbol", symbol),
			logger.String("algorithm", name),
			logger.Error(err),
		)
		return nil, params, err
	}
	p.log.Info("prediction stored",
		logger.String("symbol", symbol),
		logger.String("algorithm", name),
		logger.Int("points", len(values)),
		logger.Duration("duration_ms", elapsed),
	)
	return values, params, nil
}

func (p *Predictor) predict(symbol, name string, configure algorithm.Params) ([]float64, algorithm.Params, error) {
	alg, ok := p.lookup(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}

	records, err := p.store.ReadSeries(symbol)
	if err != nil {
		return nil, nil, err
	}

	params, values, err := p.compute(alg, name, records, configure)
	if err != nil {
		return nil, params, err
	}

	if err := p.store.WriteSeries(symbol, values); err != nil {
		return nil, params, err
	}
	return values, params, nil
}

func (p *Predictor) compute(alg algorithm.Algorithm, name string, records []model.StockRecord, configure algorithm.Params) (algorithm.Params, []float64, error) {
	if configure == nil {
		p.mu.RLock()
		defer p.mu.RUnlock()
		params := alg.Parameters()
		values, err := alg.Predict(records)
		return params, values, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := alg.Configure(configure); err != nil {
		return nil, nil, fmt.Errorf("configure %s: %w", name, err)
	}
	params := alg.Parameters()
	values, err := alg.Predict(records)
	return params, values, err
}

func (p *Predictor) lookup(name string) (algorithm.Algorithm, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	alg, ok := p.algorithms[name]
	return alg, ok
}

func (p *Predictor) record(symbol, name string, params algorithm.Params, points int, elapsed time.Duration, at time.Time, err error) {
	run := &model.PredictionRun{
		ID:         uuid.NewString(),
		Symbol:     symbol,
		Algorithm:  name,
		Parameters: params,
		Points:     points,
		DurationMs: elapsed.Milliseconds(),
		CreatedAt:  at.UnixMilli(),
	}
	if err != nil {
		run.Error = err.Error()
	}
	if rerr := p.recorder.RecordRun(run); rerr != nil {
		p.log.Error("record prediction run", logger.String("symbol", symbol), logger.Error(rerr))
	}
}
