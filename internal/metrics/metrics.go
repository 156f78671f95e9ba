// Package metrics exposes Prometheus instruments for prediction runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the prediction instruments.
type Recorder struct {
	predictions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	points      *prometheus.GaugeVec
	scheduled   *prometheus.CounterVec
	collected   *prometheus.CounterVec
}

// New registers the instruments with reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecaster_predictions_total",
				Help: "Total number of prediction runs by algorithm and result",
			},
			[]string{"algorithm", "result"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forecaster_prediction_duration_seconds",
				Help:    "Duration of prediction runs including storage I/O",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"algorithm"},
		),
		points: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "forecaster_prediction_points",
				Help: "Number of points in the last successful prediction per algorithm",
			},
			[]string{"algorithm"},
		),
		scheduled: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecaster_scheduled_refresh_total",
				Help: "Scheduled forecast refreshes by result",
			},
			[]string{"result"},
		),
		collected: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecaster_series_collect_total",
				Help: "Series history refreshes from the market data source by result",
			},
			[]string{"result"},
		),
	}
}

// ObservePrediction records the outcome of one prediction run. Symbols are
// not used as labels; uploads synthesize a fresh one per request.
func (r *Recorder) ObservePrediction(algorithm string, points int, d time.Duration, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.predictions.WithLabelValues(algorithm, result).Inc()
	r.duration.WithLabelValues(algorithm).Observe(d.Seconds())
	if err == nil {
		r.points.WithLabelValues(algorithm).Set(float64(points))
	}
}

// ObserveRefresh records one scheduled (symbol, algorithm) refresh.
func (r *Recorder) ObserveRefresh(err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.scheduled.WithLabelValues("error").Inc()
		return
	}
	r.scheduled.WithLabelValues("ok").Inc()
}

// ObserveCollect records one series history refresh.
func (r *Recorder) ObserveCollect(err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.collected.WithLabelValues("error").Inc()
		return
	}
	r.collected.WithLabelValues("ok").Inc()
}
