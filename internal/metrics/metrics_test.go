package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObservePrediction(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.ObservePrediction("SMA", 12, 5*time.Millisecond, nil)
	r.ObservePrediction("SMA", 0, time.Millisecond, errors.New("boom"))
	r.ObservePrediction("SMA", 8, time.Millisecond, nil)

	if got := testutil.ToFloat64(r.predictions.WithLabelValues("SMA", "ok")); got != 2 {
		t.Errorf("expected 2 ok runs, got %.0f", got)
	}
	if got := testutil.ToFloat64(r.predictions.WithLabelValues("SMA", "error")); got != 1 {
		t.Errorf("expected 1 failed run, got %.0f", got)
	}
	if got := testutil.ToFloat64(r.points.WithLabelValues("SMA")); got != 8 {
		t.Errorf("expected last points 8, got %.0f", got)
	}
}

func TestObserveRefresh(t *testing.T) {
	r := New(prometheus.NewRegistry())
	r.ObserveRefresh(nil)
	r.ObserveRefresh(errors.New("missing"))
	r.ObserveRefresh(errors.New("missing"))

	if got := testutil.ToFloat64(r.scheduled.WithLabelValues("error")); got != 2 {
		t.Errorf("expected 2 failed refreshes, got %.0f", got)
	}
}

func TestObserveCollect(t *testing.T) {
	r := New(prometheus.NewRegistry())
	r.ObserveCollect(nil)
	r.ObserveCollect(nil)
	r.ObserveCollect(errors.New("timeout"))

	if got := testutil.ToFloat64(r.collected.WithLabelValues("ok")); got != 2 {
		t.Errorf("expected 2 collected series, got %.0f", got)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.ObservePrediction("EMA", 1, time.Millisecond, nil)
	r.ObserveRefresh(nil)
	r.ObserveCollect(nil)
}
