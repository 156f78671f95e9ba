package algorithm

import (
	"errors"
	"testing"
)

func TestEMA_Predict(t *testing.T) {
	ema, err := NewExponentialMovingAverage(0.5)
	if err != nil {
		t.Fatalf("new ema: %v", err)
	}
	got, err := ema.Predict(recordsFromCloses(10, 20, 30))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	assertValues(t, got, []float64{10, 15, 22.5})
}

func TestEMA_LengthMatchesInput(t *testing.T) {
	ema, _ := NewExponentialMovingAverage(DefaultAlpha)
	closes := []float64{5, 7, 6, 9, 11, 10}
	for n := 1; n <= len(closes); n++ {
		got, err := ema.Predict(recordsFromCloses(closes[:n]...))
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if len(got) != n {
			t.Errorf("n=%d: expected %d values, got %d", n, n, len(got))
		}
		if got[0] != closes[0] {
			t.Errorf("n=%d: expected seed %.2f, got %.2f", n, closes[0], got[0])
		}
	}
}

func TestEMA_NoData(t *testing.T) {
	ema, _ := NewExponentialMovingAverage(DefaultAlpha)
	if _, err := ema.Predict(nil); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestEMA_ConstructorBounds(t *testing.T) {
	for _, a := range []float64{0.0002, DefaultAlpha, MaxAlpha} {
		if _, err := NewExponentialMovingAverage(a); err != nil {
			t.Errorf("alpha %g should be valid: %v", a, err)
		}
	}
	for _, a := range []float64{0, MinAlpha, -0.5, 1.0001, 2} {
		if _, err := NewExponentialMovingAverage(a); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("alpha %g: expected ErrInvalidParameter, got %v", a, err)
		}
	}
}

// A rejected configure keeps the last valid alpha rather than the bad value.
func TestEMA_ConfigureOutOfRangeKeepsPreviousAlpha(t *testing.T) {
	ema, _ := NewExponentialMovingAverage(DefaultAlpha)
	if err := ema.Configure(Params{AlphaKey: 1.5}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if ema.Alpha() != DefaultAlpha {
		t.Errorf("expected alpha to stay %g, got %g", DefaultAlpha, ema.Alpha())
	}
	if err := ema.Configure(Params{AlphaKey: "fast"}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for string alpha, got %v", err)
	}
	if ema.Alpha() != DefaultAlpha {
		t.Errorf("expected alpha to stay %g, got %g", DefaultAlpha, ema.Alpha())
	}
}

func TestEMA_Configure(t *testing.T) {
	ema, _ := NewExponentialMovingAverage(DefaultAlpha)
	if err := ema.Configure(Params{AlphaKey: 1}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if ema.Alpha() != 1 {
		t.Errorf("expected alpha 1, got %g", ema.Alpha())
	}
	if err := ema.Configure(Params{WindowSizeKey: 3}); err != nil {
		t.Fatalf("configure without key: %v", err)
	}
	if ema.Alpha() != 1 {
		t.Errorf("expected alpha 1, got %g", ema.Alpha())
	}
	p := ema.Parameters()
	if p[AlphaKey] != 1.0 || p["min_alpha"] != MinAlpha || p["max_alpha"] != MaxAlpha {
		t.Errorf("unexpected parameters: %v", p)
	}
}
