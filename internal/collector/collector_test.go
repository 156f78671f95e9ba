package collector

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"StockForecaster/internal/datastore"
	"StockForecaster/internal/logger"
)

const chartBody = `{"chart":{"result":[{"timestamp":[1704240000,1704067200,1704153600],
"indicators":{"quote":[{
"open":[12,10,null],"high":[13,11,null],"low":[11,9,null],"close":[12.5,10.5,null],"volume":[3000,1000,null]}]}}],
"error":null}}`

func newYahoo(t *testing.T, status int, body string) (*YahooFetcher, *string) {
	t.Helper()
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.RequestURI
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	return f, &path
}

func TestYahooFetcher_FetchDailyBars(t *testing.T) {
	f, path := newYahoo(t, http.StatusOK, chartBody)

	bars, err := f.FetchDailyBars("SPX", 30)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(*path, "/v8/finance/chart/%5EGSPC") || !strings.Contains(*path, "range=3mo") {
		t.Errorf("unexpected request path %s", *path)
	}
	if len(bars) != 2 {
		t.Fatalf("expected null bar to be skipped, got %d bars", len(bars))
	}
	if bars[0].Date != "2024-01-01" || bars[1].Date != "2024-01-03" {
		t.Errorf("expected oldest first, got %s then %s", bars[0].Date, bars[1].Date)
	}
	if bars[1].Close != 12.5 || bars[1].Volume != 3000 || bars[1].Symbol != "SPX" {
		t.Errorf("unexpected bar: %+v", bars[1])
	}
}

func TestYahooFetcher_TrimsToDays(t *testing.T) {
	f, _ := newYahoo(t, http.StatusOK, chartBody)
	bars, err := f.FetchDailyBars("AAPL", 1)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(bars) != 1 || bars[0].Date != "2024-01-03" {
		t.Errorf("expected only the latest bar, got %+v", bars)
	}
}

func TestYahooFetcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http status", http.StatusTooManyRequests, "slow down"},
		{"api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`},
		{"bad json", http.StatusOK, `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newYahoo(t, tt.status, tt.body)
			if _, err := f.FetchDailyBars("AAPL", 10); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestYahooRange(t *testing.T) {
	tests := map[int]string{10: "1mo", 60: "3mo", 100: "6mo", 250: "1y", 400: "2y", 1000: "5y"}
	for days, want := range tests {
		if got := yahooRange(days); got != want {
			t.Errorf("yahooRange(%d) = %s, want %s", days, got, want)
		}
	}
}

func TestCollector_Collect(t *testing.T) {
	store := datastore.NewCSVStore(t.TempDir())
	c := NewCollector(&MockFetcher{Price: 100}, store, 30, logger.Nop())

	n, err := c.Collect("AAPL")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if n != 30 {
		t.Errorf("expected 30 bars, got %d", n)
	}
	records, err := store.ReadSeries("AAPL")
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 30 {
		t.Errorf("expected 30 stored records, got %d", len(records))
	}
}

func TestCollector_FetchErrorKeepsSeries(t *testing.T) {
	store := datastore.NewCSVStore(t.TempDir())
	NewCollector(&MockFetcher{Price: 50}, store, 5, logger.Nop()).Collect("AAPL")

	c := NewCollector(&MockFetcher{Err: errors.New("timeout")}, store, 5, logger.Nop())
	if _, err := c.Collect("AAPL"); err == nil {
		t.Fatal("expected fetch error")
	}
	records, err := store.ReadSeries("AAPL")
	if err != nil || len(records) != 5 {
		t.Errorf("expected previous series intact, got %d records, err %v", len(records), err)
	}
}

func TestCollector_EmptyFetch(t *testing.T) {
	store := datastore.NewCSVStore(t.TempDir())
	c := NewCollector(&MockFetcher{Price: 50}, store, 0, logger.Nop())
	if _, err := c.Collect("AAPL"); err == nil {
		t.Fatal("expected error for empty fetch")
	}
}
