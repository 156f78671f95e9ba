package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"StockForecaster/internal/logger"
)

type fakeForecaster struct{}

func (fakeForecaster) Predict(symbol, algorithm string) ([]float64, error) {
	if symbol != "AAPL" {
		return nil, errors.New("series not found: could not open file " + symbol + ".csv")
	}
	return []float64{1, 2, 3, 4, 5, 6, 7}, nil
}

func (fakeForecaster) ListAlgorithms() []string { return []string{"EMA", "SMA"} }

type telegramStub struct {
	mu       sync.Mutex
	sent     []map[string]string
	updates  string
	failures int
}

func newTelegram(t *testing.T, stub *telegramStub) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		defer stub.mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			if stub.failures > 0 {
				stub.failures--
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			var payload map[string]string
			json.NewDecoder(r.Body).Decode(&payload)
			stub.sent = append(stub.sent, payload)
			w.Write([]byte(`{"ok":true}`))
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			w.Write([]byte(stub.updates))
			stub.updates = `{"ok":true,"result":[]}`
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("token", "42", "", logger.Nop())
	n.BaseURL = srv.URL
	return n
}

func TestSend(t *testing.T) {
	stub := &telegramStub{}
	n := newTelegram(t, stub)
	if err := n.Send("hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(stub.sent) != 1 || stub.sent[0]["chat_id"] != "42" || stub.sent[0]["text"] != "hello" {
		t.Errorf("unexpected payload: %v", stub.sent)
	}
}

func TestSend_APIError(t *testing.T) {
	stub := &telegramStub{failures: 1}
	n := newTelegram(t, stub)
	if err := n.Send("hello"); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestSendWithRetry(t *testing.T) {
	stub := &telegramStub{failures: 1}
	n := newTelegram(t, stub)
	if err := n.SendWithRetry(context.Background(), "hello", 2); err != nil {
		t.Fatalf("expected success after one retry, got %v", err)
	}
	if len(stub.sent) != 1 {
		t.Errorf("expected 1 delivered message, got %d", len(stub.sent))
	}
}

func TestSendWithRetry_ContextCancelled(t *testing.T) {
	stub := &telegramStub{failures: 10}
	n := newTelegram(t, stub)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.SendWithRetry(ctx, "hello", 3); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPoll_DispatchesCommands(t *testing.T) {
	stub := &telegramStub{updates: `{"ok":true,"result":[
		{"update_id":7,"message":{"text":"/algorithms"}},
		{"update_id":8,"message":{"text":""}},
		{"update_id":9}]}`}
	n := newTelegram(t, stub)

	next, err := n.poll(context.Background(), n.Client, 0, NewCommandHandler(fakeForecaster{}))
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if next != 10 {
		t.Errorf("expected next offset 10, got %d", next)
	}
	if len(stub.sent) != 1 || stub.sent[0]["text"] != "Algorithms: EMA, SMA" {
		t.Errorf("unexpected replies: %v", stub.sent)
	}
}

func TestStartPolling_StopsOnCancel(t *testing.T) {
	stub := &telegramStub{updates: `{"ok":true,"result":[]}`}
	n := newTelegram(t, stub)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.StartPolling(ctx, func(string) string { return "" })
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop after cancel")
	}
}

func TestCommandHandler(t *testing.T) {
	h := NewCommandHandler(fakeForecaster{})
	tests := []struct {
		command string
		want    string
	}{
		{"/predict aapl", "<b>AAPL</b> SMA (7 points)"},
		{"/predict@ForecastBot AAPL ema", "<b>AAPL</b> EMA (7 points)"},
		{"/predict MSFT", "❌ MSFT SMA: series not found"},
		{"/predict ../etc", "invalid symbol"},
		{"/predict", "Usage"},
		{"/algorithms", "EMA, SMA"},
		{"/help", "/predict SYMBOL"},
	}
	for _, tt := range tests {
		if got := h(tt.command); !strings.Contains(got, tt.want) {
			t.Errorf("%q: expected %q in reply, got %q", tt.command, tt.want, got)
		}
	}
	if got := h("hello there"); got != "" {
		t.Errorf("expected no reply to plain text, got %q", got)
	}
}

func TestFormatPrediction_Tail(t *testing.T) {
	got := FormatPrediction("AAPL", "SMA", []float64{1, 2, 3, 123.456789}, 2)
	if !strings.Contains(got, "...") || strings.Contains(got, "  1: 1\n") {
		t.Errorf("expected truncated output, got %q", got)
	}
	if !strings.Contains(got, "  4: 123.457\n") {
		t.Errorf("expected six significant digits, got %q", got)
	}
}

func TestFormatRefreshReport(t *testing.T) {
	at := time.Date(2024, 5, 3, 18, 30, 0, 0, time.UTC)
	got := FormatRefreshReport(at, 3,
		map[string]error{"MSFT/SMA": errors.New("not enough <data>")},
		map[string]error{"MSFT": errors.New("timeout")},
	)
	for _, want := range []string{"2024-05-03 18:30", "Succeeded: 3", "Failed: 1", "MSFT/SMA: not enough &lt;data&gt;", "MSFT: timeout"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in report:\n%s", want, got)
		}
	}
	if clean := FormatRefreshReport(at, 2, nil, nil); strings.Contains(clean, "Failures") || strings.Contains(clean, "Stale") {
		t.Errorf("expected no failure sections, got %q", clean)
	}
}
