package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"StockForecaster/internal/datastore"
)

// FormatRefreshReport summarizes a scheduled refresh pass.
// failed is keyed "SYMBOL/ALGORITHM", stale by symbol.
func FormatRefreshReport(at time.Time, succeeded int, failed, stale map[string]error) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Forecast refresh</b> | %s\n\n", at.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Succeeded: %d\n", succeeded))
	b.WriteString(fmt.Sprintf("Failed: %d\n", len(failed)))

	if len(stale) > 0 {
		b.WriteString("\n⚠️ <b>Stale history:</b>\n")
		for _, symbol := range sortedKeys(stale) {
			b.WriteString(fmt.Sprintf("  %s: %s\n", symbol, escape(stale[symbol].Error())))
		}
	}
	if len(failed) > 0 {
		b.WriteString("\n❌ <b>Failures:</b>\n")
		for _, key := range sortedKeys(failed) {
			b.WriteString(fmt.Sprintf("  %s: %s\n", key, escape(failed[key].Error())))
		}
	}
	return b.String()
}

// FormatPrediction renders the tail of a forecast series.
func FormatPrediction(symbol, algorithm string, values []float64, tail int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s</b> %s (%d points)\n", escape(symbol), escape(algorithm), len(values)))
	start := 0
	if tail > 0 && len(values) > tail {
		start = len(values) - tail
		b.WriteString("  ...\n")
	}
	for i := start; i < len(values); i++ {
		b.WriteString(fmt.Sprintf("  %d: %s\n", i+1, datastore.FormatValue(values[i])))
	}
	return b.String()
}

func sortedKeys(m map[string]error) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return htmlEscaper.Replace(s)
}
