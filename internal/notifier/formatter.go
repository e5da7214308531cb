package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"StockSage/internal/model"
)

// FormatScanAlert formats the daily watchlist scan results into one
// Telegram message. Only high-confidence detections make the cut; an
// empty map yields an empty string and no message should be sent.
func FormatScanAlert(findings map[string][]model.Pattern, prices map[string]float64) string {
	if len(findings) == 0 {
		return ""
	}

	symbols := make([]string, 0, len(findings))
	for symbol := range findings {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔍 <b>StockSage Daily Scan</b> | %s\n\n", time.Now().Format("2006-01-02")))

	for _, symbol := range symbols {
		patterns := findings[symbol]
		if len(patterns) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("<b>%s</b>", symbol))
		if price, ok := prices[symbol]; ok {
			b.WriteString(fmt.Sprintf(" @ ₹%.2f", price))
		}
		b.WriteString("\n")
		for _, p := range patterns {
			b.WriteString(fmt.Sprintf("  %s %s (%d%%)\n", signalEmoji(p.Signal), p.Type, p.Confidence))
		}
		b.WriteString("\n")
	}

	b.WriteString("Patterns are informational, not trade advice.")
	return b.String()
}

func signalEmoji(s model.Signal) string {
	switch s {
	case model.SignalBullish:
		return "📈"
	case model.SignalBearish:
		return "📉"
	default:
		return "➖"
	}
}
