package collector

import "StockSage/internal/model"

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchHistory returns daily bars for the symbol over the given
	// period ("1mo", "3mo", "6mo", "1y", "2y"), oldest first, plus the
	// resolved ticker and display name.
	FetchHistory(symbol, period string) (*History, error)
	Name() string
}

// History is the raw result of one fetch before it becomes a StockData
// payload.
type History struct {
	Ticker string
	Name   string
	Bars   []model.Bar
}

// validPeriods are the history ranges the fetchers accept.
var validPeriods = map[string]bool{
	"1mo": true, "3mo": true, "6mo": true, "1y": true, "2y": true,
}

// NormalizePeriod maps arbitrary caller input onto a supported range.
func NormalizePeriod(period string) string {
	if validPeriods[period] {
		return period
	}
	return "6mo"
}
