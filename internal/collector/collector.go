package collector

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"StockSage/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars   []model.Bar
	Ticker string
	Alias  string
	Err    error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(symbol, period string) (*History, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	ticker := m.Ticker
	if ticker == "" {
		ticker = symbol + ".NS"
	}
	name := m.Alias
	if name == "" {
		name = symbol
	}
	bars := m.Bars
	if bars == nil {
		bars = GenerateMockBars(100.0, 120)
	}
	return &History{Ticker: ticker, Name: name, Bars: bars}, nil
}

// GenerateMockBars produces a gently trending daily series around a base
// price, one bar per calendar day ending yesterday.
func GenerateMockBars(basePrice float64, count int) []model.Bar {
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Date:   time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -(count - i)),
			Open:   round2(p * 0.999),
			High:   round2(p * 1.005),
			Low:    round2(p * 0.995),
			Close:  round2(p),
			Volume: 1000000,
		}
	}
	return bars
}

// Collector turns raw fetch results into the payload shapes the rest of
// the system consumes.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// FetchStock fetches the symbol's history and derives the snapshot
// fields (current price, day change, day range) from the latest bars.
func (c *Collector) FetchStock(symbol, period string) (*model.StockData, error) {
	hist, err := c.Fetcher.FetchHistory(symbol, period)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	if len(hist.Bars) == 0 {
		return nil, fmt.Errorf("fetch %s: empty history", symbol)
	}

	last := hist.Bars[len(hist.Bars)-1]
	prevClose := last.Close
	if len(hist.Bars) >= 2 {
		prevClose = hist.Bars[len(hist.Bars)-2].Close
	}

	change := round2(last.Close - prevClose)
	changePct := 0.0
	if prevClose != 0 {
		changePct = round2((last.Close - prevClose) / prevClose * 100)
	}

	return &model.StockData{
		Symbol:        strings.ToUpper(symbol),
		Ticker:        hist.Ticker,
		Name:          hist.Name,
		CurrentPrice:  last.Close,
		PreviousClose: prevClose,
		Change:        change,
		ChangePercent: changePct,
		DayHigh:       last.High,
		DayLow:        last.Low,
		Volume:        last.Volume,
		History:       hist.Bars,
		FetchedAt:     time.Now().UTC(),
	}, nil
}

// Quote returns a lightweight snapshot for watchlist and dashboard
// views, with the volume pre-formatted for display.
func (c *Collector) Quote(symbol string) (*model.Quote, error) {
	data, err := c.FetchStock(symbol, "1mo")
	if err != nil {
		return nil, err
	}
	return &model.Quote{
		Symbol:        data.Symbol,
		Name:          data.Name,
		Price:         data.CurrentPrice,
		Change:        data.Change,
		ChangePercent: data.ChangePercent,
		Volume:        data.Volume,
		VolumeText:    humanize.Comma(data.Volume),
	}, nil
}
