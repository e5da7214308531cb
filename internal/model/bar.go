package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used across API payloads.
const DateLayout = "2006-01-02"

// Bar is one OHLCV observation for a single trading day.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// MarshalJSON renders the bar with a calendar-day date, matching the
// shape chart frontends consume.
func (b Bar) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date   string  `json:"date"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume int64   `json:"volume"`
	}{
		Date:   b.Date.Format(DateLayout),
		Open:   b.Open,
		High:   b.High,
		Low:    b.Low,
		Close:  b.Close,
		Volume: b.Volume,
	})
}

// BarSeries is a date-ordered sequence of bars. It is immutable once
// constructed: the analysis engine reads it but never mutates it, so one
// series can safely feed indicator computation and both pattern detectors
// within a request.
type BarSeries struct {
	bars []Bar
}

// NewBarSeries validates and wraps a slice of bars. Dates must be strictly
// increasing; non-trading days are simply absent, no gap checking is done.
// OHLC consistency (high >= open/close >= low) is the data source's
// responsibility, not re-verified here.
func NewBarSeries(bars []Bar) (*BarSeries, error) {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return nil, fmt.Errorf("bars out of order at index %d: %s does not follow %s",
				i, bars[i].Date.Format(DateLayout), bars[i-1].Date.Format(DateLayout))
		}
	}
	owned := make([]Bar, len(bars))
	copy(owned, bars)
	return &BarSeries{bars: owned}, nil
}

// Len returns the number of bars.
func (s *BarSeries) Len() int { return len(s.bars) }

// Bar returns the i-th bar.
func (s *BarSeries) Bar(i int) Bar { return s.bars[i] }

// Last returns the most recent bar. Panics on an empty series.
func (s *BarSeries) Last() Bar { return s.bars[len(s.bars)-1] }

// Closes returns a fresh slice of closing prices, aligned with the series.
func (s *BarSeries) Closes() []float64 {
	closes := make([]float64, len(s.bars))
	for i, b := range s.bars {
		closes[i] = b.Close
	}
	return closes
}
