package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestNewBarSeries_OrderValidation(t *testing.T) {
	bars := []Bar{
		{Date: day(0), Close: 100},
		{Date: day(1), Close: 101},
		{Date: day(1), Close: 102}, // duplicate date
	}
	if _, err := NewBarSeries(bars); err == nil {
		t.Fatal("expected error for non-increasing dates")
	}

	bars[2].Date = day(2)
	s, err := NewBarSeries(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 3 {
		t.Errorf("expected 3 bars, got %d", s.Len())
	}
}

func TestNewBarSeries_DefensiveCopy(t *testing.T) {
	bars := []Bar{{Date: day(0), Close: 100}, {Date: day(1), Close: 101}}
	s, err := NewBarSeries(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bars[1].Close = 999
	if s.Last().Close != 101 {
		t.Errorf("series mutated through caller slice: got %.2f", s.Last().Close)
	}
}

func TestBar_MarshalJSON_DateFormat(t *testing.T) {
	b := Bar{Date: day(14), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 1000}
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"date":"2025-01-15"`) {
		t.Errorf("expected calendar-day date, got %s", data)
	}
}

func TestBarSeries_Closes(t *testing.T) {
	s, _ := NewBarSeries([]Bar{{Date: day(0), Close: 10}, {Date: day(1), Close: 20}})
	closes := s.Closes()
	if len(closes) != 2 || closes[0] != 10 || closes[1] != 20 {
		t.Fatalf("unexpected closes: %v", closes)
	}
	closes[0] = 999
	if s.Bar(0).Close != 10 {
		t.Error("Closes must return a fresh slice")
	}
}
