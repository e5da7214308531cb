package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"StockSage/internal/model"
)

func seriesFromCloses(t *testing.T, closes []float64) *model.BarSeries {
	t.Helper()
	bars := make([]model.Bar, len(closes))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = model.Bar{
			Date:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000000,
		}
	}
	s, err := model.NewBarSeries(bars)
	if err != nil {
		t.Fatalf("build series: %v", err)
	}
	return s
}

func flatCloses(n int, v float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = v
	}
	return closes
}

func TestComputeIndicators_InsufficientData(t *testing.T) {
	for _, n := range []int{0, 1, 5, 19} {
		var s *model.BarSeries
		if n > 0 {
			s = seriesFromCloses(t, flatCloses(n, 100))
		}
		_, err := ComputeIndicators(s)
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("n=%d: expected ErrInsufficientData, got %v", n, err)
		}
	}
}

func TestComputeIndicators_Alignment(t *testing.T) {
	n := 60
	s := seriesFromCloses(t, flatCloses(n, 100))
	set, err := ComputeIndicators(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for name, slice := range map[string][]*float64{
		"sma20": set.SMA20, "sma50": set.SMA50, "sma200": set.SMA200,
		"ema12": set.EMA12, "ema26": set.EMA26, "rsi": set.RSI,
		"macd": set.MACDLine, "signal": set.MACDSignal, "hist": set.MACDHistogram,
		"bb_upper": set.BBUpper, "bb_middle": set.BBMiddle, "bb_lower": set.BBLower,
	} {
		if len(slice) != n {
			t.Errorf("%s: length %d, want %d", name, len(slice), n)
		}
	}
}

func TestComputeIndicators_WarmupNils(t *testing.T) {
	s := seriesFromCloses(t, flatCloses(60, 100))
	set, _ := ComputeIndicators(s)

	tests := []struct {
		name   string
		slice  []*float64
		window int
	}{
		{"sma20", set.SMA20, 20},
		{"sma50", set.SMA50, 50},
		{"bb_upper", set.BBUpper, 20},
	}
	for _, tt := range tests {
		for i := 0; i < tt.window-1; i++ {
			if tt.slice[i] != nil {
				t.Errorf("%s[%d]: expected nil during warmup", tt.name, i)
			}
		}
		if tt.slice[tt.window-1] == nil {
			t.Errorf("%s[%d]: expected value once window filled", tt.name, tt.window-1)
		}
	}

	// RSI needs 14 deltas, so the first value lands at index 14.
	for i := 0; i < 14; i++ {
		if set.RSI[i] != nil {
			t.Errorf("rsi[%d]: expected nil during warmup", i)
		}
	}
	if set.RSI[14] == nil {
		t.Error("rsi[14]: expected first value")
	}

	// SMA200 never fills on 60 bars.
	for i, v := range set.SMA200 {
		if v != nil {
			t.Errorf("sma200[%d]: expected nil on short series", i)
		}
	}
	if set.CurrentSMA200 != nil {
		t.Error("CurrentSMA200: expected nil on short series")
	}

	// EMA and MACD are seeded from the first close, defined everywhere.
	if set.EMA12[0] == nil || set.MACDLine[0] == nil || set.MACDSignal[0] == nil {
		t.Error("ema/macd: expected values from bar 0")
	}
}

func TestComputeIndicators_RSICapsAt100(t *testing.T) {
	// 25 strictly rising closes: no down day in any window, RSI pegged.
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	set, err := ComputeIndicators(seriesFromCloses(t, closes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.CurrentRSI != 100 {
		t.Errorf("expected RSI 100 on monotonic rise, got %.2f", set.CurrentRSI)
	}
	for i, v := range set.RSI {
		if v == nil {
			continue
		}
		if *v < 0 || *v > 100 {
			t.Errorf("rsi[%d] out of bounds: %.2f", i, *v)
		}
	}
}

func TestComputeIndicators_FlatSeries(t *testing.T) {
	set, err := ComputeIndicators(seriesFromCloses(t, flatCloses(30, 100)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := set.SMA20[29]; v == nil || *v != 100 {
		t.Errorf("sma20 on flat series: got %v, want 100", v)
	}
	// Zero deviation collapses the bands onto the middle.
	if u, l := set.BBUpper[29], set.BBLower[29]; *u != 100 || *l != 100 {
		t.Errorf("bollinger on flat series: upper %.2f lower %.2f", *u, *l)
	}
	// No gains and no losses: meanLoss == 0 caps RSI at 100.
	if set.CurrentRSI != 100 {
		t.Errorf("flat series RSI: got %.2f", set.CurrentRSI)
	}
	if set.Support != 100 || set.Resistance != 100 {
		t.Errorf("support/resistance on flat series: %.2f/%.2f", set.Support, set.Resistance)
	}
}

func TestComputeIndicators_MACDRelation(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + 5*math.Sin(float64(i)/4)
	}
	set, err := ComputeIndicators(seriesFromCloses(t, closes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// MACD at bar 0 is EMA12-EMA26 with both seeded to the first close.
	if *set.MACDLine[0] != 0 || *set.MACDHistogram[0] != 0 {
		t.Errorf("macd[0]=%.4f hist[0]=%.4f, want 0", *set.MACDLine[0], *set.MACDHistogram[0])
	}
	// Histogram = line - signal within rounding tolerance.
	for i := range closes {
		got := *set.MACDHistogram[i]
		want := *set.MACDLine[i] - *set.MACDSignal[i]
		if math.Abs(got-want) > 0.02 {
			t.Errorf("hist[%d]: got %.4f, want %.4f", i, got, want)
		}
	}
}

func TestComputeIndicators_SupportResistance(t *testing.T) {
	closes := flatCloses(70, 100)
	closes[5] = 80   // outside the trailing 60-bar window
	closes[15] = 90  // inside: min
	closes[40] = 120 // inside: max
	set, err := ComputeIndicators(seriesFromCloses(t, closes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Support != 90 {
		t.Errorf("support: got %.2f, want 90", set.Support)
	}
	if set.Resistance != 120 {
		t.Errorf("resistance: got %.2f, want 120", set.Resistance)
	}
}

func TestComputeIndicators_Idempotent(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}
	s := seriesFromCloses(t, closes)
	a, err := ComputeIndicators(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := ComputeIndicators(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range closes {
		if (a.RSI[i] == nil) != (b.RSI[i] == nil) {
			t.Fatalf("rsi[%d]: nilness differs between runs", i)
		}
		if a.RSI[i] != nil && *a.RSI[i] != *b.RSI[i] {
			t.Fatalf("rsi[%d]: %.4f != %.4f", i, *a.RSI[i], *b.RSI[i])
		}
	}
	if a.CurrentRSI != b.CurrentRSI || a.Support != b.Support {
		t.Error("summary fields differ between runs")
	}
}

func TestRSIValue(t *testing.T) {
	tests := []struct {
		gain, loss, want float64
	}{
		{1, 0, 100},
		{0, 1, 0},
		{1, 1, 50},
		{0, 0, 100}, // flat window counts as no losses
	}
	for _, tt := range tests {
		if got := rsiValue(tt.gain, tt.loss); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("rsiValue(%.1f, %.1f) = %.2f, want %.2f", tt.gain, tt.loss, got, tt.want)
		}
	}
}

func TestRollingWindow_MeanAndStddev(t *testing.T) {
	w := newRollingWindow(3)
	for _, v := range []float64{1, 2, 3} {
		w.push(v)
	}
	if !w.full() {
		t.Fatal("window should be full")
	}
	if got := w.mean(); got != 2 {
		t.Errorf("mean: got %.4f, want 2", got)
	}
	if got := w.stddev(); math.Abs(got-1) > 1e-9 {
		t.Errorf("stddev: got %.4f, want 1", got)
	}
	// Slide the window: {2, 3, 10}.
	w.push(10)
	if got := w.mean(); got != 5 {
		t.Errorf("mean after slide: got %.4f, want 5", got)
	}
}

func TestEMA_Seeding(t *testing.T) {
	e := newEMA(12)
	if got := e.push(50); got != 50 {
		t.Errorf("first push should seed: got %.2f", got)
	}
	next := e.push(60)
	k := 2.0 / 13.0
	want := 60*k + 50*(1-k)
	if math.Abs(next-want) > 1e-9 {
		t.Errorf("second push: got %.6f, want %.6f", next, want)
	}
}
