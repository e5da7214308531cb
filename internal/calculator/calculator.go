// Package calculator derives technical indicators from a bar series.
//
// All computation runs in a single O(n) pass with streaming window
// accumulators and full float64 precision; rounding to 2 decimal places
// happens only when a value is written into the result set, so the
// EMA/MACD/RSI recurrences never compound rounding error.
package calculator

import (
	"errors"
	"math"

	"StockSage/internal/model"
)

// MinBars is the hard minimum series length for indicator computation.
// Below it every window would be warming up and the output would be noise.
const MinBars = 20

const (
	rsiPeriod     = 14
	bbWidth       = 2.0
	supportWindow = 60
)

// ErrInsufficientData is returned when the input series is shorter than
// MinBars. It is a precondition violation, not a transient failure.
var ErrInsufficientData = errors.New("insufficient data: indicator calculations require at least 20 bars")

// ComputeIndicators computes the full indicator set for the series. Every
// per-bar output slice is aligned with the input: entry i is the
// indicator's value as of bar i, nil while the trailing window is still
// filling. The function is pure; calling it twice on the same series
// yields identical results.
func ComputeIndicators(series *model.BarSeries) (*model.IndicatorSet, error) {
	if series == nil || series.Len() < MinBars {
		return nil, ErrInsufficientData
	}

	n := series.Len()
	closes := series.Closes()

	set := &model.IndicatorSet{
		SMA20:         make([]*float64, n),
		SMA50:         make([]*float64, n),
		SMA200:        make([]*float64, n),
		EMA12:         make([]*float64, n),
		EMA26:         make([]*float64, n),
		RSI:           make([]*float64, n),
		MACDLine:      make([]*float64, n),
		MACDSignal:    make([]*float64, n),
		MACDHistogram: make([]*float64, n),
		BBUpper:       make([]*float64, n),
		BBMiddle:      make([]*float64, n),
		BBLower:       make([]*float64, n),
	}

	sma20 := newRollingWindow(20)
	sma50 := newRollingWindow(50)
	sma200 := newRollingWindow(200)
	ema12 := newEMA(12)
	ema26 := newEMA(26)
	signal9 := newEMA(9)
	gains := newRollingWindow(rsiPeriod)
	losses := newRollingWindow(rsiPeriod)

	for i, c := range closes {
		sma20.push(c)
		sma50.push(c)
		sma200.push(c)

		if sma20.full() {
			mid := sma20.mean()
			sd := sma20.stddev()
			set.SMA20[i] = round2p(mid)
			set.BBMiddle[i] = round2p(mid)
			set.BBUpper[i] = round2p(mid + bbWidth*sd)
			set.BBLower[i] = round2p(mid - bbWidth*sd)
		}
		if sma50.full() {
			set.SMA50[i] = round2p(sma50.mean())
		}
		if sma200.full() {
			set.SMA200[i] = round2p(sma200.mean())
		}

		e12 := ema12.push(c)
		e26 := ema26.push(c)
		set.EMA12[i] = round2p(e12)
		set.EMA26[i] = round2p(e26)

		macd := e12 - e26
		sig := signal9.push(macd)
		set.MACDLine[i] = round2p(macd)
		set.MACDSignal[i] = round2p(sig)
		set.MACDHistogram[i] = round2p(macd - sig)

		if i > 0 {
			delta := c - closes[i-1]
			gains.push(math.Max(delta, 0))
			losses.push(math.Max(-delta, 0))
			if gains.full() {
				set.RSI[i] = round2p(rsiValue(gains.mean(), losses.mean()))
			}
		}
	}

	support, resistance := closeExtremes(closes, supportWindow)
	set.Support = round2(support)
	set.Resistance = round2(resistance)

	set.CurrentRSI = 50.0
	if v := lastValue(set.RSI); v != nil {
		set.CurrentRSI = *v
	}
	set.CurrentMACD = 0.0
	if v := lastValue(set.MACDLine); v != nil {
		set.CurrentMACD = *v
	}
	set.CurrentSMA50 = lastValue(set.SMA50)
	set.CurrentSMA200 = lastValue(set.SMA200)

	return set, nil
}

// rsiValue maps mean gain/loss to the 0-100 RSI scale. A zero mean loss
// means there were no down closes in the window, which caps RSI at 100
// rather than dividing by zero.
func rsiValue(meanGain, meanLoss float64) float64 {
	if meanLoss == 0 {
		return 100.0
	}
	rs := meanGain / meanLoss
	return 100.0 - 100.0/(1.0+rs)
}

// closeExtremes returns the min and max close over the trailing window
// (the whole slice when shorter).
func closeExtremes(closes []float64, window int) (lo, hi float64) {
	start := len(closes) - window
	if start < 0 {
		start = 0
	}
	lo, hi = closes[start], closes[start]
	for _, c := range closes[start+1:] {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	return lo, hi
}

// lastValue returns a copy of the last non-nil entry, or nil when the
// series never produced a value.
func lastValue(series []*float64) *float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if series[i] != nil {
			v := *series[i]
			return &v
		}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round2p(v float64) *float64 {
	r := round2(v)
	return &r
}
