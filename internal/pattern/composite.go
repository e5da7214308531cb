package pattern

import (
	"fmt"
	"math"

	"StockSage/internal/model"
)

// Config holds the heuristic knobs of the composite detector. The double
// top/bottom thresholds have no derivation beyond product judgment, so
// they are configurable rather than baked-in constants.
type Config struct {
	// DoubleLookback is how many trailing closes the double top/bottom
	// search examines.
	DoubleLookback int
	// ExtremaSpan is the number of neighbors on each side a point must
	// dominate to count as a local extremum (2 gives a 5-point window).
	ExtremaSpan int
	// SimilarityPct is the maximum relative gap between the two extrema,
	// as a fraction of the larger one.
	SimilarityPct float64
}

// DefaultConfig returns the detector's standard tuning.
func DefaultConfig() Config {
	return Config{
		DoubleLookback: 30,
		ExtremaSpan:    2,
		SimilarityPct:  0.02,
	}
}

// Detector evaluates indicator-derived signals against a bar series and
// aggregates them with the candlestick scan. It is stateless between
// calls; one instance may serve concurrent requests.
type Detector struct {
	cfg Config
}

// NewDetector builds a detector, substituting defaults for zero fields.
func NewDetector(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.DoubleLookback <= 0 {
		cfg.DoubleLookback = def.DoubleLookback
	}
	if cfg.ExtremaSpan <= 0 {
		cfg.ExtremaSpan = def.ExtremaSpan
	}
	if cfg.SimilarityPct <= 0 {
		cfg.SimilarityPct = def.SimilarityPct
	}
	return &Detector{cfg: cfg}
}

// Detect returns the full ordered pattern catalogue: candlestick
// formations first, composite signals after, each in detection order. An
// empty list is a valid result meaning no pattern triggered; the method
// never fails. A nil indicator set (insufficient data upstream) or a
// series below the candlestick minimum yields an empty list.
func (d *Detector) Detect(series *model.BarSeries, ind *model.IndicatorSet) []model.Pattern {
	if series == nil || series.Len() < minCandleBars || ind == nil {
		return []model.Pattern{}
	}
	out := DetectCandlesticks(series)
	out = append(out, d.composite(series, ind)...)
	if out == nil {
		out = []model.Pattern{}
	}
	return out
}

func (d *Detector) composite(series *model.BarSeries, ind *model.IndicatorSet) []model.Pattern {
	var out []model.Pattern

	last := series.Last()
	date := last.Date.Format(model.DateLayout)
	price := last.Close

	// Golden / Death Cross on the last two SMA entries.
	if p50, c50, ok := lastTwo(ind.SMA50); ok {
		if p200, c200, ok := lastTwo(ind.SMA200); ok {
			switch {
			case c50 > c200 && p50 <= p200:
				out = append(out, newComposite(model.PatternGoldenCross,
					"50-day MA crossed above 200-day MA", model.SignalBullish, 75, date))
			case c50 < c200 && p50 >= p200:
				out = append(out, newComposite(model.PatternDeathCross,
					"50-day MA crossed below 200-day MA", model.SignalBearish, 75, date))
			}
		}
	}

	// Trend regime from price vs. SMA alignment.
	if ind.CurrentSMA50 != nil && ind.CurrentSMA200 != nil {
		sma50, sma200 := *ind.CurrentSMA50, *ind.CurrentSMA200
		switch {
		case price > sma50 && sma50 > sma200:
			out = append(out, newComposite(model.PatternStrongUptrend,
				"Price above 50-day MA, which is above 200-day MA", model.SignalBullish, 70, date))
		case price < sma50 && sma50 < sma200:
			out = append(out, newComposite(model.PatternStrongDowntrend,
				"Price below 50-day MA, which is below 200-day MA", model.SignalBearish, 70, date))
		}
	}

	// RSI extremes.
	switch {
	case ind.CurrentRSI > 70:
		out = append(out, newComposite(model.PatternRSIOverbought,
			fmt.Sprintf("RSI at %.2f (above 70) - stock may be overbought", ind.CurrentRSI),
			model.SignalBearish, 65, date))
	case ind.CurrentRSI < 30:
		out = append(out, newComposite(model.PatternRSIOversold,
			fmt.Sprintf("RSI at %.2f (below 30) - stock may be oversold", ind.CurrentRSI),
			model.SignalBullish, 65, date))
	}

	// MACD line crossing its signal line.
	if pm, cm, ok := lastTwo(ind.MACDLine); ok {
		if ps, cs, ok := lastTwo(ind.MACDSignal); ok {
			switch {
			case cm > cs && pm <= ps:
				out = append(out, newComposite(model.PatternMACDBullish,
					"MACD line crossed above signal line", model.SignalBullish, 60, date))
			case cm < cs && pm >= ps:
				out = append(out, newComposite(model.PatternMACDBearish,
					"MACD line crossed below signal line", model.SignalBearish, 60, date))
			}
		}
	}

	// Bollinger band touches.
	if upper := latest(ind.BBUpper); upper != nil {
		if lower := latest(ind.BBLower); lower != nil {
			switch {
			case price >= *upper:
				out = append(out, newComposite(model.PatternBBUpperTouch,
					"Price touching upper Bollinger Band - potential resistance", model.SignalBearish, 55, date))
			case price <= *lower:
				out = append(out, newComposite(model.PatternBBLowerTouch,
					"Price touching lower Bollinger Band - potential support", model.SignalBullish, 55, date))
			}
		}
	}

	out = append(out, d.doubleExtremes(series)...)

	// Volume spike vs. the trailing 20-bar mean.
	if n := series.Len(); n >= 20 {
		var sum float64
		for i := n - 20; i < n; i++ {
			sum += float64(series.Bar(i).Volume)
		}
		avgVol := sum / 20
		lastVol := float64(last.Volume)
		if avgVol > 0 && lastVol > 2*avgVol {
			out = append(out, newComposite(model.PatternVolumeSpike,
				fmt.Sprintf("Volume %.1fx above 20-day average", lastVol/avgVol),
				model.SignalNeutral, 70, date))
		}
	}

	// Support / resistance proximity.
	if ind.Support > 0 && ind.Resistance > 0 {
		if price < ind.Support*1.02 {
			out = append(out, newComposite(model.PatternNearSupport,
				fmt.Sprintf("Price near support level of ₹%.2f", ind.Support),
				model.SignalBullish, 55, date))
		}
		if price > ind.Resistance*0.98 {
			out = append(out, newComposite(model.PatternNearResistance,
				fmt.Sprintf("Price near resistance level of ₹%.2f", ind.Resistance),
				model.SignalBearish, 55, date))
		}
	}

	return out
}

// doubleExtremes searches the trailing lookback window for two similar
// local maxima (double top) or minima (double bottom). The emitted pattern
// is anchored at the bar of the most recent extremum, not at the last bar.
func (d *Detector) doubleExtremes(series *model.BarSeries) []model.Pattern {
	n := series.Len()
	if n < d.cfg.DoubleLookback {
		return nil
	}

	offset := n - d.cfg.DoubleLookback
	closes := series.Closes()[offset:]
	span := d.cfg.ExtremaSpan

	var maxima, minima []int
	for i := span; i < len(closes)-span; i++ {
		isMax, isMin := true, true
		for j := 1; j <= span; j++ {
			if closes[i] <= closes[i-j] || closes[i] <= closes[i+j] {
				isMax = false
			}
			if closes[i] >= closes[i-j] || closes[i] >= closes[i+j] {
				isMin = false
			}
		}
		if isMax {
			maxima = append(maxima, i)
		}
		if isMin {
			minima = append(minima, i)
		}
	}

	var out []model.Pattern

	if len(maxima) >= 2 {
		i1, i2 := maxima[len(maxima)-2], maxima[len(maxima)-1]
		h1, h2 := closes[i1], closes[i2]
		if math.Abs(h1-h2)/math.Max(h1, h2) < d.cfg.SimilarityPct {
			anchor := series.Bar(offset + i2).Date.Format(model.DateLayout)
			out = append(out, newComposite(model.PatternDoubleTop,
				fmt.Sprintf("Two peaks near ₹%.2f - bearish reversal signal", math.Max(h1, h2)),
				model.SignalBearish, 60, anchor))
		}
	}
	if len(minima) >= 2 {
		i1, i2 := minima[len(minima)-2], minima[len(minima)-1]
		l1, l2 := closes[i1], closes[i2]
		if math.Abs(l1-l2)/math.Max(l1, l2) < d.cfg.SimilarityPct {
			anchor := series.Bar(offset + i2).Date.Format(model.DateLayout)
			out = append(out, newComposite(model.PatternDoubleBottom,
				fmt.Sprintf("Two troughs near ₹%.2f - bullish reversal signal", math.Min(l1, l2)),
				model.SignalBullish, 60, anchor))
		}
	}

	return out
}

func newComposite(t model.PatternType, desc string, sig model.Signal, confidence int, date string) model.Pattern {
	return model.Pattern{
		Type:        t,
		Description: desc,
		Signal:      sig,
		Confidence:  confidence,
		Date:        date,
		Category:    model.CategoryComposite,
	}
}

// lastTwo returns the final two entries of an aligned series when both
// carry values. Crossover rules need both sides of the boundary.
func lastTwo(s []*float64) (prev, cur float64, ok bool) {
	if len(s) < 2 || s[len(s)-2] == nil || s[len(s)-1] == nil {
		return 0, 0, false
	}
	return *s[len(s)-2], *s[len(s)-1], true
}

// latest returns the final entry of an aligned series, nil when missing.
func latest(s []*float64) *float64 {
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}
