package pattern

import (
	"fmt"

	"StockSage/internal/model"
)

const (
	// Only the most recent bars are scanned; older formations are stale
	// signal for the product and bounding the window bounds the cost of
	// the multi-bar lookbacks.
	scanWindow     = 15
	minCandleBars  = 5
	avgBodyWindow  = 20
	avgBodyMinimum = 5
)

// candle carries the per-bar quantities the formation rules share.
type candle struct {
	body  float64 // |close - open|
	rng   float64 // high - low
	upper float64 // upper shadow
	lower float64 // lower shadow
	bull  bool
	bear  bool
}

// DetectCandlesticks scans the tail of the series for classic Japanese
// candlestick formations. It returns an empty list below the minimum
// window; per pattern type, only the highest-confidence occurrence
// survives (ties keep the earliest).
func DetectCandlesticks(series *model.BarSeries) []model.Pattern {
	n := series.Len()
	if n < minCandleBars {
		return nil
	}

	cs := make([]candle, n)
	for i := 0; i < n; i++ {
		b := series.Bar(i)
		body := b.Close - b.Open
		if body < 0 {
			body = -body
		}
		cs[i] = candle{
			body:  body,
			rng:   b.High - b.Low,
			upper: b.High - max(b.Open, b.Close),
			lower: min(b.Open, b.Close) - b.Low,
			bull:  b.Close > b.Open,
			bear:  b.Close < b.Open,
		}
	}

	start := n - scanWindow
	if start < 3 {
		start = 3
	}

	var found []model.Pattern
	for i := start; i < n; i++ {
		c := cs[i]
		if c.rng == 0 {
			// no formation is defined for a zero-range bar
			continue
		}
		date := series.Bar(i).Date.Format(model.DateLayout)
		ab := avgBody(cs, i)

		cur, prev, first := series.Bar(i), series.Bar(i-1), series.Bar(i-2)

		// Doji, Hammer and Inverted Hammer describe the same single-candle
		// anatomy from different angles, so they are mutually exclusive:
		// first match wins.
		switch {
		case c.body < 0.1*c.rng:
			found = append(found, model.Pattern{
				Type:        model.PatternDoji,
				Description: fmt.Sprintf("Doji on %s - indecision in the market, body is very small relative to the range", date),
				Signal:      model.SignalNeutral,
				Confidence:  55,
				Date:        date,
				Category:    model.CategoryCandlestick,
			})
		case c.lower > 2*c.body && c.upper < 0.5*c.body && c.bull && first.Close > prev.Close:
			found = append(found, model.Pattern{
				Type:        model.PatternHammer,
				Description: fmt.Sprintf("Hammer on %s - buyers pushing price up from the low, potential reversal", date),
				Signal:      model.SignalBullish,
				Confidence:  65,
				Date:        date,
				Category:    model.CategoryCandlestick,
			})
		case c.upper > 2*c.body && c.lower < 0.5*c.body && c.body > 0 && first.Close > prev.Close:
			found = append(found, model.Pattern{
				Type:        model.PatternInvertedHammer,
				Description: fmt.Sprintf("Inverted Hammer on %s - potential bullish reversal after downtrend", date),
				Signal:      model.SignalBullish,
				Confidence:  60,
				Date:        date,
				Category:    model.CategoryCandlestick,
			})
		}

		pc := cs[i-1]
		if c.bull && pc.bear && cur.Open <= prev.Close && cur.Close >= prev.Open && c.body > pc.body {
			found = append(found, model.Pattern{
				Type:        model.PatternBullishEngulfing,
				Description: fmt.Sprintf("Bullish Engulfing on %s - green candle fully engulfs prior red candle, strong buy signal", date),
				Signal:      model.SignalBullish,
				Confidence:  72,
				Date:        date,
				Category:    model.CategoryCandlestick,
			})
		}
		if c.bear && pc.bull && cur.Open >= prev.Close && cur.Close <= prev.Open && c.body > pc.body {
			found = append(found, model.Pattern{
				Type:        model.PatternBearishEngulfing,
				Description: fmt.Sprintf("Bearish Engulfing on %s - red candle fully engulfs prior green candle, strong sell signal", date),
				Signal:      model.SignalBearish,
				Confidence:  72,
				Date:        date,
				Category:    model.CategoryCandlestick,
			})
		}

		fc := cs[i-2]
		midpoint := (first.Open + first.Close) / 2

		if fc.bear && fc.body > 0.5*ab && pc.body < 0.3*ab && c.bull && c.body > 0.5*ab && cur.Close > midpoint {
			found = append(found, model.Pattern{
				Type:        model.PatternMorningStar,
				Description: fmt.Sprintf("Morning Star on %s - 3-candle bullish reversal pattern, trend may reverse upward", date),
				Signal:      model.SignalBullish,
				Confidence:  75,
				Date:        date,
				Category:    model.CategoryCandlestick,
			})
		}
		if fc.bull && fc.body > 0.5*ab && pc.body < 0.3*ab && c.bear && c.body > 0.5*ab && cur.Close < midpoint {
			found = append(found, model.Pattern{
				Type:        model.PatternEveningStar,
				Description: fmt.Sprintf("Evening Star on %s - 3-candle bearish reversal pattern, trend may reverse downward", date),
				Signal:      model.SignalBearish,
				Confidence:  75,
				Date:        date,
				Category:    model.CategoryCandlestick,
			})
		}

		decentBodies := c.body > 0.4*ab && pc.body > 0.4*ab && fc.body > 0.4*ab
		if c.bull && pc.bull && fc.bull && cur.Close > prev.Close && prev.Close > first.Close && decentBodies {
			found = append(found, model.Pattern{
				Type:        model.PatternThreeWhiteSoldiers,
				Description: fmt.Sprintf("Three White Soldiers ending %s - three consecutive bullish candles, strong uptrend signal", date),
				Signal:      model.SignalBullish,
				Confidence:  78,
				Date:        date,
				Category:    model.CategoryCandlestick,
			})
		}
		if c.bear && pc.bear && fc.bear && cur.Close < prev.Close && prev.Close < first.Close && decentBodies {
			found = append(found, model.Pattern{
				Type:        model.PatternThreeBlackCrows,
				Description: fmt.Sprintf("Three Black Crows ending %s - three consecutive bearish candles, strong downtrend signal", date),
				Signal:      model.SignalBearish,
				Confidence:  78,
				Date:        date,
				Category:    model.CategoryCandlestick,
			})
		}
	}

	return dedupByType(found)
}

// avgBody is the trailing mean body over up to avgBodyWindow bars ending
// at i. With fewer than avgBodyMinimum samples it falls back to the bar's
// own body so early bars still have a usable scale.
func avgBody(cs []candle, i int) float64 {
	start := i - avgBodyWindow + 1
	if start < 0 {
		start = 0
	}
	count := i - start + 1
	if count < avgBodyMinimum {
		return cs[i].body
	}
	sum := 0.0
	for j := start; j <= i; j++ {
		sum += cs[j].body
	}
	return sum / float64(count)
}

// dedupByType keeps one pattern per type: the highest confidence wins and
// ties keep the first occurrence, preserving detection order.
func dedupByType(patterns []model.Pattern) []model.Pattern {
	if len(patterns) == 0 {
		return patterns
	}
	index := make(map[model.PatternType]int, len(patterns))
	out := patterns[:0:0]
	for _, p := range patterns {
		if j, ok := index[p.Type]; ok {
			if p.Confidence > out[j].Confidence {
				out[j] = p
			}
			continue
		}
		index[p.Type] = len(out)
		out = append(out, p)
	}
	return out
}
