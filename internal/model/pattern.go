package model

// Signal is the directional reading of a detected pattern.
type Signal string

const (
	SignalBullish Signal = "bullish"
	SignalBearish Signal = "bearish"
	SignalNeutral Signal = "neutral"
)

// Category distinguishes raw-candle formations from indicator-derived ones.
type Category string

const (
	CategoryCandlestick Category = "candlestick"
	CategoryComposite   Category = "composite"
)

// PatternType enumerates every pattern the detectors can emit. The set is
// closed: detectors never synthesize types outside this list.
type PatternType string

const (
	// Candlestick formations.
	PatternDoji               PatternType = "Doji"
	PatternHammer             PatternType = "Hammer"
	PatternInvertedHammer     PatternType = "Inverted Hammer"
	PatternBullishEngulfing   PatternType = "Bullish Engulfing"
	PatternBearishEngulfing   PatternType = "Bearish Engulfing"
	PatternMorningStar        PatternType = "Morning Star"
	PatternEveningStar        PatternType = "Evening Star"
	PatternThreeWhiteSoldiers PatternType = "Three White Soldiers"
	PatternThreeBlackCrows    PatternType = "Three Black Crows"

	// Composite signals from indicators plus price action.
	PatternGoldenCross     PatternType = "Golden Cross"
	PatternDeathCross      PatternType = "Death Cross"
	PatternStrongUptrend   PatternType = "Strong Uptrend"
	PatternStrongDowntrend PatternType = "Strong Downtrend"
	PatternRSIOverbought   PatternType = "RSI Overbought"
	PatternRSIOversold     PatternType = "RSI Oversold"
	PatternMACDBullish     PatternType = "MACD Bullish Crossover"
	PatternMACDBearish     PatternType = "MACD Bearish Crossover"
	PatternBBUpperTouch    PatternType = "Bollinger Band Upper Touch"
	PatternBBLowerTouch    PatternType = "Bollinger Band Lower Touch"
	PatternDoubleTop       PatternType = "Double Top"
	PatternDoubleBottom    PatternType = "Double Bottom"
	PatternVolumeSpike     PatternType = "Volume Spike"
	PatternNearSupport     PatternType = "Near Support"
	PatternNearResistance  PatternType = "Near Resistance"
)

// Pattern is a single detected formation. Patterns are value objects
// produced fresh per analysis request; persistence is the store's concern.
type Pattern struct {
	Type        PatternType `json:"type"`
	Description string      `json:"description"`
	Signal      Signal      `json:"signal"`
	Confidence  int         `json:"confidence"`
	Date        string      `json:"date"`
	Category    Category    `json:"category"`
}
