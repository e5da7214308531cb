package model

// IndicatorSet holds all computed technical indicators for one bar series.
// Every per-bar slice has exactly one entry per source bar, positionally
// aligned; a nil entry marks a position where the trailing window had
// insufficient history. Values are rounded to 2 decimal places.
type IndicatorSet struct {
	SMA20  []*float64 `json:"sma_20"`
	SMA50  []*float64 `json:"sma_50"`
	SMA200 []*float64 `json:"sma_200"`
	EMA12  []*float64 `json:"ema_12"`
	EMA26  []*float64 `json:"ema_26"`

	RSI []*float64 `json:"rsi"`

	MACDLine      []*float64 `json:"macd_line"`
	MACDSignal    []*float64 `json:"macd_signal"`
	MACDHistogram []*float64 `json:"macd_histogram"`

	BBUpper  []*float64 `json:"bb_upper"`
	BBMiddle []*float64 `json:"bb_middle"`
	BBLower  []*float64 `json:"bb_lower"`

	// Min/max close over the trailing 60 bars (whole series when shorter).
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`

	// Current snapshots are thin views over the series above: the last
	// non-nil value, with a neutral fallback where no value exists yet
	// (RSI 50, MACD 0). The SMA snapshots stay nil until their windows
	// fill, since there is no sensible neutral moving average.
	CurrentRSI    float64  `json:"current_rsi"`
	CurrentMACD   float64  `json:"current_macd"`
	CurrentSMA50  *float64 `json:"current_sma_50"`
	CurrentSMA200 *float64 `json:"current_sma_200"`
}
