package model

// Candle represents a single price candle. Times are unix milliseconds,
// matching the exchange kline payload.
type Candle struct {
	OpenTime  int64   `json:"open_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	CloseTime int64   `json:"close_time"`
}

// Timeframe codes used by the scanner. The long timeframe is the more
// authoritative of the two when both produce the same kind of signal.
const (
	TimeframeShort = "1h"
	TimeframeLong  = "4h"
)

// MinCandles is the minimum history length required before a setup can be
// evaluated. Below this the 120-period averages are too fresh to trust.
const MinCandles = 150

// DefaultCandleLimit is the number of candles requested per fetch.
const DefaultCandleLimit = 300
