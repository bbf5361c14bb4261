package calculate

import (
	"math"

	"github.com/quantgrove/densetrack/internal/model"
)

// DefaultATRPeriod is the conventional ATR lookback.
const DefaultATRPeriod = 14

// ATR calculates the average true range over the last `period` candles.
// True range needs the previous close, so period+1 candles are required;
// with fewer the function returns 0. Only the snapshot value matters to
// the evaluator, so no series is kept.
func ATR(candles []model.Candle, period int) float64 {
	if period <= 0 || len(candles) < period+1 {
		return 0
	}

	var sum float64
	for i := len(candles) - period; i < len(candles); i++ {
		// True range is the greatest of:
		// high - low, |high - prevClose|, |low - prevClose|
		highLow := candles[i].High - candles[i].Low
		highPrevClose := math.Abs(candles[i].High - candles[i-1].Close)
		lowPrevClose := math.Abs(candles[i].Low - candles[i-1].Close)
		sum += math.Max(highLow, math.Max(highPrevClose, lowPrevClose))
	}

	return sum / float64(period)
}
