package calculate

import (
	"math"

	"github.com/quantgrove/densetrack/internal/model"
)

// MovingAverages computes the six-value average set the evaluator works
// from. ok is false when the 120-period pair cannot be produced or resolves
// to a zero/non-finite placeholder, which means the history is too short
// for a meaningful read.
func MovingAverages(candles []model.Candle) (set model.MovingAverageSet, ok bool) {
	ma120 := last(SMA(candles, 120))
	ema120 := last(EMA(candles, 120))
	if !usable(ma120) || !usable(ema120) {
		return model.MovingAverageSet{}, false
	}

	set = model.MovingAverageSet{
		MA20:   last(SMA(candles, 20)),
		MA60:   last(SMA(candles, 60)),
		MA120:  ma120,
		EMA20:  last(EMA(candles, 20)),
		EMA60:  last(EMA(candles, 60)),
		EMA120: ema120,
	}
	return set, true
}

func last(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

func usable(v float64) bool {
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
