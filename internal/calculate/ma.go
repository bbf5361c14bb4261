package calculate

import (
	"github.com/quantgrove/densetrack/internal/model"
)

// SMA calculates the simple moving average series over candle closes.
// The result is aligned to the input: position i holds the mean of the
// trailing `period` closes ending at i, and positions before period-1 are
// zero placeholders kept only for index alignment. Consumers should read
// the final element. Returns nil when there are fewer candles than period.
func SMA(candles []model.Candle, period int) []float64 {
	if period <= 0 || len(candles) < period {
		return nil
	}

	out := make([]float64, len(candles))

	var sum float64
	for i, c := range candles {
		sum += c.Close
		if i >= period {
			sum -= candles[i-period].Close
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}

	return out
}

// EMA calculates the exponential moving average series over candle closes.
// The series is seeded with the simple average of the first `period` closes
// and then follows ema = close*k + prev*(1-k) with k = 2/(period+1).
// Same alignment and placeholder convention as SMA; returns nil when there
// are fewer candles than period.
func EMA(candles []model.Candle, period int) []float64 {
	if period <= 0 || len(candles) < period {
		return nil
	}

	out := make([]float64, len(candles))

	var seed float64
	for i := 0; i < period; i++ {
		seed += candles[i].Close
	}
	seed /= float64(period)
	out[period-1] = seed

	k := 2.0 / float64(period+1)
	ema := seed
	for i := period; i < len(candles); i++ {
		ema = candles[i].Close*k + ema*(1-k)
		out[i] = ema
	}

	return out
}
