package analyze

import (
	"fmt"
	"math"

	"github.com/quantgrove/densetrack/internal/calculate"
	"github.com/quantgrove/densetrack/internal/model"
)

// Classification thresholds, in percent units.
const (
	// DensityThreshold is the maximum spread of the six averages relative
	// to price for the cluster to count as tight.
	DensityThreshold = 2.0
	// DeviationThreshold is the maximum distance of price from the
	// six-average mean for the price to count as "nearby".
	DeviationThreshold = 3.0
)

// slATRMultiplier sizes the stop-loss buffer beyond the average cluster.
const slATRMultiplier = 2.0

// Evaluate classifies one instrument on one timeframe from its candle
// history. It is a pure function of its inputs; no state is retained
// between calls. Returns nil when the history is too short (< MinCandles)
// or the 120-period averages are unavailable, which the caller must treat
// as "no setup this cycle", not as an error.
func Evaluate(symbol, timeframe string, candles []model.Candle) *model.TradeSetup {
	if len(candles) < model.MinCandles {
		return nil
	}

	averages, ok := calculate.MovingAverages(candles)
	if !ok {
		return nil
	}

	price := candles[len(candles)-1].Close
	atr := calculate.ATR(candles, calculate.DefaultATRPeriod)

	maxAvg := averages.Max()
	minAvg := averages.Min()
	meanAvg := averages.Mean()

	densityScore := (maxAvg - minAvg) / price * 100
	priceDeviation := math.Abs(price-meanAvg) / price * 100
	dense := densityScore < DensityThreshold && priceDeviation < DeviationThreshold

	bullStack := averages.MA20 > averages.MA60 && averages.MA60 > averages.MA120
	bearStack := averages.MA20 < averages.MA60 && averages.MA60 < averages.MA120

	var signal model.Signal
	var reason string
	switch {
	case dense:
		signal = model.SignalWatch
		reason = fmt.Sprintf("six averages within %.2f%% of price and price %.2f%% from their mean: consolidation, breakout likely", densityScore, priceDeviation)
	case bullStack && price > maxAvg:
		signal = model.SignalLong
		reason = "bullish stack MA20>MA60>MA120 with price above all six averages"
	case bearStack && price < minAvg:
		signal = model.SignalShort
		reason = "bearish stack MA20<MA60<MA120 with price below all six averages"
	case densityScore < DensityThreshold && priceDeviation >= DeviationThreshold:
		signal = model.SignalWait
		reason = fmt.Sprintf("averages tight (%.2f%%) but price has run away %.2f%% from the cluster", densityScore, priceDeviation)
	default:
		signal = model.SignalWait
		reason = "averages diverging, no clear pattern"
	}

	// WAIT intentionally shares the bearish-side plan. Legacy behavior,
	// kept as-is pending a product call.
	slBuffer := atr * slATRMultiplier
	var stopLoss, takeProfit float64
	if signal == model.SignalLong || signal == model.SignalWatch {
		stopLoss = minAvg - slBuffer
		takeProfit = price + (price-stopLoss)*2
	} else {
		stopLoss = maxAvg + slBuffer
		takeProfit = price - (stopLoss-price)*2
	}

	return &model.TradeSetup{
		Symbol:         symbol,
		Timeframe:      timeframe,
		Price:          price,
		Averages:       averages,
		DensityScore:   densityScore,
		PriceDeviation: priceDeviation,
		ATR:            atr,
		Signal:         signal,
		Entry:          price,
		StopLoss:       stopLoss,
		TakeProfit:     takeProfit,
		Dense:          dense,
		Reason:         reason,
	}
}
