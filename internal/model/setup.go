package model

// Signal classifies the state of an instrument on one timeframe.
type Signal string

const (
	SignalLong  Signal = "LONG"
	SignalShort Signal = "SHORT"
	SignalWait  Signal = "WAIT"
	// SignalWatch marks a tight moving-average cluster with price nearby:
	// a consolidation that usually resolves into a move soon. It outranks
	// a directional call when both timeframes disagree.
	SignalWatch Signal = "WATCH"
)

// Directional reports whether the signal is an actual long/short call.
func (s Signal) Directional() bool {
	return s == SignalLong || s == SignalShort
}

// MovingAverageSet holds the six moving averages the evaluator works from:
// simple and exponential averages over 20, 60 and 120 closes.
type MovingAverageSet struct {
	MA20   float64 `json:"ma20"`
	MA60   float64 `json:"ma60"`
	MA120  float64 `json:"ma120"`
	EMA20  float64 `json:"ema20"`
	EMA60  float64 `json:"ema60"`
	EMA120 float64 `json:"ema120"`
}

// Values returns the six averages in a fixed order.
func (m MovingAverageSet) Values() [6]float64 {
	return [6]float64{m.MA20, m.MA60, m.MA120, m.EMA20, m.EMA60, m.EMA120}
}

// Max returns the highest of the six averages.
func (m MovingAverageSet) Max() float64 {
	vals := m.Values()
	max := vals[0]
	for _, v := range vals[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Min returns the lowest of the six averages.
func (m MovingAverageSet) Min() float64 {
	vals := m.Values()
	min := vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Mean returns the arithmetic mean of the six averages.
func (m MovingAverageSet) Mean() float64 {
	var sum float64
	for _, v := range m.Values() {
		sum += v
	}
	return sum / 6
}

// TradeSetup is the evaluated state of one instrument on one timeframe.
// It is computed fresh each cycle and never mutated after being returned.
type TradeSetup struct {
	Symbol         string           `json:"symbol"`
	Timeframe      string           `json:"timeframe"`
	Price          float64          `json:"price"`
	Averages       MovingAverageSet `json:"averages"`
	DensityScore   float64          `json:"density_score"`   // % spread of the six averages relative to price
	PriceDeviation float64          `json:"price_deviation"` // % distance of price from the six-average mean
	ATR            float64          `json:"atr"`
	Signal         Signal           `json:"signal"`
	Entry          float64          `json:"entry"`
	StopLoss       float64          `json:"stop_loss"`
	TakeProfit     float64          `json:"take_profit"`
	Dense          bool             `json:"dense"`
	Reason         string           `json:"reason"`
}
