package analyze

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantgrove/densetrack/internal/model"
)

// CandleSource resolves candle history for one instrument and timeframe.
// An empty result means no data is available this cycle; the source never
// reports an error past its own boundary.
type CandleSource interface {
	Fetch(ctx context.Context, symbol, interval string, limit int) []model.Candle
}

// Scanner evaluates instruments across the short and long timeframes and
// arbitrates which of the two reads to surface.
type Scanner struct {
	source         CandleSource
	timeframeShort string
	timeframeLong  string
	candleLimit    int
	// Pause between instruments during a universe scan, to stay inside
	// upstream rate limits.
	Pause  time.Duration
	logger zerolog.Logger
}

// ScannerOptions holds options for creating a new Scanner. Zero values
// fall back to the defaults (1h/4h, 300 candles, 1.5s pause).
type ScannerOptions struct {
	TimeframeShort string
	TimeframeLong  string
	CandleLimit    int
	Pause          time.Duration
}

// NewScanner creates a Scanner over the given candle source.
func NewScanner(source CandleSource, opts ScannerOptions) *Scanner {
	if opts.TimeframeShort == "" {
		opts.TimeframeShort = model.TimeframeShort
	}
	if opts.TimeframeLong == "" {
		opts.TimeframeLong = model.TimeframeLong
	}
	if opts.CandleLimit == 0 {
		opts.CandleLimit = model.DefaultCandleLimit
	}
	if opts.Pause == 0 {
		opts.Pause = 1500 * time.Millisecond
	}

	return &Scanner{
		source:         source,
		timeframeShort: opts.TimeframeShort,
		timeframeLong:  opts.TimeframeLong,
		candleLimit:    opts.CandleLimit,
		Pause:          opts.Pause,
		logger:         log.With().Str("component", "scanner").Logger(),
	}
}

// EvaluateSymbol runs the evaluator over both timeframes concurrently and
// returns the arbitrated setup, or nil when neither timeframe produced one.
// The two pipelines share no state; either may come back empty without
// affecting the other.
func (s *Scanner) EvaluateSymbol(ctx context.Context, symbol string) *model.TradeSetup {
	var short, long *model.TradeSetup
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		short = s.evaluateTimeframe(ctx, symbol, s.timeframeShort)
	}()
	go func() {
		defer wg.Done()
		long = s.evaluateTimeframe(ctx, symbol, s.timeframeLong)
	}()
	wg.Wait()

	return pickSetup(short, long)
}

func (s *Scanner) evaluateTimeframe(ctx context.Context, symbol, timeframe string) *model.TradeSetup {
	candles := s.source.Fetch(ctx, symbol, timeframe, s.candleLimit)
	if len(candles) == 0 {
		s.logger.Debug().Str("symbol", symbol).Str("timeframe", timeframe).Msg("no candle data")
		return nil
	}
	setup := Evaluate(symbol, timeframe, candles)
	if setup == nil {
		s.logger.Debug().Str("symbol", symbol).Str("timeframe", timeframe).
			Int("candles", len(candles)).Msg("history too short to evaluate")
	}
	return setup
}

// pickSetup arbitrates between the short- and long-timeframe reads.
// A consolidation (WATCH) outranks a directional call because it flags an
// imminent move; the long timeframe outranks the short when both agree in
// kind.
func pickSetup(short, long *model.TradeSetup) *model.TradeSetup {
	if long != nil && long.Signal == model.SignalWatch {
		return long
	}
	if short != nil && short.Signal == model.SignalWatch {
		return short
	}
	if long != nil && long.Signal.Directional() {
		return long
	}
	if short != nil && short.Signal.Directional() {
		return short
	}
	if long != nil {
		return long
	}
	return short
}
