package analyze

import (
	"context"
	"sort"
	"time"

	"github.com/quantgrove/densetrack/internal/model"
)

// ScanUniverse evaluates every symbol in order and returns the setups that
// could be produced, WATCH signals first (stable otherwise). Instruments
// are processed strictly one at a time with a pause in between so the
// upstream endpoints see a bounded request rate. onProgress, when non-nil,
// is invoked after each instrument with the completed and total counts.
//
// A scan is re-entrant but not meant to run concurrently with itself; the
// caller is expected to finish (or abandon) one pass before starting the
// next.
func (s *Scanner) ScanUniverse(ctx context.Context, symbols []string, onProgress func(done, total int)) []*model.TradeSetup {
	setups := make([]*model.TradeSetup, 0, len(symbols))

	for i, symbol := range symbols {
		if i > 0 && s.Pause > 0 {
			select {
			case <-ctx.Done():
				s.logger.Warn().Int("completed", i).Int("total", len(symbols)).
					Msg("scan cancelled, returning partial results")
				return sortWatchFirst(setups)
			case <-time.After(s.Pause):
			}
		}

		if setup := s.EvaluateSymbol(ctx, symbol); setup != nil {
			setups = append(setups, setup)
		}
		if onProgress != nil {
			onProgress(i+1, len(symbols))
		}
	}

	return sortWatchFirst(setups)
}

// sortWatchFirst moves WATCH setups ahead of everything else without
// disturbing the relative order within each group.
func sortWatchFirst(setups []*model.TradeSetup) []*model.TradeSetup {
	sort.SliceStable(setups, func(i, j int) bool {
		return setups[i].Signal == model.SignalWatch && setups[j].Signal != model.SignalWatch
	})
	return setups
}
