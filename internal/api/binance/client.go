package binance

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "github.com/quantgrove/densetrack/internal/platform/http"
	"github.com/quantgrove/densetrack/internal/model"
)

// Client resolves candle history by walking an ordered list of retrieval
// sources until one yields valid data. This is deliberately simple I/O
// redundancy: each source gets exactly one attempt per fetch, and a failed
// source is skipped silently rather than failing the whole fetch.
type Client struct {
	sources []Source
	logger  zerolog.Logger
}

// ClientOptions holds options for creating a new kline client.
type ClientOptions struct {
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewClient creates a Client with the default source chain: the main API
// host, the data mirror, then the allorigins relay for networks where the
// exchange hosts are unreachable.
func NewClient(options ClientOptions) *Client {
	hc := httpclient.NewClient(httpclient.ClientOptions{
		Timeout:        options.RequestTimeout,
		RequestsPerSec: options.RequestsPerSec,
		// The chain is the redundancy; no per-source retries.
		MaxRetries: 0,
	})

	return newClientWithSources(
		newDirectSource("binance", "https://api.binance.com", hc),
		newDirectSource("binance-mirror", "https://data-api.binance.vision", hc),
		newProxySource("allorigins", "https://api.allorigins.win/get?url=%s", "https://api.binance.com", hc),
	)
}

func newClientWithSources(sources ...Source) *Client {
	return &Client{
		sources: sources,
		logger:  log.With().Str("component", "binance_client").Logger(),
	}
}

// Fetch returns the candle history for one symbol and interval, oldest
// first. All failures are absorbed here: when every source fails the result
// is an empty slice, which callers treat as "no data available this cycle".
func (c *Client) Fetch(ctx context.Context, symbol, interval string, limit int) []model.Candle {
	if limit <= 0 {
		limit = model.DefaultCandleLimit
	}

	for _, src := range c.sources {
		candles, err := src.Klines(ctx, symbol, interval, limit)
		if err != nil {
			c.logger.Debug().Err(err).Str("source", src.Name()).
				Str("symbol", symbol).Str("interval", interval).Msg("kline source failed")
			continue
		}
		if len(candles) == 0 {
			continue
		}
		c.logger.Debug().Str("source", src.Name()).Str("symbol", symbol).
			Str("interval", interval).Int("count", len(candles)).Msg("fetched candles")
		return candles
	}

	c.logger.Warn().Str("symbol", symbol).Str("interval", interval).Msg("all kline sources failed")
	return nil
}
