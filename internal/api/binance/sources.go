package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	httpclient "github.com/quantgrove/densetrack/internal/platform/http"
	"github.com/quantgrove/densetrack/internal/model"
)

// Source is one way of retrieving klines. Implementations are stateless and
// interchangeable; the Client walks an ordered list of them until one
// succeeds.
type Source interface {
	Name() string
	Klines(ctx context.Context, symbol, interval string, limit int) ([]model.Candle, error)
}

// directSource hits a Binance-compatible REST endpoint straight on. Both
// the main API host and the data mirror use this shape.
type directSource struct {
	name    string
	baseURL string
	http    *httpclient.Client
}

func newDirectSource(name, baseURL string, hc *httpclient.Client) *directSource {
	return &directSource{name: name, baseURL: baseURL, http: hc}
}

func (s *directSource) Name() string { return s.name }

func (s *directSource) Klines(ctx context.Context, symbol, interval string, limit int) ([]model.Candle, error) {
	body, err := fetchBody(ctx, s.http, klinesURL(s.baseURL, symbol, interval, limit))
	if err != nil {
		return nil, err
	}
	return parseKlines(body)
}

// proxySource routes the klines request through a CORS-style relay that
// wraps the upstream body as a string field, e.g. allorigins:
// {"contents": "<raw klines JSON>"}.
type proxySource struct {
	name     string
	proxyURL string // format string receiving the url-encoded target
	baseURL  string
	http     *httpclient.Client
}

func newProxySource(name, proxyURL, baseURL string, hc *httpclient.Client) *proxySource {
	return &proxySource{name: name, proxyURL: proxyURL, baseURL: baseURL, http: hc}
}

func (s *proxySource) Name() string { return s.name }

func (s *proxySource) Klines(ctx context.Context, symbol, interval string, limit int) ([]model.Candle, error) {
	target := klinesURL(s.baseURL, symbol, interval, limit)
	body, err := fetchBody(ctx, s.http, fmt.Sprintf(s.proxyURL, url.QueryEscape(target)))
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Contents string `json:"contents"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decoding proxy envelope: %w", err)
	}
	if wrapped.Contents == "" {
		return nil, fmt.Errorf("proxy envelope has no contents")
	}
	return parseKlines([]byte(wrapped.Contents))
}

// klinesURL builds the query. The _t token defeats any cache between us and
// the exchange, so no two calls can observe the same stale response.
func klinesURL(baseURL, symbol, interval string, limit int) string {
	return fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&limit=%d&_t=%d",
		baseURL, url.QueryEscape(symbol), url.QueryEscape(interval), limit, time.Now().UnixMilli())
}

func fetchBody(ctx context.Context, hc *httpclient.Client, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := hc.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}
