package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/quantgrove/densetrack/internal/model"
)

func testSetup() *model.TradeSetup {
	return &model.TradeSetup{
		Symbol:    "BTCUSDT",
		Timeframe: "4h",
		Price:     64250.5,
		Averages: model.MovingAverageSet{
			MA20: 64100, MA60: 64000, MA120: 63900,
			EMA20: 64150, EMA60: 64050, EMA120: 63950,
		},
		DensityScore:   0.8,
		PriceDeviation: 0.4,
		ATR:            350,
		Signal:         model.SignalWatch,
		Entry:          64250.5,
		StopLoss:       63200,
		TakeProfit:     66351.5,
		Dense:          true,
		Reason:         "six averages within 0.80% of price",
	}
}

func clientFor(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		logger: log.With().Str("component", "openai_client").Logger(),
	}
}

func TestDescribeSetup_FallbackOnTransportError(t *testing.T) {
	c := clientFor(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	})

	if got := c.DescribeSetup(context.Background(), testSetup()); got != NarrativeFallback {
		t.Fatalf("expected the fixed fallback, got %q", got)
	}
}

func TestDescribeSetup_FallbackOnEmptyChoices(t *testing.T) {
	c := clientFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"x","object":"chat.completion","created":1,"model":"gpt-4","choices":[]}`)
	})

	if got := c.DescribeSetup(context.Background(), testSetup()); got != NarrativeFallback {
		t.Fatalf("expected the fixed fallback, got %q", got)
	}
}

func TestDescribeSetup_ReturnsCompletion(t *testing.T) {
	c := clientFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"x","object":"chat.completion","created":1,"model":"gpt-4",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Tight cluster, stay ready."},"finish_reason":"stop"}]}`)
	})

	if got := c.DescribeSetup(context.Background(), testSetup()); got != "Tight cluster, stay ready." {
		t.Fatalf("expected the completion text, got %q", got)
	}
}

func TestFormatSetupPrompt_CarriesTheNumbers(t *testing.T) {
	prompt := FormatSetupPrompt(testSetup())
	for _, want := range []string{"BTCUSDT", "4h", "WATCH", "64250.5", "63200", "66351.5"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
