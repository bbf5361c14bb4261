package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpclient "github.com/quantgrove/densetrack/internal/platform/http"
)

func testHTTPClient() *httpclient.Client {
	return httpclient.NewClient(httpclient.ClientOptions{
		Timeout:        5 * time.Second,
		RequestsPerSec: 100,
		MaxRetries:     0,
	})
}

// klineBody renders n kline rows in the exchange wire format: open time,
// string-encoded prices, close time, plus trailing fields we ignore.
func klineBody(n int) string {
	rows := make([]string, n)
	for i := 0; i < n; i++ {
		openTime := int64(i) * 3_600_000
		rows[i] = fmt.Sprintf(`[%d,"100.1","101.2","99.3","100.5","12.34",%d,"1234.5",42,"6.1","612.3","0"]`,
			openTime, openTime+3_599_999)
	}
	return "[" + strings.Join(rows, ",") + "]"
}

func klineServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func failingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_PrimarySource(t *testing.T) {
	var gotPath, gotBuster string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBuster = r.URL.Query().Get("_t")
		fmt.Fprint(w, klineBody(300))
	}))
	t.Cleanup(srv.Close)

	hc := testHTTPClient()
	client := newClientWithSources(newDirectSource("primary", srv.URL, hc))

	candles := client.Fetch(context.Background(), "BTCUSDT", "1h", 300)
	if len(candles) != 300 {
		t.Fatalf("expected 300 candles, got %d", len(candles))
	}
	if gotPath != "/api/v3/klines" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotBuster == "" {
		t.Error("expected a _t cache-buster on the request")
	}

	first := candles[0]
	if first.OpenTime != 0 || first.Open != 100.1 || first.High != 101.2 ||
		first.Low != 99.3 || first.Close != 100.5 || first.Volume != 12.34 {
		t.Errorf("candle not mapped from wire format: %+v", first)
	}
	if candles[1].OpenTime <= candles[0].OpenTime {
		t.Error("candles must be ordered by open time ascending")
	}
}

func TestFetch_FallsBackOnHTTPError(t *testing.T) {
	primary := failingServer(t)
	mirror := klineServer(t, klineBody(300))

	hc := testHTTPClient()
	client := newClientWithSources(
		newDirectSource("primary", primary.URL, hc),
		newDirectSource("mirror", mirror.URL, hc),
	)

	candles := client.Fetch(context.Background(), "BTCUSDT", "1h", 300)
	if len(candles) != 300 {
		t.Fatalf("expected the mirror's 300 candles, got %d", len(candles))
	}
}

func TestFetch_FallsBackOnAPIErrorObject(t *testing.T) {
	primary := klineServer(t, `{"code":-1121,"msg":"Invalid symbol."}`)
	mirror := klineServer(t, klineBody(200))

	hc := testHTTPClient()
	client := newClientWithSources(
		newDirectSource("primary", primary.URL, hc),
		newDirectSource("mirror", mirror.URL, hc),
	)

	candles := client.Fetch(context.Background(), "NOPEUSDT", "1h", 200)
	if len(candles) != 200 {
		t.Fatalf("expected fallback past the API error, got %d candles", len(candles))
	}
}

func TestFetch_FallsBackOnMalformedRow(t *testing.T) {
	// A corrupt price must read as a failed strategy, not as a zero-price
	// candle handed to the evaluator.
	primary := klineServer(t, `[[0,"1","2","0.5","abc","10",3599999,"0",0,"0","0","0"]]`)
	mirror := klineServer(t, klineBody(200))

	hc := testHTTPClient()
	client := newClientWithSources(
		newDirectSource("primary", primary.URL, hc),
		newDirectSource("mirror", mirror.URL, hc),
	)

	candles := client.Fetch(context.Background(), "BTCUSDT", "1h", 200)
	if len(candles) != 200 {
		t.Fatalf("expected fallback past the malformed row, got %d candles", len(candles))
	}
	for _, c := range candles {
		if c.Close == 0 {
			t.Fatal("a zero-price candle leaked through")
		}
	}
}

func TestFetch_AllSourcesFail(t *testing.T) {
	hc := testHTTPClient()
	client := newClientWithSources(
		newDirectSource("primary", failingServer(t).URL, hc),
		newDirectSource("mirror", failingServer(t).URL, hc),
		newProxySource("proxy", failingServer(t).URL+"/get?url=%s", "http://unused.invalid", hc),
	)

	candles := client.Fetch(context.Background(), "BTCUSDT", "1h", 300)
	if len(candles) != 0 {
		t.Fatalf("expected an empty result when every source fails, got %d", len(candles))
	}
}

func TestProxySource_UnwrapsEnvelope(t *testing.T) {
	envelope, err := json.Marshal(map[string]string{"contents": klineBody(150)})
	if err != nil {
		t.Fatal(err)
	}
	var gotTarget string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTarget = r.URL.Query().Get("url")
		w.Write(envelope)
	}))
	t.Cleanup(srv.Close)

	src := newProxySource("proxy", srv.URL+"/get?url=%s", "https://api.binance.com", testHTTPClient())
	candles, err := src.Klines(context.Background(), "BTCUSDT", "4h", 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 150 {
		t.Fatalf("expected 150 candles from the proxy envelope, got %d", len(candles))
	}
	if !strings.Contains(gotTarget, "symbol=BTCUSDT") || !strings.Contains(gotTarget, "interval=4h") {
		t.Errorf("proxy target not forwarded: %q", gotTarget)
	}
}

func TestParseKlines(t *testing.T) {
	t.Run("sorts ascending", func(t *testing.T) {
		body := `[[7200000,"1","2","0.5","1.5","10",10799999,"0",0,"0","0","0"],` +
			`[0,"1","2","0.5","1.5","10",3599999,"0",0,"0","0","0"],` +
			`[3600000,"1","2","0.5","1.5","10",7199999,"0",0,"0","0","0"]]`
		candles, err := parseKlines([]byte(body))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := 1; i < len(candles); i++ {
			if candles[i].OpenTime <= candles[i-1].OpenTime {
				t.Fatalf("not sorted at %d: %v", i, candles)
			}
		}
	})

	t.Run("rejects duplicate timestamps", func(t *testing.T) {
		body := `[[0,"1","2","0.5","1.5","10",3599999,"0",0,"0","0","0"],` +
			`[0,"1","2","0.5","1.5","10",3599999,"0",0,"0","0","0"]]`
		if _, err := parseKlines([]byte(body)); err == nil {
			t.Fatal("expected an error for duplicate timestamps")
		}
	})

	t.Run("rejects unparsable price fields", func(t *testing.T) {
		body := `[[0,"1","2","0.5","abc","10",3599999,"0",0,"0","0","0"]]`
		if _, err := parseKlines([]byte(body)); err == nil {
			t.Fatal("expected an error for an unparsable close price")
		}
	})

	t.Run("rejects non-numeric field types", func(t *testing.T) {
		body := `[[0,"1","2","0.5",null,"10",3599999,"0",0,"0","0","0"]]`
		if _, err := parseKlines([]byte(body)); err == nil {
			t.Fatal("expected an error for a null close price")
		}
	})

	t.Run("rejects short rows", func(t *testing.T) {
		if _, err := parseKlines([]byte(`[[0,"1","2"]]`)); err == nil {
			t.Fatal("expected an error for a short row")
		}
	})

	t.Run("rejects empty payload", func(t *testing.T) {
		if _, err := parseKlines([]byte(`[]`)); err == nil {
			t.Fatal("expected an error for an empty payload")
		}
	})
}
