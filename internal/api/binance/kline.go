package binance

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/quantgrove/densetrack/internal/model"
)

// apiError is the shape Binance uses for explicit failures, e.g.
// {"code":-1121,"msg":"Invalid symbol."}.
type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// parseKlines decodes a raw klines payload into an ordered candle slice.
// The payload is a JSON array of rows
// [openTime, "open", "high", "low", "close", "volume", closeTime, ...],
// with prices encoded as strings. A payload carrying an error object, a row
// that is too short, or duplicate/out-of-order timestamps after sorting all
// invalidate the whole response.
func parseKlines(body []byte) ([]model.Candle, error) {
	var rows [][]interface{}
	if err := json.Unmarshal(body, &rows); err != nil {
		var apiErr apiError
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Msg != "" {
			return nil, fmt.Errorf("api error %d: %s", apiErr.Code, apiErr.Msg)
		}
		return nil, fmt.Errorf("decoding klines: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty klines payload")
	}

	candles := make([]model.Candle, 0, len(rows))
	for i, row := range rows {
		if len(row) < 7 {
			return nil, fmt.Errorf("kline row %d has %d fields, want at least 7", i, len(row))
		}
		fields := make([]float64, 7)
		for j := 0; j < 7; j++ {
			f, err := toFloat(row[j])
			if err != nil {
				return nil, fmt.Errorf("kline row %d field %d: %w", i, j, err)
			}
			fields[j] = f
		}
		candles = append(candles, model.Candle{
			OpenTime:  int64(fields[0]),
			Open:      fields[1],
			High:      fields[2],
			Low:       fields[3],
			Close:     fields[4],
			Volume:    fields[5],
			CloseTime: int64(fields[6]),
		})
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].OpenTime < candles[j].OpenTime })
	for i := 1; i < len(candles); i++ {
		if candles[i].OpenTime <= candles[i-1].OpenTime {
			return nil, fmt.Errorf("duplicate kline timestamp %d", candles[i].OpenTime)
		}
	}

	return candles, nil
}

// toFloat coerces one time/price/volume field. A field that is neither a
// number nor a parsable numeric string poisons the whole payload: a candle
// with an invented zero price would flow straight into the evaluator, so
// the strategy has to fail instead.
func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("unparsable numeric string %q", n)
		}
		return f, nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("unexpected field type %T", v)
	}
}
