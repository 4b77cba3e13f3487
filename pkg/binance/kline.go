package binance

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// klineFields is the arity of a kline row; the last field is an unused flag.
const klineFields = 12

// Candle is one normalized kline. The exchange payload omits the interval, so it
// is attached from the request.
type Candle struct {
	OpenTime         int64           `json:"openTime"` // ms since epoch
	Open             decimal.Decimal `json:"open"`
	High             decimal.Decimal `json:"high"`
	Low              decimal.Decimal `json:"low"`
	Close            decimal.Decimal `json:"close"`
	BaseVolume       decimal.Decimal `json:"baseVolume"`
	CloseTime        int64           `json:"closeTime"` // ms since epoch
	QuoteVolume      decimal.Decimal `json:"quoteVolume"`
	NumTrades        int64           `json:"numTrades"`
	TakerBaseVolume  decimal.Decimal `json:"takerBaseVolume"`
	TakerQuoteVolume decimal.Decimal `json:"takerQuoteVolume"`
	Interval         string          `json:"interval"`
}

// ParseKlineList converts raw kline rows into candles, preserving their order.
// Any row that is not exactly 12 fields, or whose fields do not parse, fails the
// whole list with a *KlineShapeError.
func ParseKlineList(interval string, raw [][]json.RawMessage) ([]Candle, error) {
	out := make([]Candle, 0, len(raw))
	for i, row := range raw {
		if len(row) != klineFields {
			return nil, &KlineShapeError{Row: i, Fields: len(row)}
		}
		c, field, err := parseKline(row)
		if err != nil {
			return nil, &KlineShapeError{Row: i, Fields: len(row), Field: field, Err: err}
		}
		c.Interval = interval
		out = append(out, c)
	}
	return out, nil
}

// parseKline fills a candle from the first 11 fields; on failure it reports the field index.
func parseKline(row []json.RawMessage) (Candle, int, error) {
	var c Candle
	ints := []struct {
		idx int
		dst *int64
	}{{0, &c.OpenTime}, {6, &c.CloseTime}, {8, &c.NumTrades}}
	decs := []struct {
		idx int
		dst *decimal.Decimal
	}{
		{1, &c.Open}, {2, &c.High}, {3, &c.Low}, {4, &c.Close}, {5, &c.BaseVolume},
		{7, &c.QuoteVolume}, {9, &c.TakerBaseVolume}, {10, &c.TakerQuoteVolume},
	}
	for _, f := range ints {
		v, err := parseInt(row[f.idx])
		if err != nil {
			return Candle{}, f.idx, err
		}
		*f.dst = v
	}
	for _, f := range decs {
		v, err := parseDecimal(row[f.idx])
		if err != nil {
			return Candle{}, f.idx, err
		}
		*f.dst = v
	}
	return c, 0, nil
}

// scalarText returns the text of a JSON number or string.
func scalarText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", fmt.Errorf("empty value")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(raw), nil
}

func parseInt(raw json.RawMessage) (int64, error) {
	s, err := scalarText(raw)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, 64)
}

func parseDecimal(raw json.RawMessage) (decimal.Decimal, error) {
	s, err := scalarText(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(s)
}
