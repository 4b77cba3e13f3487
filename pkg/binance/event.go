package binance

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// ErrNotKlineEvent marks stream messages that carry no kline, such as
// subscription acknowledgements.
var ErrNotKlineEvent = errors.New("binance: not a kline event")

// KlineEvent is one kline update from the market stream. Closed is false while
// the candle is still forming.
type KlineEvent struct {
	EventTime int64
	Symbol    string
	Closed    bool
	Candle    Candle
}

// ParseKlineEvent decodes a raw or combined-stream kline message. Keys are
// matched exactly since the payload uses names that differ only by case.
func ParseKlineEvent(msg []byte) (KlineEvent, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(msg, &env); err != nil {
		return KlineEvent{}, fmt.Errorf("decode stream message: %w", err)
	}
	if data, ok := env["data"]; ok {
		env = nil
		if err := json.Unmarshal(data, &env); err != nil {
			return KlineEvent{}, fmt.Errorf("decode combined stream data: %w", err)
		}
	}

	var eventType string
	if raw, ok := env["e"]; !ok || json.Unmarshal(raw, &eventType) != nil || eventType != "kline" {
		return KlineEvent{}, ErrNotKlineEvent
	}

	var k map[string]json.RawMessage
	if err := json.Unmarshal(env["k"], &k); err != nil || k == nil {
		return KlineEvent{}, fmt.Errorf("%w: missing kline body", ErrMalformedKline)
	}

	var ev KlineEvent
	if raw, ok := env["E"]; ok {
		ev.EventTime, _ = parseInt(raw)
	}
	if err := eventString(k, "s", &ev.Symbol); err != nil {
		return KlineEvent{}, err
	}
	if err := eventString(k, "i", &ev.Candle.Interval); err != nil {
		return KlineEvent{}, err
	}
	if raw, ok := k["x"]; !ok || json.Unmarshal(raw, &ev.Closed) != nil {
		return KlineEvent{}, fmt.Errorf("%w: field %q", ErrMalformedKline, "x")
	}

	c := &ev.Candle
	ints := []struct {
		key string
		dst *int64
	}{{"t", &c.OpenTime}, {"T", &c.CloseTime}, {"n", &c.NumTrades}}
	for _, f := range ints {
		v, err := parseInt(k[f.key])
		if err != nil {
			return KlineEvent{}, fmt.Errorf("%w: field %q: %v", ErrMalformedKline, f.key, err)
		}
		*f.dst = v
	}

	decs := []struct {
		key string
		dst *decimal.Decimal
	}{
		{"o", &c.Open}, {"h", &c.High}, {"l", &c.Low}, {"c", &c.Close}, {"v", &c.BaseVolume},
		{"q", &c.QuoteVolume}, {"V", &c.TakerBaseVolume}, {"Q", &c.TakerQuoteVolume},
	}
	for _, f := range decs {
		v, err := parseDecimal(k[f.key])
		if err != nil {
			return KlineEvent{}, fmt.Errorf("%w: field %q: %v", ErrMalformedKline, f.key, err)
		}
		*f.dst = v
	}
	return ev, nil
}

func eventString(k map[string]json.RawMessage, key string, dst *string) error {
	raw, ok := k[key]
	if !ok || json.Unmarshal(raw, dst) != nil || *dst == "" {
		return fmt.Errorf("%w: field %q", ErrMalformedKline, key)
	}
	return nil
}
