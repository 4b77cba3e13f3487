package binance

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

const klineEventMsg = `{"e":"kline","E":1700000060001,"s":"BTCUSDT","k":{
	"t":1700000000000,"T":1700000059999,"s":"BTCUSDT","i":"1m","f":100,"L":200,
	"o":"37000.10","c":"37010.00","h":"37020.50","l":"36990.00","v":"12.5",
	"n":101,"x":true,"q":"462600.25","V":"6.25","Q":"231300.10","B":"0"}}`

// go test -v --run TestParseKlineEvent
func TestParseKlineEvent(t *testing.T) {
	ev, err := ParseKlineEvent([]byte(klineEventMsg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Symbol != "BTCUSDT" || !ev.Closed || ev.EventTime != 1700000060001 {
		t.Fatalf("unexpected event: %+v", ev)
	}
	c := ev.Candle
	if c.OpenTime != 1700000000000 || c.CloseTime != 1700000059999 || c.NumTrades != 101 || c.Interval != "1m" {
		t.Fatalf("unexpected candle times: %+v", c)
	}
	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"open", c.Open, "37000.10"}, {"close", c.Close, "37010.00"}, {"high", c.High, "37020.50"},
		{"low", c.Low, "36990.00"}, {"base volume", c.BaseVolume, "12.5"}, {"quote volume", c.QuoteVolume, "462600.25"},
		{"taker base", c.TakerBaseVolume, "6.25"}, {"taker quote", c.TakerQuoteVolume, "231300.10"},
	}
	for _, ch := range checks {
		if !ch.got.Equal(decimal.RequireFromString(ch.want)) {
			t.Errorf("%s = %s, want %s", ch.name, ch.got, ch.want)
		}
	}
}

func TestParseKlineEventCombinedStream(t *testing.T) {
	ev, err := ParseKlineEvent([]byte(`{"stream":"btcusdt@kline_1m","data":` + klineEventMsg + `}`))
	if err != nil || ev.Symbol != "BTCUSDT" {
		t.Fatalf("combined stream: %+v, %v", ev, err)
	}
}

func TestParseKlineEventRejects(t *testing.T) {
	cases := []struct {
		name string
		msg  string
		want error
	}{
		{"subscribe ack", `{"result":null,"id":1}`, ErrNotKlineEvent},
		{"trade event", `{"e":"trade","s":"BTCUSDT"}`, ErrNotKlineEvent},
		{"missing body", `{"e":"kline","s":"BTCUSDT"}`, ErrMalformedKline},
		{"missing close flag", `{"e":"kline","k":{"s":"BTCUSDT","i":"1m"}}`, ErrMalformedKline},
		{"bad price", `{"e":"kline","k":{"s":"BTCUSDT","i":"1m","x":true,"t":1,"T":2,"n":3,"o":"abc"}}`, ErrMalformedKline},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseKlineEvent([]byte(tc.msg)); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := ParseKlineEvent([]byte(`not json`)); err == nil {
		t.Fatal("expected decode error")
	}
}
