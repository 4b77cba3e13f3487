package binance

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var fixedNow = time.UnixMilli(1700000000000)

func newTestBuilder() *RequestBuilder {
	return NewRequestBuilder(NewCredentials("pub", "secret"), "https://api.binance.com/",
		WithClock(func() time.Time { return fixedNow }))
}

func paramNames(params []Param) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

// go test -v --run TestOrderRequestCanonicalOrder
func TestOrderRequestCanonicalOrder(t *testing.T) {
	req := newTestBuilder().OrderRequest(SideBuy, "BTC", "USDT", decimal.NewFromInt(1), decimal.NewFromInt(50000))

	wantPayload := "symbol=BTCUSDT&timestamp=1700000000000&side=BUY&type=LIMIT&quantity=1" +
		"&timeInForce=FOK&price=50000&newClientOrderId=BTCUSDT1700000000000"
	if got := req.Payload(); got != wantPayload {
		t.Fatalf("payload = %s\nwant    %s", got, wantPayload)
	}

	wantSig := "cad4a4ec7875f8522768c8b536aed8badc4a7bbd19e72f9cfdc666288a9b82e9"
	if req.Signature() != wantSig {
		t.Fatalf("signature = %s, want %s", req.Signature(), wantSig)
	}
	if got := req.Query(); got != "?"+wantPayload+"&signature="+wantSig {
		t.Fatalf("query = %s", got)
	}
	if req.Method() != http.MethodPost || req.Path() != PathOrder {
		t.Fatalf("method/path = %s %s", req.Method(), req.Path())
	}
	if got := req.URL(); !strings.HasPrefix(got, "https://api.binance.com/api/v3/order?symbol=") {
		t.Fatalf("url = %s", got)
	}
	if req.Header().Get(HeaderAPIKey) != "pub" {
		t.Fatalf("api key header missing: %v", req.Header())
	}
}

func TestOrderRequestReorderChangesSignature(t *testing.T) {
	req := newTestBuilder().OrderRequest(SideBuy, "BTC", "USDT", decimal.NewFromInt(1), decimal.NewFromInt(50000))

	params := req.Params()
	params[1], params[2] = params[2], params[1]
	swapped := encodeParams(params)
	if swapped == req.Payload() {
		t.Fatal("swapping fields should change the payload")
	}
	if Sign("secret", swapped) == req.Signature() {
		t.Fatal("swapping fields should change the signature")
	}

	// Params returns a copy, the request itself is untouched.
	if req.Params()[1].Name != "timestamp" {
		t.Fatalf("request params mutated: %v", paramNames(req.Params()))
	}
}

func TestSellOrderUsesGTC(t *testing.T) {
	req := newTestBuilder().OrderRequest(SideSell, "ETH", "BTC", decimal.RequireFromString("0.5"), decimal.RequireFromString("0.055"))
	want := "symbol=ETHBTC&timestamp=1700000000000&side=SELL&type=LIMIT&quantity=0.5" +
		"&timeInForce=GTC&price=0.055&newClientOrderId=ETHBTC1700000000000"
	if got := req.Payload(); got != want {
		t.Fatalf("payload = %s", got)
	}
}

func TestOrderRequestsInSameMillisecondGetDistinctIDs(t *testing.T) {
	b := newTestBuilder()
	first := b.OrderRequest(SideBuy, "BTC", "USDT", decimal.NewFromInt(1), decimal.NewFromInt(1))
	second := b.OrderRequest(SideBuy, "BTC", "USDT", decimal.NewFromInt(1), decimal.NewFromInt(1))

	id := func(r SignedRequest) string {
		params := r.Params()
		return params[len(params)-1].Value
	}
	if id(first) == id(second) {
		t.Fatalf("client order ids collided: %s", id(first))
	}
}

func TestOpenOrdersAndCancelRequests(t *testing.T) {
	b := newTestBuilder()

	open := b.OpenOrdersRequest("BTC", "USDT")
	if open.Payload() != "symbol=BTCUSDT&timestamp=1700000000000" {
		t.Fatalf("open orders payload = %s", open.Payload())
	}
	if open.Signature() != Sign("secret", open.Payload()) || open.Method() != http.MethodGet {
		t.Fatalf("open orders request not signed as GET: %+v", open)
	}

	cancel := b.CancelOrderRequest("BTC", "USDT", "BTCUSDT1699999999999")
	if cancel.Payload() != "symbol=BTCUSDT&origClientOrderId=BTCUSDT1699999999999&timestamp=1700000000000" {
		t.Fatalf("cancel payload = %s", cancel.Payload())
	}
	if cancel.Method() != http.MethodDelete || cancel.Signature() == "" {
		t.Fatalf("cancel request = %s signed=%t", cancel.Method(), cancel.Signature() != "")
	}
}

// go test -v --run TestKlineRequestShape
func TestKlineRequestShape(t *testing.T) {
	b := newTestBuilder()
	start := time.UnixMilli(1000)
	end := time.UnixMilli(2000)

	cases := []struct {
		name  string
		query KlineQuery
		want  string
	}{
		{
			name:  "bounded ignores caller limit",
			query: KlineQuery{Base: "BTC", Quote: "USDT", Interval: "5m", Start: start, End: end, Limit: 10},
			want:  "symbol=BTCUSDT&startTime=1000&endTime=2000&interval=5m&limit=1000",
		},
		{
			name:  "start only falls back to simple shape",
			query: KlineQuery{Base: "BTC", Quote: "USDT", Interval: "5m", Start: start, Limit: 10},
			want:  "symbol=BTCUSDT&interval=5m&limit=10",
		},
		{
			name:  "end only falls back to simple shape",
			query: KlineQuery{Base: "BTC", Quote: "USDT", Interval: "1h", End: end, Limit: 20},
			want:  "symbol=BTCUSDT&interval=1h&limit=20",
		},
		{
			name:  "default limit",
			query: KlineQuery{Base: "BTC", Quote: "USDT", Interval: "5m"},
			want:  "symbol=BTCUSDT&interval=5m&limit=1000",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := b.KlineRequest(tc.query)
			if got := req.Payload(); got != tc.want {
				t.Fatalf("payload = %s, want %s", got, tc.want)
			}
			if req.Signature() != "" {
				t.Fatal("kline requests are unsigned")
			}
			if req.Header().Get(HeaderAPIKey) != "pub" {
				t.Fatal("kline requests carry the api key header")
			}
			if strings.Contains(req.Query(), "signature=") {
				t.Fatalf("unexpected signature in %s", req.Query())
			}
		})
	}
}

func TestExchangeInfoRequest(t *testing.T) {
	req := newTestBuilder().ExchangeInfoRequest()
	if req.Query() != "" {
		t.Fatalf("query = %q, want empty", req.Query())
	}
	if req.URL() != "https://api.binance.com/api/v3/exchangeInfo" {
		t.Fatalf("url = %s", req.URL())
	}
	if req.Header().Get(HeaderAPIKey) != "pub" {
		t.Fatal("missing api key header")
	}
}
