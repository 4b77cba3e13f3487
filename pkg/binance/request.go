package binance

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Param is one query parameter. Order matters: the signature covers the
// parameters exactly as they are joined.
type Param struct {
	Name  string
	Value string
}

// SignedRequest is a ready-to-send request descriptor. It is immutable once built;
// the signature (if any) covers Payload() byte for byte.
type SignedRequest struct {
	method    string
	baseURL   string
	path      string
	params    []Param
	signature string
	header    http.Header
}

func (r SignedRequest) Method() string { return r.method }
func (r SignedRequest) Path() string   { return r.path }

// Signature is empty for unsigned requests.
func (r SignedRequest) Signature() string { return r.signature }

// Params returns a copy of the ordered parameters.
func (r SignedRequest) Params() []Param {
	out := make([]Param, len(r.params))
	copy(out, r.params)
	return out
}

// Header returns a copy of the request headers.
func (r SignedRequest) Header() http.Header {
	return r.header.Clone()
}

// Payload is the joined query string without the leading "?". This is the signed message.
func (r SignedRequest) Payload() string {
	return encodeParams(r.params)
}

// Query is "?" + Payload, followed by "&signature=<hex>" for signed requests.
func (r SignedRequest) Query() string {
	payload := r.Payload()
	if payload == "" && r.signature == "" {
		return ""
	}
	q := "?" + payload
	if r.signature != "" {
		q += "&signature=" + r.signature
	}
	return q
}

// URL is the absolute request URL.
func (r SignedRequest) URL() string {
	return r.baseURL + r.path + r.Query()
}

func encodeParams(params []Param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Name)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// KlineQuery selects candles for one pair. When both Start and End are set the
// request is time bounded and always asks for MaxKlineLimit rows.
type KlineQuery struct {
	Base     string
	Quote    string
	Interval string
	Start    time.Time
	End      time.Time
	Limit    int
}

func (q KlineQuery) bounded() bool {
	return !q.Start.IsZero() && !q.End.IsZero()
}

// RequestBuilder assembles canonical, signed requests for each operation.
type RequestBuilder struct {
	creds   Credentials
	baseURL string
	now     func() time.Time
	ids     *OrderIDGenerator
}

type BuilderOption func(*RequestBuilder)

// WithClock overrides the time source used for request timestamps.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *RequestBuilder) { b.now = now }
}

func NewRequestBuilder(creds Credentials, baseURL string, opts ...BuilderOption) *RequestBuilder {
	b := &RequestBuilder{
		creds:   creds,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
		ids:     NewOrderIDGenerator(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OrderRequest builds a signed LIMIT order. The timestamp is sampled once and
// reused for the newClientOrderId.
func (b *RequestBuilder) OrderRequest(side Side, base, quote string, quantity, price decimal.Decimal) SignedRequest {
	symbol := base + quote
	ts := b.now().UnixMilli()
	params := []Param{
		{"symbol", symbol},
		{"timestamp", strconv.FormatInt(ts, 10)},
		{"side", string(side)},
		{"type", OrderTypeLimit},
		{"quantity", quantity.String()},
		{"timeInForce", string(side.TimeInForce())},
		{"price", price.String()},
		{"newClientOrderId", b.ids.Next(symbol, ts)},
	}
	return b.signed(http.MethodPost, PathOrder, params)
}

// CancelOrderRequest builds a signed cancel for an order placed with origClientOrderID.
func (b *RequestBuilder) CancelOrderRequest(base, quote, origClientOrderID string) SignedRequest {
	params := []Param{
		{"symbol", base + quote},
		{"origClientOrderId", origClientOrderID},
		{"timestamp", strconv.FormatInt(b.now().UnixMilli(), 10)},
	}
	return b.signed(http.MethodDelete, PathOrder, params)
}

func (b *RequestBuilder) OpenOrdersRequest(base, quote string) SignedRequest {
	params := []Param{
		{"symbol", base + quote},
		{"timestamp", strconv.FormatInt(b.now().UnixMilli(), 10)},
	}
	return b.signed(http.MethodGet, PathOpenOrders, params)
}

// KlineRequest builds an unsigned klines request. A time-bounded query ignores
// q.Limit and always asks for MaxKlineLimit rows; otherwise Limit defaults to MaxKlineLimit.
func (b *RequestBuilder) KlineRequest(q KlineQuery) SignedRequest {
	symbol := q.Base + q.Quote
	var params []Param
	if q.bounded() {
		params = []Param{
			{"symbol", symbol},
			{"startTime", strconv.FormatInt(q.Start.UnixMilli(), 10)},
			{"endTime", strconv.FormatInt(q.End.UnixMilli(), 10)},
			{"interval", q.Interval},
			{"limit", strconv.Itoa(MaxKlineLimit)},
		}
	} else {
		limit := q.Limit
		if limit == 0 {
			limit = MaxKlineLimit
		}
		params = []Param{
			{"symbol", symbol},
			{"interval", q.Interval},
			{"limit", strconv.Itoa(limit)},
		}
	}
	return b.unsigned(http.MethodGet, PathKlines, params)
}

func (b *RequestBuilder) ExchangeInfoRequest() SignedRequest {
	return b.unsigned(http.MethodGet, PathExchangeInfo, nil)
}

func (b *RequestBuilder) signed(method, path string, params []Param) SignedRequest {
	req := b.unsigned(method, path, params)
	req.signature = b.creds.sign(req.Payload())
	return req
}

func (b *RequestBuilder) unsigned(method, path string, params []Param) SignedRequest {
	header := http.Header{}
	header.Set(HeaderAPIKey, b.creds.PublicKey())
	return SignedRequest{
		method:  method,
		baseURL: b.baseURL,
		path:    path,
		params:  params,
		header:  header,
	}
}
