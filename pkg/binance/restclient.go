package binance

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RESTClient issues requests built by a RequestBuilder and decodes the responses.
// It never retries; every fault goes back to the caller.
type RESTClient struct {
	builder    *RequestBuilder
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

type Option func(*RESTClient)

func WithHTTPClient(c *http.Client) Option {
	return func(r *RESTClient) { r.httpClient = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *RESTClient) { r.logger = l }
}

// WithRateLimit paces outgoing requests to perSecond. Zero disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(r *RESTClient) {
		if perSecond > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithBuilderOptions forwards options to the underlying RequestBuilder.
func WithBuilderOptions(opts ...BuilderOption) Option {
	return func(r *RESTClient) {
		for _, opt := range opts {
			opt(r.builder)
		}
	}
}

func NewRESTClient(creds Credentials, baseURL string, timeout time.Duration, opts ...Option) *RESTClient {
	c := &RESTClient{
		builder:    NewRequestBuilder(creds, baseURL),
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExchangeInfo fetches tradable pairs and their filters.
func (c *RESTClient) ExchangeInfo(ctx context.Context) (*ExchangeInfo, error) {
	var info ExchangeInfo
	if err := c.call(ctx, c.builder.ExchangeInfoRequest(), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *RESTClient) PlaceBuyOrder(ctx context.Context, base, quote string, quantity, price decimal.Decimal) (*OrderResponse, error) {
	return c.placeOrder(ctx, SideBuy, base, quote, quantity, price)
}

func (c *RESTClient) PlaceSellOrder(ctx context.Context, base, quote string, quantity, price decimal.Decimal) (*OrderResponse, error) {
	return c.placeOrder(ctx, SideSell, base, quote, quantity, price)
}

func (c *RESTClient) placeOrder(ctx context.Context, side Side, base, quote string, quantity, price decimal.Decimal) (*OrderResponse, error) {
	var resp OrderResponse
	if err := c.call(ctx, c.builder.OrderRequest(side, base, quote, quantity, price), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *RESTClient) CancelOrder(ctx context.Context, base, quote, clientOrderID string) (*OrderResponse, error) {
	var resp OrderResponse
	if err := c.call(ctx, c.builder.CancelOrderRequest(base, quote, clientOrderID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// OpenOrders lists open orders for a pair. An empty book yields a non-nil empty slice.
func (c *RESTClient) OpenOrders(ctx context.Context, base, quote string) ([]OpenOrder, error) {
	orders := []OpenOrder{}
	if err := c.call(ctx, c.builder.OpenOrdersRequest(base, quote), &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Klines fetches and normalizes candles in the exchange's (ascending) order.
func (c *RESTClient) Klines(ctx context.Context, q KlineQuery) ([]Candle, error) {
	if _, err := ParseKlineInterval(q.Interval); err != nil {
		return nil, err
	}
	var raw [][]json.RawMessage
	if err := c.call(ctx, c.builder.KlineRequest(q), &raw); err != nil {
		return nil, err
	}
	candles, err := ParseKlineList(q.Interval, raw)
	if err != nil {
		return nil, fmt.Errorf("parse klines %s%s: %w", q.Base, q.Quote, err)
	}
	return candles, nil
}

// call sends req and decodes the body into out.
func (c *RESTClient) call(ctx context.Context, req SignedRequest, out any) error {
	status, body, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return decodeBody(status, body, out)
}

// Do sends req as-is and returns the status code and raw body. Only transport
// failures are reported as errors.
func (c *RESTClient) Do(ctx context.Context, req SignedRequest) (int, []byte, error) {
	// Wait for the rate limiter
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	// Create the HTTP request
	httpReq, err := http.NewRequestWithContext(ctx, req.Method(), req.URL(), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header = req.Header()

	// Execute the HTTP request
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", req.Method(), req.Path(), err)
	}
	defer resp.Body.Close()

	// Read the response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading %s body: %w", req.Path(), err)
	}
	c.logger.Debug("binance response",
		zap.String("method", req.Method()),
		zap.String("path", req.Path()),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)))
	return resp.StatusCode, body, nil
}

// decodeBody applies the decode policy: absent, null or invalid JSON is
// ErrNoResult; an exchange error object is returned verbatim as *APIError.
func decodeBody(status int, body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("%w: empty body (http %d)", ErrNoResult, status)
	}
	if !json.Valid(trimmed) {
		return fmt.Errorf("%w: invalid json (http %d)", ErrNoResult, status)
	}

	if trimmed[0] == '{' {
		var probe struct {
			Code *int    `json:"code"`
			Msg  *string `json:"msg"`
		}
		if err := json.Unmarshal(trimmed, &probe); err == nil && probe.Code != nil && probe.Msg != nil {
			return &APIError{Status: status, Code: *probe.Code, Msg: *probe.Msg, Body: trimmed}
		}
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("%w: decode %T: %v", ErrNoResult, out, err)
	}
	return nil
}
