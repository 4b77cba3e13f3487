package binance

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const maxReconnectInterval = time.Minute

// KlineTopic is the stream name for a symbol/interval, e.g. "btcusdt@kline_5m".
func KlineTopic(symbol, interval string) string {
	return strings.ToLower(symbol) + "@kline_" + interval
}

// WSClient handles the market stream connection and message routing.
type WSClient struct {
	url     string
	topics  func() []string
	mu      sync.Mutex
	conn    *websocket.Conn
	handler func([]byte)
	logger  *zap.Logger
	reqID   atomic.Int64
}

// NewWSClient creates a stream client. topics is called on every (re)connect so
// subscriptions follow the current pair set.
func NewWSClient(url string, topics func() []string, logger *zap.Logger) *WSClient {
	return &WSClient{
		url:    url,
		topics: topics,
		logger: logger,
	}
}

// SetMessageHandler sets the function to handle incoming messages.
func (c *WSClient) SetMessageHandler(h func([]byte)) {
	c.handler = h
}

// Connect dials the stream and subscribes. It does not start the listener.
func (c *WSClient) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.logger.Error("failed to connect to websocket", zap.String("url", c.url), zap.Error(err))
		return err
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.logger.Info("websocket connected", zap.String("url", c.url))

	return c.subscribe(conn)
}

func (c *WSClient) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

func (c *WSClient) subscribe(conn *websocket.Conn) error {
	topics := c.topics()
	if len(topics) == 0 {
		return nil
	}
	msg := map[string]interface{}{
		"method": "SUBSCRIBE",
		"params": topics,
		"id":     c.reqID.Add(1),
	}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("websocket subscribe failed: %w", err)
	}
	c.logger.Info("subscribed", zap.Int("topics", len(topics)))
	return nil
}

// Listen reads messages until ctx is done, reconnecting with exponential backoff
// after read errors.
func (c *WSClient) Listen(ctx context.Context) {
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	for {
		_, msg, err := c.current().ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("websocket read error", zap.Error(err))
			if !c.reconnect(ctx) {
				return
			}
			continue
		}

		if c.handler != nil {
			c.handler(msg)
		}
	}
}

func (c *WSClient) reconnect(ctx context.Context) bool {
	b := backoff.NewExponentialBackOff()
	b.MaxInterval = maxReconnectInterval

	for {
		sleep := b.NextBackOff()
		if sleep == backoff.Stop {
			sleep = maxReconnectInterval
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(sleep):
		}

		_ = c.Close()
		if err := c.Connect(ctx); err != nil {
			c.logger.Warn("retrying reconnect", zap.Duration("after", sleep))
			continue
		}
		c.logger.Info("reconnected successfully")
		return true
	}
}

func (c *WSClient) Close() error {
	conn := c.current()
	if conn == nil {
		return nil
	}
	return conn.Close()
}
