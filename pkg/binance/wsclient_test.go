package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"
)

func TestKlineTopic(t *testing.T) {
	if got := KlineTopic("BTCUSDT", "5m"); got != "btcusdt@kline_5m" {
		t.Fatalf("KlineTopic() = %s", got)
	}
}

// go test -v --run TestWSClientSubscribeAndListen
func TestWSClientSubscribeAndListen(t *testing.T) {
	upgrader := websocket.Upgrader{}
	subscribed := make(chan map[string]interface{}, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var sub map[string]interface{}
		if err := conn.ReadJSON(&sub); err != nil {
			t.Errorf("read subscribe: %v", err)
			return
		}
		subscribed <- sub
		conn.WriteMessage(websocket.TextMessage, []byte(`{"e":"kline"}`))

		// hold the connection until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client := NewWSClient(wsURL, func() []string { return []string{"btcusdt@kline_5m"} }, zaptest.NewLogger(t))

	received := make(chan []byte, 1)
	client.SetMessageHandler(func(msg []byte) { received <- msg })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}

	done := make(chan struct{})
	go func() {
		client.Listen(ctx)
		close(done)
	}()

	select {
	case sub := <-subscribed:
		if sub["method"] != "SUBSCRIBE" {
			t.Fatalf("unexpected subscribe message: %v", sub)
		}
		params, _ := sub["params"].([]interface{})
		if len(params) != 1 || params[0] != "btcusdt@kline_5m" {
			t.Fatalf("unexpected params: %v", sub["params"])
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no subscription received")
	}

	select {
	case msg := <-received:
		if string(msg) != `{"e":"kline"}` {
			t.Fatalf("unexpected message: %s", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no message delivered to handler")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}
