package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"solwatch/logger"
)

func TestBroadcasterDeliversEvents(t *testing.T) {
	b := newBroadcaster(logger.Logger())

	srv := httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(time.Second)
	for b.clientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	b.broadcast("cycle", map[string]string{"id": "c1"})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var event wsEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		t.Fatalf("invalid event payload: %v", err)
	}
	if event.Kind != "cycle" {
		t.Fatalf("event kind = %q, want cycle", event.Kind)
	}
}

func TestBroadcasterDropsClosedClients(t *testing.T) {
	b := newBroadcaster(logger.Logger())

	srv := httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	conn.Close()

	// Writes to the dead peer eventually evict it.
	deadline := time.Now().Add(2 * time.Second)
	for b.clientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("closed client never evicted")
		}
		b.broadcast("cycle", nil)
		time.Sleep(10 * time.Millisecond)
	}
}
