package dashboard

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"solwatch/logger"
)

// broadcaster pushes refresh events to connected dashboard pages so they can
// reload without waiting for the next browser poll.
type broadcaster struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	log      *logger.Entry
}

// wsEvent is the envelope pushed over the socket. Kind is "cycle" or
// "rugcheck"; Payload carries the kind-specific body.
type wsEvent struct {
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload"`
}

func newBroadcaster(log *logger.Log) *broadcaster {
	return &broadcaster{
		clients:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		log:      log.WithComponent("dashboard_ws"),
	}
}

func (b *broadcaster) broadcast(kind string, payload interface{}) {
	msg, err := json.Marshal(wsEvent{Kind: kind, Payload: payload})
	if err != nil {
		b.log.WithError(err).Warn("failed to marshal websocket event")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			b.log.WithError(err).Debug("dropping websocket client")
			conn.Close()
			delete(b.clients, conn)
		}
	}
}

func (b *broadcaster) clientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.clients {
		conn.Close()
		delete(b.clients, conn)
	}
}

// handle upgrades the request and keeps the connection registered until the
// peer goes away. Inbound messages are discarded.
func (b *broadcaster) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	b.mu.Lock()
	b.clients[conn] = struct{}{}
	b.mu.Unlock()

	go func() {
		defer func() {
			b.mu.Lock()
			delete(b.clients, conn)
			b.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
