package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/libertrade/deskd/internal/journal"
)

// writeWait bounds a single broadcast write; a client that cannot drain one
// small JSON payload in this window is gone.
const writeWait = 5 * time.Second

// activationNotice is the websocket payload pushed when an activation is
// logged, so a second screen (phone during the session) updates live.
type activationNotice struct {
	Date  string                  `json:"date"`
	Event journal.ActivationEvent `json:"event"`
}

// wsClient pairs a connection with its write lock. The websocket protocol
// allows one writer at a time; overlapping broadcasts serialize here.
type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsClient) write(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Hub fans activation notices out to connected websocket clients. A slow or
// dead client is dropped rather than blocking the append path.
type Hub struct {
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]*wsClient
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log: log.With().Str("component", "ws").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Single-user service on localhost; origin checks add nothing.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*wsClient),
	}
}

// Serve upgrades the connection and keeps it registered until the client
// goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = &wsClient{conn: conn}
	h.mu.Unlock()

	// Drain reads so close frames are processed; the feed is one-way.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends v to every connected client.
func (h *Hub) Broadcast(v interface{}) {
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.write(v); err != nil {
			h.log.Debug().Err(err).Msg("dropping websocket client")
			h.drop(c.conn)
		}
	}
}

// ClientCount reports connected clients. Test helper.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}
