package http

import (
	stdhttp "net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"slidecast/app/internal/deck"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsReadLimit    = 512
)

type slideEvent struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
	Total int    `json:"total"`
}

type wsCommand struct {
	Cmd  string `json:"cmd"`
	Jump *int   `json:"jump"`
}

// wsClient serialises writes to a single connection. gorilla/websocket
// supports at most one concurrent writer per connection, and the greeting
// from ServeHTTP can race a broadcast from the Run goroutine.
type wsClient struct {
	conn *websocket.Conn

	writeMu sync.Mutex
}

func (c *wsClient) write(event slideEvent) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteJSON(event)
}

// Hub fans navigator position changes out to connected websocket viewers
// and applies navigation commands sent by presenter clients.
type Hub struct {
	service  deck.Service
	logger   *logrus.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]bool

	done      chan struct{}
	closeOnce sync.Once
}

// NewHub constructs the hub around the deck service.
func NewHub(service deck.Service, logger *logrus.Logger) *Hub {
	return &Hub{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The presenter and its viewers are served from this host.
			CheckOrigin: func(r *stdhttp.Request) bool { return true },
		},
		clients: make(map[*wsClient]bool),
		done:    make(chan struct{}),
	}
}

// Run subscribes to position changes and broadcasts them until Close is
// called. It blocks and is meant for a dedicated goroutine.
func (h *Hub) Run() {
	positions, cancel := h.service.Watch()
	defer cancel()

	for {
		select {
		case <-h.done:
			return
		case pos, ok := <-positions:
			if !ok {
				return
			}
			h.broadcast(slideEvent{Type: "slide", Index: pos.Index, Total: pos.Total})
		}
	}
}

// Close stops the broadcast loop and disconnects every client.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		defer h.mu.Unlock()
		for client := range h.clients {
			_ = client.conn.Close()
		}
		h.clients = make(map[*wsClient]bool)
	})
}

// ServeHTTP upgrades the connection and pumps commands until the client
// disconnects.
func (h *Hub) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.WithError(err).Warn("websocket upgrade failed")
		}
		return
	}

	client := &wsClient{conn: conn}
	conn.SetReadLimit(wsReadLimit)

	// Greet the new viewer with the current position before it becomes
	// visible to broadcasts, so it syncs immediately instead of waiting
	// for the next navigation event.
	_, pos := h.service.Current()
	if pos.Total > 0 {
		h.send(client, slideEvent{Type: "slide", Index: pos.Index, Total: pos.Total})
	}

	h.register(client)
	defer h.unregister(client)

	for {
		var cmd wsCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && h.logger != nil {
				h.logger.WithError(err).Debug("websocket client read failed")
			}
			return
		}
		h.apply(r, cmd)
	}
}

func (h *Hub) apply(r *stdhttp.Request, cmd wsCommand) {
	ctx := r.Context()

	switch {
	case cmd.Cmd == "next":
		h.service.Advance(ctx)
	case cmd.Cmd == "prev":
		h.service.Retreat(ctx)
	case cmd.Jump != nil:
		if _, _, err := h.service.JumpTo(ctx, *cmd.Jump); err != nil && h.logger != nil {
			h.logger.WithFields(logrus.Fields{"index": *cmd.Jump, "error": err.Error()}).Warn("websocket jump rejected")
		}
	}
}

func (h *Hub) register(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
}

func (h *Hub) unregister(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client] {
		delete(h.clients, client)
		_ = client.conn.Close()
	}
}

func (h *Hub) broadcast(event slideEvent) {
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		h.send(client, event)
	}
}

// send drops the client on write failure; a stuck viewer must not stall
// the presenter.
func (h *Hub) send(client *wsClient, event slideEvent) {
	if err := client.write(event); err != nil {
		if h.logger != nil {
			h.logger.WithError(err).Debug("dropping slow websocket client")
		}
		h.unregister(client)
	}
}
