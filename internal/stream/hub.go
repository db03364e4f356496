// Package stream pushes market snapshots to websocket clients.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cryptoconvert/internal/market"
)

const (
	DefaultInterval = 30 * time.Second
	DefaultLimit    = 100

	writeWait      = 10 * time.Second
	maxMessageSize = 512
)

// Source provides the data pushed to clients. It must not fail; the degrading
// market calls fit.
type Source interface {
	Quotes(ctx context.Context, p market.ListParams) []market.Quote
	Rates(ctx context.Context) market.ExchangeRateTable
}

type Snapshot struct {
	Quotes    []market.Quote           `json:"quotes"`
	Rates     market.ExchangeRateTable `json:"rates"`
	Timestamp time.Time                `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub owns the websocket clients and refreshes them on a fixed interval.
type Hub struct {
	source   Source
	interval time.Duration
	limit    int
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type Option func(*Hub)

func WithInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.interval = d
		}
	}
}

// WithLimit sets how many top quotes each snapshot carries.
func WithLimit(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.limit = n
		}
	}
}

func NewHub(source Source, logger *zap.Logger, opts ...Option) *Hub {
	h := &Hub{
		source:   source,
		interval: DefaultInterval,
		limit:    DefaultLimit,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request, sends the current snapshot and keeps the
// connection registered until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn}

	data, err := h.encode(h.snapshot(r.Context()))
	if err == nil {
		err = c.write(data)
	}
	if err != nil {
		h.logger.Warn("initial snapshot not delivered", zap.Error(err))
		conn.Close()
		return
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", zap.String("remote", r.RemoteAddr), zap.Int("clients", h.Len()))

	h.readLoop(c)
}

// readLoop discards inbound messages; it only exists to notice disconnects.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)
	c.conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

func (h *Hub) snapshot(ctx context.Context) Snapshot {
	return Snapshot{
		Quotes:    h.source.Quotes(ctx, market.ListParams{Limit: h.limit}),
		Rates:     h.source.Rates(ctx),
		Timestamp: time.Now().UTC(),
	}
}

func (h *Hub) encode(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// Tick builds one snapshot and broadcasts it. Nothing is fetched while no
// client is connected.
func (h *Hub) Tick(ctx context.Context) {
	if h.Len() == 0 {
		return
	}
	data, err := h.encode(h.snapshot(ctx))
	if err != nil {
		h.logger.Error("snapshot encode failed", zap.Error(err))
		return
	}
	h.broadcast(data)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(data); err != nil {
			h.logger.Debug("dropping websocket client", zap.Error(err))
			h.remove(c)
		}
	}
}

// Run ticks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.Tick(ctx)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.mu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.mu.Unlock()
		c.conn.Close()
	}
}
