// Package feed streams published telemetry to websocket clients.
package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/autopeer-io/vfleet/internal/pkg/metrics"
	"github.com/autopeer-io/vfleet/internal/simulator/telemetry"
	"github.com/autopeer-io/vfleet/pkg/log"
)

const (
	defaultBuffer = 64
	writeTimeout  = 5 * time.Second
	pingInterval  = 30 * time.Second
)

// Hub fans telemetry out to every connected client. A client that cannot keep
// up loses messages instead of slowing the vehicles down.
type Hub struct {
	logger log.Logger
	buffer int

	mu      sync.RWMutex
	clients map[*client]struct{}
	// last message per topic, replayed to new clients.
	last map[string][]byte
}

var (
	_ telemetry.Observer = (*Hub)(nil)
	_ http.Handler       = (*Hub)(nil)
)

// NewHub creates a Hub. buffer is the per-client queue length; 0 picks the default.
func NewHub(logger log.Logger, buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		logger:  logger,
		buffer:  buffer,
		clients: make(map[*client]struct{}),
		last:    make(map[string][]byte),
	}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Observe queues m for every client without blocking.
func (h *Hub) Observe(m telemetry.Message) {
	b, err := json.Marshal(m)
	if err != nil {
		h.logger.Error(err, "Failed to encode feed message", "topic", m.Topic)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last[m.Topic] = b
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			metrics.FeedDropped.Inc()
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, b := range h.last {
		select {
		case c.send <- b:
		default:
		}
	}
	h.clients[c] = struct{}{}
	metrics.FeedClients.Inc()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		metrics.FeedClients.Dec()
	}
}

// ServeHTTP upgrades the request and streams messages until the client goes
// away. Clients only listen; anything they send is discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.logger.Error(err, "Failed to accept feed client", "remote", r.RemoteAddr)
		return
	}
	defer conn.CloseNow()

	c := &client{conn: conn, send: make(chan []byte, h.buffer)}
	h.add(c)
	defer h.remove(c)
	h.logger.Debug("Feed client connected", "remote", r.RemoteAddr)

	ctx := conn.CloseRead(r.Context())
	if err := c.writeLoop(ctx); err != nil && ctx.Err() == nil {
		h.logger.Debug("Feed client dropped", "remote", r.RemoteAddr, "error", err.Error())
		return
	}
	conn.Close(websocket.StatusNormalClosure, "bye")
}

func (c *client) writeLoop(ctx context.Context) error {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case b := <-c.send:
			if err := c.write(ctx, b); err != nil {
				return err
			}
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

func (c *client) write(ctx context.Context, b []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, b)
}
