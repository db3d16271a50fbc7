package progress

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Heartbeat intervals in seconds.
const (
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains bundle_id -> set of connections watching a generation run.
// Uses Redis pub/sub for horizontal scaling: the worker publishes, each API
// instance's hub subscribes per bundle and fans out to local clients.
type Hub struct {
	// bundleID -> map[clientID]*Client
	bundles map[uuid.UUID]map[string]*Client
	subs    map[uuid.UUID]func() // cancel Redis subscription per bundle
	mu      sync.RWMutex
	logger  *zap.Logger
	sub     *RedisPubSub
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, sub *RedisPubSub) *Hub {
	return &Hub{
		bundles: make(map[uuid.UUID]map[string]*Client),
		subs:    make(map[uuid.UUID]func()),
		logger:  logger,
		sub:     sub,
	}
}

// Register adds a client to a bundle room. Starts the Redis subscription for
// this bundle when the first client joins.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.bundles[c.BundleID] == nil {
		h.bundles[c.BundleID] = make(map[string]*Client)
		if h.sub != nil {
			cancel, err := h.sub.SubscribeBundle(c.BundleID, func(event string, payload []byte) {
				h.BroadcastToBundle(c.BundleID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.BundleID] = cancel
			}
		}
	}
	h.bundles[c.BundleID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client watching bundle", zap.String("client_id", c.ID), zap.String("bundle_id", c.BundleID.String()))
}

// Unregister removes a client from a bundle room. Cancels the Redis
// subscription when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.bundles[c.BundleID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.bundles, c.BundleID)
			if cancel, ok := h.subs[c.BundleID]; ok {
				cancel()
				delete(h.subs, c.BundleID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client stopped watching bundle", zap.String("client_id", c.ID), zap.String("bundle_id", c.BundleID.String()))
}

// BroadcastToBundle sends a message to all local clients watching a bundle.
func (h *Hub) BroadcastToBundle(bundleID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := h.bundles[bundleID]
	h.mu.RUnlock()

	if clients == nil {
		return
	}
	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// WatcherCount returns the number of connected clients for a bundle.
func (h *Hub) WatcherCount(bundleID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.bundles[bundleID])
}
