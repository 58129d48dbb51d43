// Package realtime pushes live platform events (session ingested, injury
// flagged, risk updated) to connected organization members over WebSocket,
// with Redis pub/sub bridging instances.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are the heartbeat timings in seconds.
	PingInterval = 30
	PongWait     = 60
)

// Event names pushed over the wire.
const (
	EventSessionIngested = "session.ingested"
	EventRiskUpdated     = "session.risk_updated"
	EventInjuryFlagged   = "injury.flagged"
)

// Hub maintains organization_id -> set of connections and broadcasts
// events. Local broadcast plus Redis publish for horizontal scaling.
type Hub struct {
	orgs   map[uuid.UUID]map[string]*Client
	subs   map[uuid.UUID]func() // cancel Redis subscription per org
	mu     sync.RWMutex
	logger *zap.Logger
	pub    Publisher
	sub    Subscriber
}

// Publisher publishes an event to an organization's channel for other
// instances.
type Publisher interface {
	PublishOrgEvent(orgID uuid.UUID, event string, payload []byte) error
}

// Subscriber subscribes to an organization's channel and invokes handler
// for incoming events.
type Subscriber interface {
	SubscribeOrg(orgID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a WebSocket hub.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	return &Hub{
		orgs:   make(map[uuid.UUID]map[string]*Client),
		subs:   make(map[uuid.UUID]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// Register adds a client to its organization's room, starting the Redis
// subscription on the first client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.orgs[c.OrgID] == nil {
		h.orgs[c.OrgID] = make(map[string]*Client)
		if h.sub != nil {
			cancel, err := h.sub.SubscribeOrg(c.OrgID, func(event string, payload []byte) {
				h.broadcastLocal(c.OrgID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.OrgID] = cancel
			}
		}
	}
	h.orgs[c.OrgID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client connected", zap.String("client_id", c.ID), zap.String("org_id", c.OrgID.String()))
}

// Unregister removes a client, cancelling the Redis subscription when the
// last client of the organization leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.orgs[c.OrgID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.orgs, c.OrgID)
			if cancel, ok := h.subs[c.OrgID]; ok {
				cancel()
				delete(h.subs, c.OrgID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client disconnected", zap.String("client_id", c.ID), zap.String("org_id", c.OrgID.String()))
}

// Publish fans an event out to the organization's members on every
// instance. With no Redis bridge configured it broadcasts locally.
func (h *Hub) Publish(orgID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.pub != nil {
		// The subscriber callback delivers to local clients too, so a
		// local broadcast here would double-deliver. On publish failure
		// nothing comes back through Redis; deliver locally so this
		// instance's clients still see the event.
		err := h.pub.PublishOrgEvent(orgID, event, data)
		if err == nil {
			return
		}
		h.logger.Warn("event publish failed, delivering locally",
			zap.String("event", event), zap.String("org_id", orgID.String()), zap.Error(err))
	}
	h.broadcastLocal(orgID, event, json.RawMessage(data))
}

func (h *Hub) broadcastLocal(orgID uuid.UUID, event string, data json.RawMessage) {
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.orgs[orgID]))
	for _, c := range h.orgs[orgID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// ConnectionCount returns the number of connected clients for an
// organization on this instance.
func (h *Hub) ConnectionCount(orgID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.orgs[orgID])
}
