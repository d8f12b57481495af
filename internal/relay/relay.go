// Package relay owns the websocket-facing nodes: each relay keeps a table of
// attached connections, feeds inbound envelopes to its controller, and fans
// the outcome back out.
package relay

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"cardhub/internal/poker"
	"cardhub/internal/protocol"
)

// MessageHandler turns one routed envelope into an explicit outcome. Both
// controllers satisfy this.
type MessageHandler interface {
	HandleMessage(ctx context.Context, senderID string, env protocol.Envelope) (*protocol.Response, error)
}

// Relay is one addressable node. Connections start under a provisional key
// and are rebound to the player id they speak for.
type Relay struct {
	ID   string
	Kind protocol.MessageType

	mu      sync.Mutex
	conns   map[string]Conn
	handler MessageHandler
	log     zerolog.Logger
}

func NewRelay(id string, kind protocol.MessageType, handler MessageHandler, log zerolog.Logger) *Relay {
	return &Relay{
		ID:      id,
		Kind:    kind,
		conns:   map[string]Conn{},
		handler: handler,
		log:     log.With().Str("relay_id", id).Str("kind", string(kind)).Logger(),
	}
}

// AddSocket attaches a connection under the given key.
func (r *Relay) AddSocket(key string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.conns[key]; ok && old != c {
		_ = old.Close()
	}
	r.conns[key] = c
}

// Bind rekeys a connection to the identity it now speaks for and returns the
// new key. Unknown old keys are a no-op.
func (r *Relay) Bind(oldKey, newKey string) string {
	if oldKey == newKey || newKey == "" {
		return oldKey
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[oldKey]
	if !ok {
		return oldKey
	}
	delete(r.conns, oldKey)
	if prev, ok := r.conns[newKey]; ok && prev != c {
		_ = prev.Close()
	}
	r.conns[newKey] = c
	return newKey
}

// RemoveSocket detaches and closes a connection. Idempotent.
func (r *Relay) RemoveSocket(key string) {
	r.mu.Lock()
	c, ok := r.conns[key]
	delete(r.conns, key)
	r.mu.Unlock()
	if ok {
		_ = c.Close()
	}
}

// CloseAll tears down every attached connection, used when the relay itself
// goes away.
func (r *Relay) CloseAll() {
	r.mu.Lock()
	conns := r.conns
	r.conns = map[string]Conn{}
	r.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
}

func (r *Relay) snapshot() map[string]Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Conn, len(r.conns))
	for k, c := range r.conns {
		out[k] = c
	}
	return out
}

// Dispatch runs one inbound envelope through the handler and delivers the
// outcome. Handler errors go back to the sender only; the connection stays
// open.
func (r *Relay) Dispatch(ctx context.Context, senderKey string, env protocol.Envelope) {
	resp, err := r.handler.HandleMessage(ctx, senderKey, env)
	if err != nil {
		r.sendError(senderKey, err)
		return
	}
	if resp == nil {
		return
	}
	r.Deliver(senderKey, resp)
}

// Deliver fans a controller response out: a broadcast reaches every attached
// connection, with private payloads replacing the public copy for the
// matching recipient; a direct response reaches its private recipients, or
// the sender when there are none.
func (r *Relay) Deliver(senderKey string, resp *protocol.Response) {
	stamp := uuid.NewString()
	if resp.Broadcast {
		for key, c := range r.snapshot() {
			payload := resp.Payload
			if pp, ok := resp.Private[key]; ok {
				payload = pp
			}
			r.write(key, c, protocol.Envelope{RelayID: r.ID, UUID: stamp, Payload: payload})
		}
		return
	}
	delivered := false
	for key, payload := range resp.Private {
		if c, ok := r.conn(key); ok {
			r.write(key, c, protocol.Envelope{RelayID: r.ID, UUID: stamp, Payload: payload})
		}
		if key == senderKey {
			delivered = true
		}
	}
	if !delivered {
		if c, ok := r.conn(senderKey); ok {
			r.write(senderKey, c, protocol.Envelope{RelayID: r.ID, UUID: stamp, Payload: resp.Payload})
		}
	}
}

func (r *Relay) conn(key string) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[key]
	return c, ok
}

// write is fire-and-forget: a failed or closed connection is pruned, never
// retried.
func (r *Relay) write(key string, c Conn, env protocol.Envelope) {
	if !c.IsOpen() {
		r.RemoveSocket(key)
		return
	}
	if err := c.WriteJSON(env); err != nil {
		r.log.Debug().Err(err).Str("conn", key).Msg("dropping dead connection")
		r.RemoveSocket(key)
	}
}

func (r *Relay) sendError(senderKey string, err error) {
	payload := protocol.ErrorPayload(err.Error())
	if poker.IsReject(err) {
		payload.Error = "rejected"
		payload.Reason = err.Error()
	}
	if c, ok := r.conn(senderKey); ok {
		r.write(senderKey, c, protocol.Envelope{RelayID: r.ID, UUID: uuid.NewString(), Payload: payload})
	}
}

// HandleWS upgrades one client and runs its read loop. One goroutine reads
// per connection, so messages from a single client apply in order.
func (r *Relay) HandleWS(upgrader *websocket.Upgrader, w http.ResponseWriter, req *http.Request) {
	ws, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}
	c := newWSConn(ws)
	key := uuid.NewString()
	r.AddSocket(key, c)
	r.readLoop(req.Context(), key, c)
}

func (r *Relay) readLoop(ctx context.Context, key string, c *wsConn) {
	defer r.RemoveSocket(key)
	for {
		var env protocol.Envelope
		if err := c.ReadJSON(&env); err != nil {
			return
		}
		key = r.route(ctx, key, env)
	}
}

// route rebinds the connection when the envelope names an identity and hands
// the message to the handler. Connector registration is a transport-level
// handshake and never reaches the controller.
func (r *Relay) route(ctx context.Context, key string, env protocol.Envelope) string {
	if env.Payload.Type == protocol.TypeRelayConnector {
		if env.Payload.Action == protocol.RegisterAction {
			key = r.Bind(key, connectorKey(env.Payload.GameID))
			if c, ok := r.conn(key); ok {
				ack := protocol.Payload{Type: protocol.TypeRelayConnector, Action: protocol.RegisterAction, GameID: env.Payload.GameID}
				r.write(key, c, protocol.Envelope{RelayID: r.ID, UUID: uuid.NewString(), Payload: ack})
			}
		}
		return key
	}
	if env.Payload.PlayerID != "" {
		key = r.Bind(key, env.Payload.PlayerID)
	}
	r.Dispatch(ctx, key, env)
	return key
}

func connectorKey(gameID string) string { return "relay:" + gameID }
