package relay

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"cardhub/internal/protocol"
)

// Link is the one-way channel a game relay uses to reach its owning lobby
// relay.
type Link interface {
	SendMessage(env protocol.Envelope) error
}

var errNotConnected = errors.New("connector: not connected")

// Connector is an outbound websocket client from one relay to another. It
// dials with a bounded number of fixed-interval attempts, registers once,
// and after that only sends. A message sent while disconnected is dropped
// with a warning, never queued.
type Connector struct {
	url      string
	gameID   string
	attempts int
	interval time.Duration
	log      zerolog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewConnector(url, gameID string, attempts int, interval time.Duration, log zerolog.Logger) *Connector {
	return &Connector{
		url:      url,
		gameID:   gameID,
		attempts: attempts,
		interval: interval,
		log:      log.With().Str("component", "connector").Str("target", url).Logger(),
	}
}

// Connect dials the target relay and sends the register handshake. It gives
// up after the configured number of attempts.
func (c *Connector) Connect() error {
	var lastErr error
	for i := 0; i < c.attempts; i++ {
		if i > 0 {
			time.Sleep(c.interval)
		}
		conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
		if err != nil {
			lastErr = err
			c.log.Warn().Err(err).Int("attempt", i+1).Msg("dial failed")
			continue
		}
		register := protocol.Envelope{Payload: protocol.Payload{
			Type:   protocol.TypeRelayConnector,
			Action: protocol.RegisterAction,
			GameID: c.gameID,
		}}
		if err := conn.WriteJSON(register); err != nil {
			lastErr = err
			_ = conn.Close()
			continue
		}
		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		c.log.Info().Str("game_id", c.gameID).Msg("registered with lobby relay")
		return nil
	}
	return lastErr
}

func (c *Connector) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// SendMessage forwards one envelope over the link. Dropped with a warning
// when the link never came up.
func (c *Connector) SendMessage(env protocol.Envelope) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		c.log.Warn().Str("action", env.Payload.Action).Msg("link down, dropping message")
		return errNotConnected
	}
	return conn.WriteJSON(env)
}

func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
