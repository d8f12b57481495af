package relay

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Conn is the relay's view of one attached client. Implemented by websocket
// connections and by in-process loopback clients such as the table bot.
type Conn interface {
	WriteJSON(v any) error
	Close() error
	IsOpen() bool
}

// wsConn wraps a websocket connection with a write lock and a closed flag.
// Gorilla allows one concurrent writer; broadcasts from different handler
// goroutines share this lock.
type wsConn struct {
	mu     sync.Mutex
	ws     *websocket.Conn
	closed bool
}

func newWSConn(ws *websocket.Conn) *wsConn {
	return &wsConn{ws: ws}
}

func (c *wsConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	return c.ws.WriteJSON(v)
}

func (c *wsConn) ReadJSON(v any) error {
	return c.ws.ReadJSON(v)
}

func (c *wsConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.ws.Close()
}

func (c *wsConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}
