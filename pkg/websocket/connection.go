package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/getmockd/mockd/internal/id"
)

// Connection wraps one upgraded socket. Gorilla requires a single writer
// at a time, so every outbound write takes writeMu.
type Connection struct {
	ConnectionInfo

	conn    *websocket.Conn
	writeMu sync.Mutex
	alive   atomic.Bool
}

func newConnection(conn *websocket.Conn, endpointID, clientIP, userAgent string) *Connection {
	c := &Connection{
		ConnectionInfo: ConnectionInfo{
			ID:          id.UUID(),
			EndpointID:  endpointID,
			ClientIP:    clientIP,
			UserAgent:   userAgent,
			ConnectedAt: time.Now().UTC(),
		},
		conn: conn,
	}
	c.alive.Store(true)
	return c
}

func (c *Connection) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *Connection) writeText(s string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(s))
}

func (c *Connection) writeResponse(resp MessageResponse) error {
	if resp.Type == "text" {
		if s, ok := resp.Body.(string); ok {
			return c.writeText(s)
		}
	}
	return c.writeJSON(resp.Body)
}

func (c *Connection) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (c *Connection) close(code int) {
	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(code, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.writeMu.Unlock()
	_ = c.conn.Close()
}

func (c *Connection) info() ConnectionInfo {
	info := c.ConnectionInfo
	info.IsAlive = c.alive.Load()
	return info
}
