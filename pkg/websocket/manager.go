package websocket

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/getmockd/mockd/internal/id"
	"github.com/getmockd/mockd/pkg/logging"
	"github.com/getmockd/mockd/pkg/mockerr"
	"github.com/getmockd/mockd/pkg/requestlog"
)

// keepaliveInterval matches spec.md §4.9: ping every 30s, drop
// connections that never ponged the previous one.
const keepaliveInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Manager owns every open connection and scheduled-broadcast timer, and
// is the single place mutating either. See spec.md §4.9.
type Manager struct {
	store    *Store
	log      *slog.Logger
	requests requestlog.Logger

	mu          sync.RWMutex
	conns       map[string]*Connection
	byEndpoint  map[string]map[string]*Connection
	pendingPong map[string]bool

	schedulers map[string][]chan struct{} // endpointID -> stop channels

	stop chan struct{}
}

// NewManager creates a Manager over store, and starts its keepalive
// loop. Call Close to stop it.
func NewManager(store *Store, requests requestlog.Logger, log *slog.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	m := &Manager{
		store:       store,
		log:         log,
		requests:    requests,
		conns:       make(map[string]*Connection),
		byEndpoint:  make(map[string]map[string]*Connection),
		pendingPong: make(map[string]bool),
		schedulers:  make(map[string][]chan struct{}),
		stop:        make(chan struct{}),
	}
	go m.keepaliveLoop()
	return m
}

// Close stops the keepalive loop and every scheduled broadcast timer.
func (m *Manager) Close() {
	close(m.stop)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, stops := range m.schedulers {
		for _, ch := range stops {
			close(ch)
		}
	}
}

// HandleUpgrade accepts paths under /ws/, rejecting with 404 before
// upgrading if no active endpoint matches.
func (m *Manager) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	const prefix = "/ws/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, prefix)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	ep, ok := m.store.FindByPath(path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Warn("websocket: upgrade failed", "error", err, "path", path)
		return
	}

	c := newConnection(conn, ep.ID, clientIP(r), r.UserAgent())
	m.register(c)
	defer m.unregister(c)

	conn.SetPongHandler(func(string) error {
		m.mu.Lock()
		m.pendingPong[c.ID] = false
		m.mu.Unlock()
		return nil
	})

	if ep.OnConnectMessage != nil {
		if err := c.writeResponse(*ep.OnConnectMessage); err != nil {
			m.log.Warn("websocket: failed to deliver onConnectMessage", "error", err)
		}
	}

	m.readLoop(c)
}

func clientIP(r *http.Request) string {
	if i := strings.LastIndex(r.RemoteAddr, ":"); i >= 0 {
		return r.RemoteAddr[:i]
	}
	return r.RemoteAddr
}

func (m *Manager) register(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[c.ID] = c
	if m.byEndpoint[c.EndpointID] == nil {
		m.byEndpoint[c.EndpointID] = make(map[string]*Connection)
	}
	m.byEndpoint[c.EndpointID][c.ID] = c
}

func (m *Manager) unregister(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, c.ID)
	delete(m.pendingPong, c.ID)
	if group := m.byEndpoint[c.EndpointID]; group != nil {
		delete(group, c.ID)
		if len(group) == 0 {
			delete(m.byEndpoint, c.EndpointID)
		}
	}
}

func (m *Manager) readLoop(c *Connection) {
	for {
		msgType, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}
		m.handleFrame(c, payload)
	}
}

func (m *Manager) handleFrame(c *Connection, payload []byte) {
	start := time.Now()
	kind := "text"
	if isJSON(payload) {
		kind = "json"
	}
	m.logFrame(c, "incoming", kind, string(payload), time.Since(start))

	ep, err := m.store.Get(c.EndpointID)
	if err != nil {
		return
	}

	idx := Match(ep.MessagePatterns, string(payload))
	if idx < 0 {
		return
	}
	pattern := ep.MessagePatterns[idx]

	deliver := func() {
		if pattern.DelayMs > 0 {
			time.Sleep(time.Duration(pattern.DelayMs) * time.Millisecond)
		}
		if pattern.Broadcast {
			m.Broadcast(ep.ID, pattern.Response)
			return
		}
		if err := c.writeResponse(pattern.Response); err != nil {
			m.log.Warn("websocket: failed to send matched response", "error", err)
			return
		}
		m.logFrame(c, "outgoing", pattern.Response.Type, "", 0)
	}
	deliver()
}

func (m *Manager) logFrame(c *Connection, direction, messageType, payload string, elapsed time.Duration) {
	if m.requests == nil {
		return
	}
	m.requests.Log(&requestlog.Entry{
		ID:             id.UUID(),
		EndpointID:     c.EndpointID,
		Method:         "WS",
		Path:           direction,
		RequestBody:    payload,
		ResponseStatus: 0,
		ResponseTimeMs: elapsed.Milliseconds(),
		Timestamp:      time.Now().UTC(),
		ClientIP:       c.ClientIP,
		UserAgent:      messageType,
	})
}

// Broadcast sends resp to every open connection on endpointID.
func (m *Manager) Broadcast(endpointID string, resp MessageResponse) {
	m.mu.RLock()
	group := m.byEndpoint[endpointID]
	targets := make([]*Connection, 0, len(group))
	for _, c := range group {
		targets = append(targets, c)
	}
	m.mu.RUnlock()

	for _, c := range targets {
		if err := c.writeResponse(resp); err != nil {
			m.log.Warn("websocket: broadcast send failed", "connectionId", c.ID, "error", err)
		}
	}
}

// SendTo sends resp to one connection.
func (m *Manager) SendTo(connectionID string, resp MessageResponse) error {
	m.mu.RLock()
	c, ok := m.conns[connectionID]
	m.mu.RUnlock()
	if !ok {
		return mockerr.ErrNotFound
	}
	return c.writeResponse(resp)
}

// CloseConnection closes one connection with the given close code.
func (m *Manager) CloseConnection(connectionID string, code int) error {
	m.mu.RLock()
	c, ok := m.conns[connectionID]
	m.mu.RUnlock()
	if !ok {
		return mockerr.ErrNotFound
	}
	c.close(code)
	return nil
}

// CloseEndpointConnections closes every connection on endpointID with
// code 1000, per spec.md §4.9's delete-endpoint behaviour.
func (m *Manager) CloseEndpointConnections(endpointID string) {
	m.mu.RLock()
	group := m.byEndpoint[endpointID]
	targets := make([]*Connection, 0, len(group))
	for _, c := range group {
		targets = append(targets, c)
	}
	m.mu.RUnlock()
	for _, c := range targets {
		c.close(websocket.CloseNormalClosure)
	}
}

// Connections lists current connections, optionally filtered by
// endpointID.
func (m *Manager) Connections(endpointID string) []ConnectionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ConnectionInfo, 0, len(m.conns))
	for _, c := range m.conns {
		if endpointID != "" && c.EndpointID != endpointID {
			continue
		}
		out = append(out, c.info())
	}
	return out
}

func (m *Manager) keepaliveLoop() {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sendKeepalive()
		}
	}
}

func (m *Manager) sendKeepalive() {
	m.mu.Lock()
	targets := make([]*Connection, 0, len(m.conns))
	var toDrop []*Connection
	for cid, c := range m.conns {
		if m.pendingPong[cid] {
			toDrop = append(toDrop, c)
			continue
		}
		m.pendingPong[cid] = true
		targets = append(targets, c)
	}
	m.mu.Unlock()

	for _, c := range toDrop {
		c.alive.Store(false)
		c.close(websocket.CloseGoingAway)
	}
	for _, c := range targets {
		if err := c.ping(); err != nil {
			m.log.Debug("websocket: ping failed", "connectionId", c.ID, "error", err)
		}
	}
}

// ScheduleEndpoint (re)starts endpoint's scheduled-message timers,
// stopping any previously running ones first. Call on create/update.
func (m *Manager) ScheduleEndpoint(ep *Endpoint) {
	m.StopSchedules(ep.ID)

	m.mu.Lock()
	defer m.mu.Unlock()
	var stops []chan struct{}
	for _, sched := range ep.ScheduledMessages {
		if !sched.Enabled || sched.IntervalMs <= 0 {
			continue
		}
		stopCh := make(chan struct{})
		stops = append(stops, stopCh)
		go m.runSchedule(ep.ID, sched, stopCh)
	}
	m.schedulers[ep.ID] = stops
}

// StopSchedules stops all scheduled timers for endpointID. Call on
// delete.
func (m *Manager) StopSchedules(endpointID string) {
	m.mu.Lock()
	stops := m.schedulers[endpointID]
	delete(m.schedulers, endpointID)
	m.mu.Unlock()
	for _, ch := range stops {
		close(ch)
	}
}

func (m *Manager) runSchedule(endpointID string, sched ScheduledMessage, stop chan struct{}) {
	ticker := time.NewTicker(time.Duration(sched.IntervalMs) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-m.stop:
			return
		case <-ticker.C:
			m.Broadcast(endpointID, sched.Response)
		}
	}
}
