// Package websocket implements the WebSocket mock engine: endpoint
// registration, connection lifecycle, message-pattern matching, scheduled
// broadcasts, and keepalive. See spec.md §4.9.
package websocket

import "time"

// PatternKind names how a MessagePattern's Pattern field is interpreted.
type PatternKind string

const (
	PatternExact    PatternKind = "exact"
	PatternContains PatternKind = "contains"
	PatternRegex    PatternKind = "regex"
	PatternJSONPath PatternKind = "json-path"
)

// MessageResponse is what gets sent when a pattern matches, or as the
// on-connect greeting.
type MessageResponse struct {
	Type string      `json:"type"` // "text" or "json"
	Body interface{} `json:"body"`
}

// MessagePattern is one rule in an endpoint's ordered pattern list.
type MessagePattern struct {
	Kind      PatternKind     `json:"kind"`
	Pattern   string          `json:"pattern"`
	Response  MessageResponse `json:"response"`
	Broadcast bool            `json:"broadcast"`
	DelayMs   int             `json:"delayMs,omitempty"`
}

// ScheduledMessage fires every IntervalMs, broadcasting Response to every
// open connection on its endpoint.
type ScheduledMessage struct {
	ID         string          `json:"id"`
	Enabled    bool            `json:"enabled"`
	IntervalMs int             `json:"intervalMs"`
	Response   MessageResponse `json:"response"`
}

// Endpoint is a registered WebSocket mock: path, greeting, pattern list,
// and scheduled broadcasts.
type Endpoint struct {
	ID                string             `json:"id"`
	Path              string             `json:"path"`
	Status            string             `json:"status"` // "active" | "inactive"
	OnConnectMessage  *MessageResponse   `json:"onConnectMessage,omitempty"`
	MessagePatterns   []MessagePattern   `json:"messagePatterns,omitempty"`
	ScheduledMessages []ScheduledMessage `json:"scheduledMessages,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// Active reports whether the endpoint accepts new connections.
func (e *Endpoint) Active() bool { return e.Status != "inactive" }

// ConnectionInfo is the per-connection state spec.md §4.9 names:
// {connectionId, endpointId, isAlive, clientIp, userAgent, connectedAt}.
type ConnectionInfo struct {
	ID          string    `json:"connectionId"`
	EndpointID  string    `json:"endpointId"`
	IsAlive     bool      `json:"isAlive"`
	ClientIP    string    `json:"clientIp"`
	UserAgent   string    `json:"userAgent,omitempty"`
	ConnectedAt time.Time `json:"connectedAt"`
}
