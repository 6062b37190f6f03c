// Package admin implements the administrative REST API: endpoint CRUD,
// request logs, scenario/rate-limit/environment controls, WebSocket and
// GraphQL sub-surfaces, and health. See spec.md §6.
package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/getmockd/mockd/pkg/graphqlmock"
	"github.com/getmockd/mockd/pkg/httputil"
	"github.com/getmockd/mockd/pkg/logging"
	"github.com/getmockd/mockd/pkg/mockerr"
	"github.com/getmockd/mockd/pkg/ratelimit"
	"github.com/getmockd/mockd/pkg/requestlog"
	"github.com/getmockd/mockd/pkg/store"
	"github.com/getmockd/mockd/pkg/websocket"
)

// Envelope is the response shape every admin endpoint writes. Error and
// Message are set on failure; Data carries a successful handler's payload
// and is omitted when the handler has none.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// API wires the endpoint store, request log, rate limiter, WebSocket
// manager, and GraphQL engine into the admin HTTP surface.
type API struct {
	store     *store.Store
	requests  *requestlog.Store
	limiter   *ratelimit.Limiter
	ws        *websocket.Manager
	wsStore   *websocket.Store
	graphql   *graphqlmock.Store
	log       *slog.Logger
	version   string
	startedAt time.Time
}

// New creates an API over the given components. Any of ws/wsStore/
// graphql may be nil if that protocol surface is disabled.
func New(s *store.Store, requests *requestlog.Store, limiter *ratelimit.Limiter, ws *websocket.Manager, wsStore *websocket.Store, gql *graphqlmock.Store, version string, log *slog.Logger) *API {
	if log == nil {
		log = logging.Nop()
	}
	return &API{
		store:     s,
		requests:  requests,
		limiter:   limiter,
		ws:        ws,
		wsStore:   wsStore,
		graphql:   gql,
		log:       log,
		version:   version,
		startedAt: time.Now(),
	}
}

const yamlContentType = "application/yaml"

// wantsYAML reports whether r's Accept header names a YAML media type.
func wantsYAML(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Accept")), "yaml")
}

// isYAMLBody reports whether r's Content-Type names a YAML media type.
func isYAMLBody(r *http.Request) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	return strings.Contains(ct, "yaml")
}

// writeOK writes data as the envelope's Data field, encoded as YAML
// when r's Accept header asks for it and JSON otherwise.
func writeOK(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeEnvelope(w, r, status, Envelope{Success: true, Data: data})
}

func writeErr(w http.ResponseWriter, r *http.Request, status int, errCode, message string) {
	writeEnvelope(w, r, status, Envelope{Success: false, Error: errCode, Message: message})
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, env Envelope) {
	if r != nil && wantsYAML(r) {
		w.Header().Set("Content-Type", yamlContentType)
		w.WriteHeader(status)
		_ = yaml.NewEncoder(w).Encode(env)
		return
	}
	httputil.WriteJSON(w, status, env)
}

// writeStoreErr maps a pkg/mockerr sentinel to its HTTP status and a
// generic client-safe message, logging the real error server-side under
// op.
func (a *API) writeStoreErr(w http.ResponseWriter, r *http.Request, op string, err error) {
	a.log.Debug("admin: operation failed", "op", op, "error", err)
	switch {
	case errors.Is(err, mockerr.ErrNotFound):
		writeErr(w, r, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, mockerr.ErrValidation):
		writeErr(w, r, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, mockerr.ErrConflict):
		writeErr(w, r, http.StatusConflict, "conflict", err.Error())
	default:
		writeErr(w, r, http.StatusInternalServerError, "internal_error", "an internal error occurred")
	}
}

// decodeBody decodes r's body into v, accepting either JSON or YAML
// depending on Content-Type. mockendpoint.Endpoint carries yaml struct
// tags alongside its json ones; other payload types fall back to
// yaml.v3's default lowercased field names.
func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if isYAMLBody(r) {
		return yaml.NewDecoder(r.Body).Decode(v)
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// HealthResponse is GET /health's payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
	Version   string    `json:"version"`
	Counts    Counts    `json:"counts"`
}

// Counts summarises how much state the process is currently holding.
type Counts struct {
	Endpoints     int `json:"endpoints"`
	Logs          int `json:"logs"`
	WSEndpoints   int `json:"wsEndpoints,omitempty"`
	WSConnections int `json:"wsConnections,omitempty"`
	GraphQLLogs   int `json:"graphqlLogs,omitempty"`
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	counts := Counts{
		Endpoints: len(a.store.GetAllEndpoints()),
		Logs:      a.requests.Count(),
	}
	if a.wsStore != nil {
		counts.WSEndpoints = len(a.wsStore.List())
	}
	if a.ws != nil {
		counts.WSConnections = len(a.ws.Connections(""))
	}
	if a.graphql != nil {
		counts.GraphQLLogs = len(a.graphql.Logs(0))
	}

	version := a.version
	if version == "" {
		version = "dev"
	}

	writeOK(w, r, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(a.startedAt).String(),
		Version:   version,
		Counts:    counts,
	})
}
