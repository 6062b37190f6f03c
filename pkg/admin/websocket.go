package admin

import (
	"net/http"

	"github.com/getmockd/mockd/pkg/httputil"
	"github.com/getmockd/mockd/pkg/requestlog"
	"github.com/getmockd/mockd/pkg/websocket"
)

// handleListWSEndpoints handles GET /websocket/endpoints.
func (a *API) handleListWSEndpoints(w http.ResponseWriter, r *http.Request) {
	writeOK(w, r, http.StatusOK, a.wsStore.List())
}

// handleCreateWSEndpoint handles POST /websocket/endpoints.
func (a *API) handleCreateWSEndpoint(w http.ResponseWriter, r *http.Request) {
	var ep websocket.Endpoint
	if err := decodeBody(r, &ep); err != nil {
		writeErr(w, r, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	created := a.wsStore.Create(&ep)
	if a.ws != nil {
		a.ws.ScheduleEndpoint(created)
	}
	writeOK(w, r, http.StatusCreated, created)
}

// handleGetWSEndpoint handles GET /websocket/endpoints/{id}.
func (a *API) handleGetWSEndpoint(w http.ResponseWriter, r *http.Request, id string) {
	ep, err := a.wsStore.Get(id)
	if err != nil {
		a.writeStoreErr(w, r, "get websocket endpoint", err)
		return
	}
	writeOK(w, r, http.StatusOK, ep)
}

// handleUpdateWSEndpoint handles PUT /websocket/endpoints/{id}.
func (a *API) handleUpdateWSEndpoint(w http.ResponseWriter, r *http.Request, id string) {
	var ep websocket.Endpoint
	if err := decodeBody(r, &ep); err != nil {
		writeErr(w, r, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	updated, err := a.wsStore.Update(id, &ep)
	if err != nil {
		a.writeStoreErr(w, r, "update websocket endpoint", err)
		return
	}
	if a.ws != nil {
		a.ws.ScheduleEndpoint(updated)
	}
	writeOK(w, r, http.StatusOK, updated)
}

// handleDeleteWSEndpoint handles DELETE /websocket/endpoints/{id}: closes every
// open connection on the endpoint with code 1000, per spec.md §4.9.
func (a *API) handleDeleteWSEndpoint(w http.ResponseWriter, r *http.Request, id string) {
	if err := a.wsStore.Delete(id); err != nil {
		a.writeStoreErr(w, r, "delete websocket endpoint", err)
		return
	}
	if a.ws != nil {
		a.ws.StopSchedules(id)
		a.ws.CloseEndpointConnections(id)
	}
	httputil.WriteNoContent(w)
}

// handleListConnections handles GET /websocket/connections[?endpointId].
func (a *API) handleListConnections(w http.ResponseWriter, r *http.Request) {
	writeOK(w, r, http.StatusOK, a.ws.Connections(r.URL.Query().Get("endpointId")))
}

// handleCloseConnection handles DELETE /websocket/connections/{id}.
func (a *API) handleCloseConnection(w http.ResponseWriter, r *http.Request, id string) {
	if err := a.ws.CloseConnection(id, 1000); err != nil {
		a.writeStoreErr(w, r, "close connection", err)
		return
	}
	httputil.WriteNoContent(w)
}

// handleSendToConnection handles POST /websocket/connections/{id}/send.
func (a *API) handleSendToConnection(w http.ResponseWriter, r *http.Request, id string) {
	var resp websocket.MessageResponse
	if err := decodeBody(r, &resp); err != nil {
		writeErr(w, r, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	if err := a.ws.SendTo(id, resp); err != nil {
		a.writeStoreErr(w, r, "send to connection", err)
		return
	}
	writeOK(w, r, http.StatusOK, nil)
}

// handleBroadcastEndpoint handles POST /websocket/endpoints/{id}/broadcast.
func (a *API) handleBroadcastEndpoint(w http.ResponseWriter, r *http.Request, id string) {
	var resp websocket.MessageResponse
	if err := decodeBody(r, &resp); err != nil {
		writeErr(w, r, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	a.ws.Broadcast(id, resp)
	writeOK(w, r, http.StatusOK, nil)
}

// handleWSLogs handles GET /websocket/logs: request-log entries logged by the
// WebSocket engine carry Method "WS".
func (a *API) handleWSLogs(w http.ResponseWriter, r *http.Request) {
	entries := a.requests.List(requestlog.Filter{Method: "WS", EndpointID: r.URL.Query().Get("endpointId")})
	writeOK(w, r, http.StatusOK, entries)
}

// handleClearWSLogs handles DELETE /websocket/logs.
func (a *API) handleClearWSLogs(w http.ResponseWriter, r *http.Request) {
	a.requests.ClearMethod("WS")
	httputil.WriteNoContent(w)
}

// WSStats is GET /websocket/stats's payload.
type WSStats struct {
	Endpoints   int `json:"endpoints"`
	Connections int `json:"connections"`
}

// handleWSStats handles GET /websocket/stats.
func (a *API) handleWSStats(w http.ResponseWriter, r *http.Request) {
	writeOK(w, r, http.StatusOK, WSStats{
		Endpoints:   len(a.wsStore.List()),
		Connections: len(a.ws.Connections("")),
	})
}
