package admin

import (
	"net/http"

	"github.com/getmockd/mockd/pkg/httputil"
	"github.com/getmockd/mockd/pkg/mockendpoint"
)

// handleListEndpoints handles GET /endpoints.
func (a *API) handleListEndpoints(w http.ResponseWriter, r *http.Request) {
	writeOK(w, r, http.StatusOK, a.store.GetAllEndpoints())
}

// handleCreateEndpoint handles POST /endpoints.
func (a *API) handleCreateEndpoint(w http.ResponseWriter, r *http.Request) {
	var ep mockendpoint.Endpoint
	if err := decodeBody(r, &ep); err != nil {
		writeErr(w, r, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	created, err := a.store.CreateEndpoint(&ep)
	if err != nil {
		a.writeStoreErr(w, r, "create endpoint", err)
		return
	}
	writeOK(w, r, http.StatusCreated, created)
}

// handleGetEndpoint handles GET /endpoints/{id}.
func (a *API) handleGetEndpoint(w http.ResponseWriter, r *http.Request, id string) {
	ep, err := a.store.GetEndpoint(id)
	if err != nil {
		a.writeStoreErr(w, r, "get endpoint", err)
		return
	}
	writeOK(w, r, http.StatusOK, ep)
}

// handleUpdateEndpoint handles PUT /endpoints/{id}.
func (a *API) handleUpdateEndpoint(w http.ResponseWriter, r *http.Request, id string) {
	var ep mockendpoint.Endpoint
	if err := decodeBody(r, &ep); err != nil {
		writeErr(w, r, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	updated, err := a.store.UpdateEndpoint(id, &ep)
	if err != nil {
		a.writeStoreErr(w, r, "update endpoint", err)
		return
	}
	writeOK(w, r, http.StatusOK, updated)
}

// handleDeleteEndpoint handles DELETE /endpoints/{id}.
func (a *API) handleDeleteEndpoint(w http.ResponseWriter, r *http.Request, id string) {
	if err := a.store.DeleteEndpoint(id); err != nil {
		a.writeStoreErr(w, r, "delete endpoint", err)
		return
	}
	httputil.WriteNoContent(w)
}
