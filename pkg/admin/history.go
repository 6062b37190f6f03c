package admin

import (
	"net/http"
	"strconv"
)

// handleEndpointHistory handles GET /endpoints/{id}/history.
func (a *API) handleEndpointHistory(w http.ResponseWriter, r *http.Request, id string) {
	writeOK(w, r, http.StatusOK, a.store.EndpointHistory(id))
}

// handleAllHistory handles GET /history?limit.
func (a *API) handleAllHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			limit = v
		}
	}
	writeOK(w, r, http.StatusOK, a.store.AllHistory(limit))
}

// handleRestoreHistory handles POST /history/{id}/restore.
func (a *API) handleRestoreHistory(w http.ResponseWriter, r *http.Request, id string) {
	restored, err := a.store.RestoreHistory(id)
	if err != nil {
		a.writeStoreErr(w, r, "restore history", err)
		return
	}
	writeOK(w, r, http.StatusOK, restored)
}
