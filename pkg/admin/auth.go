package admin

import (
	"net/http"

	"github.com/getmockd/mockd/pkg/httputil"
	"github.com/getmockd/mockd/pkg/mockendpoint"
)

// handleGetAuthSettings handles GET /auth/settings.
func (a *API) handleGetAuthSettings(w http.ResponseWriter, r *http.Request) {
	writeOK(w, r, http.StatusOK, a.store.GetGlobalAuthSettings())
}

// handleUpdateAuthSettings handles PUT /auth/settings.
func (a *API) handleUpdateAuthSettings(w http.ResponseWriter, r *http.Request) {
	var settings mockendpoint.GlobalAuthSettings
	if err := decodeBody(r, &settings); err != nil {
		writeErr(w, r, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	a.store.UpdateGlobalAuthSettings(settings)
	writeOK(w, r, http.StatusOK, settings)
}

// handleClearAuthSettings handles DELETE /auth/settings.
func (a *API) handleClearAuthSettings(w http.ResponseWriter, r *http.Request) {
	a.store.ClearGlobalAuthSettings()
	httputil.WriteNoContent(w)
}
