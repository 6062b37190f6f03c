package admin

import (
	"net/http"

	"github.com/getmockd/mockd/pkg/httputil"
	"github.com/getmockd/mockd/pkg/store"
)

// handleGetEnvironmentSettings handles GET /environment/settings.
func (a *API) handleGetEnvironmentSettings(w http.ResponseWriter, r *http.Request) {
	writeOK(w, r, http.StatusOK, a.store.GetEnvironmentSettings())
}

// handleUpdateEnvironmentSettings handles PUT /environment/settings.
func (a *API) handleUpdateEnvironmentSettings(w http.ResponseWriter, r *http.Request) {
	var settings store.EnvironmentSettings
	if err := decodeBody(r, &settings); err != nil {
		writeErr(w, r, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	a.store.UpdateEnvironmentSettings(settings)
	writeOK(w, r, http.StatusOK, settings)
}

// handleClearEnvironmentSettings handles DELETE /environment/settings,
// resetting to spec.md's named defaults.
func (a *API) handleClearEnvironmentSettings(w http.ResponseWriter, r *http.Request) {
	a.store.UpdateEnvironmentSettings(store.DefaultEnvironmentSettings())
	httputil.WriteNoContent(w)
}

// handleListEnvironments handles GET /environments.
func (a *API) handleListEnvironments(w http.ResponseWriter, r *http.Request) {
	writeOK(w, r, http.StatusOK, a.store.ListEnvironments())
}

// handleCreateEnvironment handles POST /environments.
func (a *API) handleCreateEnvironment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil || body.Name == "" {
		writeErr(w, r, http.StatusBadRequest, "invalid_body", "name is required")
		return
	}
	a.store.CreateEnvironment(body.Name)
	writeOK(w, r, http.StatusCreated, body.Name)
}

// handleUpdateEnvironment handles PUT /environments/{name}: a rename is
// not supported, this endpoint just ensures the name is registered.
func (a *API) handleUpdateEnvironment(w http.ResponseWriter, r *http.Request, name string) {
	a.store.CreateEnvironment(name)
	writeOK(w, r, http.StatusOK, name)
}

// handleDeleteEnvironment handles DELETE /environments/{name}.
func (a *API) handleDeleteEnvironment(w http.ResponseWriter, r *http.Request, name string) {
	if err := a.store.DeleteEnvironment(name); err != nil {
		a.writeStoreErr(w, r, "delete environment", err)
		return
	}
	httputil.WriteNoContent(w)
}
