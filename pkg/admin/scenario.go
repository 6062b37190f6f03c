package admin

import "net/http"

// handleResetScenario handles POST /endpoints/{id}/scenario/reset.
func (a *API) handleResetScenario(w http.ResponseWriter, r *http.Request, id string) {
	a.store.ResetScenarioCounter(id)
	writeOK(w, r, http.StatusOK, nil)
}

// handleResetAllScenarios handles POST /scenario/reset-all.
func (a *API) handleResetAllScenarios(w http.ResponseWriter, r *http.Request) {
	a.store.ResetAllScenarioCounters()
	writeOK(w, r, http.StatusOK, nil)
}

// handleScenarioCounters handles GET /scenario/counters.
func (a *API) handleScenarioCounters(w http.ResponseWriter, r *http.Request) {
	writeOK(w, r, http.StatusOK, a.store.ScenarioCounters())
}
