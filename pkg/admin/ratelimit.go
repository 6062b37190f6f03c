package admin

import "net/http"

// handleResetRateLimit handles POST /endpoints/{id}/ratelimit/reset.
func (a *API) handleResetRateLimit(w http.ResponseWriter, r *http.Request, id string) {
	a.limiter.Reset(id)
	writeOK(w, r, http.StatusOK, nil)
}

// handleResetAllRateLimits handles POST /ratelimit/reset-all.
func (a *API) handleResetAllRateLimits(w http.ResponseWriter, r *http.Request) {
	a.limiter.ResetAll()
	writeOK(w, r, http.StatusOK, nil)
}

// handleRateLimitStats handles GET /ratelimit/stats.
func (a *API) handleRateLimitStats(w http.ResponseWriter, r *http.Request) {
	writeOK(w, r, http.StatusOK, a.limiter.Stats())
}
