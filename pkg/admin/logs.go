package admin

import (
	"net/http"
	"strconv"

	"github.com/getmockd/mockd/pkg/httputil"
	"github.com/getmockd/mockd/pkg/requestlog"
)

// handleListLogs handles GET /logs?endpointId&method&status&limit.
func (a *API) handleListLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := requestlog.Filter{
		EndpointID: q.Get("endpointId"),
		Method:     q.Get("method"),
		PathSubstr: q.Get("path"),
	}
	if s := q.Get("status"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			filter.Status = v
		}
	}
	if s := q.Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			filter.Limit = v
		}
	}
	writeOK(w, r, http.StatusOK, a.requests.List(filter))
}

// handleLogStats handles GET /logs/stats.
func (a *API) handleLogStats(w http.ResponseWriter, r *http.Request) {
	writeOK(w, r, http.StatusOK, a.requests.ComputeStats())
}

// handleClearLogs handles DELETE /logs.
func (a *API) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	a.requests.Clear()
	httputil.WriteNoContent(w)
}
