package admin

import "net/http"

// Handler builds the complete admin mux: endpoint CRUD, logs, history,
// scenario, auth, rate-limit, and environment under the root, plus the
// WebSocket and GraphQL sub-surfaces under /api/admin/websocket and
// /api/admin/graphql. Callers typically mount this at /api/admin.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", a.handleHealth)

	mux.HandleFunc("GET /endpoints", a.handleListEndpoints)
	mux.HandleFunc("POST /endpoints", a.handleCreateEndpoint)
	mux.HandleFunc("GET /endpoints/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.handleGetEndpoint(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("PUT /endpoints/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.handleUpdateEndpoint(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("DELETE /endpoints/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.handleDeleteEndpoint(w, r, r.PathValue("id"))
	})

	mux.HandleFunc("GET /logs", a.handleListLogs)
	mux.HandleFunc("GET /logs/stats", a.handleLogStats)
	mux.HandleFunc("DELETE /logs", a.handleClearLogs)

	mux.HandleFunc("GET /endpoints/{id}/history", func(w http.ResponseWriter, r *http.Request) {
		a.handleEndpointHistory(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("GET /history", a.handleAllHistory)
	mux.HandleFunc("POST /history/{id}/restore", func(w http.ResponseWriter, r *http.Request) {
		a.handleRestoreHistory(w, r, r.PathValue("id"))
	})

	mux.HandleFunc("POST /endpoints/{id}/scenario/reset", func(w http.ResponseWriter, r *http.Request) {
		a.handleResetScenario(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST /scenario/reset-all", a.handleResetAllScenarios)
	mux.HandleFunc("GET /scenario/counters", a.handleScenarioCounters)

	mux.HandleFunc("GET /auth/settings", a.handleGetAuthSettings)
	mux.HandleFunc("PUT /auth/settings", a.handleUpdateAuthSettings)
	mux.HandleFunc("DELETE /auth/settings", a.handleClearAuthSettings)

	mux.HandleFunc("POST /endpoints/{id}/ratelimit/reset", func(w http.ResponseWriter, r *http.Request) {
		a.handleResetRateLimit(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST /ratelimit/reset-all", a.handleResetAllRateLimits)
	mux.HandleFunc("GET /ratelimit/stats", a.handleRateLimitStats)

	mux.HandleFunc("GET /environment/settings", a.handleGetEnvironmentSettings)
	mux.HandleFunc("PUT /environment/settings", a.handleUpdateEnvironmentSettings)
	mux.HandleFunc("DELETE /environment/settings", a.handleClearEnvironmentSettings)
	mux.HandleFunc("GET /environments", a.handleListEnvironments)
	mux.HandleFunc("POST /environments", a.handleCreateEnvironment)
	mux.HandleFunc("PUT /environments/{name}", func(w http.ResponseWriter, r *http.Request) {
		a.handleUpdateEnvironment(w, r, r.PathValue("name"))
	})
	mux.HandleFunc("DELETE /environments/{name}", func(w http.ResponseWriter, r *http.Request) {
		a.handleDeleteEnvironment(w, r, r.PathValue("name"))
	})

	if a.ws != nil && a.wsStore != nil {
		mux.Handle("/websocket/", http.StripPrefix("/websocket", a.websocketHandler()))
	}
	if a.graphql != nil {
		mux.Handle("/graphql/", http.StripPrefix("/graphql", a.graphqlHandler()))
	}

	return mux
}

func (a *API) websocketHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /endpoints", a.handleListWSEndpoints)
	mux.HandleFunc("POST /endpoints", a.handleCreateWSEndpoint)
	mux.HandleFunc("GET /endpoints/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.handleGetWSEndpoint(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("PUT /endpoints/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.handleUpdateWSEndpoint(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("DELETE /endpoints/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.handleDeleteWSEndpoint(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST /endpoints/{id}/broadcast", func(w http.ResponseWriter, r *http.Request) {
		a.handleBroadcastEndpoint(w, r, r.PathValue("id"))
	})

	mux.HandleFunc("GET /connections", a.handleListConnections)
	mux.HandleFunc("DELETE /connections/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.handleCloseConnection(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST /connections/{id}/send", func(w http.ResponseWriter, r *http.Request) {
		a.handleSendToConnection(w, r, r.PathValue("id"))
	})

	mux.HandleFunc("GET /logs", a.handleWSLogs)
	mux.HandleFunc("DELETE /logs", a.handleClearWSLogs)
	mux.HandleFunc("GET /stats", a.handleWSStats)

	return mux
}

func (a *API) graphqlHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /endpoints", a.handleListGraphQLEndpoints)
	mux.HandleFunc("POST /endpoints", a.handleCreateGraphQLEndpoint)
	mux.HandleFunc("GET /endpoints/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.handleGetGraphQLEndpoint(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("PUT /endpoints/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.handleUpdateGraphQLEndpoint(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("DELETE /endpoints/{id}", func(w http.ResponseWriter, r *http.Request) {
		a.handleDeleteGraphQLEndpoint(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST /endpoints/{id}/resolvers", func(w http.ResponseWriter, r *http.Request) {
		a.handleCreateGraphQLResolver(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("DELETE /endpoints/{id}/resolvers/{resolverId}", func(w http.ResponseWriter, r *http.Request) {
		a.handleDeleteGraphQLResolver(w, r, r.PathValue("id"), r.PathValue("resolverId"))
	})

	mux.HandleFunc("GET /logs", a.handleGraphQLLogs)
	mux.HandleFunc("DELETE /logs", a.handleClearGraphQLLogs)

	return mux
}
