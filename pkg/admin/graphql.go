package admin

import (
	"net/http"
	"strconv"

	"github.com/getmockd/mockd/pkg/graphqlmock"
	"github.com/getmockd/mockd/pkg/httputil"
)

// handleListGraphQLEndpoints handles GET /graphql/endpoints.
func (a *API) handleListGraphQLEndpoints(w http.ResponseWriter, r *http.Request) {
	writeOK(w, r, http.StatusOK, a.graphql.List())
}

// handleCreateGraphQLEndpoint handles POST /graphql/endpoints.
func (a *API) handleCreateGraphQLEndpoint(w http.ResponseWriter, r *http.Request) {
	var ep graphqlmock.Endpoint
	if err := decodeBody(r, &ep); err != nil {
		writeErr(w, r, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	writeOK(w, r, http.StatusCreated, a.graphql.Create(&ep))
}

// handleGetGraphQLEndpoint handles GET /graphql/endpoints/{id}.
func (a *API) handleGetGraphQLEndpoint(w http.ResponseWriter, r *http.Request, id string) {
	ep, err := a.graphql.Get(id)
	if err != nil {
		a.writeStoreErr(w, r, "get graphql endpoint", err)
		return
	}
	writeOK(w, r, http.StatusOK, ep)
}

// handleUpdateGraphQLEndpoint handles PUT /graphql/endpoints/{id}. The
// full endpoint (including its resolvers) is replaced; use the
// dedicated resolver endpoints to add/remove one resolver at a time.
func (a *API) handleUpdateGraphQLEndpoint(w http.ResponseWriter, r *http.Request, id string) {
	var ep graphqlmock.Endpoint
	if err := decodeBody(r, &ep); err != nil {
		writeErr(w, r, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	updated, err := a.graphql.Update(id, &ep)
	if err != nil {
		a.writeStoreErr(w, r, "update graphql endpoint", err)
		return
	}
	writeOK(w, r, http.StatusOK, updated)
}

// handleDeleteGraphQLEndpoint handles DELETE /graphql/endpoints/{id}.
func (a *API) handleDeleteGraphQLEndpoint(w http.ResponseWriter, r *http.Request, id string) {
	if err := a.graphql.Delete(id); err != nil {
		a.writeStoreErr(w, r, "delete graphql endpoint", err)
		return
	}
	httputil.WriteNoContent(w)
}

// handleCreateGraphQLResolver handles POST /graphql/endpoints/{id}/resolvers.
func (a *API) handleCreateGraphQLResolver(w http.ResponseWriter, r *http.Request, id string) {
	ep, err := a.graphql.Get(id)
	if err != nil {
		a.writeStoreErr(w, r, "get graphql endpoint", err)
		return
	}
	var resolver graphqlmock.Resolver
	if err := decodeBody(r, &resolver); err != nil {
		writeErr(w, r, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	ep.Resolvers = append(ep.Resolvers, resolver)
	updated, err := a.graphql.Update(id, ep)
	if err != nil {
		a.writeStoreErr(w, r, "add resolver", err)
		return
	}
	writeOK(w, r, http.StatusCreated, updated)
}

// handleDeleteGraphQLResolver handles DELETE
// /graphql/endpoints/{id}/resolvers/{resolverId}.
func (a *API) handleDeleteGraphQLResolver(w http.ResponseWriter, r *http.Request, id, resolverID string) {
	ep, err := a.graphql.Get(id)
	if err != nil {
		a.writeStoreErr(w, r, "get graphql endpoint", err)
		return
	}
	kept := ep.Resolvers[:0]
	for _, res := range ep.Resolvers {
		if res.ID != resolverID {
			kept = append(kept, res)
		}
	}
	ep.Resolvers = kept
	updated, err := a.graphql.Update(id, ep)
	if err != nil {
		a.writeStoreErr(w, r, "delete resolver", err)
		return
	}
	writeOK(w, r, http.StatusOK, updated)
}

// handleGraphQLLogs handles GET /graphql/logs?limit.
func (a *API) handleGraphQLLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			limit = v
		}
	}
	writeOK(w, r, http.StatusOK, a.graphql.Logs(limit))
}

// handleClearGraphQLLogs handles DELETE /graphql/logs.
func (a *API) handleClearGraphQLLogs(w http.ResponseWriter, r *http.Request) {
	a.graphql.ClearLogs()
	httputil.WriteNoContent(w)
}
