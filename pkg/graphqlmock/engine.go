package graphqlmock

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/getmockd/mockd/internal/id"
	"github.com/getmockd/mockd/pkg/logging"
	"github.com/getmockd/mockd/pkg/mockendpoint"
)

// Engine dispatches POST requests against registered GraphQL endpoints:
// parse the operation, select a resolver, compose the response. See
// spec.md §4.10.
type Engine struct {
	store *Store
	log   *slog.Logger
}

// New creates an Engine over store.
func New(store *Store, log *slog.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{store: store, log: log}
}

// ServeHTTP handles any request whose path matches a registered,
// active GraphQL endpoint. Callers are expected to route only matching
// paths here (cmd/mockd's serve command does this routing); unmatched
// paths 404.
func (e *Engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ep, ok := e.store.FindByPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		e.writeError(w, http.StatusBadRequest, "request body must include a non-empty query")
		return
	}

	start := time.Now()
	opType, parsedName := ParseOperation(req.Query)
	opName := EffectiveOperationName(req, parsedName)

	resolver, matched := selectResolver(ep.Resolvers, opName, opType, req.Variables)

	var body ResponseBody
	switch {
	case matched:
		applyDelay(resolver.Delay)
		body = ResponseBody{Data: resolver.ResponseData, Errors: resolver.Errors}
	case ep.DefaultResponse != nil:
		body = *ep.DefaultResponse
	default:
		body = ResponseBody{Errors: []GraphQLError{{
			Message: fmt.Sprintf("No resolver found for operation: %s (%s)", opName, opType),
		}}}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)

	e.store.AppendLog(LogEntry{
		ID:             id.UUID(),
		EndpointID:     ep.ID,
		OperationName:  opName,
		OperationType:  opType,
		Query:          req.Query,
		Variables:      req.Variables,
		ResponseStatus: http.StatusOK,
		Errors:         body.Errors,
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Timestamp:      time.Now().UTC(),
	})
}

func (e *Engine) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ResponseBody{Errors: []GraphQLError{{Message: message}}})
}

// selectResolver scans ep's resolvers in order (spec.md §4.10 resolver
// selection): the first enabled resolver whose operationName (if the
// request set one), operationType (if known), and variablesMatch all
// agree wins.
func selectResolver(resolvers []Resolver, opName string, opType OperationType, vars map[string]any) (Resolver, bool) {
	for _, res := range resolvers {
		if !res.Enabled {
			continue
		}
		if opName != "" && res.OperationName != "" && res.OperationName != opName {
			continue
		}
		if opType != "" && res.OperationType != "" && res.OperationType != opType {
			continue
		}
		if !variablesMatch(res.VariablesMatch, vars) {
			continue
		}
		return res, true
	}
	return Resolver{}, false
}

func variablesMatch(want map[string]any, got map[string]any) bool {
	if len(want) == 0 {
		return true
	}
	for k, v := range want {
		gv, ok := got[k]
		if !ok || fmt.Sprintf("%v", gv) != fmt.Sprintf("%v", v) {
			return false
		}
	}
	return true
}

func applyDelay(d *mockendpoint.Delay) {
	if d == nil {
		return
	}
	var ms int
	switch {
	case d.Fixed != nil:
		ms = *d.Fixed
	case d.Min != nil && d.Max != nil:
		min, max := *d.Min, *d.Max
		if max <= min {
			ms = min
		} else {
			ms = min + rand.IntN(max-min+1)
		}
	}
	if ms > 0 {
		time.Sleep(time.Duration(ms) * time.Millisecond)
	}
}
