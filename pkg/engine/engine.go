// Package engine is the HTTP mock dispatcher: match, authenticate,
// rate-limit, proxy, environment overlay, scenario, conditional,
// compose, template, delay, respond, log. See spec.md §4.3.
package engine

import (
	"encoding/json"
	"io"
	"log/slog"
	mathrand "math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/getmockd/mockd/internal/id"
	"github.com/getmockd/mockd/pkg/auth"
	"github.com/getmockd/mockd/pkg/condition"
	"github.com/getmockd/mockd/pkg/httputil"
	"github.com/getmockd/mockd/pkg/logging"
	"github.com/getmockd/mockd/pkg/mockendpoint"
	"github.com/getmockd/mockd/pkg/proxy"
	"github.com/getmockd/mockd/pkg/ratelimit"
	"github.com/getmockd/mockd/pkg/requestlog"
	"github.com/getmockd/mockd/pkg/scenario"
	"github.com/getmockd/mockd/pkg/store"
	"github.com/getmockd/mockd/pkg/template"
	"github.com/getmockd/mockd/pkg/util"
)

// Store is the subset of *store.Store the dispatcher depends on.
type Store interface {
	FindEndpointByPath(method, path string) (*mockendpoint.Endpoint, map[string]string, bool)
	AvailableEndpoints() []string
	GetGlobalAuthSettings() mockendpoint.GlobalAuthSettings
	GetEnvironmentSettings() store.EnvironmentSettings
	scenario.Counter
}

// Engine wires the pipeline's stateless collaborators together around a
// shared Store.
type Engine struct {
	store    Store
	limiter  *ratelimit.Limiter
	proxy    *proxy.Forwarder
	tmpl     *template.Engine
	log      *slog.Logger
	requests requestlog.Logger
}

// New builds an Engine. log and requests may be nil; both fall back to
// no-ops so the engine is usable in isolation (e.g. tests).
func New(s Store, requests requestlog.Logger, log *slog.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{
		store:    s,
		limiter:  ratelimit.New(),
		proxy:    proxy.New(),
		tmpl:     template.New(log),
		log:      log,
		requests: requests,
	}
}

// ServeHTTP implements the mock dispatch pipeline. Callers mount this
// under the mock path prefix with the prefix already stripped from
// r.URL.Path.
func (e *Engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, _ := io.ReadAll(io.LimitReader(r.Body, 10<<20))
	_ = r.Body.Close()

	ep, pathParams, ok := e.store.FindEndpointByPath(r.Method, r.URL.Path)
	if !ok {
		e.respondNotFound(w, r, body, start)
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			e.log.Error("engine: recovered from panic", "error", rec, "endpointId", ep.ID)
			e.writeErrorEnvelope(w, http.StatusInternalServerError, "panic recovered")
			e.logRequest(r, body, requestlog.EndpointError, 500, nil, start)
		}
	}()

	// 2. Authenticate.
	cfg := auth.EffectiveConfig(ep.AuthConfig, e.store.GetGlobalAuthSettings())
	if cfg != nil && cfg.Enabled && !auth.IsExcluded(cfg, r.URL.Path) {
		result := auth.Check(r, cfg)
		if !result.Valid {
			status := auth.ErrorStatus(cfg)
			if challenge := auth.WWWAuthenticateHeader(cfg.Method); challenge != "" {
				w.Header().Set("WWW-Authenticate", challenge)
			}
			e.writeConfiguredError(w, status, cfg.ErrorBody, result.Error)
			e.logRequest(r, body, ep.ID, status, nil, start)
			return
		}
	}

	// 3. Rate limit.
	if ep.RateLimitConfig != nil {
		key := ratelimit.Key(ep.RateLimitConfig, r)
		decision := e.limiter.Allow(ep.ID, key, ep.RateLimitConfig)
		ratelimit.ApplyHeaders(w.Header(), decision)
		if !decision.Allowed {
			status := ep.RateLimitConfig.ErrorStatus
			if status == 0 {
				status = http.StatusTooManyRequests
			}
			e.writeConfiguredError(w, status, ep.RateLimitConfig.ErrorBody, "rate limit exceeded")
			e.logRequest(r, body, ep.ID, status, nil, start)
			return
		}
	}

	// 4. Proxy short-circuit.
	if ep.ProxyConfig != nil && ep.ProxyConfig.Enabled && ep.ProxyConfig.TargetURL != "" {
		result, err := e.proxy.Forward(ep.ProxyConfig, r.Method, r.URL.Path, r.URL.RawQuery, r.Header, body)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadGateway, map[string]interface{}{
				"error":   "Bad Gateway",
				"message": err.Error(),
				"target":  ep.ProxyConfig.TargetURL,
			})
			e.logRequest(r, body, ep.ID, http.StatusBadGateway, nil, start)
			return
		}
		for k, vs := range result.Headers {
			for _, v := range vs {
				w.Header().Add(k, v)
			}
		}
		httputil.WriteJSON(w, result.Status, result.Body)
		e.logRequest(r, body, ep.ID, result.Status, result.Body, start)
		return
	}

	// 5. Environment overlay.
	envSettings := e.store.GetEnvironmentSettings()
	envName := resolveEnvironment(r, envSettings)
	resp := ep.Default
	if envSettings.Enabled {
		if override, ok := ep.EnvironmentOverrides[envName]; ok && override.IsEnabled() {
			resp = overlayEnvironment(resp, override)
		}
	}

	var parsedBody interface{}
	if len(body) > 0 {
		_ = json.Unmarshal(body, &parsedBody)
	}

	// 6/7. Scenario, else conditional.
	switch {
	case ep.ScenarioConfig != nil && ep.ScenarioConfig.Enabled && len(ep.ScenarioConfig.Responses) > 0:
		resp = overlayResponse(resp, scenario.Select(e.store, ep.ID, ep.ScenarioConfig))
	default:
		condReq := condition.Request{Query: r.URL.Query(), Header: r.Header, Body: parsedBody}
		if idx := condition.Select(ep.ConditionalResponses, condReq); idx >= 0 {
			resp = overlayResponse(resp, ep.ConditionalResponses[idx].Response)
		}
	}

	// 9. Template.
	tmplCtx := &template.Context{
		Query:      r.URL.Query(),
		Headers:    r.Header,
		Body:       parsedBody,
		PathParams: pathParams,
	}
	composedBody := e.tmpl.ProcessValue(resp.Body, tmplCtx)

	// 10. Delay.
	applyDelay(resp.Delay)

	// 11. Headers & send.
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	httputil.WriteJSON(w, status, composedBody)

	// 12. Log.
	e.logRequest(r, body, ep.ID, status, composedBody, start)
}

func (e *Engine) respondNotFound(w http.ResponseWriter, r *http.Request, body []byte, start time.Time) {
	available := e.store.AvailableEndpoints()
	httputil.WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":              "Not Found",
		"message":            "no matching endpoint for " + r.Method + " " + r.URL.Path,
		"availableEndpoints": available,
	})
	e.logRequest(r, body, requestlog.EndpointNotFound, http.StatusNotFound, nil, start)
}

func (e *Engine) writeErrorEnvelope(w http.ResponseWriter, status int, message string) {
	httputil.WriteJSON(w, status, map[string]interface{}{
		"error":   "Internal Server Error",
		"message": message,
	})
}

func (e *Engine) writeConfiguredError(w http.ResponseWriter, status int, body mockendpoint.Value, fallbackMessage string) {
	if body != nil {
		httputil.WriteJSON(w, status, body)
		return
	}
	httputil.WriteJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": fallbackMessage,
	})
}

func (e *Engine) logRequest(r *http.Request, body []byte, endpointID string, status int, responseBody interface{}, start time.Time) {
	var respData string
	if responseBody != nil {
		if b, err := json.Marshal(responseBody); err == nil {
			respData = util.TruncateBody(string(b), 0)
		}
	}

	entry := &requestlog.Entry{
		ID:             id.UUID(),
		EndpointID:     endpointID,
		Method:         r.Method,
		Path:           r.URL.Path,
		URL:            r.URL.String(),
		QueryParams:    map[string][]string(r.URL.Query()),
		RequestHeaders: map[string][]string(r.Header),
		RequestBody:    util.TruncateBody(string(body), 0),
		ResponseStatus: status,
		ResponseData:   respData,
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Timestamp:      time.Now().UTC(),
		ClientIP:       clientIP(r),
		UserAgent:      r.UserAgent(),
	}
	if e.requests != nil {
		e.requests.Log(entry)
	}
}

func clientIP(r *http.Request) string {
	if i := strings.LastIndex(r.RemoteAddr, ":"); i >= 0 {
		return r.RemoteAddr[:i]
	}
	return r.RemoteAddr
}

func resolveEnvironment(r *http.Request, settings store.EnvironmentSettings) string {
	headerName := settings.HeaderName
	if headerName == "" {
		headerName = "X-Mock-Environment"
	}
	if v := r.Header.Get(headerName); v != "" {
		return v
	}
	queryParam := settings.QueryParam
	if queryParam == "" {
		queryParam = "mock_env"
	}
	if v := r.URL.Query().Get(queryParam); v != "" {
		return v
	}
	def := settings.Default
	if def == "" {
		def = "default"
	}
	return def
}

// overlayEnvironment applies a non-zero subset of override onto base,
// per spec.md §4.3 step 5 ("use its fields in place of the endpoint
// defaults").
func overlayEnvironment(base mockendpoint.Response, override mockendpoint.EnvironmentOverride) mockendpoint.Response {
	out := base
	if override.Status != 0 {
		out.Status = override.Status
	}
	if override.Body != nil {
		out.Body = override.Body
	}
	if override.Delay != nil {
		out.Delay = override.Delay
	}
	return out
}

// overlayResponse applies a non-zero subset of next onto base, used for
// the scenario/conditional precedence levels (spec.md §4.3 step 8).
func overlayResponse(base, next mockendpoint.Response) mockendpoint.Response {
	out := base
	if next.Status != 0 {
		out.Status = next.Status
	}
	if next.Body != nil {
		out.Body = next.Body
	}
	if next.Headers != nil {
		out.Headers = next.Headers
	}
	if next.Delay != nil {
		out.Delay = next.Delay
	}
	return out
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
			ms = min + mathrand.IntN(max-min+1)
		}
	}
	if ms > 0 {
		time.Sleep(time.Duration(ms) * time.Millisecond)
	}
}
