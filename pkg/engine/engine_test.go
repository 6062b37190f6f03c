package engine_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockd/pkg/engine"
	"github.com/getmockd/mockd/pkg/mockendpoint"
	"github.com/getmockd/mockd/pkg/requestlog"
	"github.com/getmockd/mockd/pkg/store"
)

func newEngine(t *testing.T) (*engine.Engine, *store.Store) {
	t.Helper()
	s, err := store.New(store.Options{})
	require.NoError(t, err)
	return engine.New(s, requestlog.NewStore(0), nil), s
}

func TestServeHTTPMatchesAndReturnsDefaultResponse(t *testing.T) {
	e, s := newEngine(t)
	_, err := s.CreateEndpoint(&mockendpoint.Endpoint{
		Method:  mockendpoint.MethodGet,
		Path:    "/api/users/:id",
		Default: mockendpoint.Response{Status: 200, Body: map[string]interface{}{"id": "{{$request.path.id}}"}},
	})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/users/42", nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	assert.Equal(t, 200, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "42", body["id"])
}

func TestServeHTTPNotFoundListsAvailableEndpoints(t *testing.T) {
	e, s := newEngine(t)
	_, err := s.CreateEndpoint(&mockendpoint.Endpoint{Method: mockendpoint.MethodGet, Path: "/known"})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/unknown", nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	assert.Equal(t, 404, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	avail, ok := body["availableEndpoints"].([]interface{})
	require.True(t, ok)
	assert.Contains(t, avail, "GET /known")
}

func TestServeHTTPAuthRejectsMissingToken(t *testing.T) {
	e, s := newEngine(t)
	_, err := s.CreateEndpoint(&mockendpoint.Endpoint{
		Method: mockendpoint.MethodGet,
		Path:   "/secure",
		AuthConfig: &mockendpoint.AuthConfig{
			Enabled:      true,
			Method:       mockendpoint.AuthBearer,
			BearerConfig: &mockendpoint.BearerConfig{ValidTokens: []string{"secret"}},
		},
	})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/secure", nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	assert.Equal(t, 401, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

func TestServeHTTPRateLimitDenyAfterLimit(t *testing.T) {
	e, s := newEngine(t)
	_, err := s.CreateEndpoint(&mockendpoint.Endpoint{
		Method:          mockendpoint.MethodGet,
		Path:            "/limited",
		RateLimitConfig: &mockendpoint.RateLimitConfig{RequestsPerWindow: 1, WindowSeconds: 60},
	})
	require.NoError(t, err)

	r1 := httptest.NewRequest(http.MethodGet, "/limited", nil)
	w1 := httptest.NewRecorder()
	e.ServeHTTP(w1, r1)
	assert.Equal(t, 200, w1.Code)

	r2 := httptest.NewRequest(http.MethodGet, "/limited", nil)
	w2 := httptest.NewRecorder()
	e.ServeHTTP(w2, r2)
	assert.Equal(t, 429, w2.Code)
	assert.NotEmpty(t, w2.Header().Get("Retry-After"))
}

func TestServeHTTPConditionalOverridesDefault(t *testing.T) {
	e, s := newEngine(t)
	_, err := s.CreateEndpoint(&mockendpoint.Endpoint{
		Method:  mockendpoint.MethodGet,
		Path:    "/cond",
		Default: mockendpoint.Response{Status: 200, Body: map[string]interface{}{"tier": "free"}},
		ConditionalResponses: []mockendpoint.ConditionalResponse{
			{
				Conditions: []mockendpoint.Condition{{Source: mockendpoint.SourceQuery, Field: "vip", Operator: mockendpoint.OpEq, Value: "true"}},
				Response:   mockendpoint.Response{Status: 200, Body: map[string]interface{}{"tier": "vip"}},
			},
		},
	})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/cond?vip=true", nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "vip", body["tier"])
}

func TestServeHTTPEnvironmentOverlayAppliesWhenRequested(t *testing.T) {
	e, s := newEngine(t)
	_, err := s.CreateEndpoint(&mockendpoint.Endpoint{
		Method:  mockendpoint.MethodGet,
		Path:    "/env",
		Default: mockendpoint.Response{Status: 200, Body: map[string]interface{}{"mode": "prod"}},
		EnvironmentOverrides: map[string]mockendpoint.EnvironmentOverride{
			"staging": {Body: map[string]interface{}{"mode": "staging"}},
		},
	})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/env", nil)
	r.Header.Set("X-Mock-Environment", "staging")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "staging", body["mode"])
}

func TestServeHTTPScenarioRotatesAcrossRequests(t *testing.T) {
	e, s := newEngine(t)
	_, err := s.CreateEndpoint(&mockendpoint.Endpoint{
		Method: mockendpoint.MethodGet,
		Path:   "/rotate",
		ScenarioConfig: &mockendpoint.ScenarioConfig{
			Enabled: true,
			Mode:    mockendpoint.ScenarioSequential,
			Loop:    true,
			Responses: []mockendpoint.ScenarioResponse{
				{Order: 0, Response: mockendpoint.Response{Status: 200, Body: map[string]interface{}{"n": float64(1)}}},
				{Order: 1, Response: mockendpoint.Response{Status: 200, Body: map[string]interface{}{"n": float64(2)}}},
			},
		},
	})
	require.NoError(t, err)

	var seen []float64
	for i := 0; i < 2; i++ {
		r := httptest.NewRequest(http.MethodGet, "/rotate", nil)
		w := httptest.NewRecorder()
		e.ServeHTTP(w, r)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		seen = append(seen, body["n"].(float64))
	}
	assert.Equal(t, []float64{1, 2}, seen)
}
