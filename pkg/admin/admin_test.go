package admin_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/mockd/pkg/admin"
	"github.com/getmockd/mockd/pkg/config"
	"github.com/getmockd/mockd/pkg/graphqlmock"
	"github.com/getmockd/mockd/pkg/ratelimit"
	"github.com/getmockd/mockd/pkg/requestlog"
	"github.com/getmockd/mockd/pkg/store"
	"github.com/getmockd/mockd/pkg/websocket"
)

func newTestAPI(t *testing.T) *admin.API {
	t.Helper()
	s, err := store.New(store.Options{})
	require.NoError(t, err)
	requests := requestlog.NewStore(100)
	limiter := ratelimit.New()
	wsStore := websocket.NewStore()
	ws := websocket.NewManager(wsStore, requests, nil)
	t.Cleanup(ws.Close)
	gql := graphqlmock.NewStore()
	return admin.New(s, requests, limiter, ws, wsStore, gql, "test", nil)
}

func do(api *admin.API, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body == "" {
		reader = bytes.NewBuffer(nil)
	} else {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) admin.Envelope {
	t.Helper()
	var env admin.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	rec := do(api, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
}

func TestEndpointCRUD(t *testing.T) {
	api := newTestAPI(t)

	rec := do(api, http.MethodPost, "/endpoints", `{"path":"/hello","method":"GET","defaultResponse":{"status":200}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	created := env.Data.(map[string]any)
	id := created["id"].(string)
	require.NotEmpty(t, id)

	rec = do(api, http.MethodGet, "/endpoints/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(api, http.MethodPut, "/endpoints/"+id, `{"path":"/hello2","method":"GET","defaultResponse":{"status":201}}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(api, http.MethodDelete, "/endpoints/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(api, http.MethodGet, "/endpoints/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEndpointCRUDAcceptsAndEmitsYAML(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/endpoints", bytes.NewBufferString(
		"path: /hello\nmethod: GET\ndefaultResponse:\n  status: 200\n"))
	req.Header.Set("Content-Type", "application/yaml")
	req.Header.Set("Accept", "application/yaml")
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))

	var env struct {
		Success bool `yaml:"success"`
		Data    struct {
			ID   string `yaml:"id"`
			Path string `yaml:"path"`
		} `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "/hello", env.Data.Path)
	assert.NotEmpty(t, env.Data.ID)
}

func TestEnvironmentDefaultCannotBeDeleted(t *testing.T) {
	api := newTestAPI(t)
	rec := do(api, http.MethodDelete, "/environments/default", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebSocketEndpointSubRoutes(t *testing.T) {
	api := newTestAPI(t)
	rec := do(api, http.MethodPost, "/websocket/endpoints", `{"path":"/chat"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	id := env.Data.(map[string]any)["id"].(string)

	rec = do(api, http.MethodGet, "/websocket/endpoints/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(api, http.MethodGet, "/websocket/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(api, http.MethodDelete, "/websocket/endpoints/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGraphQLEndpointSubRoutes(t *testing.T) {
	api := newTestAPI(t)
	rec := do(api, http.MethodPost, "/graphql/endpoints", `{"path":"/gql"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	id := env.Data.(map[string]any)["id"].(string)

	rec = do(api, http.MethodPost, "/graphql/endpoints/"+id+"/resolvers", `{"id":"r1","enabled":true,"operationName":"GetUser"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(api, http.MethodGet, "/graphql/logs", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdminTokenRejectsMissingToken(t *testing.T) {
	api := newTestAPI(t)
	principals := []config.AdminPrincipal{{Name: "default", Token: "secret", Role: config.RoleAdmin}}
	protected := admin.RequireAdminToken(principals, api.Handler())

	req := httptest.NewRequest(http.MethodGet, "/endpoints", nil)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminTokenAllowsValidToken(t *testing.T) {
	api := newTestAPI(t)
	principals := []config.AdminPrincipal{{Name: "default", Token: "secret", Role: config.RoleAdmin}}
	protected := admin.RequireAdminToken(principals, api.Handler())

	req := httptest.NewRequest(http.MethodGet, "/endpoints", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdminTokenExemptsHealth(t *testing.T) {
	api := newTestAPI(t)
	protected := admin.RequireAdminToken(nil, api.Handler())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
