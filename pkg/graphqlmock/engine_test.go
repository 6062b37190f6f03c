package graphqlmock

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockd/pkg/mockendpoint"
)

func post(t *testing.T, eng *Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	eng.ServeHTTP(rec, req)
	return rec
}

func TestEngineResolverMatch(t *testing.T) {
	store := NewStore()
	ep := store.Create(&Endpoint{
		Path: "/graphql",
		Resolvers: []Resolver{
			{Enabled: true, OperationName: "GetUser", OperationType: OperationQuery, ResponseData: map[string]any{"user": map[string]any{"id": "1"}}},
		},
	})
	eng := New(store, nil)

	rec := post(t, eng, ep.Path, `{"query":"query GetUser { user { id } }"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ResponseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Errors)
	assert.NotNil(t, resp.Data)
}

func TestEngineVariablesMatch(t *testing.T) {
	store := NewStore()
	ep := store.Create(&Endpoint{
		Path: "/graphql",
		Resolvers: []Resolver{
			{Enabled: true, OperationName: "GetUser", VariablesMatch: map[string]any{"id": "42"}, ResponseData: "matched"},
			{Enabled: true, OperationName: "GetUser", ResponseData: "fallback"},
		},
	})
	eng := New(store, nil)

	rec := post(t, eng, ep.Path, `{"query":"query GetUser($id: ID) { user(id: $id) { id } }","variables":{"id":"42"}}`)
	var resp ResponseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "matched", resp.Data)

	rec = post(t, eng, ep.Path, `{"query":"query GetUser($id: ID) { user(id: $id) { id } }","variables":{"id":"7"}}`)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "fallback", resp.Data)
}

func TestEngineNoResolverNoDefault(t *testing.T) {
	store := NewStore()
	ep := store.Create(&Endpoint{Path: "/graphql"})
	eng := New(store, nil)

	rec := post(t, eng, ep.Path, `{"query":"query Missing { x }"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ResponseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, "No resolver found for operation: Missing (query)")
}

func TestEngineDefaultResponse(t *testing.T) {
	store := NewStore()
	ep := store.Create(&Endpoint{
		Path:            "/graphql",
		DefaultResponse: &ResponseBody{Data: "fallback-data"},
	})
	eng := New(store, nil)

	rec := post(t, eng, ep.Path, `{"query":"query Unregistered { x }"}`)
	var resp ResponseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "fallback-data", resp.Data)
}

func TestEngineMissingQueryIsBadRequest(t *testing.T) {
	store := NewStore()
	store.Create(&Endpoint{Path: "/graphql"})
	eng := New(store, nil)

	rec := post(t, eng, "/graphql", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEngineUnknownPathNotFound(t *testing.T) {
	store := NewStore()
	eng := New(store, nil)
	rec := post(t, eng, "/nope", `{"query":"{ x }"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEngineLogsEveryRequest(t *testing.T) {
	store := NewStore()
	ep := store.Create(&Endpoint{Path: "/graphql"})
	eng := New(store, nil)

	for i := 0; i < 3; i++ {
		post(t, eng, ep.Path, `{"query":"{ x }"}`)
	}
	logs := store.Logs(0)
	require.Len(t, logs, 3)
	assert.Equal(t, ep.ID, logs[0].EndpointID)
}

func TestSelectResolverSkipsDisabled(t *testing.T) {
	resolvers := []Resolver{
		{Enabled: false, OperationName: "X", ResponseData: "skip"},
		{Enabled: true, OperationName: "X", ResponseData: "use"},
	}
	res, ok := selectResolver(resolvers, "X", OperationQuery, nil)
	require.True(t, ok)
	assert.Equal(t, "use", res.ResponseData)
}

func TestApplyDelayFixed(t *testing.T) {
	ms := 1
	applyDelay(mockendpoint.FixedDelay(ms))
}
