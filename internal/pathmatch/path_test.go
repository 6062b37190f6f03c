package pathmatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockd/internal/pathmatch"
	"github.com/getmockd/mockd/pkg/mockendpoint"
)

func TestCompileRoundTripsRawPattern(t *testing.T) {
	p := pathmatch.Compile("/users/:id/orders/:orderId")
	assert.Equal(t, "/users/:id/orders/:orderId", p.Raw())
	assert.True(t, p.HasParams())
}

func TestCompileLiteralHasNoParams(t *testing.T) {
	p := pathmatch.Compile("/users/active")
	assert.False(t, p.HasParams())
}

func TestMatchLiteralExact(t *testing.T) {
	p := pathmatch.Compile("/users/active")
	params, ok := p.Match("/users/active")
	require.True(t, ok)
	assert.Empty(t, params)
}

func TestMatchLiteralRejectsMismatch(t *testing.T) {
	p := pathmatch.Compile("/users/active")
	_, ok := p.Match("/users/inactive")
	assert.False(t, ok)
}

func TestMatchCapturesNamedSegments(t *testing.T) {
	p := pathmatch.Compile("/users/:id/orders/:orderId")
	params, ok := p.Match("/users/42/orders/99")
	require.True(t, ok)
	assert.Equal(t, "42", params["id"])
	assert.Equal(t, "99", params["orderId"])
}

func TestMatchRejectsWrongSegmentCount(t *testing.T) {
	p := pathmatch.Compile("/users/:id")
	_, ok := p.Match("/users/42/orders")
	assert.False(t, ok)
}

func TestMatchIgnoresLeadingTrailingSlashes(t *testing.T) {
	p := pathmatch.Compile("users/:id/")
	params, ok := p.Match("/users/42")
	require.True(t, ok)
	assert.Equal(t, "42", params["id"])
}

func TestMatchParamSegmentRejectsEmpty(t *testing.T) {
	p := pathmatch.Compile("/users/:id/orders")
	_, ok := p.Match("/users//orders")
	assert.False(t, ok)
}

func endpoint(method, path, status string) *mockendpoint.Endpoint {
	return &mockendpoint.Endpoint{Method: mockendpoint.Method(method), Path: path, Status: mockendpoint.Status(status)}
}

func TestFindEndpointExactLiteralWinsOverParametric(t *testing.T) {
	parametric := endpoint("GET", "/users/:id", "active")
	literal := endpoint("GET", "/users/active", "active")
	candidates := []pathmatch.Candidate{
		{Endpoint: parametric, Pattern: pathmatch.Compile(parametric.Path)},
		{Endpoint: literal, Pattern: pathmatch.Compile(literal.Path)},
	}

	found, _, ok := pathmatch.FindEndpoint(candidates, "GET", "/users/active")
	require.True(t, ok)
	assert.Same(t, literal, found)
}

func TestFindEndpointFallsBackToParametric(t *testing.T) {
	parametric := endpoint("GET", "/users/:id", "active")
	candidates := []pathmatch.Candidate{
		{Endpoint: parametric, Pattern: pathmatch.Compile(parametric.Path)},
	}

	found, params, ok := pathmatch.FindEndpoint(candidates, "GET", "/users/42")
	require.True(t, ok)
	assert.Same(t, parametric, found)
	assert.Equal(t, "42", params["id"])
}

func TestFindEndpointSkipsInactiveAndWrongMethod(t *testing.T) {
	inactive := endpoint("GET", "/users/active", "disabled")
	wrongMethod := endpoint("POST", "/users/active", "active")
	candidates := []pathmatch.Candidate{
		{Endpoint: inactive, Pattern: pathmatch.Compile(inactive.Path)},
		{Endpoint: wrongMethod, Pattern: pathmatch.Compile(wrongMethod.Path)},
	}

	_, _, ok := pathmatch.FindEndpoint(candidates, "GET", "/users/active")
	assert.False(t, ok)
}

func TestFindEndpointFirstRegisteredParametricWinsOnTie(t *testing.T) {
	first := endpoint("GET", "/users/:id", "active")
	second := endpoint("GET", "/users/:userId", "active")
	candidates := []pathmatch.Candidate{
		{Endpoint: first, Pattern: pathmatch.Compile(first.Path)},
		{Endpoint: second, Pattern: pathmatch.Compile(second.Path)},
	}

	found, _, ok := pathmatch.FindEndpoint(candidates, "GET", "/users/42")
	require.True(t, ok)
	assert.Same(t, first, found)
}
