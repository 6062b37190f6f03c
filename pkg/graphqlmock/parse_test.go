package graphqlmock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOperation(t *testing.T) {
	t.Run("named query", func(t *testing.T) {
		opType, opName := ParseOperation(`query GetUser { user { id } }`)
		assert.Equal(t, OperationQuery, opType)
		assert.Equal(t, "GetUser", opName)
	})

	t.Run("mutation", func(t *testing.T) {
		opType, opName := ParseOperation(`mutation CreateUser($name: String!) { createUser(name: $name) { id } }`)
		assert.Equal(t, OperationMutation, opType)
		assert.Equal(t, "CreateUser", opName)
	})

	t.Run("anonymous brace query", func(t *testing.T) {
		opType, opName := ParseOperation(`{ user { id } }`)
		assert.Equal(t, OperationQuery, opType)
		assert.Empty(t, opName)
	})

	t.Run("subscription", func(t *testing.T) {
		opType, _ := ParseOperation(`subscription OnMessage { messages { id } }`)
		assert.Equal(t, OperationSubscription, opType)
	})

	t.Run("malformed falls back to regex heuristic", func(t *testing.T) {
		opType, opName := ParseOperation(`query GetUser {{{ not valid graphql`)
		assert.Equal(t, OperationQuery, opType)
		assert.Equal(t, "GetUser", opName)
	})
}

func TestEffectiveOperationName(t *testing.T) {
	assert.Equal(t, "FromRequest", EffectiveOperationName(Request{OperationName: "FromRequest"}, "FromQuery"))
	assert.Equal(t, "FromQuery", EffectiveOperationName(Request{}, "FromQuery"))
}
