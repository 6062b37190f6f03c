package websocket_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/getmockd/mockd/pkg/websocket"
)

func TestMatchExactPattern(t *testing.T) {
	patterns := []websocket.MessagePattern{
		{Kind: websocket.PatternExact, Pattern: "ping"},
	}
	assert.Equal(t, 0, websocket.Match(patterns, "ping"))
	assert.Equal(t, -1, websocket.Match(patterns, "ping!"))
}

func TestMatchContainsPattern(t *testing.T) {
	patterns := []websocket.MessagePattern{
		{Kind: websocket.PatternContains, Pattern: "err"},
	}
	assert.Equal(t, 0, websocket.Match(patterns, "an error occurred"))
	assert.Equal(t, -1, websocket.Match(patterns, "all good"))
}

func TestMatchRegexPattern(t *testing.T) {
	patterns := []websocket.MessagePattern{
		{Kind: websocket.PatternRegex, Pattern: `^\d+$`},
	}
	assert.Equal(t, 0, websocket.Match(patterns, "12345"))
	assert.Equal(t, -1, websocket.Match(patterns, "12345a"))
}

func TestMatchRegexInvalidPatternNeverMatches(t *testing.T) {
	patterns := []websocket.MessagePattern{
		{Kind: websocket.PatternRegex, Pattern: "("},
	}
	assert.Equal(t, -1, websocket.Match(patterns, "anything"))
}

func TestMatchJSONPathPattern(t *testing.T) {
	patterns := []websocket.MessagePattern{
		{Kind: websocket.PatternJSONPath, Pattern: "user.role=admin"},
	}
	assert.Equal(t, 0, websocket.Match(patterns, `{"user":{"role":"admin"}}`))
	assert.Equal(t, -1, websocket.Match(patterns, `{"user":{"role":"guest"}}`))
}

func TestMatchJSONPathRejectsNonJSONPayload(t *testing.T) {
	patterns := []websocket.MessagePattern{
		{Kind: websocket.PatternJSONPath, Pattern: "user.role=admin"},
	}
	assert.Equal(t, -1, websocket.Match(patterns, "not json"))
}

func TestMatchReturnsFirstMatchingPatternInOrder(t *testing.T) {
	patterns := []websocket.MessagePattern{
		{Kind: websocket.PatternContains, Pattern: "o"},
		{Kind: websocket.PatternExact, Pattern: "hello"},
	}
	assert.Equal(t, 0, websocket.Match(patterns, "hello"))
}
