package scenario_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockd/pkg/mockendpoint"
	"github.com/getmockd/mockd/pkg/scenario"
)

type fakeCounter struct{ values []int64 }

func (f *fakeCounter) ReadAndIncrementScenarioCounter(string, int) int64 {
	v := f.values[0]
	f.values = f.values[1:]
	return v
}

func respFor(status int) mockendpoint.Response {
	return mockendpoint.Response{Status: status}
}

func TestSelectSequentialRotatesInOrder(t *testing.T) {
	cfg := &mockendpoint.ScenarioConfig{
		Mode: mockendpoint.ScenarioSequential,
		Loop: true,
		Responses: []mockendpoint.ScenarioResponse{
			{Order: 1, Response: respFor(201)},
			{Order: 0, Response: respFor(200)},
			{Order: 2, Response: respFor(202)},
		},
	}
	c := &fakeCounter{values: []int64{0, 1, 2, 3}}

	assert.Equal(t, 200, scenario.Select(c, "ep", cfg).Status)
	assert.Equal(t, 201, scenario.Select(c, "ep", cfg).Status)
	assert.Equal(t, 202, scenario.Select(c, "ep", cfg).Status)
	assert.Equal(t, 200, scenario.Select(c, "ep", cfg).Status) // wraps
}

func TestSelectSequentialNoLoopSticksOnLast(t *testing.T) {
	cfg := &mockendpoint.ScenarioConfig{
		Mode: mockendpoint.ScenarioSequential,
		Loop: false,
		Responses: []mockendpoint.ScenarioResponse{
			{Order: 0, Response: respFor(200)},
			{Order: 1, Response: respFor(201)},
		},
	}
	c := &fakeCounter{values: []int64{0, 1, 2, 5}}

	assert.Equal(t, 200, scenario.Select(c, "ep", cfg).Status)
	assert.Equal(t, 201, scenario.Select(c, "ep", cfg).Status)
	assert.Equal(t, 201, scenario.Select(c, "ep", cfg).Status)
	assert.Equal(t, 201, scenario.Select(c, "ep", cfg).Status)
}

func TestSelectWeightedPicksHeavilyWeightedResponse(t *testing.T) {
	cfg := &mockendpoint.ScenarioConfig{
		Mode: mockendpoint.ScenarioWeighted,
		Responses: []mockendpoint.ScenarioResponse{
			{Weight: 0, Response: respFor(200)}, // counts as 1
			{Weight: 100, Response: respFor(201)},
		},
	}
	c := &fakeCounter{values: []int64{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}}
	seen := map[int]bool{}
	for i := 0; i < 10; i++ {
		seen[scenario.Select(c, "ep", cfg).Status] = true
	}
	require.True(t, seen[201])
}

func TestSelectRandomAlwaysWithinRange(t *testing.T) {
	cfg := &mockendpoint.ScenarioConfig{
		Mode: mockendpoint.ScenarioRandom,
		Responses: []mockendpoint.ScenarioResponse{
			{Response: respFor(200)},
			{Response: respFor(201)},
		},
	}
	c := &fakeCounter{values: make([]int64, 20)}
	for i := 0; i < 20; i++ {
		s := scenario.Select(c, "ep", cfg).Status
		assert.Contains(t, []int{200, 201}, s)
	}
}
