// Package scenario picks the next rotation slot for an endpoint's
// scenarioConfig. See spec.md §4.7.
package scenario

import (
	"math/rand/v2"
	"sort"

	"github.com/getmockd/mockd/pkg/mockendpoint"
)

// Counter abstracts the store's atomic read-then-increment so this
// package stays independent of the store's concrete type.
type Counter interface {
	ReadAndIncrementScenarioCounter(endpointID string, resetAfterSeconds int) int64
}

// Select runs cfg's rotation and returns the chosen response. Responses
// must be non-empty; callers check cfg.Enabled and len(cfg.Responses)
// beforehand.
func Select(counter Counter, endpointID string, cfg *mockendpoint.ScenarioConfig) mockendpoint.Response {
	n := int64(len(cfg.Responses))
	observed := counter.ReadAndIncrementScenarioCounter(endpointID, cfg.ResetAfter)

	switch cfg.Mode {
	case mockendpoint.ScenarioRandom:
		return cfg.Responses[rand.IntN(int(n))].Response
	case mockendpoint.ScenarioWeighted:
		return selectWeighted(cfg.Responses)
	default: // sequential
		return selectSequential(cfg.Responses, observed, cfg.Loop, n)
	}
}

func selectSequential(responses []mockendpoint.ScenarioResponse, counter int64, loop bool, n int64) mockendpoint.Response {
	sorted := make([]mockendpoint.ScenarioResponse, len(responses))
	copy(sorted, responses)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	if !loop && counter >= n {
		return sorted[n-1].Response
	}
	idx := counter % n
	return sorted[idx].Response
}

func selectWeighted(responses []mockendpoint.ScenarioResponse) mockendpoint.Response {
	total := 0
	for _, r := range responses {
		total += weightOf(r)
	}
	if total <= 0 {
		return responses[len(responses)-1].Response
	}

	sample := rand.IntN(total)
	cumulative := 0
	for _, r := range responses {
		cumulative += weightOf(r)
		if sample < cumulative {
			return r.Response
		}
	}
	return responses[len(responses)-1].Response
}

func weightOf(r mockendpoint.ScenarioResponse) int {
	if r.Weight <= 0 {
		return 1
	}
	return r.Weight
}
