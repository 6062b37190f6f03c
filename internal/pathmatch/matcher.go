package pathmatch

import "github.com/getmockd/mockd/pkg/mockendpoint"

// Candidate pairs an endpoint with its compiled path pattern, as handed
// to FindEndpoint by the store.
type Candidate struct {
	Endpoint *mockendpoint.Endpoint
	Pattern  Pattern
}

// FindEndpoint returns the first active candidate of the given method
// matching path, or (nil, nil, false) on a miss. Exact-literal patterns
// win over any parametric match for the same (method, path); otherwise
// the first match in candidates' order (which callers must supply in
// registration/insertion order) wins.
func FindEndpoint(candidates []Candidate, method, path string) (*mockendpoint.Endpoint, map[string]string, bool) {
	var (
		parametricEndpoint *mockendpoint.Endpoint
		parametricParams   map[string]string
		found              bool
	)

	for _, c := range candidates {
		if c.Endpoint == nil || !c.Endpoint.Active() {
			continue
		}
		if string(c.Endpoint.Method) != method {
			continue
		}
		params, ok := c.Pattern.Match(path)
		if !ok {
			continue
		}
		if !c.Pattern.HasParams() {
			// Exact literal match wins immediately.
			return c.Endpoint, params, true
		}
		if !found {
			parametricEndpoint = c.Endpoint
			parametricParams = params
			found = true
		}
	}

	if found {
		return parametricEndpoint, parametricParams, true
	}
	return nil, nil, false
}
