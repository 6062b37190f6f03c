package template

import mathrand "math/rand/v2"

// Context carries everything a template expression can reference: the
// request's query/header values, its parsed JSON body, and the path
// parameters bound by the matcher (spec.md §4.1).
type Context struct {
	Query      map[string][]string
	Headers    map[string][]string
	Body       interface{} // parsed JSON body, or nil
	PathParams map[string]string

	// Rand, if set, is used instead of the global math/rand/v2 source.
	// Tests set this for deterministic output; production leaves it nil.
	Rand *mathrand.Rand
}

func (c *Context) queryFirst(key string) (string, bool) {
	if c == nil || c.Query == nil {
		return "", false
	}
	if vs, ok := c.Query[key]; ok && len(vs) > 0 {
		return vs[0], true
	}
	return "", false
}

func (c *Context) headerFirst(key string) (string, bool) {
	if c == nil || c.Headers == nil {
		return "", false
	}
	if vs, ok := c.Headers[key]; ok && len(vs) > 0 {
		return vs[0], true
	}
	// headers are case-insensitive; fall back to a linear scan.
	for k, vs := range c.Headers {
		if len(vs) > 0 && equalFold(k, key) {
			return vs[0], true
		}
	}
	return "", false
}

func (c *Context) pathParam(key string) (string, bool) {
	if c == nil || c.PathParams == nil {
		return "", false
	}
	v, ok := c.PathParams[key]
	return v, ok
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
