// Package condition evaluates Condition predicates against an incoming
// request and picks the first fully-matching ConditionalResponse. See
// spec.md §4.8.
package condition

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/getmockd/mockd/pkg/mockendpoint"
)

// Request is the slice of an incoming request a Condition can read from.
type Request struct {
	Query  map[string][]string
	Header http.Header
	Body   interface{} // parsed JSON body, or nil
}

// Match reports whether every condition in conds holds against req
// (logical AND; an empty list matches).
func Match(conds []mockendpoint.Condition, req Request) bool {
	for _, c := range conds {
		if !matchOne(c, req) {
			return false
		}
	}
	return true
}

// Select returns the index of the first ConditionalResponse in
// candidates whose conditions all match, or -1 if none do.
func Select(candidates []mockendpoint.ConditionalResponse, req Request) int {
	for i, c := range candidates {
		if Match(c.Conditions, req) {
			return i
		}
	}
	return -1
}

func matchOne(c mockendpoint.Condition, req Request) bool {
	value, defined := fieldValue(c, req)

	if c.Operator == mockendpoint.OpExists {
		return defined && value != ""
	}
	if !defined {
		return false
	}

	switch c.Operator {
	case mockendpoint.OpEq:
		return value == c.Value
	case mockendpoint.OpNeq:
		return value != c.Value
	case mockendpoint.OpContains:
		return strings.Contains(value, c.Value)
	case mockendpoint.OpStartsWith:
		return strings.HasPrefix(value, c.Value)
	case mockendpoint.OpEndsWith:
		return strings.HasSuffix(value, c.Value)
	case mockendpoint.OpRegex:
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return false
		}
		return re.MatchString(value)
	default:
		return false
	}
}

func fieldValue(c mockendpoint.Condition, req Request) (string, bool) {
	switch c.Source {
	case mockendpoint.SourceQuery:
		if req.Query == nil {
			return "", false
		}
		if vs, ok := req.Query[c.Field]; ok && len(vs) > 0 {
			return vs[0], true
		}
		return "", false
	case mockendpoint.SourceHeader:
		if req.Header == nil {
			return "", false
		}
		if v := req.Header.Get(c.Field); v != "" {
			return v, true
		}
		return "", false
	case mockendpoint.SourceBody:
		if req.Body == nil {
			return "", false
		}
		v, ok := lookupDotPath(req.Body, c.Field)
		if !ok {
			return "", false
		}
		return stringify(v), true
	default:
		return "", false
	}
}

// lookupDotPath walks a dot-separated field path (spec.md §3's "field path,
// dot-separated for body") into a parsed JSON value, descending through
// nested objects and numerically-indexed arrays.
func lookupDotPath(v interface{}, path string) (interface{}, bool) {
	current := v
	for _, part := range strings.Split(path, ".") {
		switch c := current.(type) {
		case map[string]interface{}:
			val, ok := c[part]
			if !ok {
				return nil, false
			}
			current = val
		case []interface{}:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(c) {
				return nil, false
			}
			current = c[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
