// Package pathmatch implements segment-wise matching of registered
// path patterns (literal segments plus :name placeholders) against an
// incoming request path. See spec.md §4.1.
package pathmatch

import "strings"

// Pattern is a compiled path pattern: an ordered list of segments, each
// either a literal or a named parameter placeholder.
type Pattern struct {
	raw      string
	segments []segment
}

type segment struct {
	literal string
	param   string // non-empty if this segment is a :name placeholder
}

// Compile splits pattern on '/', discarding empty segments (so leading
// and trailing slashes are insignificant), and classifies each segment
// as literal or parametric.
func Compile(pattern string) Pattern {
	parts := splitPath(pattern)
	segs := make([]segment, len(parts))
	for i, p := range parts {
		if strings.HasPrefix(p, ":") && len(p) > 1 {
			segs[i] = segment{param: p[1:]}
		} else {
			segs[i] = segment{literal: p}
		}
	}
	return Pattern{raw: pattern, segments: segs}
}

// Raw returns the original, uncompiled pattern string.
func (p Pattern) Raw() string { return p.raw }

// HasParams reports whether the pattern contains at least one :name
// placeholder. Exact (parameter-free) patterns take precedence over
// parametric ones for the same (method, path) per spec.md §4.1.
func (p Pattern) HasParams() bool {
	for _, s := range p.segments {
		if s.param != "" {
			return true
		}
	}
	return false
}

// Match attempts to match path against the pattern. It returns the
// captured parameter values (name -> raw segment) and whether the match
// succeeded. Segment counts must match exactly; a parameter segment
// binds any non-empty segment, a literal segment must equal it exactly.
func (p Pattern) Match(path string) (map[string]string, bool) {
	reqSegs := splitPath(path)
	if len(reqSegs) != len(p.segments) {
		return nil, false
	}

	var params map[string]string
	for i, seg := range p.segments {
		reqSeg := reqSegs[i]
		if seg.param != "" {
			if reqSeg == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string, len(p.segments))
			}
			params[seg.param] = reqSeg
			continue
		}
		if reqSeg != seg.literal {
			return nil, false
		}
	}
	if params == nil {
		params = map[string]string{}
	}
	return params, true
}

// splitPath splits a path on '/', discarding empty segments produced by
// leading/trailing/duplicate slashes.
func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	segs := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
