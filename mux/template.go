package mux

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vitalvas/strela/constraint"
)

// segmentKind classifies a template segment.
type segmentKind uint8

const (
	segmentLiteral segmentKind = iota
	segmentParam
	segmentCatchAll
)

// segment is a single path segment of a route template.
type segment struct {
	kind     segmentKind
	literal  string
	name     string
	spec     string
	optional bool
	matchers []constraint.Matcher
}

// accept reports whether every bound constraint accepts v.
func (s *segment) accept(v string) bool {
	for _, m := range s.matchers {
		if !m.Match(v) {
			return false
		}
	}

	return true
}

// routeTemplate is a parsed and constraint-resolved path template.
type routeTemplate struct {
	// template is the normalized template string.
	template string
	// segments in path order.
	segments []segment
	// varsN are the variable names in order.
	varsN []string
	// minLen is the number of path segments required to match.
	minLen int
	// catchAll is set when the last segment consumes the remaining path.
	catchAll bool
}

// newRouteTemplate parses tpl and resolves its constraint references
// against reg. All syntax and constraint errors surface here, at
// registration time.
func newRouteTemplate(tpl string, reg *constraint.Registry) (*routeTemplate, error) {
	if _, err := braceIndices(tpl); err != nil {
		return nil, err
	}

	normalized := "/" + strings.Trim(tpl, "/")

	raw, err := splitTemplate(strings.TrimPrefix(normalized, "/"))
	if err != nil {
		return nil, fmt.Errorf("mux: %w in %q", err, tpl)
	}

	t := &routeTemplate{
		template: normalized,
		segments: make([]segment, 0, len(raw)),
	}

	for i, part := range raw {
		seg, err := parseSegment(part, reg)
		if err != nil {
			return nil, fmt.Errorf("mux: %w in %q", err, tpl)
		}

		if seg.kind == segmentCatchAll && i != len(raw)-1 {
			return nil, fmt.Errorf("mux: catch-all %q must be the last segment in %q", seg.name, tpl)
		}

		if i > 0 {
			prev := t.segments[i-1]
			if prev.optional && !seg.optional {
				return nil, fmt.Errorf("mux: optional variable %q must be followed only by optional variables in %q", prev.name, tpl)
			}
		}

		if seg.kind != segmentLiteral {
			t.varsN = append(t.varsN, seg.name)
		}

		switch {
		case seg.kind == segmentCatchAll:
			t.catchAll = true
		case !seg.optional:
			t.minLen++
		}

		t.segments = append(t.segments, seg)
	}

	if err := checkDuplicateVars(t.varsN); err != nil {
		return nil, err
	}

	return t, nil
}

// splitTemplate splits on '/' outside of braces so that constraint
// arguments may contain slashes.
func splitTemplate(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}

	var (
		parts []string
		level int
		start int
	)

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			level++
		case '}':
			level--
		case '/':
			if level == 0 {
				if i == start {
					return nil, fmt.Errorf("empty segment")
				}
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}

	return append(parts, s[start:]), nil
}

// parseSegment parses "literal", "{name}", "{name:refs}", "{name?}",
// "{name:refs?}" or "{*name}".
func parseSegment(part string, reg *constraint.Registry) (segment, error) {
	idxs, err := braceIndices(part)
	if err != nil {
		return segment{}, err
	}

	if len(idxs) == 0 {
		return segment{kind: segmentLiteral, literal: part}, nil
	}

	if len(idxs) != 2 || idxs[0] != 0 || idxs[1] != len(part) {
		return segment{}, fmt.Errorf("variable %q must occupy a whole segment", part)
	}

	body := part[1 : len(part)-1]
	seg := segment{kind: segmentParam}

	if strings.HasPrefix(body, "*") {
		seg.kind = segmentCatchAll
		body = body[1:]
	}

	if strings.HasSuffix(body, "?") {
		if seg.kind == segmentCatchAll {
			return segment{}, fmt.Errorf("catch-all %q cannot be optional", part)
		}
		seg.optional = true
		body = body[:len(body)-1]
	}

	seg.name = body
	if i := strings.IndexByte(body, ':'); i != -1 {
		seg.name = body[:i]
		seg.spec = body[i+1:]
	}

	if seg.name == "" {
		return segment{}, fmt.Errorf("missing name in %q", part)
	}

	if strings.ContainsAny(seg.name, "{}()*?/") {
		return segment{}, fmt.Errorf("invalid variable name %q", seg.name)
	}

	if seg.spec != "" {
		matchers, err := reg.BuildAll(seg.spec)
		if err != nil {
			return segment{}, fmt.Errorf("variable %q: %w", seg.name, err)
		}
		seg.matchers = matchers
	}

	return seg, nil
}

// match reports whether the path segments fit the template and satisfy all
// bound constraints. When dst is non-nil the variables are written into it.
func (t *routeTemplate) match(path []string, ignoreCase bool, dst map[string]string) bool {
	if len(path) < t.minLen || (!t.catchAll && len(path) > len(t.segments)) {
		return false
	}

	for i := range t.segments {
		s := &t.segments[i]

		switch s.kind {
		case segmentLiteral:
			if !literalEqual(s.literal, path[i], ignoreCase) {
				return false
			}
		case segmentParam:
			if i >= len(path) {
				// Only optional variables remain.
				return true
			}
			if !s.accept(path[i]) {
				return false
			}
			if dst != nil {
				dst[s.name] = path[i]
			}
		case segmentCatchAll:
			rest := strings.Join(path[i:], "/")
			if rest != "" && !s.accept(rest) {
				return false
			}
			if dst != nil {
				dst[s.name] = rest
			}
			return true
		}
	}

	return true
}

// vars extracts the variables of a path already known to match.
func (t *routeTemplate) vars(path []string, ignoreCase bool) map[string]string {
	if len(t.varsN) == 0 {
		return nil
	}

	m := make(map[string]string, len(t.varsN))
	t.match(path, ignoreCase, m)

	return m
}

// build renders the template with values, validating each against its
// constraints.
func (t *routeTemplate) build(values map[string]string) (string, error) {
	var b strings.Builder

	for i := range t.segments {
		s := &t.segments[i]

		if s.kind == segmentLiteral {
			b.WriteByte('/')
			b.WriteString(s.literal)
			continue
		}

		v, ok := values[s.name]
		if !ok || v == "" {
			if s.optional || s.kind == segmentCatchAll {
				break
			}
			return "", fmt.Errorf("mux: missing route variable %q", s.name)
		}

		if !s.accept(v) {
			return "", fmt.Errorf("mux: variable %q doesn't match, expected %q", s.name, s.spec)
		}

		b.WriteByte('/')
		b.WriteString(v)
	}

	if b.Len() == 0 {
		return "/", nil
	}

	return b.String(), nil
}

// overlaps reports whether some path can match both templates when
// constraints are ignored.
func (t *routeTemplate) overlaps(o *routeTemplate, ignoreCase bool) bool {
	if !t.catchAll && o.minLen > len(t.segments) {
		return false
	}
	if !o.catchAll && t.minLen > len(o.segments) {
		return false
	}

	n := min(len(t.segments), len(o.segments))
	for i := 0; i < n; i++ {
		a, b := &t.segments[i], &o.segments[i]
		if a.kind == segmentCatchAll || b.kind == segmentCatchAll {
			return true
		}
		if a.kind == segmentLiteral && b.kind == segmentLiteral && !literalEqual(a.literal, b.literal, ignoreCase) {
			return false
		}
	}

	return true
}

func literalEqual(a, b string, ignoreCase bool) bool {
	if ignoreCase {
		return strings.EqualFold(a, b)
	}

	return a == b
}

// splitPath splits a cleaned request path into segments. With encoded set,
// p is the escaped path and each segment is unescaped after splitting so
// that %2F stays inside its segment.
func splitPath(p string, encoded bool) ([]string, bool) {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil, true
	}

	parts := strings.Split(p, "/")
	if !encoded {
		return parts, true
	}

	for i, part := range parts {
		v, err := url.PathUnescape(part)
		if err != nil {
			return nil, false
		}
		parts[i] = v
	}

	return parts, true
}

// braceIndices returns the start and end+1 indices of each top-level
// {...} pair in s. Returns an error if braces are unbalanced.
func braceIndices(s string) ([]int, error) {
	var (
		idxs  []int
		level int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if level++; level == 1 {
				idxs = append(idxs, i)
			}
		case '}':
			if level--; level == 0 {
				idxs = append(idxs, i+1)
			} else if level < 0 {
				return nil, fmt.Errorf("mux: unbalanced braces in %q", s)
			}
		}
	}
	if level != 0 {
		return nil, fmt.Errorf("mux: unbalanced braces in %q", s)
	}
	return idxs, nil
}

// checkDuplicateVars returns an error if any variable name is repeated.
func checkDuplicateVars(vars []string) error {
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		if seen[v] {
			return fmt.Errorf("mux: duplicated route variable %q", v)
		}
		seen[v] = true
	}
	return nil
}
