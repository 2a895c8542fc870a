package rewrite

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Rule forwards every path matching Source to Destination.
type Rule struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// Table is an ordered rewrite table. The first matching rule wins.
type Table []Rule

// DefaultTable proxies everything under /api/ to the model API on
// 127.0.0.1:8000, preserving the suffix.
func DefaultTable() Table {
	return Table{
		{
			Source:      "/api/:path*",
			Destination: "http://127.0.0.1:8000/:path*",
		},
	}
}

var (
	ErrInvalidSource      = errors.New("rewrite: invalid source pattern")
	ErrInvalidDestination = errors.New("rewrite: invalid destination")
	ErrUnknownParam       = errors.New("rewrite: destination references undeclared parameter")
)

type segmentKind int

const (
	segLiteral segmentKind = iota
	segOne
	segOptional
	segOneOrMore
	segZeroOrMore
)

type segment struct {
	kind  segmentKind
	value string // literal text or parameter name
}

var paramName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func parseSegment(raw string) (segment, error) {
	if !strings.HasPrefix(raw, ":") {
		return segment{kind: segLiteral, value: raw}, nil
	}

	name, kind := raw[1:], segOne
	switch {
	case strings.HasSuffix(name, "*"):
		name, kind = strings.TrimSuffix(name, "*"), segZeroOrMore
	case strings.HasSuffix(name, "+"):
		name, kind = strings.TrimSuffix(name, "+"), segOneOrMore
	case strings.HasSuffix(name, "?"):
		name, kind = strings.TrimSuffix(name, "?"), segOptional
	}

	if !paramName.MatchString(name) {
		return segment{}, fmt.Errorf("invalid parameter %q", raw)
	}

	return segment{kind: kind, value: name}, nil
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func parsePattern(pattern string) ([]segment, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("%w: %q must start with /", ErrInvalidSource, pattern)
	}

	parts := splitPath(pattern)
	segments := make([]segment, 0, len(parts))
	seen := make(map[string]bool)

	for i, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSource, pattern, err)
		}
		if seg.kind != segLiteral {
			if seen[seg.value] {
				return nil, fmt.Errorf("%w: %q: duplicate parameter %q", ErrInvalidSource, pattern, seg.value)
			}
			seen[seg.value] = true
		}
		if (seg.kind == segZeroOrMore || seg.kind == segOneOrMore) && i != len(parts)-1 {
			return nil, fmt.Errorf("%w: %q: repeated parameter %q must be last", ErrInvalidSource, pattern, seg.value)
		}
		segments = append(segments, seg)
	}

	return segments, nil
}

// match binds path segments to pattern segments. Optional segments are tried
// both present and absent.
func match(pattern []segment, parts []string, params map[string][]string) bool {
	if len(pattern) == 0 {
		return len(parts) == 0
	}

	seg := pattern[0]
	switch seg.kind {
	case segLiteral:
		if len(parts) == 0 || parts[0] != seg.value {
			return false
		}
		return match(pattern[1:], parts[1:], params)
	case segOne:
		if len(parts) == 0 {
			return false
		}
		params[seg.value] = parts[:1]
		return match(pattern[1:], parts[1:], params)
	case segOptional:
		if len(parts) > 0 {
			params[seg.value] = parts[:1]
			if match(pattern[1:], parts[1:], params) {
				return true
			}
		}
		delete(params, seg.value)
		return match(pattern[1:], parts, params)
	case segOneOrMore:
		if len(parts) == 0 {
			return false
		}
		params[seg.value] = parts
		return true
	case segZeroOrMore:
		params[seg.value] = parts
		return true
	}

	return false
}
