package rewrite

import (
	"fmt"
	"net/url"
	"strings"
)

// Match is the result of resolving a request path.
type Match struct {
	Rule        Rule
	Params      map[string]string
	Destination *url.URL
}

// Origin is the scheme and host the request is forwarded to.
func (m Match) Origin() *url.URL {
	return &url.URL{Scheme: m.Destination.Scheme, Host: m.Destination.Host}
}

type compiledRule struct {
	rule     Rule
	source   []segment
	dest     *url.URL
	destPath []segment
}

// Router resolves request paths against a compiled rewrite table.
type Router struct {
	rules []compiledRule
}

// Compile validates every rule of t. Destinations must be absolute http(s)
// URLs and may only reference parameters declared by their source.
func Compile(t Table) (*Router, error) {
	r := &Router{rules: make([]compiledRule, 0, len(t))}

	for i, rule := range t {
		cr, err := compileRule(rule)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		r.rules = append(r.rules, cr)
	}

	return r, nil
}

// MustCompile is Compile for tables known to be valid. It panics otherwise.
func MustCompile(t Table) *Router {
	r, err := Compile(t)
	if err != nil {
		panic(err)
	}
	return r
}

func compileRule(rule Rule) (compiledRule, error) {
	source, err := parsePattern(rule.Source)
	if err != nil {
		return compiledRule{}, err
	}

	dest, err := url.Parse(rule.Destination)
	if err != nil {
		return compiledRule{}, fmt.Errorf("%w: %q: %v", ErrInvalidDestination, rule.Destination, err)
	}
	if dest.Scheme != "http" && dest.Scheme != "https" {
		return compiledRule{}, fmt.Errorf("%w: %q must use http or https", ErrInvalidDestination, rule.Destination)
	}
	if dest.Host == "" {
		return compiledRule{}, fmt.Errorf("%w: %q has no host", ErrInvalidDestination, rule.Destination)
	}

	declared := make(map[string]bool)
	for _, seg := range source {
		if seg.kind != segLiteral {
			declared[seg.value] = true
		}
	}

	var destPath []segment
	for _, part := range splitPath(dest.Path) {
		seg, err := parseSegment(part)
		if err != nil {
			return compiledRule{}, fmt.Errorf("%w: %q: %v", ErrInvalidDestination, rule.Destination, err)
		}
		if seg.kind != segLiteral && !declared[seg.value] {
			return compiledRule{}, fmt.Errorf("%w: %q in %q", ErrUnknownParam, seg.value, rule.Destination)
		}
		destPath = append(destPath, seg)
	}

	return compiledRule{
		rule:     rule,
		source:   source,
		dest:     dest,
		destPath: destPath,
	}, nil
}

// Resolve returns the destination for path using the first matching rule.
func (r *Router) Resolve(path string) (Match, bool) {
	parts := splitPath(path)

	for _, cr := range r.rules {
		bound := make(map[string][]string)
		if !match(cr.source, parts, bound) {
			continue
		}

		params := make(map[string]string, len(bound))
		for name, values := range bound {
			params[name] = strings.Join(values, "/")
		}

		return Match{
			Rule:        cr.rule,
			Params:      params,
			Destination: cr.build(bound),
		}, true
	}

	return Match{}, false
}

func (cr compiledRule) build(bound map[string][]string) *url.URL {
	var out []string
	for _, seg := range cr.destPath {
		if seg.kind == segLiteral {
			out = append(out, seg.value)
			continue
		}
		out = append(out, bound[seg.value]...)
	}

	dest := *cr.dest
	dest.Path = "/" + strings.Join(out, "/")
	dest.RawPath = ""
	return &dest
}

// Rules returns the table the router was compiled from.
func (r *Router) Rules() Table {
	t := make(Table, 0, len(r.rules))
	for _, cr := range r.rules {
		t = append(t, cr.rule)
	}
	return t
}

// Origins returns the distinct destination origins in table order.
func (r *Router) Origins() []*url.URL {
	seen := make(map[string]bool)
	var origins []*url.URL

	for _, cr := range r.rules {
		origin := &url.URL{Scheme: cr.dest.Scheme, Host: cr.dest.Host}
		if seen[origin.String()] {
			continue
		}
		seen[origin.String()] = true
		origins = append(origins, origin)
	}

	return origins
}
