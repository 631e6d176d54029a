package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/komsit37/ratio/pkg/ratio/types"
)

// Filter matches an event label.
type Filter interface {
	Match(label string) bool
}

// Parse builds a filter from an expression:
// - "none": matches nothing
// - Comma-separated exact labels: "Nixon Shock,Bretton Woods"
// - Glob: "Nixon*"
// - Regex: "/^FDR/"
// - Anything else: case-insensitive substring
func Parse(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	switch {
	case expr == "":
		return Always(true), nil
	case strings.EqualFold(expr, "none"):
		return Always(false), nil
	case strings.HasPrefix(expr, "/") && strings.HasSuffix(expr, "/") && len(expr) > 2:
		re, err := regexp.Compile(expr[1 : len(expr)-1])
		if err != nil {
			return nil, fmt.Errorf("event filter %q: %w", expr, err)
		}
		return Regex{re: re}, nil
	case strings.Contains(expr, ","):
		set := map[string]struct{}{}
		for _, p := range strings.Split(expr, ",") {
			if p = strings.TrimSpace(p); p != "" {
				set[p] = struct{}{}
			}
		}
		return ExactSet{set: set}, nil
	case strings.ContainsAny(expr, "*?["):
		if _, err := filepath.Match(expr, ""); err != nil {
			return nil, fmt.Errorf("event filter %q: %w", expr, err)
		}
		return Glob{pattern: expr}, nil
	}
	return SubstrCI{needle: expr}, nil
}

// Events keeps the events whose label matches f, preserving order.
func Events(events []types.Event, f Filter) []types.Event {
	if f == nil {
		f = Always(true)
	}
	out := make([]types.Event, 0, len(events))
	for _, e := range events {
		if f.Match(e.Label) {
			out = append(out, e)
		}
	}
	return out
}

type Always bool

func (a Always) Match(string) bool { return bool(a) }

type ExactSet struct{ set map[string]struct{} }

func (e ExactSet) Match(label string) bool {
	_, ok := e.set[label]
	return ok
}

type Glob struct{ pattern string }

func (g Glob) Match(label string) bool {
	ok, _ := filepath.Match(g.pattern, label)
	return ok
}

func (g Glob) String() string { return fmt.Sprintf("glob:%s", g.pattern) }

type Regex struct{ re *regexp.Regexp }

func (r Regex) Match(label string) bool { return r.re.MatchString(label) }

func (r Regex) String() string { return fmt.Sprintf("regex:%s", r.re) }

// SubstrCI matches if label contains needle, case-insensitively.
type SubstrCI struct{ needle string }

func (s SubstrCI) Match(label string) bool {
	return strings.Contains(strings.ToLower(label), strings.ToLower(s.needle))
}

func (s SubstrCI) String() string { return fmt.Sprintf("substr-ci:%s", s.needle) }
