package window

import (
	"strings"

	"github.com/komsit37/ratio/pkg/ratio/types"
)

// Ranges lists the selectors in display order.
var Ranges = []types.Range{
	types.RangeOneYear,
	types.RangeFiveYears,
	types.RangeTenYears,
	types.RangeTwentyYears,
	types.RangeAll,
}

var counts = map[types.Range]int{
	types.RangeOneYear:     12,
	types.RangeFiveYears:   60,
	types.RangeTenYears:    120,
	types.RangeTwentyYears: 240,
}

var aliases = map[string]types.Range{
	"1y":  types.RangeOneYear,
	"5y":  types.RangeFiveYears,
	"10y": types.RangeTenYears,
	"20y": types.RangeTwentyYears,
	"max": types.RangeAll,
}

// Count returns the number of trailing months r keeps. ok is false for
// RangeAll. Unknown values count as RangeTenYears.
func Count(r types.Range) (n int, ok bool) {
	if r == types.RangeAll {
		return 0, false
	}
	if n, ok := counts[r]; ok {
		return n, true
	}
	return counts[types.RangeTenYears], true
}

// ParseRange accepts the canonical tokens ("1year", "5years", "10years",
// "20years", "all") and the short aliases ("1y", "5y", "10y", "20y", "max").
func ParseRange(s string) (types.Range, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range Ranges {
		if s == string(r) {
			return r, nil
		}
	}
	if r, ok := aliases[s]; ok {
		return r, nil
	}
	return "", &UnknownRangeError{Name: s, Available: rangeNames()}
}

// UnknownRangeError reports an unknown range token.
type UnknownRangeError struct {
	Name      string
	Available []string
}

func (e *UnknownRangeError) Error() string {
	return "unknown range: " + e.Name + "; available: " + strings.Join(e.Available, ", ")
}

func rangeNames() []string {
	out := make([]string, 0, len(Ranges))
	for _, r := range Ranges {
		out = append(out, string(r))
	}
	return out
}

// Select returns a copy of the trailing window of series for r.
// A series shorter than the window is returned whole.
func Select(series types.Series, r types.Range) types.Series {
	start := 0
	if n, ok := Count(r); ok && len(series) > n {
		start = len(series) - n
	}
	out := make(types.Series, len(series)-start)
	copy(out, series[start:])
	return out
}

// Summarize computes min, max, mean and last ratio of the window.
// An empty window yields the zero Stats.
func Summarize(w types.Series) types.Stats {
	if len(w) == 0 {
		return types.Stats{}
	}
	st := types.Stats{Min: w[0].Ratio, Max: w[0].Ratio}
	var sum float64
	for _, p := range w {
		if p.Ratio < st.Min {
			st.Min = p.Ratio
		}
		if p.Ratio > st.Max {
			st.Max = p.Ratio
		}
		sum += p.Ratio
	}
	st.Mean = sum / float64(len(w))
	st.Current = w[len(w)-1].Ratio
	return st
}

// EventsIn returns the events dated within the window's first and last
// month, inclusive, in their original order.
func EventsIn(events []types.Event, w types.Series) []types.Event {
	out := make([]types.Event, 0)
	if len(w) == 0 {
		return out
	}
	first, last := w[0].Date, w[len(w)-1].Date
	for _, e := range events {
		if e.Date < first || e.Date > last {
			continue
		}
		out = append(out, e)
	}
	return out
}

// AxisUnit is the time unit used for axis labels: months for a one-year
// window, years otherwise.
func AxisUnit(r types.Range) string {
	if r == types.RangeOneYear {
		return "month"
	}
	return "year"
}
