package columns

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/komsit37/ratio/pkg/ratio/types"
)

// Context provides the per-report data resolvers may need.
type Context struct {
	Labels types.Labels
	// Events indexes event labels by month.
	Events map[types.MonthKey][]string
}

// NewContext indexes events by month.
func NewContext(labels types.Labels, events []types.Event) Context {
	idx := make(map[types.MonthKey][]string, len(events))
	for _, e := range events {
		idx[e.Date] = append(idx[e.Date], e.Label)
	}
	return Context{Labels: labels, Events: idx}
}

// Def describes a series column.
type Def struct {
	// Header returns the column title.
	Header func(l types.Labels) string
	// Value renders the cell.
	Value func(p types.AlignedPoint, c Context) string
	// Numeric columns are right-aligned.
	Numeric bool
}

// Registry maps column keys to definitions.
var Registry = map[string]Def{}

// Default is the column order when none is requested.
var Default = []string{"date", "primary", "reference", "ratio"}

func init() {
	// date: canonical month key
	Registry["date"] = Def{
		Header: func(types.Labels) string { return "date" },
		Value:  func(p types.AlignedPoint, _ Context) string { return string(p.Date) },
	}
	// month: "Jan 2006"
	Registry["month"] = Def{
		Header: func(types.Labels) string { return "month" },
		Value:  func(p types.AlignedPoint, _ Context) string { return MonthLabel(p.Date, "month") },
	}
	// year
	Registry["year"] = Def{
		Header: func(types.Labels) string { return "year" },
		Value:  func(p types.AlignedPoint, _ Context) string { return MonthLabel(p.Date, "year") },
	}
	// primary: dollars
	Registry["primary"] = Def{
		Header:  func(l types.Labels) string { return l.Primary + " (USD)" },
		Value:   func(p types.AlignedPoint, _ Context) string { return "$" + FormatFloat(p.Primary, 2) },
		Numeric: true,
	}
	// reference: dollars per reference unit
	Registry["reference"] = Def{
		Header: func(l types.Labels) string {
			if l.ReferenceUnit == "" {
				return l.Reference + " (USD)"
			}
			return l.Reference + " (USD/" + l.ReferenceUnit + ")"
		},
		Value:   func(p types.AlignedPoint, _ Context) string { return "$" + FormatFloat(p.Reference, 2) },
		Numeric: true,
	}
	// ratio: reference units per primary unit
	Registry["ratio"] = Def{
		Header: func(l types.Labels) string {
			if l.RatioUnit == "" {
				return l.Ratio
			}
			return l.Ratio + " (" + l.RatioUnit + ")"
		},
		Value:   func(p types.AlignedPoint, _ Context) string { return FormatFloat(p.Ratio, 4) },
		Numeric: true,
	}
	// event: labels of events dated in the row's month
	Registry["event"] = Def{
		Header: func(types.Labels) string { return "event" },
		Value: func(p types.AlignedPoint, c Context) string {
			return strings.Join(c.Events[p.Date], "; ")
		},
	}
}

// Compute determines the final column order. Explicit columns are honored
// in order with duplicates removed; an empty list yields Default.
func Compute(explicit []string) []string {
	if len(explicit) == 0 {
		return append([]string(nil), Default...)
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(explicit))
	for _, k := range explicit {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Validate reports the first column without a definition.
func Validate(cols []string) error {
	for _, c := range cols {
		if _, ok := Registry[c]; !ok {
			return &UnknownColumnError{Name: c, Available: available()}
		}
	}
	return nil
}

// UnknownColumnError reports an unknown column key.
type UnknownColumnError struct {
	Name      string
	Available []string
}

func (e *UnknownColumnError) Error() string {
	return "unknown column: " + e.Name + "; available: " + strings.Join(e.Available, ", ")
}

func available() []string {
	keys := make([]string, 0, len(Registry))
	for k := range Registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Header returns the title for col, falling back to the key itself.
func Header(col string, l types.Labels) string {
	if def, ok := Registry[col]; ok && def.Header != nil {
		return def.Header(l)
	}
	return col
}

// RenderValue renders one cell.
func RenderValue(col string, p types.AlignedPoint, c Context) string {
	if def, ok := Registry[col]; ok {
		return def.Value(p, c)
	}
	return ""
}

// IsNumeric reports whether col should be right-aligned.
func IsNumeric(col string) bool {
	return Registry[col].Numeric
}

// MonthLabel formats a month key for an axis unit: "Jan 2006" for "month",
// "2006" for "year". Unparseable keys are returned unchanged.
func MonthLabel(k types.MonthKey, unit string) string {
	t, err := time.Parse("2006-01", string(k))
	if err != nil {
		return string(k)
	}
	if unit == "month" {
		return t.Format("Jan 2006")
	}
	return t.Format("2006")
}

// FormatFloat formats a float with a fixed number of decimals and comma
// thousand separators. Infinities and NaN keep fmt's spelling.
func FormatFloat(v float64, decimals int) string {
	s := fmt.Sprintf("%.*f", decimals, v)
	// split into integer and fraction
	dot := strings.IndexByte(s, '.')
	intPart, fracPart := s, ""
	if dot != -1 {
		intPart, fracPart = s[:dot], s[dot:]
	}
	sign := ""
	if strings.HasPrefix(intPart, "-") || strings.HasPrefix(intPart, "+") {
		sign = intPart[:1]
		intPart = intPart[1:]
	}
	n := len(intPart)
	if n <= 3 || !isDigits(intPart) {
		return sign + intPart + fracPart
	}
	out := make([]byte, 0, n+n/3)
	rem := n % 3
	if rem == 0 {
		rem = 3
	}
	out = append(out, intPart[:rem]...)
	for i := rem; i < n; i += 3 {
		out = append(out, ',')
		out = append(out, intPart[i:i+3]...)
	}
	return sign + string(out) + fracPart
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
