package reconcile

import (
	"sort"
	"strconv"
	"strings"

	"github.com/komsit37/ratio/pkg/ratio/types"
)

// NormalizeMonth converts "YYYY-MM" or "YYYY-MM-DD" into a MonthKey.
// The month is zero-padded; anything after the month part is ignored.
func NormalizeMonth(raw string) (types.MonthKey, bool) {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) < 2 {
		return "", false
	}
	year, month := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if year == "" || !isDigits(year) || !isDigits(month) {
		return "", false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return "", false
	}
	if len(month) < 2 {
		month = "0" + month
	}
	return types.MonthKey(year + "-" + month), true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Index maps each row to its MonthKey. Rows whose date does not normalize
// are skipped; a later row for the same month replaces an earlier one.
func Index(rows []types.RawPricePoint) map[types.MonthKey]float64 {
	out := make(map[types.MonthKey]float64, len(rows))
	for _, r := range rows {
		k, ok := NormalizeMonth(r.Date)
		if !ok {
			continue
		}
		out[k] = r.Value
	}
	return out
}

// Reconcile inner-joins both series by month and derives
// Ratio = Primary / Reference. The result is sorted ascending by month and
// is empty, never nil, when the series share no month.
func Reconcile(primary, reference []types.RawPricePoint) types.Series {
	p := Index(primary)
	r := Index(reference)

	keys := make([]string, 0, len(p))
	for k := range p {
		if _, ok := r[k]; ok {
			keys = append(keys, string(k))
		}
	}
	sort.Strings(keys)

	out := make(types.Series, 0, len(keys))
	for _, k := range keys {
		mk := types.MonthKey(k)
		pv, rv := p[mk], r[mk]
		out = append(out, types.AlignedPoint{
			Date:      mk,
			Primary:   pv,
			Reference: rv,
			Ratio:     pv / rv,
		})
	}
	return out
}
