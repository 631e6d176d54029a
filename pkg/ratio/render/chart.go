package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/komsit37/ratio/pkg/ratio/columns"
	"github.com/komsit37/ratio/pkg/ratio/types"
	"github.com/komsit37/ratio/pkg/ratio/window"
)

var levels = []rune("▁▂▃▄▅▆▇█")

// ChartRenderer draws the ratio as a terminal sparkline.
type ChartRenderer struct{}

func NewChartRenderer() *ChartRenderer { return &ChartRenderer{} }

func (r *ChartRenderer) Render(w io.Writer, rep types.Report, opts RenderOptions) error {
	return writeChart(w, rep, opts)
}

func writeChart(w io.Writer, rep types.Report, opts RenderOptions) error {
	scale := "linear"
	if opts.LogScale {
		scale = "log"
	}
	title := rep.Labels.Ratio
	if rep.Labels.RatioUnit != "" {
		title += " (" + rep.Labels.RatioUnit + ")"
	}
	fmt.Fprintf(w, "%s · %s · %s scale\n", boldIf(opts.Color, title), rangeTitle(rep.Range), scale)
	if len(rep.Series) == 0 {
		_, err := fmt.Fprintln(w, "no data")
		return err
	}

	width := opts.Width
	if width <= 0 {
		width = 80
	}
	values := make([]float64, len(rep.Series))
	for i, p := range rep.Series {
		values[i] = p.Ratio
	}
	line := Sparkline(values, width, opts.LogScale)
	cols := len([]rune(line))

	st := rep.Stats
	fmt.Fprintf(w, "max %s\n", columns.FormatFloat(st.Max, 4))
	fmt.Fprintln(w, colorize(opts.Color, text.FgYellow, line))
	fmt.Fprintf(w, "min %s\n", columns.FormatFloat(st.Min, 4))

	unit := window.AxisUnit(rep.Range)
	first := columns.MonthLabel(rep.Series[0].Date, unit)
	last := columns.MonthLabel(rep.Series[len(rep.Series)-1].Date, unit)
	fmt.Fprintln(w, axis(first, last, cols))

	for _, e := range rep.Events {
		col := eventColumn(rep.Series, e.Date, cols)
		marker := strings.Repeat(" ", col) + "^ " + e.Label + " (" + string(e.Date) + ")"
		fmt.Fprintln(w, colorize(opts.Color, text.FgRed, marker))
	}
	return nil
}

// Sparkline buckets values into at most width columns (bucket mean) and maps
// each column to a block level. Log scale plots log10 of the values.
// Non-finite and, on log scale, non-positive buckets are drawn blank.
func Sparkline(values []float64, width int, logScale bool) string {
	n := len(values)
	if n == 0 || width <= 0 {
		return ""
	}
	cols := n
	if cols > width {
		cols = width
	}
	pts := make([]float64, cols)
	for i := 0; i < cols; i++ {
		lo, hi := i*n/cols, (i+1)*n/cols
		var sum float64
		for _, v := range values[lo:hi] {
			sum += v
		}
		v := sum / float64(hi-lo)
		if logScale {
			if v > 0 {
				v = math.Log10(v)
			} else {
				v = math.NaN()
			}
		}
		pts[i] = v
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range pts {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var b strings.Builder
	top := float64(len(levels) - 1)
	for _, v := range pts {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			b.WriteRune(' ')
		case hi == lo:
			b.WriteRune(levels[len(levels)/2])
		default:
			b.WriteRune(levels[int(math.Round((v-lo)/(hi-lo)*top))])
		}
	}
	return b.String()
}

// eventColumn maps an event month to its sparkline column.
func eventColumn(series types.Series, date types.MonthKey, cols int) int {
	idx := len(series) - 1
	for i, p := range series {
		if p.Date >= date {
			idx = i
			break
		}
	}
	return idx * cols / len(series)
}

func axis(first, last string, cols int) string {
	gap := cols - len(first) - len(last)
	if gap < 1 {
		return first + " - " + last
	}
	return first + strings.Repeat(" ", gap) + last
}

func rangeTitle(r types.Range) string {
	switch r {
	case types.RangeOneYear:
		return "1 year"
	case types.RangeFiveYears:
		return "5 years"
	case types.RangeTenYears:
		return "10 years"
	case types.RangeTwentyYears:
		return "20 years"
	case types.RangeAll:
		return "all time"
	}
	return string(r)
}
