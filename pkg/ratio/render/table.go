package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/komsit37/ratio/pkg/ratio/columns"
	"github.com/komsit37/ratio/pkg/ratio/types"
)

// TableRenderer writes the selected sections as terminal tables.
type TableRenderer struct{}

func NewTableRenderer() *TableRenderer { return &TableRenderer{} }

func (r *TableRenderer) Render(w io.Writer, rep types.Report, opts RenderOptions) error {
	sections := opts.Sections
	if sections == 0 {
		sections = SectionsOverview
	}
	var parts []func() error
	if sections&SectionStats != 0 {
		parts = append(parts, func() error { return writeStats(w, rep, opts) })
	}
	if sections&SectionChart != 0 {
		parts = append(parts, func() error { return writeChart(w, rep, opts) })
	}
	if sections&SectionSeries != 0 {
		parts = append(parts, func() error { return writeSeries(w, rep, opts) })
	}
	if sections&SectionEvents != 0 && len(rep.Events) > 0 {
		parts = append(parts, func() error { return writeEvents(w, rep, opts) })
	}
	for i, p := range parts {
		if i > 0 {
			// blank line between sections
			fmt.Fprintln(w)
		}
		if err := p(); err != nil {
			return err
		}
	}
	return nil
}

func newWriter(w io.Writer, opts RenderOptions) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if opts.Color {
		tw.SetStyle(table.StyleColoredDark)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false
	return tw
}

func colorize(on bool, c text.Color, s string) string {
	if !on {
		return s
	}
	return text.Colors{c}.Sprint(s)
}

// writeStats prints the stat cards: current, average, minimum, maximum.
func writeStats(w io.Writer, rep types.Report, opts RenderOptions) error {
	tw := newWriter(w, opts)
	hdr := table.Row{"CURRENT VALUE", "AVERAGE", "MINIMUM", "MAXIMUM"}
	row := table.Row{
		colorize(opts.Color, text.FgYellow, columns.FormatFloat(rep.Stats.Current, 4)),
		colorize(opts.Color, text.FgBlue, columns.FormatFloat(rep.Stats.Mean, 4)),
		colorize(opts.Color, text.FgRed, columns.FormatFloat(rep.Stats.Min, 4)),
		colorize(opts.Color, text.FgGreen, columns.FormatFloat(rep.Stats.Max, 4)),
	}
	if rep.Live != nil {
		hdr = append(hdr, "LIVE")
		row = append(row, columns.FormatFloat(rep.Live.Ratio, 4))
	}
	tw.AppendHeader(hdr)
	tw.AppendRow(row)

	cfgs := make([]table.ColumnConfig, 0, len(hdr))
	for i := range hdr {
		cfgs = append(cfgs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	tw.SetColumnConfigs(cfgs)

	caption := rep.Labels.RatioCaption
	if n := len(rep.Series); n > 0 {
		caption = fmt.Sprintf("%s · %s to %s (%d months)", caption, rep.Series[0].Date, rep.Series[n-1].Date, n)
	} else {
		caption = strings.TrimSpace(caption + " · no data")
	}
	tw.Render()
	_, err := fmt.Fprintln(w, caption)
	return err
}

// writeSeries prints one row per aligned month.
func writeSeries(w io.Writer, rep types.Report, opts RenderOptions) error {
	cols := columns.Compute(opts.Columns)
	if err := columns.Validate(cols); err != nil {
		return err
	}
	cc := columns.NewContext(rep.Labels, rep.Events)

	tw := newWriter(w, opts)
	hdr := make(table.Row, len(cols))
	for i, c := range cols {
		hdr[i] = strings.ToUpper(columns.Header(c, rep.Labels))
	}
	tw.AppendHeader(hdr)

	// Column configs: wrap text to MaxColWidth (default 40), no truncation
	maxWidth := opts.MaxColWidth
	if maxWidth <= 0 {
		maxWidth = 40
	}
	cfgs := make([]table.ColumnConfig, 0, len(cols))
	for i, c := range cols {
		cfg := table.ColumnConfig{Number: i + 1, WidthMax: maxWidth}
		if columns.IsNumeric(c) {
			cfg.Align = text.AlignRight
			cfg.AlignHeader = text.AlignRight
		}
		cfgs = append(cfgs, cfg)
	}
	tw.SetColumnConfigs(cfgs)

	for _, p := range rep.Series {
		row := make(table.Row, len(cols))
		for i, c := range cols {
			v := columns.RenderValue(c, p, cc)
			if c == "event" && v != "" {
				v = colorize(opts.Color, text.FgRed, v)
			}
			row[i] = v
		}
		tw.AppendRow(row)
	}
	tw.Render()
	return nil
}

// writeEvents prints the events within the window.
func writeEvents(w io.Writer, rep types.Report, opts RenderOptions) error {
	fmt.Fprintln(w, boldIf(opts.Color, "HISTORICAL EVENTS"))
	tw := newWriter(w, opts)
	tw.AppendHeader(table.Row{"YEAR", "EVENT", "DESCRIPTION"})
	maxWidth := opts.MaxColWidth
	if maxWidth <= 0 {
		maxWidth = 40
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: maxWidth},
		{Number: 3, WidthMax: maxWidth * 2},
	})
	for _, e := range rep.Events {
		tw.AppendRow(table.Row{
			colorize(opts.Color, text.FgYellow, columns.MonthLabel(e.Date, "year")),
			colorize(opts.Color, text.FgRed, e.Label),
			e.Description,
		})
	}
	tw.Render()
	return nil
}

func boldIf(on bool, s string) string {
	if !on {
		return s
	}
	return text.Bold.Sprint(s)
}
