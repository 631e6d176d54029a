package render

import (
	"io"

	"github.com/komsit37/ratio/pkg/ratio/types"
)

// Renderer renders a report to an output writer.
type Renderer interface {
	Render(w io.Writer, rep types.Report, opts RenderOptions) error
}

// Section selects parts of the text report.
type Section uint8

const (
	SectionStats Section = 1 << iota
	SectionChart
	SectionSeries
	SectionEvents

	SectionsOverview = SectionStats | SectionChart | SectionEvents
)

type RenderOptions struct {
	Columns     []string
	Sections    Section
	Color       bool
	PrettyJSON  bool
	LogScale    bool
	MaxColWidth int
	// Width is the terminal width; zero means unknown.
	Width int
}

// ForFormat returns the renderer for an output format name.
func ForFormat(format string) Renderer {
	switch format {
	case "json":
		return NewJSONRenderer()
	case "csv":
		return NewCSVRenderer()
	case "chart":
		return NewChartRenderer()
	default:
		return NewTableRenderer()
	}
}
