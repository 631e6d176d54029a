package render

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/komsit37/ratio/pkg/ratio/types"
)

// CSVRenderer exports the windowed series with raw values.
type CSVRenderer struct{}

func NewCSVRenderer() *CSVRenderer { return &CSVRenderer{} }

func (r *CSVRenderer) Render(w io.Writer, rep types.Report, _ RenderOptions) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "primary", "reference", "ratio"}); err != nil {
		return err
	}
	for _, p := range rep.Series {
		rec := []string{
			string(p.Date),
			strconv.FormatFloat(p.Primary, 'f', -1, 64),
			strconv.FormatFloat(p.Reference, 'f', -1, 64),
			strconv.FormatFloat(p.Ratio, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
