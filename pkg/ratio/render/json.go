package render

import (
	"encoding/json"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/komsit37/ratio/pkg/ratio/types"
)

// number encodes non-finite floats as null, which encoding/json rejects.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
}

// jsonModel is the output shape for JSONRenderer.
type jsonModel struct {
	Range  types.Range   `json:"range"`
	Labels types.Labels  `json:"labels"`
	Stats  jsonStats     `json:"stats"`
	Points []jsonPoint   `json:"points"`
	Events []types.Event `json:"events"`
	Live   *jsonLive     `json:"live,omitempty"`
}

type jsonStats struct {
	Min     number `json:"min"`
	Max     number `json:"max"`
	Mean    number `json:"mean"`
	Current number `json:"current"`
}

type jsonPoint struct {
	Date      types.MonthKey `json:"date"`
	Primary   number         `json:"primary"`
	Reference number         `json:"reference"`
	Ratio     number         `json:"ratio"`
}

type jsonLive struct {
	Primary   types.Quote `json:"primary"`
	Reference types.Quote `json:"reference"`
	Ratio     number      `json:"ratio"`
	At        time.Time   `json:"at"`
}

type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer { return &JSONRenderer{} }

func (r *JSONRenderer) Render(w io.Writer, rep types.Report, opts RenderOptions) error {
	out := jsonModel{
		Range:  rep.Range,
		Labels: rep.Labels,
		Stats: jsonStats{
			Min:     number(rep.Stats.Min),
			Max:     number(rep.Stats.Max),
			Mean:    number(rep.Stats.Mean),
			Current: number(rep.Stats.Current),
		},
		Points: make([]jsonPoint, 0, len(rep.Series)),
		Events: rep.Events,
	}
	if out.Events == nil {
		out.Events = []types.Event{}
	}
	for _, p := range rep.Series {
		out.Points = append(out.Points, jsonPoint{
			Date:      p.Date,
			Primary:   number(p.Primary),
			Reference: number(p.Reference),
			Ratio:     number(p.Ratio),
		})
	}
	if rep.Live != nil {
		out.Live = &jsonLive{
			Primary:   rep.Live.Primary,
			Reference: rep.Live.Reference,
			Ratio:     number(rep.Live.Ratio),
			At:        rep.Live.At,
		}
	}
	enc := json.NewEncoder(w)
	if opts.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
