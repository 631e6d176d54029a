package render

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/ratio/pkg/ratio/types"
)

func sampleReport() types.Report {
	return types.Report{
		Range: types.RangeAll,
		Series: types.Series{
			{Date: "1971-07", Primary: 100, Reference: 40, Ratio: 2.5},
			{Date: "1971-08", Primary: 120, Reference: 40, Ratio: 3},
			{Date: "1971-09", Primary: 130, Reference: 52, Ratio: 2.5},
		},
		Stats:  types.Stats{Min: 2.5, Max: 3, Mean: 8.0 / 3, Current: 2.5},
		Events: []types.Event{{Date: "1971-08", Label: "Nixon ends convertibility", Description: "Nixon Shock."}},
		Labels: types.Labels{
			Primary:       "SPY",
			Reference:     "Gold",
			Ratio:         "SPY in Gold",
			RatioUnit:     "oz",
			ReferenceUnit: "oz",
			RatioCaption:  "ounces of gold per SPY",
		},
	}
}

func TestTableRenderer_Overview(t *testing.T) {
	var buf bytes.Buffer
	err := NewTableRenderer().Render(&buf, sampleReport(), RenderOptions{Width: 60})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "CURRENT VALUE")
	assert.Contains(t, out, "2.6667")
	assert.Contains(t, out, "3.0000")
	assert.Contains(t, out, "ounces of gold per SPY · 1971-07 to 1971-09 (3 months)")
	assert.Contains(t, out, "SPY in Gold (oz) · all time · linear scale")
	assert.Contains(t, out, "HISTORICAL EVENTS")
	assert.Contains(t, out, "Nixon Shock.")
	assert.NotContains(t, out, "\x1b[")
}

func TestTableRenderer_Series(t *testing.T) {
	var buf bytes.Buffer
	err := NewTableRenderer().Render(&buf, sampleReport(), RenderOptions{
		Sections: SectionSeries,
		Columns:  []string{"date", "primary", "ratio", "event"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "SPY (USD)")
	assert.Contains(t, out, "SPY IN GOLD (OZ)")
	assert.Contains(t, out, "$120.00")
	assert.Contains(t, out, "3.0000")
	assert.Contains(t, out, "Nixon ends convertibility")
	assert.NotContains(t, out, "CURRENT VALUE")
}

func TestTableRenderer_UnknownColumn(t *testing.T) {
	var buf bytes.Buffer
	err := NewTableRenderer().Render(&buf, sampleReport(), RenderOptions{Sections: SectionSeries, Columns: []string{"volume"}})
	assert.Error(t, err)
}

func TestTableRenderer_Empty(t *testing.T) {
	rep := sampleReport()
	rep.Series = types.Series{}
	rep.Stats = types.Stats{}
	rep.Events = nil

	var buf bytes.Buffer
	require.NoError(t, NewTableRenderer().Render(&buf, rep, RenderOptions{}))
	out := buf.String()
	assert.Contains(t, out, "0.0000")
	assert.Contains(t, out, "no data")
	assert.NotContains(t, out, "HISTORICAL EVENTS")
}

func TestTableRenderer_Live(t *testing.T) {
	rep := sampleReport()
	rep.Live = &types.LiveRatio{Ratio: 0.25}

	var buf bytes.Buffer
	require.NoError(t, NewTableRenderer().Render(&buf, rep, RenderOptions{Sections: SectionStats}))
	assert.Contains(t, buf.String(), "LIVE")
	assert.Contains(t, buf.String(), "0.2500")
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁▂▃▄▅▆▇█", Sparkline([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 80, false))
	assert.Equal(t, "▁▃▆█", Sparkline([]float64{1, 10, 100, 1000}, 80, true))
	assert.Equal(t, "▅▅▅", Sparkline([]float64{2, 2, 2}, 80, false))
	assert.Equal(t, "", Sparkline(nil, 80, false))
}

func TestSparkline_Buckets(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	line := Sparkline(values, 10, false)
	runes := []rune(line)
	require.Len(t, runes, 10)
	assert.Equal(t, '▁', runes[0])
	assert.Equal(t, '█', runes[9])
}

func TestSparkline_NonFinite(t *testing.T) {
	line := Sparkline([]float64{1, math.Inf(1), 3}, 80, false)
	assert.Equal(t, "▁ █", line)

	line = Sparkline([]float64{0, 1, 10}, 80, true)
	assert.Equal(t, " ▁█", line)
}

func TestChartRenderer_EventMarker(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewChartRenderer().Render(&buf, sampleReport(), RenderOptions{LogScale: true}))

	out := buf.String()
	assert.Contains(t, out, "log scale")
	assert.Contains(t, out, " ^ Nixon ends convertibility (1971-08)")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "1971 - 1971", lines[4])
}

func TestChartRenderer_MonthAxis(t *testing.T) {
	rep := sampleReport()
	rep.Range = types.RangeOneYear

	var buf bytes.Buffer
	require.NoError(t, NewChartRenderer().Render(&buf, rep, RenderOptions{}))
	assert.Contains(t, buf.String(), "Jul 1971 - Sep 1971")
	assert.Contains(t, buf.String(), "1 year")
}

func TestJSONRenderer(t *testing.T) {
	rep := sampleReport()
	rep.Series = append(rep.Series, types.AlignedPoint{Date: "1971-10", Primary: 1, Reference: 0, Ratio: math.Inf(1)})
	rep.Live = &types.LiveRatio{
		Primary:   types.Quote{Sym: "SPY", Price: 600},
		Reference: types.Quote{Sym: "GC=F", Price: 2400},
		Ratio:     0.25,
		At:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, NewJSONRenderer().Render(&buf, rep, RenderOptions{PrettyJSON: true}))

	var got struct {
		Range  string `json:"range"`
		Points []struct {
			Date  string   `json:"date"`
			Ratio *float64 `json:"ratio"`
		} `json:"points"`
		Stats struct {
			Current float64 `json:"current"`
		} `json:"stats"`
		Events []types.Event `json:"events"`
		Live   struct {
			Ratio float64 `json:"ratio"`
		} `json:"live"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "all", got.Range)
	require.Len(t, got.Points, 4)
	require.NotNil(t, got.Points[1].Ratio)
	assert.Equal(t, 3.0, *got.Points[1].Ratio)
	assert.Nil(t, got.Points[3].Ratio)
	assert.Equal(t, 2.5, got.Stats.Current)
	require.Len(t, got.Events, 1)
	assert.Equal(t, 0.25, got.Live.Ratio)
}

func TestJSONRenderer_EmptyArrays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONRenderer().Render(&buf, types.Report{Range: types.RangeAll}, RenderOptions{}))
	assert.Contains(t, buf.String(), `"points":[]`)
	assert.Contains(t, buf.String(), `"events":[]`)
	assert.NotContains(t, buf.String(), `"live"`)
}

func TestCSVRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVRenderer().Render(&buf, sampleReport(), RenderOptions{}))
	assert.Equal(t, "date,primary,reference,ratio\n"+
		"1971-07,100,40,2.5\n"+
		"1971-08,120,40,3\n"+
		"1971-09,130,52,2.5\n", buf.String())
}

func TestForFormat(t *testing.T) {
	assert.IsType(t, &JSONRenderer{}, ForFormat("json"))
	assert.IsType(t, &CSVRenderer{}, ForFormat("csv"))
	assert.IsType(t, &ChartRenderer{}, ForFormat("chart"))
	assert.IsType(t, &TableRenderer{}, ForFormat("table"))
}
