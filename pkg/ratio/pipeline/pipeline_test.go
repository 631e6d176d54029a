package pipeline

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/ratio/pkg/ratio/filter"
	"github.com/komsit37/ratio/pkg/ratio/render"
	"github.com/komsit37/ratio/pkg/ratio/source"
	"github.com/komsit37/ratio/pkg/ratio/types"
)

const (
	spyCSV  = "Date,Closing Value\n2000-01-15,100\n2000-02-10,110\n2000-03-01,bad\n"
	goldCSV = "Date,Price\n2000-01,50\n2000-02,55\n2000-03,60\n"
)

type memFetcher map[string]string

func (m memFetcher) Fetch(_ context.Context, location string) ([]byte, error) {
	data, ok := m[location]
	if !ok {
		return nil, &source.FetchError{Location: location, Status: http.StatusNotFound}
	}
	return []byte(data), nil
}

func newLoader(f source.Fetcher) *Loader {
	return &Loader{
		Fetcher: f,
		Primary: Input{
			Location: "spy.csv",
			CSV:      source.CSVSource{Name: "primary", DateColumn: "Date", ValueColumn: "Closing Value"},
		},
		Reference: Input{
			Location: "gold.csv",
			CSV:      source.CSVSource{Name: "reference", DateColumn: "Date", ValueColumn: "Price"},
		},
	}
}

type fakeQuotes map[string]float64

func (f fakeQuotes) Get(_ context.Context, sym string) (types.Quote, error) {
	p, ok := f[sym]
	if !ok {
		return types.Quote{}, errors.New("no quote")
	}
	return types.Quote{Sym: sym, Price: p}, nil
}

func TestLoader_Success(t *testing.T) {
	res := newLoader(memFetcher{"spy.csv": spyCSV, "gold.csv": goldCSV}).Load(context.Background())

	require.Equal(t, StatusSuccess, res.Status)
	require.NoError(t, res.Err)
	assert.False(t, res.Empty())
	assert.Equal(t, types.Series{
		{Date: "2000-01", Primary: 100, Reference: 50, Ratio: 2},
		{Date: "2000-02", Primary: 110, Reference: 55, Ratio: 2},
	}, res.Series)
}

func TestLoader_FetchFailure(t *testing.T) {
	res := newLoader(memFetcher{"spy.csv": spyCSV}).Load(context.Background())

	assert.Equal(t, StatusFetchFailure, res.Status)
	assert.Nil(t, res.Series)
	var fe *source.FetchError
	require.True(t, errors.As(res.Err, &fe))
	assert.Equal(t, "gold.csv", fe.Location)
}

func TestLoader_FetchFailureWinsOverParseFailure(t *testing.T) {
	res := newLoader(memFetcher{"spy.csv": "Nope\n"}).Load(context.Background())
	assert.Equal(t, StatusFetchFailure, res.Status)
}

func TestLoader_ParseFailure(t *testing.T) {
	res := newLoader(memFetcher{"spy.csv": "Date,Close\n2000-01-01,1\n", "gold.csv": goldCSV}).Load(context.Background())

	assert.Equal(t, StatusParseFailure, res.Status)
	assert.Nil(t, res.Series)
	var pe *source.ParseError
	require.True(t, errors.As(res.Err, &pe))
	assert.Equal(t, "primary", pe.Name)
}

func TestLoader_EmptyIntersection(t *testing.T) {
	res := newLoader(memFetcher{
		"spy.csv":  "Date,Closing Value\n1990-01-01,1\n",
		"gold.csv": goldCSV,
	}).Load(context.Background())

	assert.Equal(t, StatusSuccess, res.Status)
	assert.True(t, res.Empty())
}

func TestLoader_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/assets/spy.csv":
			_, _ = w.Write([]byte(spyCSV))
		case "/assets/gold.csv":
			_, _ = w.Write([]byte(goldCSV))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	l := newLoader(source.NewLocator(0))
	l.Primary.Location = srv.URL + "/assets/spy.csv"
	l.Reference.Location = srv.URL + "/assets/gold.csv"
	res := l.Load(context.Background())
	require.Equal(t, StatusSuccess, res.Status)
	assert.Len(t, res.Series, 2)

	l.Reference.Location = srv.URL + "/broken"
	res = l.Load(context.Background())
	assert.Equal(t, StatusFetchFailure, res.Status)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "fetch failure", StatusFetchFailure.String())
	assert.Equal(t, "parse failure", StatusParseFailure.String())
	assert.Equal(t, "status(9)", Status(9).String())
}

func TestAssemble(t *testing.T) {
	series := types.Series{
		{Date: "1971-06", Ratio: 1},
		{Date: "1971-07", Ratio: 2},
		{Date: "1971-08", Ratio: 4},
	}
	events := []types.Event{
		{Date: "1933-04", Label: "FDR gold confiscation"},
		{Date: "1971-08", Label: "Nixon ends convertibility"},
	}

	rep := Assemble(context.Background(), series, events, nil, ExecuteOptions{Range: types.RangeAll})
	assert.Equal(t, types.Stats{Min: 1, Max: 4, Mean: 7.0 / 3, Current: 4}, rep.Stats)
	require.Len(t, rep.Events, 1)
	assert.Equal(t, "Nixon ends convertibility", rep.Events[0].Label)
	assert.Nil(t, rep.Live)

	none, err := filter.Parse("none")
	require.NoError(t, err)
	rep = Assemble(context.Background(), series, events, nil, ExecuteOptions{Range: types.RangeAll, EventFilter: none})
	assert.Empty(t, rep.Events)
}

func TestAssemble_Live(t *testing.T) {
	series := types.Series{{Date: "2024-01", Ratio: 0.2}}
	opts := ExecuteOptions{Range: types.RangeOneYear, Live: true, PrimarySym: "SPY", ReferenceSym: "GC=F"}

	rep := Assemble(context.Background(), series, nil, fakeQuotes{"SPY": 500, "GC=F": 2000}, opts)
	require.NotNil(t, rep.Live)
	assert.Equal(t, 0.25, rep.Live.Ratio)

	rep = Assemble(context.Background(), series, nil, fakeQuotes{"SPY": 500}, opts)
	assert.Nil(t, rep.Live)
	assert.Equal(t, 0.2, rep.Stats.Current)
}

func TestRunner_Execute(t *testing.T) {
	var buf bytes.Buffer
	r := &Runner{
		Loader:   newLoader(memFetcher{"spy.csv": spyCSV, "gold.csv": goldCSV}),
		Renderer: render.NewCSVRenderer(),
		Writer:   &buf,
	}
	require.NoError(t, r.Execute(context.Background(), ExecuteOptions{Range: types.RangeOneYear}))
	assert.Equal(t, "date,primary,reference,ratio\n2000-01,100,50,2\n2000-02,110,55,2\n", buf.String())
}

func TestRunner_ExecuteFailure(t *testing.T) {
	var buf bytes.Buffer
	r := &Runner{
		Loader:   newLoader(memFetcher{}),
		Renderer: render.NewCSVRenderer(),
		Writer:   &buf,
	}
	err := r.Execute(context.Background(), ExecuteOptions{Range: types.RangeAll})
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, StatusFetchFailure, le.Status)
	assert.True(t, strings.HasPrefix(err.Error(), FailureMessage))
	assert.Empty(t, buf.String())
}
