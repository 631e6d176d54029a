package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/phuslu/log"

	"github.com/komsit37/ratio/pkg/ratio/enrich"
	"github.com/komsit37/ratio/pkg/ratio/filter"
	"github.com/komsit37/ratio/pkg/ratio/reconcile"
	"github.com/komsit37/ratio/pkg/ratio/render"
	"github.com/komsit37/ratio/pkg/ratio/source"
	"github.com/komsit37/ratio/pkg/ratio/types"
	"github.com/komsit37/ratio/pkg/ratio/window"
)

// FailureMessage is shown to users when loading fails.
const FailureMessage = "failed to process data, please try again later"

// Status is the outcome of a load.
type Status int

const (
	StatusSuccess Status = iota
	StatusFetchFailure
	StatusParseFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFetchFailure:
		return "fetch failure"
	case StatusParseFailure:
		return "parse failure"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Result is the outcome of Loader.Load. Series is set only on success.
type Result struct {
	Status Status
	Series types.Series
	Err    error
}

// Empty reports a successful load whose series share no month.
func (r Result) Empty() bool { return r.Status == StatusSuccess && len(r.Series) == 0 }

// Input names one resource and how to read it.
type Input struct {
	Location string
	CSV      source.CSVSource
}

// Loader fetches, parses and reconciles the primary and reference inputs.
type Loader struct {
	Fetcher   source.Fetcher
	Primary   Input
	Reference Input
}

// Load fetches both inputs concurrently. The series is published only when
// both fetches and parses succeed.
func (l *Loader) Load(ctx context.Context) Result {
	start := time.Now()
	inputs := [2]Input{l.Primary, l.Reference}
	var (
		rows [2][]types.RawPricePoint
		errs [2]error
		wg   sync.WaitGroup
	)
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rows[i], errs[i] = l.loadOne(ctx, inputs[i])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err == nil {
			continue
		}
		var fe *source.FetchError
		if errors.As(err, &fe) {
			return Result{Status: StatusFetchFailure, Err: err}
		}
	}
	for _, err := range errs {
		if err != nil {
			return Result{Status: StatusParseFailure, Err: err}
		}
	}

	series := reconcile.Reconcile(rows[0], rows[1])
	log.Debug().
		Int("primary_rows", len(rows[0])).
		Int("reference_rows", len(rows[1])).
		Int("aligned", len(series)).
		Dur("duration", time.Since(start)).
		Msg("series reconciled")
	return Result{Status: StatusSuccess, Series: series}
}

func (l *Loader) loadOne(ctx context.Context, in Input) ([]types.RawPricePoint, error) {
	data, err := l.Fetcher.Fetch(ctx, in.Location)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("source", in.CSV.Name).Str("location", in.Location).Int("bytes", len(data)).Msg("fetched")
	return in.CSV.Parse(data)
}

// Runner executes a full report run.
type Runner struct {
	Loader   *Loader
	Events   []types.Event
	Quotes   enrich.QuoteService
	Renderer render.Renderer
	Writer   io.Writer
}

type ExecuteOptions struct {
	Range        types.Range
	EventFilter  filter.Filter
	Labels       types.Labels
	Live         bool
	PrimarySym   string
	ReferenceSym string
	Render       render.RenderOptions
}

// LoadError wraps a failed load with its status.
type LoadError struct {
	Status Status
	Err    error
}

func (e *LoadError) Error() string { return FailureMessage + ": " + e.Err.Error() }

func (e *LoadError) Unwrap() error { return e.Err }

// Build loads the series and assembles the report for opts.
func (r *Runner) Build(ctx context.Context, opts ExecuteOptions) (types.Report, error) {
	res := r.Loader.Load(ctx)
	if res.Status != StatusSuccess {
		log.Error().Str("status", res.Status.String()).Err(res.Err).Msg("load failed")
		return types.Report{}, &LoadError{Status: res.Status, Err: res.Err}
	}
	if res.Empty() {
		log.Warn().Msg("no overlapping months between primary and reference series")
	}
	return Assemble(ctx, res.Series, r.Events, r.Quotes, opts), nil
}

// Assemble windows series and attaches stats, events and the optional live
// ratio. A failed live quote is logged and left out.
func Assemble(ctx context.Context, series types.Series, events []types.Event, quotes enrich.QuoteService, opts ExecuteOptions) types.Report {
	w := window.Select(series, opts.Range)
	rep := types.Report{
		Range:  opts.Range,
		Series: w,
		Stats:  window.Summarize(w),
		Events: window.EventsIn(filter.Events(events, opts.EventFilter), w),
		Labels: opts.Labels,
	}
	if opts.Live && quotes != nil {
		live, err := enrich.Live(ctx, quotes, opts.PrimarySym, opts.ReferenceSym)
		if err != nil {
			log.Warn().Err(err).Msg("live quote unavailable")
		} else {
			rep.Live = live
		}
	}
	return rep
}

// Execute builds the report and renders it.
func (r *Runner) Execute(ctx context.Context, opts ExecuteOptions) error {
	rep, err := r.Build(ctx, opts)
	if err != nil {
		return err
	}
	return r.Renderer.Render(r.Writer, rep, opts.Render)
}
