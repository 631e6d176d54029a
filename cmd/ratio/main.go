package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/phuslu/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/komsit37/ratio/pkg/ratio/config"
	"github.com/komsit37/ratio/pkg/ratio/enrich"
	"github.com/komsit37/ratio/pkg/ratio/filter"
	"github.com/komsit37/ratio/pkg/ratio/pipeline"
	"github.com/komsit37/ratio/pkg/ratio/render"
	"github.com/komsit37/ratio/pkg/ratio/source"
	"github.com/komsit37/ratio/pkg/ratio/types"
	"github.com/komsit37/ratio/pkg/ratio/window"
)

// cliFlags holds flags that are not config keys.
type cliFlags struct {
	cfgFile string
	noColor bool
	pretty  bool
}

func main() {
	v := config.New()
	var cf cliFlags

	rootCmd := &cobra.Command{
		Use:           "ratio",
		Short:         "Price an index in gold: stats, chart and events for a trailing window",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), v, cf, render.SectionsOverview, "")
		},
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cf.cfgFile, "config", "", "config file (yaml)")
	pf.StringP("range", "r", "all", "window: "+strings.Join(rangeTokens(), ", "))
	pf.StringP("format", "f", "table", "output: table, chart, json, csv")
	pf.StringSlice("columns", nil, "series columns, e.g. date,ratio,event")
	pf.StringSlice("sets", nil, "column sets: prices, ratio, all")
	pf.Bool("log-scale", false, "plot the chart on a logarithmic scale")
	pf.String("events", "", "event label filter: names, glob, /regex/, substring or none")
	pf.String("events-file", "", "YAML file or directory of historical events")
	pf.Bool("live", false, "add a live ratio from current quotes")
	pf.BoolVar(&cf.noColor, "no-color", false, "disable ANSI colors")
	pf.BoolVar(&cf.pretty, "pretty", false, "indent JSON output")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("primary", "", "primary series location (path or URL)")
	pf.String("reference", "", "reference series location (path or URL)")
	bindFlags(v, pf)

	sub := func(use, short string, sections render.Section, format string) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd.Context(), v, cf, sections, format)
			},
		}
	}
	rootCmd.AddCommand(
		sub("series", "Print the aligned monthly series", render.SectionSeries, ""),
		sub("stats", "Print current, average, minimum and maximum ratio", render.SectionStats, ""),
		sub("chart", "Draw the ratio as a sparkline", render.SectionChart, "chart"),
		sub("export", "Write the windowed series as CSV", render.SectionSeries, "csv"),
		&cobra.Command{
			Use:   "events",
			Short: "List historical events",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return listEvents(cmd.Context(), v, cf)
			},
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
		os.Exit(1)
	}
}

// bindFlags maps flag names onto config keys.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	for flag, key := range map[string]string{
		"range":       "range",
		"format":      "format",
		"columns":     "columns",
		"sets":        "sets",
		"log-scale":   "log_scale",
		"events":      "events.filter",
		"events-file": "events.location",
		"live":        "live.enabled",
		"log-level":   "log.level",
		"primary":     "primary.location",
		"reference":   "reference.location",
	} {
		_ = v.BindPFlag(key, fs.Lookup(flag))
	}
}

func loadConfig(v *viper.Viper, cf cliFlags) (*config.Config, error) {
	cfg, err := config.Load(v, cf.cfgFile)
	if err != nil {
		return nil, err
	}
	if cf.noColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		cfg.Color = false
	}
	setupLogging(cfg.Log.Level)
	return cfg, nil
}

func setupLogging(level string) {
	log.DefaultLogger = log.Logger{
		Level: log.ParseLevel(level),
		Writer: &log.ConsoleWriter{
			Writer:      os.Stderr,
			ColorOutput: isatty.IsTerminal(os.Stderr.Fd()),
			QuoteString: true,
		},
	}
}

func run(ctx context.Context, v *viper.Viper, cf cliFlags, sections render.Section, format string) error {
	cfg, err := loadConfig(v, cf)
	if err != nil {
		return err
	}
	if format != "" {
		cfg.Format = format
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	rng, _ := window.ParseRange(cfg.Range)
	cols, _ := cfg.SeriesColumns()
	evFilter, err := filter.Parse(cfg.Events.Filter)
	if err != nil {
		return err
	}
	events, err := source.EventsSource{Path: cfg.Events.Location}.Load(ctx)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}

	var quotes enrich.QuoteService
	if cfg.Live.Enabled {
		quotes = enrich.NewCacheService(enrich.NewYFService(cfg.Live.Timeout), cfg.Live.CacheTTL, cfg.Live.CacheSize)
	}

	runner := &pipeline.Runner{
		Loader: &pipeline.Loader{
			Fetcher:   source.NewLocator(cfg.Fetch.Timeout),
			Primary:   input("primary", cfg.Primary),
			Reference: input("reference", cfg.Reference),
		},
		Events:   events,
		Quotes:   quotes,
		Renderer: render.ForFormat(cfg.Format),
		Writer:   os.Stdout,
	}
	return runner.Execute(ctx, pipeline.ExecuteOptions{
		Range:        rng,
		EventFilter:  evFilter,
		Labels:       cfg.Labels(),
		Live:         cfg.Live.Enabled,
		PrimarySym:   cfg.Primary.Symbol,
		ReferenceSym: cfg.Reference.Symbol,
		Render: render.RenderOptions{
			Columns:     cols,
			Sections:    sections,
			Color:       cfg.Color,
			PrettyJSON:  cf.pretty,
			LogScale:    cfg.LogScale,
			MaxColWidth: cfg.MaxColWidth,
			Width:       detectTerminalWidth(),
		},
	})
}

func input(name string, s config.Series) pipeline.Input {
	return pipeline.Input{
		Location: s.Location,
		CSV:      source.CSVSource{Name: name, DateColumn: s.DateColumn, ValueColumn: s.ValueColumn},
	}
}

func listEvents(ctx context.Context, v *viper.Viper, cf cliFlags) error {
	cfg, err := loadConfig(v, cf)
	if err != nil {
		return err
	}
	evFilter, err := filter.Parse(cfg.Events.Filter)
	if err != nil {
		return err
	}
	events, err := source.EventsSource{Path: cfg.Events.Location}.Load(ctx)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	rep := types.Report{Events: filter.Events(events, evFilter), Labels: cfg.Labels()}
	return render.NewTableRenderer().Render(os.Stdout, rep, render.RenderOptions{
		Sections:    render.SectionEvents,
		Color:       cfg.Color,
		MaxColWidth: cfg.MaxColWidth,
	})
}

// userMessage hides load internals behind the fixed failure message.
func userMessage(err error) string {
	var le *pipeline.LoadError
	if errors.As(err, &le) {
		return pipeline.FailureMessage
	}
	return "error: " + err.Error()
}

func rangeTokens() []string {
	out := make([]string, 0, len(window.Ranges))
	for _, r := range window.Ranges {
		out = append(out, string(r))
	}
	return out
}
