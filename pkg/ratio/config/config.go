package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/komsit37/ratio/pkg/ratio/columns"
	"github.com/komsit37/ratio/pkg/ratio/types"
	"github.com/komsit37/ratio/pkg/ratio/window"
)

// EnvPrefix is prepended to environment overrides, e.g. RATIO_PRIMARY_LOCATION.
const EnvPrefix = "RATIO"

// Series configures one input resource.
type Series struct {
	Location    string `mapstructure:"location"`
	DateColumn  string `mapstructure:"date_column"`
	ValueColumn string `mapstructure:"value_column"`
	Symbol      string `mapstructure:"symbol"`
	Label       string `mapstructure:"label"`
	Unit        string `mapstructure:"unit"`
}

// Config holds all application configuration.
type Config struct {
	Primary   Series `mapstructure:"primary"`
	Reference Series `mapstructure:"reference"`
	Events    struct {
		Location string `mapstructure:"location"`
		Filter   string `mapstructure:"filter"`
	} `mapstructure:"events"`
	Range       string   `mapstructure:"range"`
	Format      string   `mapstructure:"format"`
	Columns     []string `mapstructure:"columns"`
	Sets        []string `mapstructure:"sets"`
	LogScale    bool     `mapstructure:"log_scale"`
	Color       bool     `mapstructure:"color"`
	MaxColWidth int      `mapstructure:"max_col_width"`
	Fetch       struct {
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"fetch"`
	Live struct {
		Enabled   bool          `mapstructure:"enabled"`
		Timeout   time.Duration `mapstructure:"timeout"`
		CacheTTL  time.Duration `mapstructure:"cache_ttl"`
		CacheSize int           `mapstructure:"cache_size"`
	} `mapstructure:"live"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("primary.location", "assets/spy.csv")
	v.SetDefault("primary.date_column", "Date")
	v.SetDefault("primary.value_column", "Closing Value")
	v.SetDefault("primary.symbol", "SPY")
	v.SetDefault("primary.label", "SPY")
	v.SetDefault("primary.unit", "share")

	v.SetDefault("reference.location", "assets/gold.csv")
	v.SetDefault("reference.date_column", "Date")
	v.SetDefault("reference.value_column", "Price")
	v.SetDefault("reference.symbol", "GC=F")
	v.SetDefault("reference.label", "Gold")
	v.SetDefault("reference.unit", "oz")

	v.SetDefault("events.location", "")
	v.SetDefault("events.filter", "")
	v.SetDefault("range", string(types.RangeAll))
	v.SetDefault("format", "table")
	v.SetDefault("columns", []string{})
	v.SetDefault("sets", []string{})
	v.SetDefault("log_scale", false)
	v.SetDefault("color", true)
	v.SetDefault("max_col_width", 40)
	v.SetDefault("fetch.timeout", time.Duration(0))
	v.SetDefault("live.enabled", false)
	v.SetDefault("live.timeout", 5*time.Second)
	v.SetDefault("live.cache_ttl", time.Minute)
	v.SetDefault("live.cache_size", 16)
	v.SetDefault("log.level", "warn")
}

// New returns a viper instance with defaults and environment overrides.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file into v and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks required fields and token values.
func (c *Config) Validate() error {
	var errs []error
	for name, s := range map[string]Series{"primary": c.Primary, "reference": c.Reference} {
		if strings.TrimSpace(s.Location) == "" {
			errs = append(errs, fmt.Errorf("%s.location is required", name))
		}
		if strings.TrimSpace(s.DateColumn) == "" || strings.TrimSpace(s.ValueColumn) == "" {
			errs = append(errs, fmt.Errorf("%s.date_column and %s.value_column are required", name, name))
		}
	}
	if _, err := window.ParseRange(c.Range); err != nil {
		errs = append(errs, err)
	}
	switch c.Format {
	case "table", "chart", "json", "csv":
	default:
		errs = append(errs, fmt.Errorf("unknown format %q; available: table, chart, json, csv", c.Format))
	}
	if _, err := c.SeriesColumns(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SeriesColumns resolves explicit columns and column sets into the final
// column list.
func (c *Config) SeriesColumns() ([]string, error) {
	cols := append([]string(nil), c.Columns...)
	if len(c.Sets) > 0 {
		fromSets, err := columns.ExpandSets(c.Sets)
		if err != nil {
			return nil, err
		}
		cols = append(cols, fromSets...)
	}
	cols = columns.Compute(cols)
	if err := columns.Validate(cols); err != nil {
		return nil, err
	}
	return cols, nil
}

// Labels derives display labels from the series configuration.
func (c *Config) Labels() types.Labels {
	return types.Labels{
		Primary:       c.Primary.Label,
		Reference:     c.Reference.Label,
		Ratio:         c.Primary.Label + " in " + c.Reference.Label,
		RatioUnit:     c.Reference.Unit,
		ReferenceUnit: c.Reference.Unit,
		RatioCaption:  fmt.Sprintf("%s of %s per %s", plural(c.Reference.Unit), strings.ToLower(c.Reference.Label), c.Primary.Label),
	}
}

func plural(unit string) string {
	switch unit {
	case "":
		return "units"
	case "oz":
		return "ounces"
	}
	if strings.HasSuffix(unit, "s") {
		return unit
	}
	return unit + "s"
}
