// Package config loads the TOML run configuration of the zxcor tool.
package config

import (
	"math"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"github.com/eteq/saga-salt/dsp/window"
	"github.com/eteq/saga-salt/redshift"
	"github.com/eteq/saga-salt/report"
	"github.com/eteq/saga-salt/templates"
)

// ErrInvalidConfig marks a configuration that failed validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the full run configuration.
type Config struct {
	Search  Search  `toml:"search"`
	Catalog Catalog `toml:"catalog"`
	Engine  Engine  `toml:"engine"`
	Report  Report  `toml:"report"`
	Archive Archive `toml:"archive"`
}

// Search holds the redshift grid and template selection.
type Search struct {
	Z1        float64 `toml:"z1"`
	Z2        float64 `toml:"z2"`
	ZStep     float64 `toml:"zstep"`
	Templates []int   `toml:"templates"`
}

// Catalog locates the template files.
type Catalog struct {
	Root   string `toml:"root"`
	Format string `toml:"format"`
}

// Engine tunes the correlation.
type Engine struct {
	MinOverlap   int     `toml:"min_overlap"`
	MeanSubtract bool    `toml:"mean_subtract"`
	Taper        string  `toml:"taper"`
	TaperAlpha   float64 `toml:"taper_alpha"`
	Workers      int     `toml:"workers"`
}

// Report selects the optional outputs of a search.
type Report struct {
	// Plot is "", "best" or "all".
	Plot    string `toml:"plot"`
	Summary bool   `toml:"summary"`
	// SmoothWidth is the boxcar length of the overlay panel, in samples.
	SmoothWidth int `toml:"smooth_width"`
}

// Archive points at the optional run history database.
type Archive struct {
	Path string `toml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Search: Search{
			Z1:        -0.000005,
			Z2:        0.02,
			ZStep:     0.000001,
			Templates: append([]int(nil), templates.DefaultIndices...),
		},
		Catalog: Catalog{
			Root:   templates.DefaultRoot(),
			Format: templates.FormatSDSS.String(),
		},
		Engine: Engine{
			MinOverlap:   redshift.DefaultMinOverlap,
			MeanSubtract: true,
			Taper:        window.TypeRectangular.String(),
			TaperAlpha:   0.5,
			Workers:      1,
		},
		Report: Report{
			SmoothWidth: report.DefaultSmoothWidth,
		},
	}
}

// Load reads path over the defaults and validates the result. Keys absent
// from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Mark(errors.Wrapf(err, "config: decode %s", path), ErrInvalidConfig)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Mark(errors.Newf("config: %s: unknown key %q", path, undecoded[0].String()), ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if _, err := redshift.CheckGrid(c.Search.Z1, c.Search.Z2, c.Search.ZStep); err != nil {
		return errors.Mark(errors.Wrap(err, "config: [search]"), ErrInvalidConfig)
	}
	if len(c.Search.Templates) == 0 {
		return invalid("[search] templates must not be empty")
	}
	if c.Catalog.Root == "" {
		return invalid("[catalog] root must be set")
	}
	if _, err := templates.ParseFormat(c.Catalog.Format); err != nil {
		return errors.Mark(errors.Wrap(err, "config: [catalog]"), ErrInvalidConfig)
	}
	if c.Engine.MinOverlap < 2 {
		return invalid("[engine] min_overlap must be at least 2, got %d", c.Engine.MinOverlap)
	}
	if c.Engine.Workers < 0 {
		return invalid("[engine] workers must not be negative, got %d", c.Engine.Workers)
	}
	if _, err := window.ParseType(c.Engine.Taper); err != nil {
		return errors.Mark(errors.Wrap(err, "config: [engine] taper"), ErrInvalidConfig)
	}
	if a := c.Engine.TaperAlpha; math.IsNaN(a) || a < 0 || a > 1 {
		return invalid("[engine] taper_alpha must be in [0,1], got %g", a)
	}
	if c.Report.Plot != "" {
		if _, err := report.ParseMode(c.Report.Plot); err != nil {
			return errors.Mark(errors.Wrap(err, "config: [report] plot"), ErrInvalidConfig)
		}
	}
	if c.Report.SmoothWidth < 1 {
		return invalid("[report] smooth_width must be at least 1, got %d", c.Report.SmoothWidth)
	}
	return nil
}

// CatalogValue returns the templates.Catalog described by c.
func (c Config) CatalogValue() (templates.Catalog, error) {
	format, err := templates.ParseFormat(c.Catalog.Format)
	if err != nil {
		return templates.Catalog{}, errors.Mark(err, ErrInvalidConfig)
	}
	return templates.Catalog{Root: c.Catalog.Root, Format: format}, nil
}

// EngineOptions translates the [engine] section into redshift options.
func (c Config) EngineOptions() ([]redshift.Option, error) {
	taper, err := window.ParseType(c.Engine.Taper)
	if err != nil {
		return nil, errors.Mark(err, ErrInvalidConfig)
	}
	return []redshift.Option{
		redshift.WithMinOverlap(c.Engine.MinOverlap),
		redshift.WithMeanSubtraction(c.Engine.MeanSubtract),
		redshift.WithTaper(taper, window.WithAlpha(c.Engine.TaperAlpha)),
		redshift.WithWorkers(c.Engine.Workers),
	}, nil
}

func invalid(format string, args ...any) error {
	return errors.Mark(errors.Newf("config: "+format, args...), ErrInvalidConfig)
}
