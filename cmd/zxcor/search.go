package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/eteq/saga-salt/internal/archive"
	"github.com/eteq/saga-salt/internal/config"
	"github.com/eteq/saga-salt/redshift"
	"github.com/eteq/saga-salt/report"
	"github.com/eteq/saga-salt/spectrum"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "correlate a spectrum against the template catalog",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "z1", Usage: "lowest trial redshift"},
			&cli.Float64Flag{Name: "z2", Usage: "highest trial redshift"},
			&cli.Float64Flag{Name: "zstep", Usage: "redshift grid spacing"},
			&cli.IntSliceFlag{
				Name:    "templates",
				Aliases: []string{"t"},
				Usage:   "template indices to try, in order; repeatable",
			},
			&cli.StringFlag{Name: "plot", Usage: "write a PNG: best or all"},
			&cli.IntFlag{Name: "smooth", Usage: "boxcar width of the overlay panel, in samples"},
			&cli.BoolFlag{Name: "summary", Usage: "write " + report.SummaryFile + " next to FILE"},
			&cli.StringFlag{Name: "archive", Usage: "SQLite run history to append to"},
			&cli.IntFlag{Name: "workers", Usage: "goroutines per template; 0 uses all CPUs"},
			&cli.StringFlag{Name: "taper", Usage: "window applied to the overlap"},
			&cli.IntFlag{Name: "min-overlap", Usage: "fewest overlapping samples a trial needs"},
		},
		Action: runSearch,
	}
}

func applySearchFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("z1") {
		cfg.Search.Z1 = c.Float64("z1")
	}
	if c.IsSet("z2") {
		cfg.Search.Z2 = c.Float64("z2")
	}
	if c.IsSet("zstep") {
		cfg.Search.ZStep = c.Float64("zstep")
	}
	if c.IsSet("templates") {
		cfg.Search.Templates = c.IntSlice("templates")
	}
	if c.IsSet("plot") {
		cfg.Report.Plot = c.String("plot")
	}
	if c.IsSet("smooth") {
		cfg.Report.SmoothWidth = c.Int("smooth")
	}
	if c.IsSet("summary") {
		cfg.Report.Summary = c.Bool("summary")
	}
	if c.IsSet("archive") {
		cfg.Archive.Path = c.String("archive")
	}
	if c.IsSet("workers") {
		cfg.Engine.Workers = c.Int("workers")
	}
	if c.IsSet("taper") {
		cfg.Engine.Taper = c.String("taper")
	}
	if c.IsSet("min-overlap") {
		cfg.Engine.MinOverlap = c.Int("min-overlap")
	}
	return cfg.Validate()
}

func runSearch(c *cli.Context) error {
	ctx := c.Context
	if c.NArg() != 1 {
		return errors.New("search: expected exactly one spectrum file")
	}
	path := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := applySearchFlags(c, &cfg); err != nil {
		return err
	}

	// Resolve the plot mode before any work so a bad mode writes nothing.
	var mode report.Mode
	if cfg.Report.Plot != "" {
		if mode, err = report.ParseMode(cfg.Report.Plot); err != nil {
			return err
		}
	}

	catalog, err := cfg.CatalogValue()
	if err != nil {
		return err
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}
	opts = append(opts, redshift.WithLogger(slog.Default()))

	target, err := spectrum.Load(path)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "searching",
		"file", path,
		"catalog", catalog.Root,
		"templates", cfg.Search.Templates,
		"z1", cfg.Search.Z1,
		"z2", cfg.Search.Z2,
		"zstep", cfg.Search.ZStep,
	)

	res, err := redshift.NewSearcher(catalog, opts...).
		Search(ctx, target, cfg.Search.Templates, cfg.Search.Z1, cfg.Search.Z2, cfg.Search.ZStep)
	if err != nil {
		return err
	}

	printResult(c.App.Writer, res)

	if cfg.Report.Plot != "" {
		png, err := report.Render(target, res, mode, path, report.WithSmoothWidth(cfg.Report.SmoothWidth))
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "wrote plot", "path", png)
	}

	if cfg.Report.Summary {
		if err := writeSummaryFile(filepath.Join(filepath.Dir(path), report.SummaryFile), res); err != nil {
			return err
		}
	}

	if cfg.Archive.Path != "" {
		store, err := archive.Open(ctx, cfg.Archive.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveResult(ctx, path, res); err != nil {
			return err
		}
		slog.InfoContext(ctx, "archived run", "run_id", res.RunID.String(), "archive", cfg.Archive.Path)
	}
	return nil
}

func writeSummaryFile(path string, res *redshift.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := report.WriteSummary(f, res); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", path)
	}
	slog.Info("wrote summary", "path", path)
	return nil
}
