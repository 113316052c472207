// Command zxcor measures galaxy redshifts by cross-correlating a spectrum
// against SDSS template spectra.
//
// Usage:
//
//	zxcor [global flags] <command> [flags] [args]
//
// Commands:
//
//	search FILE     correlate FILE against the catalog and report the best redshift
//	show FILE       plot a spectrum and print its statistics
//	templates       list catalog entries and whether their files exist
//	history [RUN]   list archived runs, or show one run in detail
//
// Examples:
//
//	zxcor search obs/gal.txt
//	zxcor --catalog /data/sdss search --plot all --summary obs/gal.txt
//	zxcor --config zxcor.toml search --archive runs.db obs/gal.txt
//	zxcor history --archive runs.db
package main

import (
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/eteq/saga-salt/internal/config"
	"github.com/eteq/saga-salt/templates"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("zxcor failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "zxcor",
		Usage: "Cross-correlation redshifts against SDSS templates",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML run configuration",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
				Value: "info",
			},
			&cli.StringFlag{
				Name:    "catalog",
				Usage:   "template catalog directory",
				EnvVars: []string{templates.RootEnv},
			},
			&cli.StringFlag{
				Name:  "catalog-format",
				Usage: "template file format: sdss or text",
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			searchCommand(),
			showCommand(),
			templatesCommand(),
			historyCommand(),
		},
	}
}

func setupLogging(c *cli.Context) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
		return errors.Wrapf(err, "invalid --log-level %q", c.String("log-level"))
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig reads --config, or the defaults, and applies the global
// catalog overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
		slog.Debug("loaded configuration", "path", path)
	}

	if c.IsSet("catalog") {
		cfg.Catalog.Root = c.String("catalog")
	}
	if c.IsSet("catalog-format") {
		cfg.Catalog.Format = c.String("catalog-format")
	}
	return cfg, nil
}
