package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/eteq/saga-salt/report"
	"github.com/eteq/saga-salt/spectrum"
	"github.com/eteq/saga-salt/stats"
)

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "plot a spectrum and print its statistics",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "PNG path (default FILE with _spec.png)"},
			&cli.BoolFlag{Name: "no-plot", Usage: "print statistics only"},
		},
		Action: runShow,
	}
}

func runShow(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("show: expected exactly one spectrum file")
	}
	path := c.Args().First()

	s, err := spectrum.Load(path)
	if err != nil {
		return err
	}

	w := c.App.Writer
	lo, hi := s.Range()
	d := stats.Describe(s.Flux)
	colorHeader.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "  samples     %d\n", s.Len())
	fmt.Fprintf(w, "  wavelength  %.2f .. %.2f\n", lo, hi)
	fmt.Fprintf(w, "  flux        mean=%.4g median=%.4g rms=%.4g std=%.4g\n", d.Mean, d.Median, d.RMS, d.StdDev)
	fmt.Fprintf(w, "  flux range  %.4g @ %.2f .. %.4g @ %.2f\n",
		d.Min, s.Wavelength[d.MinPos], d.Max, s.Wavelength[d.MaxPos])
	if s.HasUncertainty() {
		fmt.Fprintf(w, "  median S/N  %.2f\n", stats.SignalToNoise(s.Flux, s.Uncertainty))
	}

	if c.Bool("no-plot") {
		return nil
	}
	out := c.String("out")
	if out == "" {
		out = strings.TrimSuffix(path, ".txt") + "_spec.png"
	}
	if err := report.PlotSpectrum(s, out); err != nil {
		return err
	}
	slog.Info("wrote plot", "path", out)
	return nil
}
