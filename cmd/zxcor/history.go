package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/eteq/saga-salt/internal/archive"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "list archived runs, or show one run",
		ArgsUsage: "[RUN-ID]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "archive", Usage: "SQLite run history"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "most recent runs to list; 0 lists all", Value: 20},
		},
		Action: runHistory,
	}
}

func runHistory(c *cli.Context) error {
	ctx := c.Context
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	path := cfg.Archive.Path
	if c.IsSet("archive") {
		path = c.String("archive")
	}
	if path == "" {
		return errors.New("history: no archive configured; pass --archive")
	}

	store, err := archive.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()

	w := c.App.Writer
	if c.NArg() > 0 {
		id := c.Args().First()
		run, ok, err := store.GetRun(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Newf("history: no run %s in %s", id, path)
		}
		colorHeader.Fprintf(w, "run %s  %s  %s\n", run.ID, run.CreatedAt.Format(time.RFC3339), run.Source)
		fmt.Fprintf(w, "grid z=%g..%g step %g\n", run.Z1, run.Z2, run.ZStep)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TEMPLATE\tBEST Z\tSCORE\tVELOCITY (km/s)")
		for _, tb := range run.Templates {
			line := fmt.Sprintf("%s\t%.6f\t%.4f\t%.1f", tb.Name, tb.BestZ, tb.BestScore, tb.Velocity)
			if tb.Position == run.BestPosition {
				line = colorBest.Sprint(line + "\t(BEST)")
			}
			fmt.Fprintln(tw, line)
		}
		return tw.Flush()
	}

	runs, err := store.ListRuns(ctx, c.Int("limit"))
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tWHEN\tSOURCE\tTEMPLATE\tZ\tVELOCITY (km/s)")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.6f\t%.1f\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.Source, r.TemplateName, r.BestZ, r.Velocity)
	}
	return tw.Flush()
}
