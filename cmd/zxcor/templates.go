package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
)

func templatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "templates",
		Usage: "list catalog entries",
		Flags: []cli.Flag{
			&cli.IntSliceFlag{
				Name:    "templates",
				Aliases: []string{"t"},
				Usage:   "indices to list (default: the configured search set)",
			},
		},
		Action: runTemplates,
	}
}

func runTemplates(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	catalog, err := cfg.CatalogValue()
	if err != nil {
		return err
	}
	indices := cfg.Search.Templates
	if c.IsSet("templates") {
		indices = c.IntSlice("templates")
	}

	w := c.App.Writer
	colorHeader.Fprintf(w, "catalog %s (%s)\n", catalog.Root, catalog.Format)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tNAME\tSTATUS\tPATH")
	for _, l := range catalog.List(indices) {
		status := colorMissing.Sprint("missing")
		if l.Exists {
			status = colorOK.Sprint("ok")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", l.Index, l.Name, status, l.Path)
	}
	return tw.Flush()
}
