package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/eteq/saga-salt/redshift"
)

var (
	colorHeader  = color.New(color.FgHiMagenta, color.Bold)
	colorBest    = color.New(color.FgGreen, color.Bold)
	colorOK      = color.New(color.FgGreen)
	colorMissing = color.New(color.FgYellow)
	colorDim     = color.New(color.Faint)
)

// printResult writes one line per template in search order followed by
// the headline answer.
func printResult(w io.Writer, res *redshift.Result) {
	colorDim.Fprintf(w, "run %s\n", res.RunID)
	for pos, tr := range res.Ordered {
		line := fmt.Sprintf("%s  z=%.6f  score=%.4f  v=%.1f km/s", tr.Template.Name, tr.BestZ, tr.BestScore, tr.Velocity)
		if pos == res.BestPosition {
			colorBest.Fprintln(w, line+"  (BEST)")
			continue
		}
		fmt.Fprintln(w, line)
	}
	colorHeader.Fprintf(w, "best: %s z=%.6f v=%.1f km/s\n",
		res.Summary.TemplateName, res.Summary.BestZ, res.Summary.Velocity)
}
