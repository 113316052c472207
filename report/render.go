package report

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/eteq/saga-salt/dsp/conv"
	"github.com/eteq/saga-salt/dsp/interp"
	"github.com/eteq/saga-salt/redshift"
	"github.com/eteq/saga-salt/spectrum"
	"github.com/eteq/saga-salt/stats"
)

// DefaultSmoothWidth is the boxcar length applied to the observed flux in
// the overlay panel.
const DefaultSmoothWidth = 10

// Option configures Render.
type Option func(*config)

type config struct {
	smoothWidth int
}

func defaultConfig() config {
	return config{smoothWidth: DefaultSmoothWidth}
}

// WithSmoothWidth sets the boxcar length of the overlay panel. Values
// below 1 are ignored.
func WithSmoothWidth(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.smoothWidth = n
		}
	}
}

const (
	panelWidth  = 6 * vg.Inch
	panelHeight = 3 * vg.Inch
)

var (
	colorScore    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorObserved = color.RGBA{A: 255}
	colorModel    = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	colorMarker   = color.RGBA{R: 127, G: 127, B: 127, A: 255}
)

// OutputPath returns the PNG path for a spectrum read from sourcePath: a
// trailing ".txt" is dropped and ".png" appended.
func OutputPath(sourcePath string) string {
	return strings.TrimSuffix(sourcePath, ".txt") + ".png"
}

// Render draws one row of panels per selected template and writes the PNG
// next to sourcePath. The left panel shows score against redshift, the
// right the smoothed target with the template overlaid at its best
// redshift. It returns the written path.
//
// An unknown mode fails with ErrUnsupportedOption before any file is
// created. result is not modified.
func Render(target *spectrum.Spectrum, result *redshift.Result, mode Mode, sourcePath string, opts ...Option) (string, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	var rows []*redshift.TemplateResult
	switch mode {
	case ModeBest:
		rows = []*redshift.TemplateResult{result.Best()}
	case ModeAll:
		rows = result.Ordered
	default:
		return "", errors.Mark(errors.Newf("report: unknown plot mode %v", mode), ErrUnsupportedOption)
	}

	labels := rowLabels(result, mode)
	plots := make([][]*plot.Plot, len(rows))
	for i, tr := range rows {
		scorePlot, err := scorePanel(tr, labels[i])
		if err != nil {
			return "", err
		}
		overlayPlot, err := overlayPanel(target, tr, cfg.smoothWidth)
		if err != nil {
			return "", err
		}
		plots[i] = []*plot.Plot{scorePlot, overlayPlot}
	}

	path := OutputPath(sourcePath)
	if err := writeGrid(plots, path); err != nil {
		return "", err
	}
	return path, nil
}

// rowLabels names the rows Render draws for mode. In ModeAll the row at
// the winning search position is marked, so a template searched twice is
// marked once.
func rowLabels(result *redshift.Result, mode Mode) []string {
	if mode == ModeBest {
		return []string{result.Best().Template.Name}
	}
	labels := make([]string, len(result.Ordered))
	for i, tr := range result.Ordered {
		labels[i] = tr.Template.Name
		if i == result.BestPosition {
			labels[i] += " (BEST)"
		}
	}
	return labels
}

func scorePanel(tr *redshift.TemplateResult, label string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("z=%.6f, v=%.1f km/s", tr.BestZ, tr.Velocity)
	p.X.Label.Text = "z"
	p.Y.Label.Text = label

	pts := make(plotter.XYs, len(tr.Scores))
	lo, hi := tr.Scores[0], tr.Scores[0]
	for i, s := range tr.Scores {
		pts[i].X = tr.Grid.Values[i]
		pts[i].Y = s
		lo = min(lo, s)
		hi = max(hi, s)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, errors.Wrap(err, "report: score line")
	}
	line.LineStyle.Color = colorScore

	marker, err := plotter.NewLine(plotter.XYs{{X: tr.BestZ, Y: lo}, {X: tr.BestZ, Y: hi}})
	if err != nil {
		return nil, errors.Wrap(err, "report: best-z marker")
	}
	marker.LineStyle.Color = colorMarker
	marker.LineStyle.Dashes = []vg.Length{vg.Points(1), vg.Points(3)}

	p.Add(line, marker)
	return p, nil
}

func overlayPanel(target *spectrum.Spectrum, tr *redshift.TemplateResult, width int) (*plot.Plot, error) {
	smoothed, model, err := Overlay(target, tr, width)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.X.Label.Text = "wavelength"
	p.Y.Label.Text = "flux"

	obs, err := plotter.NewLine(xys(target.Wavelength, smoothed))
	if err != nil {
		return nil, errors.Wrap(err, "report: observed line")
	}
	obs.LineStyle.Color = colorObserved

	tmpl, err := plotter.NewLine(xys(target.Wavelength, model))
	if err != nil {
		return nil, errors.Wrap(err, "report: template line")
	}
	tmpl.LineStyle.Color = colorModel

	p.Add(obs, tmpl)
	p.Legend.Add("observed", obs)
	p.Legend.Add(tr.Template.Name, tmpl)
	p.Legend.Top = true
	return p, nil
}

// Overlay returns the target flux smoothed with a boxcar of the given
// width and the template evaluated on the target axis at the template's
// best redshift, scaled so both curves have the same mean. Widths above
// 64 samples are smoothed by FFT.
func Overlay(target *spectrum.Spectrum, tr *redshift.TemplateResult, width int) (smoothed, model []float64, err error) {
	if width > target.Len() {
		return nil, nil, errors.Newf("report: smoothing width %d exceeds %d flux samples", width, target.Len())
	}
	smoothed, err = conv.Boxcar(target.Flux, width)
	if err != nil {
		return nil, nil, errors.Wrap(err, "report: smoothing target")
	}

	tmpl := tr.Template.Spectrum
	model = make([]float64, target.Len())
	interp.ScaledTo(model, target.Wavelength, tmpl.Wavelength, tmpl.Flux, 1+tr.BestZ)

	if m := stats.Mean(model); m != 0 {
		scale := stats.Mean(smoothed) / m
		for i := range model {
			model[i] *= scale
		}
	}
	return smoothed, model, nil
}

// PlotSpectrum writes a PNG of the flux of s, with its uncertainty when
// present, against wavelength.
func PlotSpectrum(s *spectrum.Spectrum, path string) error {
	p := plot.New()
	p.Title.Text = s.Source
	p.X.Label.Text = "wavelength"
	p.Y.Label.Text = "flux"

	flux, err := plotter.NewLine(xys(s.Wavelength, s.Flux))
	if err != nil {
		return errors.Wrap(err, "report: flux line")
	}
	flux.LineStyle.Color = colorObserved
	p.Add(flux)
	p.Legend.Add("flux", flux)

	if s.HasUncertainty() {
		unc, err := plotter.NewLine(xys(s.Wavelength, s.Uncertainty))
		if err != nil {
			return errors.Wrap(err, "report: uncertainty line")
		}
		unc.LineStyle.Color = colorModel
		p.Add(unc)
		p.Legend.Add("uncertainty", unc)
	}
	p.Legend.Top = true

	if err := p.Save(2*panelWidth, 2*panelHeight, path); err != nil {
		return errors.Wrapf(err, "report: save %s", path)
	}
	return nil
}

func writeGrid(plots [][]*plot.Plot, path string) error {
	rows := len(plots)
	img := vgimg.New(2*panelWidth, vg.Length(rows)*panelHeight)
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows: rows,
		Cols: 2,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "report: create %s", path)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "report: write %s", path)
	}
	return errors.Wrapf(f.Close(), "report: close %s", path)
}

func xys(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range pts {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	return pts
}
