package redshift

import (
	"log/slog"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/eteq/saga-salt/dsp/buffer"
	"github.com/eteq/saga-salt/dsp/interp"
	"github.com/eteq/saga-salt/dsp/window"
	"github.com/eteq/saga-salt/spectrum"
)

// NoCorrelation is the score of a trial whose overlap is too short or has
// no variance. It equals the lowest possible normalized score.
const NoCorrelation = -1.0

// DefaultMinOverlap is the fewest overlapping target samples a trial needs.
const DefaultMinOverlap = 10

// Option configures an Engine or Searcher.
type Option func(*config)

type config struct {
	minOverlap   int
	workers      int
	taper        window.Type
	taperOpts    []window.Option
	meanSubtract bool
	logger       *slog.Logger
}

func defaultConfig() config {
	return config{
		minOverlap:   DefaultMinOverlap,
		workers:      1,
		taper:        window.TypeRectangular,
		meanSubtract: true,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithMinOverlap sets the fewest overlapping samples a trial needs before
// it is scored. Values below 2 are ignored.
func WithMinOverlap(n int) Option {
	return func(c *config) {
		if n >= 2 {
			c.minOverlap = n
		}
	}
}

// WithWorkers spreads the trial redshifts of one template over n
// goroutines. n <= 0 uses GOMAXPROCS. Results do not depend on n.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		c.workers = n
	}
}

// WithTaper multiplies both overlap segments by a window before scoring.
func WithTaper(t window.Type, opts ...window.Option) Option {
	return func(c *config) {
		c.taper = t
		c.taperOpts = opts
	}
}

// WithMeanSubtraction toggles removal of each segment's mean before
// scoring. It is on by default.
func WithMeanSubtraction(on bool) Option {
	return func(c *config) {
		c.meanSubtract = on
	}
}

// WithLogger sets the logger used by a Searcher. The default is
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// Engine scores a template against a target over a grid of redshifts.
// An Engine is immutable and safe for concurrent use.
type Engine struct {
	cfg config
}

// NewEngine returns an Engine configured by opts.
func NewEngine(opts ...Option) *Engine {
	return &Engine{cfg: applyOptions(opts)}
}

// MinOverlap returns the configured overlap threshold.
func (e *Engine) MinOverlap() int {
	return e.cfg.minOverlap
}

// Correlate returns one score per grid value. Scores[i] measures how well
// template, redshifted by grid.Values[i], matches target.
func (e *Engine) Correlate(target, template *spectrum.Spectrum, grid Grid) []float64 {
	scores := make([]float64, grid.Len())
	if len(scores) == 0 {
		return scores
	}

	workers := e.cfg.workers
	if workers > len(scores) {
		workers = len(scores)
	}
	if workers <= 1 {
		e.correlateRange(target, template, grid.Values, scores)
		return scores
	}

	chunk := (len(scores) + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < len(scores); lo += chunk {
		hi := min(lo+chunk, len(scores))
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			e.correlateRange(target, template, grid.Values[lo:hi], scores[lo:hi])
		}(lo, hi)
	}
	wg.Wait()
	return scores
}

// segments holds the overlap scratch of in-flight trials.
var segments = buffer.NewPool()

func (e *Engine) correlateRange(target, template *spectrum.Spectrum, zs, dst []float64) {
	a, b := segments.Get(0), segments.Get(0)
	defer segments.Put(a)
	defer segments.Put(b)

	for i, z := range zs {
		dst[i] = e.score(target, template, z, a, b)
	}
}

// score evaluates a single trial redshift.
func (e *Engine) score(target, template *spectrum.Spectrum, z float64, abuf, bbuf *buffer.Buffer) float64 {
	stretch := 1 + z
	if !(stretch > 0) {
		return NoCorrelation
	}

	tw := template.Wavelength
	lo := stretch * tw[0]
	hi := stretch * tw[len(tw)-1]

	wl := target.Wavelength
	i0 := sort.SearchFloat64s(wl, lo)
	i1 := sort.Search(len(wl), func(i int) bool { return wl[i] > hi })
	n := i1 - i0
	if n < e.cfg.minOverlap {
		return NoCorrelation
	}

	a := abuf.CopyFrom(target.Flux[i0:i1])
	b := bbuf.Resize(n)
	interp.ScaledTo(b, wl[i0:i1], tw, template.Flux, stretch)

	if e.cfg.meanSubtract {
		subtractMean(a)
		subtractMean(b)
	}
	window.ApplyInPlace(e.cfg.taper, a, e.cfg.taperOpts...)
	window.ApplyInPlace(e.cfg.taper, b, e.cfg.taperOpts...)

	return normalizedDot(a, b)
}

func subtractMean(x []float64) {
	var sum float64
	for _, v := range x {
		sum += v
	}
	mean := sum / float64(len(x))
	for i := range x {
		x[i] -= mean
	}
}

// normalizedDot returns sum(a*b)/sqrt(sum(a*a)*sum(b*b)) clamped to
// [-1, 1], or NoCorrelation when either segment has zero energy.
func normalizedDot(a, b []float64) float64 {
	var ab, aa, bb float64
	for i := range a {
		ab += a[i] * b[i]
		aa += a[i] * a[i]
		bb += b[i] * b[i]
	}
	if aa == 0 || bb == 0 {
		return NoCorrelation
	}
	r := ab / math.Sqrt(aa*bb)
	switch {
	case r > 1:
		return 1
	case r < -1:
		return -1
	case math.IsNaN(r):
		return NoCorrelation
	}
	return r
}
