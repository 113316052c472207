package redshift

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/ksuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/eteq/saga-salt/dsp/conv"
	"github.com/eteq/saga-salt/spectrum"
	"github.com/eteq/saga-salt/templates"
)

// SpeedOfLight in km/s.
const SpeedOfLight = 299792.458

// ErrEmptyTemplateSet is returned when a search is asked to try no
// templates.
var ErrEmptyTemplateSet = errors.New("redshift: no templates to search")

// Velocity converts a redshift to a recession velocity in km/s using the
// non-relativistic approximation v = z*c.
func Velocity(z float64) float64 {
	return z * SpeedOfLight
}

// TemplateResult is the outcome of correlating one template over the grid.
type TemplateResult struct {
	Template  templates.Entry
	Grid      Grid
	Scores    []float64
	BestIndex int
	BestZ     float64
	BestScore float64
	Velocity  float64
}

// Summary is the headline answer of a search.
type Summary struct {
	BestZ        float64
	Velocity     float64
	TemplateName string
}

// Result is the outcome of a search over several templates.
type Result struct {
	RunID          ksuid.KSUID
	TemplatesTried []int
	PerTemplate    map[int]*TemplateResult
	// Ordered holds the PerTemplate values in TemplatesTried order.
	Ordered           []*TemplateResult
	BestTemplateIndex int
	BestPosition      int
	Summary           Summary
}

// Best returns the winning template's result.
func (r *Result) Best() *TemplateResult {
	return r.Ordered[r.BestPosition]
}

// Better reports whether candidate beats incumbent. Only a strictly higher
// best score wins, so the earliest of several equal maxima is kept.
func Better(candidate, incumbent *TemplateResult) bool {
	return candidate.BestScore > incumbent.BestScore
}

// Searcher runs redshift searches against a template catalog.
type Searcher struct {
	catalog templates.Catalog
	engine  *Engine
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewSearcher returns a Searcher over catalog. opts configure both the
// correlation engine and logging.
func NewSearcher(catalog templates.Catalog, opts ...Option) *Searcher {
	cfg := applyOptions(opts)
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{
		catalog: catalog,
		engine:  &Engine{cfg: cfg},
		logger:  logger,
		tracer:  otel.Tracer("saga-salt-redshift"),
	}
}

// Engine returns the correlation engine used by s.
func (s *Searcher) Engine() *Engine {
	return s.engine
}

// Search correlates target against each template index in order over the
// grid [z1, z2] with spacing zstep and returns every per-template result
// together with the overall best.
//
// Templates are loaded through a Library that lives only for this call.
// The first load failure aborts the search. ctx is checked before each
// template.
func (s *Searcher) Search(ctx context.Context, target *spectrum.Spectrum, indices []int, z1, z2, zstep float64) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "redshift.Search",
		trace.WithAttributes(
			attribute.Int("redshift.templates", len(indices)),
			attribute.Float64("redshift.z1", z1),
			attribute.Float64("redshift.z2", z2),
			attribute.Float64("redshift.zstep", zstep),
		),
	)
	defer span.End()

	res, err := s.search(ctx, target, indices, z1, z2, zstep)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "redshift search failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("redshift.run_id", res.RunID.String()),
		attribute.Int("redshift.best_template", res.BestTemplateIndex),
		attribute.Float64("redshift.best_z", res.Summary.BestZ),
	)
	span.SetStatus(codes.Ok, "redshift search complete")
	return res, nil
}

func (s *Searcher) search(ctx context.Context, target *spectrum.Spectrum, indices []int, z1, z2, zstep float64) (*Result, error) {
	if len(indices) == 0 {
		return nil, errors.WithStack(ErrEmptyTemplateSet)
	}
	if target == nil {
		return nil, errors.New("redshift: nil target spectrum")
	}

	grid, err := NewGrid(z1, z2, zstep)
	if err != nil {
		return nil, err
	}

	lib := templates.NewLibrary(s.catalog)
	res := &Result{
		RunID:          ksuid.New(),
		TemplatesTried: append([]int(nil), indices...),
		PerTemplate:    make(map[int]*TemplateResult, len(indices)),
		Ordered:        make([]*TemplateResult, 0, len(indices)),
	}

	for pos, idx := range indices {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "redshift: search interrupted before template %d", idx)
		}

		s.logger.Debug("correlating template",
			"position", pos+1,
			"total", len(indices),
			"index", idx,
			"name", s.catalog.Name(idx),
		)

		tr, err := s.correlateTemplate(ctx, lib, target, idx, grid)
		if err != nil {
			return nil, err
		}

		res.Ordered = append(res.Ordered, tr)
		res.PerTemplate[idx] = tr
		if pos == 0 || Better(tr, res.Ordered[res.BestPosition]) {
			res.BestPosition = pos
		}
	}

	best := res.Ordered[res.BestPosition]
	res.BestTemplateIndex = best.Template.Index
	res.Summary = Summary{
		BestZ:        best.BestZ,
		Velocity:     best.Velocity,
		TemplateName: best.Template.Name,
	}

	s.logger.Info("redshift search complete",
		"run_id", res.RunID.String(),
		"template", res.Summary.TemplateName,
		"z", res.Summary.BestZ,
		"velocity_kms", res.Summary.Velocity,
		"score", best.BestScore,
	)
	return res, nil
}

func (s *Searcher) correlateTemplate(ctx context.Context, lib *templates.Library, target *spectrum.Spectrum, idx int, grid Grid) (*TemplateResult, error) {
	_, span := s.tracer.Start(ctx, "redshift.Template",
		trace.WithAttributes(attribute.Int("redshift.template", idx)),
	)
	defer span.End()

	entry, err := lib.Entry(idx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "template load failed")
		return nil, errors.Wrapf(err, "redshift: template %d", idx)
	}

	scores := s.engine.Correlate(target, entry.Spectrum, grid)
	bestIdx, bestScore := conv.FindPeak(scores)
	bestZ := grid.Values[bestIdx]

	span.SetAttributes(
		attribute.Float64("redshift.best_z", bestZ),
		attribute.Float64("redshift.best_score", bestScore),
	)
	return &TemplateResult{
		Template:  *entry,
		Grid:      grid,
		Scores:    scores,
		BestIndex: bestIdx,
		BestZ:     bestZ,
		BestScore: bestScore,
		Velocity:  Velocity(bestZ),
	}, nil
}
