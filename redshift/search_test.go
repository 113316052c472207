package redshift

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/eteq/saga-salt/internal/testutil"
	"github.com/eteq/saga-salt/templates"
)

// writeCatalog writes text templates for the given indices. Each index
// maps to the line list used for that template.
func writeCatalog(t *testing.T, lines map[int][]testutil.Line) templates.Catalog {
	t.Helper()
	c := templates.Catalog{Root: t.TempDir(), Format: templates.FormatText}
	wl := testutil.LogAxis(3000, 9000, 3000)
	for idx, ls := range lines {
		flux := testutil.LineSpectrum(wl, ls, 0)
		if err := testutil.WriteTextSpectrum(c.ResolvePath(idx), wl, flux, testutil.DC(0.01, len(wl))); err != nil {
			t.Fatal(err)
		}
	}
	return c
}

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestSearchPicksMatchingTemplate(t *testing.T) {
	other := []testutil.Line{
		{Center: 4500, Sigma: 20, Depth: 0.8},
		{Center: 6000, Sigma: 30, Depth: -0.4},
	}
	c := writeCatalog(t, map[int][]testutil.Line{
		23: other,
		24: testutil.GalaxyLines,
	})
	_, target := templateAndTarget(t)

	res, err := NewSearcher(c, WithLogger(quietLogger)).Search(context.Background(), target, []int{23, 24}, 0, 0.02, 0.0005)
	if err != nil {
		t.Fatal(err)
	}

	if res.BestTemplateIndex != 24 || res.BestPosition != 1 {
		t.Fatalf("best template %d at %d, want 24 at 1", res.BestTemplateIndex, res.BestPosition)
	}
	if res.Summary.TemplateName != "spDR2-024" {
		t.Fatalf("TemplateName=%q", res.Summary.TemplateName)
	}
	testutil.RequireNearlyEqual(t, "best z", res.Summary.BestZ, trueZ, 0.0005)
	testutil.RequireNearlyEqual(t, "velocity", res.Summary.Velocity, res.Summary.BestZ*SpeedOfLight, 1e-9)
	if res.RunID.IsNil() {
		t.Fatal("RunID not set")
	}

	if len(res.Ordered) != 2 || len(res.PerTemplate) != 2 {
		t.Fatalf("got %d ordered, %d per-template", len(res.Ordered), len(res.PerTemplate))
	}
	for pos, idx := range res.TemplatesTried {
		tr := res.PerTemplate[idx]
		if res.Ordered[pos] != tr {
			t.Fatalf("Ordered[%d] is not PerTemplate[%d]", pos, idx)
		}
		if len(tr.Scores) != tr.Grid.Len() {
			t.Fatalf("template %d: %d scores for %d grid values", idx, len(tr.Scores), tr.Grid.Len())
		}
		if tr.BestZ != tr.Grid.Values[tr.BestIndex] || tr.BestScore != tr.Scores[tr.BestIndex] {
			t.Fatalf("template %d: best fields disagree with scores", idx)
		}
		for _, s := range tr.Scores {
			if s > tr.BestScore {
				t.Fatalf("template %d: score %v exceeds BestScore %v", idx, s, tr.BestScore)
			}
		}
	}
	if res.Best() != res.PerTemplate[24] {
		t.Fatal("Best() does not return the winning template")
	}
}

func TestSearchTieBreakFollowsOrder(t *testing.T) {
	c := writeCatalog(t, map[int][]testutil.Line{
		23: testutil.GalaxyLines,
		24: testutil.GalaxyLines,
	})
	_, target := templateAndTarget(t)
	s := NewSearcher(c, WithLogger(quietLogger))

	for _, order := range [][]int{{23, 24}, {24, 23}} {
		res, err := s.Search(context.Background(), target, order, 0, 0.02, 0.001)
		if err != nil {
			t.Fatal(err)
		}
		if res.BestTemplateIndex != order[0] || res.BestPosition != 0 {
			t.Fatalf("order %v: best %d at %d, want first", order, res.BestTemplateIndex, res.BestPosition)
		}
	}
}

func TestSearchMissingTemplate(t *testing.T) {
	c := writeCatalog(t, map[int][]testutil.Line{23: testutil.GalaxyLines})
	_, target := templateAndTarget(t)

	res, err := NewSearcher(c, WithLogger(quietLogger)).Search(context.Background(), target, []int{23, 99}, 0, 0.02, 0.001)
	if !errors.Is(err, templates.ErrTemplateNotFound) {
		t.Fatalf("got %v, want ErrTemplateNotFound", err)
	}
	if res != nil {
		t.Fatal("partial result returned alongside an error")
	}
	if !strings.Contains(err.Error(), "99") {
		t.Fatalf("error %q does not name the template", err)
	}
}

func TestSearchArgumentErrors(t *testing.T) {
	c := writeCatalog(t, map[int][]testutil.Line{23: testutil.GalaxyLines})
	_, target := templateAndTarget(t)
	s := NewSearcher(c, WithLogger(quietLogger))
	ctx := context.Background()

	if _, err := s.Search(ctx, target, nil, 0, 0.02, 0.001); !errors.Is(err, ErrEmptyTemplateSet) {
		t.Errorf("empty indices: got %v", err)
	}
	if _, err := s.Search(ctx, target, []int{23}, 0.02, 0, 0.001); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("reversed grid: got %v", err)
	}
	if _, err := s.Search(ctx, target, []int{23}, 0, 0.02, 0); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("zero step: got %v", err)
	}
}

func TestSearchCanceled(t *testing.T) {
	c := writeCatalog(t, map[int][]testutil.Line{23: testutil.GalaxyLines})
	_, target := templateAndTarget(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSearcher(c, WithLogger(quietLogger)).Search(ctx, target, []int{23}, 0, 0.02, 0.001)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestSearchCacheIsPerCall(t *testing.T) {
	c := writeCatalog(t, map[int][]testutil.Line{23: testutil.GalaxyLines})
	_, target := templateAndTarget(t)
	s := NewSearcher(c, WithLogger(quietLogger))

	if _, err := s.Search(context.Background(), target, []int{23}, 0, 0.02, 0.001); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(c.ResolvePath(23)); err != nil {
		t.Fatal(err)
	}
	_, err := s.Search(context.Background(), target, []int{23}, 0, 0.02, 0.001)
	if !errors.Is(err, templates.ErrTemplateNotFound) {
		t.Fatalf("second search reused a stale template: %v", err)
	}
}

func TestSearchLogsProgress(t *testing.T) {
	c := writeCatalog(t, map[int][]testutil.Line{23: testutil.GalaxyLines, 24: testutil.GalaxyLines})
	_, target := templateAndTarget(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if _, err := NewSearcher(c, WithLogger(logger)).Search(context.Background(), target, []int{23, 24}, 0, 0.01, 0.001); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if got := strings.Count(out, "correlating template"); got != 2 {
		t.Fatalf("%d progress lines, want 2:\n%s", got, out)
	}
	if !strings.Contains(out, "name=spDR2-024") || !strings.Contains(out, "redshift search complete") {
		t.Fatalf("unexpected log output:\n%s", out)
	}
}

func TestVelocityLinear(t *testing.T) {
	testutil.RequireNearlyEqual(t, "v(0.01)", Velocity(0.01), 2997.92458, 1e-9)
	for _, z := range []float64{-0.001, 0.003, 0.5} {
		testutil.RequireNearlyEqual(t, "v(2z)", Velocity(2*z), 2*Velocity(z), 1e-9)
	}
}

func TestBetterIsStrict(t *testing.T) {
	a := &TemplateResult{BestScore: 0.5}
	b := &TemplateResult{BestScore: 0.5}
	if Better(a, b) || Better(b, a) {
		t.Fatal("equal scores must not beat each other")
	}
	if !Better(&TemplateResult{BestScore: 0.6}, a) {
		t.Fatal("higher score must win")
	}
}
