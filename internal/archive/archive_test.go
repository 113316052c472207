package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/eteq/saga-salt/redshift"
	"github.com/eteq/saga-salt/templates"
)

func sampleResult(t *testing.T, at time.Time, bestScores ...float64) *redshift.Result {
	t.Helper()
	id, err := ksuid.NewRandomWithTime(at)
	if err != nil {
		t.Fatal(err)
	}
	grid, err := redshift.NewGrid(0, 0.01, 0.001)
	if err != nil {
		t.Fatal(err)
	}
	c := templates.Catalog{}
	res := &redshift.Result{RunID: id, PerTemplate: map[int]*redshift.TemplateResult{}}
	for pos, score := range bestScores {
		idx := 23 + pos
		z := grid.Values[pos+1]
		tr := &redshift.TemplateResult{
			Template:  templates.Entry{Index: idx, Name: c.Name(idx)},
			Grid:      grid,
			BestIndex: pos + 1,
			BestZ:     z,
			BestScore: score,
			Velocity:  redshift.Velocity(z),
		}
		res.TemplatesTried = append(res.TemplatesTried, idx)
		res.Ordered = append(res.Ordered, tr)
		res.PerTemplate[idx] = tr
		if pos == 0 || redshift.Better(tr, res.Ordered[res.BestPosition]) {
			res.BestPosition = pos
		}
	}
	best := res.Best()
	res.BestTemplateIndex = best.Template.Index
	res.Summary = redshift.Summary{BestZ: best.BestZ, Velocity: best.Velocity, TemplateName: best.Template.Name}
	return res
}

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestSaveAndGetRun(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	res := sampleResult(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), 0.4, 0.9, 0.7)

	if err := store.SaveResult(ctx, "gal.txt", res); err != nil {
		t.Fatalf("save: %v", err)
	}

	run, ok, err := store.GetRun(ctx, res.RunID.String())
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if run.Source != "gal.txt" || run.BestTemplateIndex != 24 || run.BestPosition != 1 || run.TemplateName != "spDR2-024" {
		t.Fatalf("unexpected run %+v", run)
	}
	if run.BestZ != res.Summary.BestZ || run.Velocity != res.Summary.Velocity {
		t.Fatalf("best triple mismatch %+v", run)
	}
	if run.Z2 != 0.01 || run.ZStep != 0.001 {
		t.Fatalf("grid not archived: %+v", run)
	}
	if !run.CreatedAt.Equal(res.RunID.Time()) {
		t.Fatalf("CreatedAt=%v, want %v", run.CreatedAt, res.RunID.Time())
	}
	if len(run.Templates) != 3 {
		t.Fatalf("got %d template rows", len(run.Templates))
	}
	for i, tb := range run.Templates {
		if tb.Position != i || tb.Index != 23+i || tb.BestScore != res.Ordered[i].BestScore {
			t.Fatalf("template row %d = %+v", i, tb)
		}
	}
}

func TestSaveResultIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	res := sampleResult(t, time.Now(), 0.5, 0.6)

	for range 2 {
		if err := store.SaveResult(ctx, "gal.txt", res); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs after saving twice", len(runs))
	}
	run, _, err := store.GetRun(ctx, res.RunID.String())
	if err != nil || len(run.Templates) != 2 {
		t.Fatalf("templates=%d err=%v", len(run.Templates), err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i := range 3 {
		res := sampleResult(t, base.Add(time.Duration(i)*time.Hour), 0.5)
		ids = append(ids, res.RunID.String())
		if err := store.SaveResult(ctx, "s.txt", res); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Fatalf("unexpected order: %+v", runs)
	}
}

func TestGetRunMissing(t *testing.T) {
	_, ok, err := openStore(t).GetRun(context.Background(), "nope")
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestClosedStore(t *testing.T) {
	store := openStore(t)
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := store.ListRuns(context.Background(), 0); err == nil {
		t.Fatal("expected error from closed store")
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
