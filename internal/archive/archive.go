// Package archive keeps a history of redshift searches in a SQLite
// database.
package archive

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/ksuid"

	"github.com/eteq/saga-salt/redshift"

	_ "modernc.org/sqlite"
)

// Run is one archived search.
type Run struct {
	ID                string
	CreatedAt         time.Time
	Source            string
	Z1, Z2, ZStep     float64
	BestTemplateIndex int
	BestPosition      int
	BestZ             float64
	Velocity          float64
	TemplateName      string
	Templates         []TemplateBest
}

// TemplateBest is the archived best trial of one template.
type TemplateBest struct {
	Position  int
	Index     int
	Name      string
	BestZ     float64
	BestScore float64
	Velocity  float64
}

// Store is a SQLite-backed run archive. It is safe for concurrent use.
type Store struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// Open opens or creates the archive at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("archive: database path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "archive: open %s", path)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "archive: open %s", path)
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "archive: create tables")
	}
	return &Store{path: path, db: db}, nil
}

// Close releases the database handle. Calling Close twice is harmless.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// SaveResult records result, read from source, under its run id.
// Saving the same run twice replaces the earlier record.
func (s *Store) SaveResult(ctx context.Context, source string, result *redshift.Result) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	if len(result.Ordered) == 0 {
		return errors.New("archive: result has no templates")
	}

	grid := result.Ordered[0].Grid
	id := result.RunID.String()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "archive: begin")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, source, z1, z2, zstep, best_template, best_position, best_z, velocity, template_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			source = excluded.source,
			z1 = excluded.z1,
			z2 = excluded.z2,
			zstep = excluded.zstep,
			best_template = excluded.best_template,
			best_position = excluded.best_position,
			best_z = excluded.best_z,
			velocity = excluded.velocity,
			template_name = excluded.template_name
	`, id, runTime(result.RunID).UnixNano(), source, grid.Start, grid.Stop, grid.Step,
		result.BestTemplateIndex, result.BestPosition, result.Summary.BestZ, result.Summary.Velocity, result.Summary.TemplateName)
	if err != nil {
		return errors.Wrapf(err, "archive: save run %s", id)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_templates WHERE run_id = ?`, id); err != nil {
		return errors.Wrapf(err, "archive: save run %s", id)
	}
	for pos, tr := range result.Ordered {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_templates (run_id, position, template_index, name, best_z, best_score, velocity)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, pos, tr.Template.Index, tr.Template.Name, tr.BestZ, tr.BestScore, tr.Velocity)
		if err != nil {
			return errors.Wrapf(err, "archive: save template %d of run %s", tr.Template.Index, id)
		}
	}

	return errors.Wrap(tx.Commit(), "archive: commit")
}

// ListRuns returns up to limit runs, newest first, without their
// per-template rows. limit <= 0 returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, created_at, source, z1, z2, zstep, best_template, best_position, best_z, velocity, template_name
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "archive: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, errors.Wrap(rows.Err(), "archive: list runs")
}

// GetRun returns the run with the given id and its per-template rows in
// search order. The boolean is false when no such run exists.
func (s *Store) GetRun(ctx context.Context, id string) (Run, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, false, err
	}

	r, err := scanRun(db.QueryRowContext(ctx, `
		SELECT id, created_at, source, z1, z2, zstep, best_template, best_position, best_z, velocity, template_name
		FROM runs WHERE id = ?
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, false, nil
		}
		return Run{}, false, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT position, template_index, name, best_z, best_score, velocity
		FROM run_templates WHERE run_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return Run{}, false, errors.Wrapf(err, "archive: templates of run %s", id)
	}
	defer rows.Close()

	for rows.Next() {
		var tb TemplateBest
		if err := rows.Scan(&tb.Position, &tb.Index, &tb.Name, &tb.BestZ, &tb.BestScore, &tb.Velocity); err != nil {
			return Run{}, false, errors.Wrapf(err, "archive: templates of run %s", id)
		}
		r.Templates = append(r.Templates, tb)
	}
	if err := rows.Err(); err != nil {
		return Run{}, false, errors.Wrapf(err, "archive: templates of run %s", id)
	}
	return r, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r       Run
		created int64
	)
	err := row.Scan(&r.ID, &created, &r.Source, &r.Z1, &r.Z2, &r.ZStep,
		&r.BestTemplateIndex, &r.BestPosition, &r.BestZ, &r.Velocity, &r.TemplateName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, errors.Wrap(err, "archive: scan run")
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	return r, nil
}

func runTime(id ksuid.KSUID) time.Time {
	if id.IsNil() {
		return time.Now()
	}
	return id.Time()
}

func (s *Store) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("archive: store is closed")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			source TEXT NOT NULL,
			z1 REAL NOT NULL,
			z2 REAL NOT NULL,
			zstep REAL NOT NULL,
			best_template INTEGER NOT NULL,
			best_position INTEGER NOT NULL,
			best_z REAL NOT NULL,
			velocity REAL NOT NULL,
			template_name TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS run_templates (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			template_index INTEGER NOT NULL,
			name TEXT NOT NULL,
			best_z REAL NOT NULL,
			best_score REAL NOT NULL,
			velocity REAL NOT NULL,
			PRIMARY KEY (run_id, position)
		);
	`)
	return err
}
