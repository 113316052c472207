package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/eteq/saga-salt/templates"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zxcor.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Search.Z1 != -0.000005 || cfg.Search.Z2 != 0.02 || cfg.Search.ZStep != 0.000001 {
		t.Fatalf("unexpected grid defaults %+v", cfg.Search)
	}
	if len(cfg.Search.Templates) != 6 || cfg.Search.Templates[0] != 23 {
		t.Fatalf("unexpected default templates %v", cfg.Search.Templates)
	}
}

func TestDefaultDoesNotAliasIndices(t *testing.T) {
	cfg := Default()
	cfg.Search.Templates[0] = 1
	if templates.DefaultIndices[0] != 23 {
		t.Fatal("Default shares its template slice with templates.DefaultIndices")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[search]
z2 = 0.05
zstep = 0.0001
templates = [24, 25]

[catalog]
root = "/data/sdss"
format = "text"

[engine]
taper = "tukey"
taper_alpha = 0.25
workers = 4

[report]
plot = "all"
summary = true
smooth_width = 81

[archive]
path = "runs.db"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Search.Z1 != -0.000005 {
		t.Errorf("z1 default lost: %v", cfg.Search.Z1)
	}
	if cfg.Search.Z2 != 0.05 || cfg.Search.ZStep != 0.0001 {
		t.Errorf("search=%+v", cfg.Search)
	}
	if len(cfg.Search.Templates) != 2 || cfg.Search.Templates[1] != 25 {
		t.Errorf("templates=%v", cfg.Search.Templates)
	}
	if cfg.Engine.MinOverlap != 10 || !cfg.Engine.MeanSubtract {
		t.Errorf("engine defaults lost: %+v", cfg.Engine)
	}
	if cfg.Report.Plot != "all" || !cfg.Report.Summary || cfg.Report.SmoothWidth != 81 || cfg.Archive.Path != "runs.db" {
		t.Errorf("report=%+v archive=%+v", cfg.Report, cfg.Archive)
	}

	c, err := cfg.CatalogValue()
	if err != nil {
		t.Fatal(err)
	}
	if c.Format != templates.FormatText || c.Root != "/data/sdss" {
		t.Errorf("catalog=%+v", c)
	}
	opts, err := cfg.EngineOptions()
	if err != nil || len(opts) != 4 {
		t.Fatalf("EngineOptions=%d,%v", len(opts), err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[search\nz1 = 0"},
		{"unknown key", "[search]\nzmax = 1"},
		{"zero step", "[search]\nzstep = 0"},
		{"reversed grid", "[search]\nz1 = 0.1\nz2 = 0.0"},
		{"tiny step", "[search]\nzstep = 1e-300"},
		{"no templates", "[search]\ntemplates = []"},
		{"bad format", "[catalog]\nformat = \"votable\""},
		{"small overlap", "[engine]\nmin_overlap = 1"},
		{"bad taper", "[engine]\ntaper = \"kaiser\""},
		{"alpha range", "[engine]\ntaper_alpha = 1.5"},
		{"negative workers", "[engine]\nworkers = -1"},
		{"bad plot", "[report]\nplot = \"some\""},
		{"zero smooth width", "[report]\nsmooth_width = 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("got %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestDefaultRootFromEnv(t *testing.T) {
	t.Setenv(templates.RootEnv, "/env/templates")
	if got := Default().Catalog.Root; got != "/env/templates" {
		t.Fatalf("root=%q", got)
	}
}
