package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/eteq/saga-salt/internal/testutil"
	"github.com/eteq/saga-salt/spectrum"
)

func writeTextTemplate(t *testing.T, c Catalog, index int) {
	t.Helper()
	wl := testutil.LinearAxis(3500, 7500, 401)
	flux := testutil.LineSpectrum(wl, testutil.GalaxyLines, 0)
	if err := testutil.WriteTextSpectrum(c.ResolvePath(index), wl, flux, testutil.DC(0, len(wl))); err != nil {
		t.Fatal(err)
	}
}

func TestCatalogNaming(t *testing.T) {
	c := Catalog{Root: "/data/templ"}
	tests := []struct {
		index int
		name  string
		path  string
	}{
		{23, "spDR2-023", "/data/templ/spDR2-023.fit"},
		{5, "spDR2-005", "/data/templ/spDR2-005.fit"},
		{123, "spDR2-123", "/data/templ/spDR2-123.fit"},
	}
	for _, tt := range tests {
		if got := c.Name(tt.index); got != tt.name {
			t.Errorf("Name(%d)=%q, want %q", tt.index, got, tt.name)
		}
		if got := c.ResolvePath(tt.index); got != filepath.FromSlash(tt.path) {
			t.Errorf("ResolvePath(%d)=%q, want %q", tt.index, got, tt.path)
		}
	}

	text := Catalog{Root: "r", Format: FormatText}
	if got := text.ResolvePath(24); got != filepath.Join("r", "spDR2-024.txt") {
		t.Errorf("text ResolvePath=%q", got)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatSDSS, "SDSS": FormatSDSS, "text": FormatText} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q)=%v,%v want %v", in, got, err, want)
		}
	}
	if _, err := ParseFormat("votable"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestDefaultRoot(t *testing.T) {
	t.Setenv(RootEnv, "/opt/templates")
	if got := DefaultRoot(); got != "/opt/templates" {
		t.Fatalf("got %q", got)
	}
	t.Setenv(RootEnv, "")
	if got := DefaultRoot(); got != "template" {
		t.Fatalf("got %q", got)
	}
}

func TestLibraryLoadsAndCaches(t *testing.T) {
	c := Catalog{Root: t.TempDir(), Format: FormatText}
	writeTextTemplate(t, c, 23)

	lib := NewLibrary(c)
	first, err := lib.Entry(23)
	if err != nil {
		t.Fatal(err)
	}
	if first.Name != "spDR2-023" || first.Index != 23 || first.Spectrum.Len() != 401 {
		t.Fatalf("unexpected entry %+v", first)
	}

	// Removing the file after the first load must not matter within the library.
	if err := os.Remove(c.ResolvePath(23)); err != nil {
		t.Fatal(err)
	}
	second, err := lib.Entry(23)
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Fatal("second Entry call did not return the cached entry")
	}

	// A fresh library has no cache.
	if _, err := NewLibrary(c).Entry(23); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("fresh library: got %v, want ErrTemplateNotFound", err)
	}
}

func TestLibraryLoadOrderAndMissing(t *testing.T) {
	c := Catalog{Root: t.TempDir(), Format: FormatText}
	writeTextTemplate(t, c, 25)
	writeTextTemplate(t, c, 23)

	entries, err := NewLibrary(c).Load([]int{25, 23})
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Index != 25 || entries[1].Index != 23 {
		t.Fatalf("order not preserved: %d, %d", entries[0].Index, entries[1].Index)
	}

	_, err = NewLibrary(c).Load([]int{23, 99, 25})
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("got %v, want ErrTemplateNotFound", err)
	}
	if got := err.Error(); !strings.Contains(got, "99") || !strings.Contains(got, "spDR2-099") {
		t.Fatalf("error %q does not identify the template", got)
	}
}

func TestLibraryPropagatesFormatError(t *testing.T) {
	c := Catalog{Root: t.TempDir(), Format: FormatText}
	if err := os.WriteFile(c.ResolvePath(26), []byte("4000 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewLibrary(c).Entry(26)
	if !errors.Is(err, spectrum.ErrFormat) {
		t.Fatalf("got %v, want spectrum.ErrFormat", err)
	}
	if errors.Is(err, ErrTemplateNotFound) {
		t.Fatal("format error misreported as not found")
	}
}

func TestLibrarySDSS(t *testing.T) {
	c := Catalog{Root: t.TempDir()}
	n := 64
	err := testutil.WriteFITS(c.ResolvePath(27), []int{n, 1}, testutil.DC(1, n),
		testutil.Card{Name: "COEFF0", Value: 3.55},
		testutil.Card{Name: "COEFF1", Value: 0.0001},
	)
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewLibrary(c).Entry(27)
	if err != nil {
		t.Fatal(err)
	}
	if e.Spectrum.Len() != n {
		t.Fatalf("Len=%d, want %d", e.Spectrum.Len(), n)
	}
}

func TestCatalogList(t *testing.T) {
	c := Catalog{Root: t.TempDir(), Format: FormatText}
	writeTextTemplate(t, c, 24)

	got := c.List([]int{23, 24})
	if len(got) != 2 || got[0].Exists || !got[1].Exists {
		t.Fatalf("unexpected listing %+v", got)
	}
	if got[1].Name != "spDR2-024" {
		t.Fatalf("Name=%q", got[1].Name)
	}
}
