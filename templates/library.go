package templates

import (
	"os"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/eteq/saga-salt/spectrum"
)

// ErrTemplateNotFound marks a catalog index whose resolved file does not
// exist. A missing template is fatal to a search rather than skipped.
var ErrTemplateNotFound = errors.New("templates: template not found")

// Entry is a resolved, loaded template.
type Entry struct {
	Index    int
	Name     string
	Path     string
	Spectrum *spectrum.Spectrum
}

// Library loads templates from a Catalog and caches them for its own
// lifetime. Create one Library per search; it is safe for concurrent use.
type Library struct {
	catalog Catalog
	load    func(string) (*spectrum.Spectrum, error)

	mu    sync.Mutex
	cache map[int]*Entry
}

// NewLibrary returns an empty Library over catalog.
func NewLibrary(catalog Catalog) *Library {
	return &Library{
		catalog: catalog,
		load:    catalog.Format.loader(),
		cache:   make(map[int]*Entry),
	}
}

// Catalog returns the catalog the library reads from.
func (l *Library) Catalog() Catalog {
	return l.catalog
}

// Entry returns the template at index, loading it on first use. It fails
// with ErrTemplateNotFound when the resolved path does not exist and with
// spectrum.ErrFormat when the file cannot be parsed.
func (l *Library) Entry(index int) (*Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.cache[index]; ok {
		return e, nil
	}

	path := l.catalog.ResolvePath(index)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Mark(
				errors.Newf("templates: template %d (%s) not found at %s", index, l.catalog.Name(index), path),
				ErrTemplateNotFound)
		}
		return nil, errors.Wrapf(err, "templates: stat template %d", index)
	}

	s, err := l.load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "templates: load template %d", index)
	}

	e := &Entry{
		Index:    index,
		Name:     l.catalog.Name(index),
		Path:     path,
		Spectrum: s,
	}
	l.cache[index] = e
	return e, nil
}

// Load returns the entries for indices in order, stopping at the first
// failure.
func (l *Library) Load(indices []int) ([]*Entry, error) {
	out := make([]*Entry, 0, len(indices))
	for _, idx := range indices {
		e, err := l.Entry(idx)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
