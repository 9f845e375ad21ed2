package catalog

import (
	"fmt"
	"sync/atomic"
)

// Store holds the current catalog snapshot and replaces it atomically on
// reload. Readers always see a complete snapshot; a failed reload keeps the
// previous one.
type Store struct {
	path    string
	loader  *Loader
	current atomic.Pointer[Catalog]
}

func NewStore(path string) *Store {
	return &Store{path: path, loader: NewLoader()}
}

// Reload loads the catalog file and swaps it in. On error the old snapshot
// stays active.
func (s *Store) Reload() (*Catalog, error) {
	cat, err := s.loader.Load(s.path)
	if err != nil {
		return nil, err
	}
	s.current.Store(cat)
	return cat, nil
}

// Get returns the active snapshot.
func (s *Store) Get() (*Catalog, error) {
	cat := s.current.Load()
	if cat == nil {
		return nil, fmt.Errorf("catalog not loaded")
	}
	return cat, nil
}

func (s *Store) Path() string {
	return s.path
}
