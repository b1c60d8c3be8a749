package index

import (
	"sync"

	"github.com/starford/leit/internal/models"
)

// store is the in-memory record table: a path-keyed map for lookups plus an
// order slice that fixes iteration order. Re-indexing an existing path keeps
// its original position. Records are replaced whole, never mutated in place,
// so snapshots stay consistent for readers that hold them across a write.
type store struct {
	mu     sync.RWMutex
	byPath map[string]*models.IndexedDocument
	order  []string
}

func newStore() *store {
	return &store{byPath: make(map[string]*models.IndexedDocument)}
}

// upsert inserts or replaces the record for doc.Path.
func (s *store) upsert(doc *models.IndexedDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byPath[doc.Path]; !ok {
		s.order = append(s.order, doc.Path)
	}
	s.byPath[doc.Path] = doc
}

// remove deletes the record for path and reports whether it existed.
func (s *store) remove(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byPath[path]; !ok {
		return false
	}
	delete(s.byPath, path)
	for i, p := range s.order {
		if p == path {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *store) get(path string) (*models.IndexedDocument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.byPath[path]
	return doc, ok
}

func (s *store) has(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byPath[path]
	return ok
}

// paths returns the indexed paths in insertion order.
func (s *store) paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// snapshot returns the records in insertion order. The slice is fresh; the
// records are shared and must be treated as read-only.
func (s *store) snapshot() []*models.IndexedDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.IndexedDocument, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, s.byPath[p])
	}
	return out
}

func (s *store) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byPath)
}
