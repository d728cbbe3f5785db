package facts

import (
	"slices"
	"sync"
)

// Store is an in-memory fact set. Duplicate facts are kept once and the
// insertion order is preserved. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	facts []Fact
	seen  map[string]struct{}
}

// NewStore creates an empty store, optionally seeded with facts.
func NewStore(fs ...Fact) *Store {
	s := &Store{seen: make(map[string]struct{})}
	for _, f := range fs {
		_ = s.Add(f)
	}
	return s
}

// Add inserts f unless an identical fact is present.
func (s *Store) Add(f Fact) error {
	key := f.String()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return nil
	}
	s.seen[key] = struct{}{}
	s.facts = append(s.facts, f)
	return nil
}

// Each calls fn for every fact in insertion order and stops on the first error.
func (s *Store) Each(fn func(Fact) error) error {
	for _, f := range s.Facts() {
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// Facts returns a copy of the facts in insertion order.
func (s *Store) Facts() []Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.facts)
}

// Len returns the number of distinct facts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.facts)
}

// Contains reports whether f is in the store.
func (s *Store) Contains(f Fact) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[f.String()]
	return ok
}

// Select returns the facts with the given signature in insertion order.
func (s *Store) Select(sig Signature) []Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Fact
	for _, f := range s.facts {
		if f.Signature() == sig {
			out = append(out, f)
		}
	}
	return out
}

// Count returns the number of facts with the given signature.
func (s *Store) Count(sig Signature) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, f := range s.facts {
		if f.Signature() == sig {
			n++
		}
	}
	return n
}

// Sorted returns the facts ordered by predicate and arguments.
func (s *Store) Sorted() []Fact {
	fs := s.Facts()
	SortFacts(fs)
	return fs
}

// SortFacts orders facts by predicate and arguments.
func SortFacts(fs []Fact) {
	slices.SortFunc(fs, Fact.Compare)
}

// Discard is a Sink that drops every fact.
var Discard Sink = discard{}

type discard struct{}

func (discard) Add(Fact) error { return nil }

// Counter is a Sink that only counts facts per signature.
type Counter map[Signature]int

// Add counts f.
func (c Counter) Add(f Fact) error {
	c[f.Signature()]++
	return nil
}
