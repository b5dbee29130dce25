package profile

import "sync"

// Store keeps per-opponent stats keyed by a stable identity. Updates to a
// given opponent are serialized; reads return immutable snapshots taken
// at call time, so range derivation never blocks on writers.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	mu    sync.Mutex
	stats Stats
}

// NewStore creates an empty stats store (one per session)
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

func (s *Store) entryFor(id string) *entry {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[id]; ok {
		return e
	}
	e = &entry{}
	s.entries[id] = e
	return e
}

// Record merges one completed-hand observation for an opponent.
// The single serialized write path per key.
func (s *Store) Record(id string, obs HandObservation) {
	e := s.entryFor(id)
	e.mu.Lock()
	e.stats.record(obs)
	e.mu.Unlock()
}

// Snapshot returns a copy of an opponent's current stats. Unknown
// opponents yield zero stats, which classify as the default archetype.
func (s *Store) Snapshot(id string) Stats {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return Stats{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Opponents returns the identities with recorded stats
func (s *Store) Opponents() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	return ids
}
