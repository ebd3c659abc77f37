// Copyright 2025 Certen Protocol
//
// Package didset holds the authoritative in-memory mirror of the live
// cell set: exactly the (tx_hash, out_index) pairs with a valid=true row
// in indexer.did_record. Unlike a cache, this set is never stale by
// design — the follower mutates it only after the corresponding database
// write succeeds, so memory is always a subset of persisted state, never
// a superset.

package didset

import (
	"sync"

	"github.com/certen/did-indexer/pkg/database"
)

// Set is a thread-safe set of database.CellRef.
type Set struct {
	mu   sync.RWMutex
	refs map[database.CellRef]struct{}
}

// New returns an empty Set.
func New() *Set {
	return &Set{refs: make(map[database.CellRef]struct{})}
}

// Load replaces the set's contents with refs, used once at startup to
// seed the set from database.Store.LoadLiveRefs.
func (s *Set) Load(refs []database.CellRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs = make(map[database.CellRef]struct{}, len(refs))
	for _, ref := range refs {
		s.refs[ref] = struct{}{}
	}
}

// Add records ref as live. Call only after the corresponding insert_live
// database write has committed.
func (s *Set) Add(ref database.CellRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[ref] = struct{}{}
}

// Remove clears ref. Call only after the corresponding retire database
// write has committed.
func (s *Set) Remove(ref database.CellRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refs, ref)
}

// Contains reports whether ref is currently live.
func (s *Set) Contains(ref database.CellRef) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.refs[ref]
	return ok
}

// Len returns the number of live refs.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.refs)
}
