// Copyright 2025 Certen Protocol

package didset

import (
	"testing"

	"github.com/certen/did-indexer/pkg/database"
)

func TestAddContainsRemove(t *testing.T) {
	s := New()
	ref := database.CellRef{TxHash: "0xabc", OutIndex: 0}

	if s.Contains(ref) {
		t.Fatal("ref should not be present before Add")
	}
	s.Add(ref)
	if !s.Contains(ref) {
		t.Fatal("ref should be present after Add")
	}
	s.Remove(ref)
	if s.Contains(ref) {
		t.Fatal("ref should not be present after Remove")
	}
}

func TestLoadReplacesContents(t *testing.T) {
	s := New()
	s.Add(database.CellRef{TxHash: "0xstale", OutIndex: 0})

	refs := []database.CellRef{
		{TxHash: "0x1", OutIndex: 0},
		{TxHash: "0x2", OutIndex: 1},
	}
	s.Load(refs)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if s.Contains(database.CellRef{TxHash: "0xstale", OutIndex: 0}) {
		t.Fatal("stale ref should be gone after Load")
	}
	for _, ref := range refs {
		if !s.Contains(ref) {
			t.Fatalf("ref %+v should be present after Load", ref)
		}
	}
}

func TestRemoveMissingIsNoop(t *testing.T) {
	s := New()
	s.Remove(database.CellRef{TxHash: "0xnone", OutIndex: 0})
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}
