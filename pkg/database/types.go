// Copyright 2025 Certen Protocol

package database

import "time"

// CellRef identifies a cell by the outpoint that created it.
type CellRef struct {
	TxHash   string
	OutIndex uint32
}

// DidRecord is a live row in indexer.did_record: the current projection of
// a DID document onto the cell that currently carries it.
type DidRecord struct {
	DID        string
	CkbAddress string
	Handle     string
	TxHash     string
	OutIndex   uint32
	Document   []byte // canonical JSON
	Height     uint64
	CreatedAt  time.Time
	Valid      bool
}

// Ref returns the CellRef this record currently lives at.
func (r DidRecord) Ref() CellRef {
	return CellRef{TxHash: r.TxHash, OutIndex: r.OutIndex}
}

// TombstoneRecord is a row in indexer.did_delete_record: the last known
// state of a DID document at the moment its cell was spent, whether or
// not the spending transaction creates a new cell for the same did.
type TombstoneRecord struct {
	DID        string
	CkbAddress string
	Handle     string
	TxHash     string
	InIndex    uint32
	Document   []byte
	Height     uint64
	DeletedAt  time.Time
}
