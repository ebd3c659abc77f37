// Copyright 2025 Certen Protocol
//
// Store implements the projection operations the block follower and the
// HTTP read API need against indexer.did_record / indexer.did_delete_record.
// Every exported method is a single database transaction.

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Store is the projection store described in the follower's component
// design: a narrow set of read/write operations over the live and
// tombstone tables.
type Store struct {
	client *Client
}

// NewStore wraps a Client as a Store.
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// CountHighestHeight returns the maximum height recorded in the live
// table, or ErrCountNotFound if the table is empty.
func (s *Store) CountHighestHeight(ctx context.Context) (uint64, error) {
	var height sql.NullInt64
	err := s.client.QueryRowContext(ctx,
		`SELECT MAX(height) FROM indexer.did_record`).Scan(&height)
	if err != nil {
		return 0, fmt.Errorf("count highest height: %w", err)
	}
	if !height.Valid {
		return 0, ErrCountNotFound
	}
	return uint64(height.Int64), nil
}

// LoadLiveRefs returns every (tx_hash, out_index) currently live. Used to
// seed the in-memory live-cell set at startup.
func (s *Store) LoadLiveRefs(ctx context.Context) ([]CellRef, error) {
	rows, err := s.client.QueryContext(ctx,
		`SELECT tx_hash, out_index FROM indexer.did_record WHERE valid = TRUE`)
	if err != nil {
		return nil, fmt.Errorf("load live refs: %w", err)
	}
	defer rows.Close()

	var refs []CellRef
	for rows.Next() {
		var ref CellRef
		if err := rows.Scan(&ref.TxHash, &ref.OutIndex); err != nil {
			return nil, fmt.Errorf("load live refs: scan: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// FindLiveByRef returns the live record currently stored at ref, or
// ErrDidDocNotFound.
func (s *Store) FindLiveByRef(ctx context.Context, ref CellRef) (*DidRecord, error) {
	row := s.client.QueryRowContext(ctx, `
		SELECT did, ckb_address, handle, tx_hash, out_index, document, height, created_at, valid
		FROM indexer.did_record
		WHERE tx_hash = $1 AND out_index = $2`, ref.TxHash, ref.OutIndex)
	return scanDidRecord(row)
}

// FindLiveByDID returns the live record for did, or ErrDidDocNotFound.
func (s *Store) FindLiveByDID(ctx context.Context, did string) (*DidRecord, error) {
	row := s.client.QueryRowContext(ctx, `
		SELECT did, ckb_address, handle, tx_hash, out_index, document, height, created_at, valid
		FROM indexer.did_record
		WHERE did = $1`, did)
	return scanDidRecord(row)
}

// ResolveHandle returns the did registered under handle, or
// ErrHandleNotFound.
func (s *Store) ResolveHandle(ctx context.Context, handle string) (string, error) {
	var did string
	err := s.client.QueryRowContext(ctx,
		`SELECT did FROM indexer.did_record WHERE handle = $1`, handle).Scan(&did)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrHandleNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve handle: %w", err)
	}
	return did, nil
}

// FindLiveByCkbAddress returns every live did registered under addr.
func (s *Store) FindLiveByCkbAddress(ctx context.Context, addr string) ([]string, error) {
	rows, err := s.client.QueryContext(ctx,
		`SELECT did FROM indexer.did_record WHERE ckb_address = $1`, addr)
	if err != nil {
		return nil, fmt.Errorf("find live by ckb address: %w", err)
	}
	defer rows.Close()

	var dids []string
	for rows.Next() {
		var did string
		if err := rows.Scan(&did); err != nil {
			return nil, fmt.Errorf("find live by ckb address: scan: %w", err)
		}
		dids = append(dids, did)
	}
	return dids, rows.Err()
}

// InsertLive inserts record into the live table. A primary-key conflict
// on did is treated as success with no row changed (at-least-once
// redelivery from the follower is expected).
func (s *Store) InsertLive(ctx context.Context, record DidRecord) error {
	_, err := s.client.ExecContext(ctx, `
		INSERT INTO indexer.did_record
			(did, ckb_address, handle, tx_hash, out_index, document, height, created_at, valid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		ON CONFLICT (did) DO NOTHING`,
		record.DID, record.CkbAddress, record.Handle, record.TxHash, record.OutIndex,
		record.Document, record.Height, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert live: %w", err)
	}
	return nil
}

// Retire deletes the live row for record.DID and inserts a tombstone row
// in the same transaction. A primary-key conflict on the tombstone insert
// is treated as success with no row changed. deletedAt is the consuming
// block's header timestamp, not wall-clock time, so a replay from a
// persisted height reproduces the same tombstone.
func (s *Store) Retire(ctx context.Context, record DidRecord, inIndex uint32, height uint64, deletedAt time.Time) error {
	tx, err := s.client.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("retire: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM indexer.did_record WHERE did = $1`, record.DID); err != nil {
		return fmt.Errorf("retire: delete live: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO indexer.did_delete_record
			(did, ckb_address, handle, tx_hash, in_index, document, height, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (did) DO NOTHING`,
		record.DID, record.CkbAddress, record.Handle, record.TxHash, inIndex,
		record.Document, height, deletedAt); err != nil {
		return fmt.Errorf("retire: insert tombstone: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("retire: commit: %w", err)
	}
	return nil
}

// UpdateLive overwrites a live record's document and height in place.
// Preserved for contract parity with the store's original definition; no
// caller in the follower invokes it (documents are replaced via
// retire+insert, not in-place update).
func (s *Store) UpdateLive(ctx context.Context, did string, document []byte, height uint64) error {
	_, err := s.client.ExecContext(ctx,
		`UPDATE indexer.did_record SET document = $1, height = $2 WHERE did = $3`,
		document, height, did)
	if err != nil {
		return fmt.Errorf("update live: %w", err)
	}
	return nil
}

func scanDidRecord(row *sql.Row) (*DidRecord, error) {
	var r DidRecord
	err := row.Scan(&r.DID, &r.CkbAddress, &r.Handle, &r.TxHash, &r.OutIndex,
		&r.Document, &r.Height, &r.CreatedAt, &r.Valid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDidDocNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan did record: %w", err)
	}
	return &r, nil
}
