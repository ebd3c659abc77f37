// Copyright 2025 Certen Protocol
//
// Package follower implements the block-following state machine: per
// height, fetch-block -> apply-inputs -> apply-outputs -> advance,
// switching between catching_up and at_tip sync modes against a moving
// chain tip, with a bounded retry budget before escalating to the
// supervisor as a fatal error.

package follower

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/certen/did-indexer/pkg/ckbaddr"
	"github.com/certen/did-indexer/pkg/ckbrpc"
	"github.com/certen/did-indexer/pkg/codec"
	"github.com/certen/did-indexer/pkg/database"
	"github.com/certen/did-indexer/pkg/didset"
	"github.com/certen/did-indexer/pkg/metrics"
	"github.com/certen/did-indexer/pkg/validator"
)

// SyncMode selects the follower's pacing: in CatchingUp it does not sleep
// between iterations; in AtTip it sleeps atTipPacing after an iteration
// that found no block. probeTip switches AtTip to CatchingUp when the tip
// is below the next height, and CatchingUp to AtTip when the tip is above
// it.
type SyncMode int

const (
	CatchingUp SyncMode = iota
	AtTip
)

func (m SyncMode) String() string {
	if m == AtTip {
		return "at_tip"
	}
	return "catching_up"
}

// ErrRetryBudgetExhausted is returned by Run when err_streak exceeds the
// configured budget; the supervisor treats this as a fatal exit.
var ErrRetryBudgetExhausted = errors.New("follower: retry budget exhausted")

const (
	maxErrStreak  = 10
	tipProbeEvery = 100
	atTipPacing   = 3 * time.Second
	catchUpPacing = 0 * time.Second
)

// RPC is the subset of ckbrpc.Client the follower depends on.
type RPC interface {
	GetBlockByNumber(ctx context.Context, height uint64) (*ckbrpc.Block, error)
	GetTipBlockNumber(ctx context.Context) (uint64, error)
}

// Store is the subset of database.Store the follower depends on.
type Store interface {
	FindLiveByRef(ctx context.Context, ref database.CellRef) (*database.DidRecord, error)
	InsertLive(ctx context.Context, record database.DidRecord) error
	Retire(ctx context.Context, record database.DidRecord, inIndex uint32, height uint64, deletedAt time.Time) error
}

// Follower is the single writer of the projection.
type Follower struct {
	rpc     RPC
	store   Store
	live    *didset.Set
	metrics *metrics.Metrics
	logger  *log.Logger

	targetCodeHash [32]byte
	network        ckbaddr.Network

	tipLimiter *rate.Limiter

	height    uint64
	syncMode  SyncMode
	errStreak int
}

// Option configures a Follower.
type Option func(*Follower)

// WithLogger sets a custom logger.
func WithLogger(logger *log.Logger) Option {
	return func(f *Follower) { f.logger = logger }
}

// WithMetrics attaches a metrics registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Follower) { f.metrics = m }
}

// New constructs a Follower starting at startHeight (the caller is
// responsible for resolving max(config.start_height, count_highest_height())
// before calling this).
func New(rpc RPC, store Store, live *didset.Set, targetCodeHash [32]byte,
	network ckbaddr.Network, startHeight uint64, opts ...Option) *Follower {

	f := &Follower{
		rpc:            rpc,
		store:          store,
		live:           live,
		targetCodeHash: targetCodeHash,
		network:        network,
		height:         startHeight,
		syncMode:       AtTip,
		tipLimiter:     rate.NewLimiter(rate.Every(time.Second), 1),
		logger:         log.New(log.Writer(), "[Follower] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Height returns the next height the follower will process.
func (f *Follower) Height() uint64 { return f.height }

// Run drives the follower loop until ctx is cancelled or the retry
// budget is exhausted. A non-nil error return is always fatal.
func (f *Follower) Run(ctx context.Context) error {
	f.logger.Printf("Starting at height %d", f.height)

	for {
		select {
		case <-ctx.Done():
			f.logger.Println("Cancelled, exiting")
			return fmt.Errorf("follower: %w", ctx.Err())
		default:
		}

		gotBlock, err := f.iterate(ctx)
		if err != nil {
			f.errStreak++
			f.logger.Printf("Iteration error at height %d (err_streak=%d): %v", f.height, f.errStreak, err)
			if f.errStreak > maxErrStreak {
				return ErrRetryBudgetExhausted
			}
		} else {
			f.errStreak = 0
		}
		if f.metrics != nil {
			f.metrics.FollowerErrStreak.Set(float64(f.errStreak))
			f.metrics.FollowerHeight.Set(float64(f.height))
			f.metrics.SetSyncMode(f.syncMode == AtTip)
		}

		pacing := catchUpPacing
		if f.syncMode == AtTip {
			pacing = atTipPacing
		}
		if !gotBlock && pacing > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("follower: %w", ctx.Err())
			case <-time.After(pacing):
			}
		}
	}
}

// iterate runs a single step of the state machine at the current height.
func (f *Follower) iterate(ctx context.Context) (gotBlock bool, err error) {
	block, err := f.rpc.GetBlockByNumber(ctx, f.height)
	if err != nil {
		return false, fmt.Errorf("get_block_by_number(%d): %w", f.height, err)
	}

	if block == nil {
		if f.syncMode == AtTip {
			if probeErr := f.probeTip(ctx); probeErr != nil {
				return false, probeErr
			}
		}
		return false, nil
	}

	if f.height%tipProbeEvery == 0 && f.syncMode == CatchingUp {
		if probeErr := f.probeTip(ctx); probeErr != nil {
			f.logger.Printf("Tip probe failed (non-fatal): %v", probeErr)
		}
	}

	if err := f.applyBlock(ctx, block); err != nil {
		return false, err
	}

	if f.metrics != nil {
		f.metrics.BlocksProcessed.Inc()
	}
	f.height++
	return true, nil
}

// probeTip checks the chain tip and updates sync_mode accordingly. It is
// rate-limited since it is called on every absent-block iteration.
func (f *Follower) probeTip(ctx context.Context) error {
	if !f.tipLimiter.Allow() {
		return nil
	}
	tip, err := f.rpc.GetTipBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("get_tip_block_number: %w", err)
	}

	switch f.syncMode {
	case AtTip:
		if tip < f.height {
			f.syncMode = CatchingUp
		}
	case CatchingUp:
		if tip > f.height {
			f.syncMode = AtTip
		}
	}
	return nil
}

// applyBlock applies every transaction's inputs then outputs, in block
// order: inputs before outputs of the same transaction, transactions in
// declared block order.
func (f *Follower) applyBlock(ctx context.Context, block *ckbrpc.Block) error {
	blockTime := msToTime(uint64(block.Header.TimestampMs))

	for _, tx := range block.Transactions {
		for inIndex, input := range tx.Inputs {
			ref := database.CellRef{
				TxHash:   input.PreviousOutput.TxHash,
				OutIndex: uint32(input.PreviousOutput.Index),
			}
			if !f.live.Contains(ref) {
				continue
			}
			if err := f.retireRef(ctx, ref, uint32(inIndex), uint64(block.Header.Number), blockTime); err != nil {
				// At-least-once retirement contract: log and continue, the
				// ref stays in the in-memory set. This block is not fetched
				// again in this run; the ref is retired only if a later
				// replay of this height observes the input again.
				f.logger.Printf("Retire failed for %+v (ref kept in live set): %v", ref, err)
			}
		}

		for outIndex, output := range tx.Outputs {
			if output.Type == nil {
				continue
			}
			codeHash, err := output.Type.CodeHashBytes()
			if err != nil || codeHash != f.targetCodeHash {
				continue
			}
			if outIndex >= len(tx.OutputsData) {
				continue
			}
			f.applyOutput(ctx, tx.Hash, uint32(outIndex), output, tx.OutputsData[outIndex], uint64(block.Header.Number), blockTime)
		}
	}
	return nil
}

// msToTime converts a CKB block header's millisecond Unix timestamp into a
// UTC time.Time.
func msToTime(ms uint64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}

func (f *Follower) retireRef(ctx context.Context, ref database.CellRef, inIndex uint32, height uint64, deletedAt time.Time) error {
	row, err := f.store.FindLiveByRef(ctx, ref)
	if err != nil {
		return err
	}
	if err := f.store.Retire(ctx, *row, inIndex, height, deletedAt); err != nil {
		return err
	}
	f.live.Remove(ref)
	if f.metrics != nil {
		f.metrics.RecordsRetired.Inc()
	}
	return nil
}

// applyOutput decodes, validates and (on success) inserts the output as
// a new live record. Any decode/validate/insert failure is logged and
// skipped; it never blocks the block.
func (f *Follower) applyOutput(ctx context.Context, txHash string, outIndex uint32,
	output ckbrpc.Output, data []byte, height uint64, createdAt time.Time) {

	doc, err := codec.Decode(data)
	if err != nil {
		f.logger.Printf("Decode failed for %s:%d: %v", txHash, outIndex, err)
		f.skip()
		return
	}

	result, err := validator.Validate(doc)
	if err != nil {
		f.logger.Printf("Validation failed for %s:%d: %v", txHash, outIndex, err)
		f.skip()
		return
	}

	did, err := validator.CalculateDID(output.Type.Args)
	if err != nil {
		f.logger.Printf("DID derivation failed for %s:%d: %v", txHash, outIndex, err)
		f.skip()
		return
	}

	documentJSON, err := canonicalJSON(doc)
	if err != nil {
		f.logger.Printf("Document re-encode failed for %s:%d: %v", txHash, outIndex, err)
		f.skip()
		return
	}

	codeHash, _ := output.Lock.CodeHashBytes()
	address := ckbaddr.Derive(ckbaddr.Script{
		CodeHash: codeHash,
		HashType: lockHashType(output.Lock.HashType),
		Args:     output.Lock.Args,
	}, f.network)

	record := database.DidRecord{
		DID:        did,
		CkbAddress: address,
		Handle:     result.Handle,
		TxHash:     txHash,
		OutIndex:   outIndex,
		Document:   documentJSON,
		Height:     height,
		CreatedAt:  createdAt,
	}

	if err := f.store.InsertLive(ctx, record); err != nil {
		f.logger.Printf("Insert failed for %s:%d: %v", txHash, outIndex, err)
		f.skip()
		return
	}
	f.live.Add(record.Ref())
	if f.metrics != nil {
		f.metrics.RecordsInserted.Inc()
	}
}

func (f *Follower) skip() {
	if f.metrics != nil {
		f.metrics.DecodeSkipped.Inc()
	}
}

func canonicalJSON(doc *codec.DidDocument) ([]byte, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return b, nil
}

func lockHashType(s string) ckbaddr.HashType {
	switch s {
	case "type":
		return ckbaddr.HashTypeType
	case "data1":
		return ckbaddr.HashTypeData1
	default:
		return ckbaddr.HashTypeData
	}
}
