// Copyright 2026 The rollup-core Authors
// This file is part of the rollup-core library.
//
// The rollup-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The rollup-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the rollup-core library. If not, see <http://www.gnu.org/licenses/>.

// Package statekeeper implements the single-threaded actor of §4.4: the
// sole writer of the account tree, driving proposed blocks through to
// either a stored pending snapshot or one or more sealed Blocks.
package statekeeper

import (
	"math/big"
	"sync"
	"time"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/config"
	"github.com/l2anchor/rollup-core/core/gas"
	"github.com/l2anchor/rollup-core/core/tree"
	"github.com/l2anchor/rollup-core/core/types"
	rlog "github.com/l2anchor/rollup-core/log"
	"github.com/l2anchor/rollup-core/metrics"
)

var logger = rlog.NewModuleLogger(rlog.StateKeeper)

var (
	blocksSealedCounter = metrics.NewRegisteredCounter("statekeeper/blocks_sealed")
	sealTimer           = metrics.NewRegisteredTimer("statekeeper/seal_latency")
)

// ResponseKind tags a CommitRequest as either an in-progress snapshot or a
// fully sealed block (§4.4 "Two response kinds").
type ResponseKind int

const (
	KindPendingBlock ResponseKind = iota
	KindBlock
)

// CommitRequest is what the State Keeper emits per unit of work consumed
// (§4.4). Exactly one of Pending or (Sealed, Updates) is populated, per Kind.
type CommitRequest struct {
	Kind ResponseKind

	Pending *types.PendingBlock // snapshot, KindPendingBlock

	Sealed  *types.Block          // KindBlock
	Updates []types.AccountUpdate // every AccountUpdate produced assembling Sealed
}

// StateKeeper owns the account tree exclusively (§3 Ownership) and must
// only ever be driven by a single goroutine — either by calling
// ExecuteProposedBlock directly from that goroutine, or by running Run and
// feeding it through In()/Out().
type StateKeeper struct {
	cfg  config.StateKeeperConfig
	tree *tree.Tree
	gas  *gas.Counter

	pending   *types.PendingBlock
	createdAt map[rcommon.AccountID]time.Time

	snapMu   sync.RWMutex
	snapshot *types.PendingBlock

	in   chan *types.ProposedBlock
	out  chan []CommitRequest
	quit chan struct{}
}

// New constructs a StateKeeper over an existing tree (possibly rebuilt by
// Data-Restore) starting at blockNumber with processedPriorityOpsBefore
// priority ops already applied.
func New(cfg config.StateKeeperConfig, t *tree.Tree, blockNumber uint64, processedPriorityOpsBefore uint64) *StateKeeper {
	sk := &StateKeeper{
		cfg:       cfg,
		tree:      t,
		gas:       gas.New(config.DefaultGasCounterConfig),
		createdAt: make(map[rcommon.AccountID]time.Time),
		in:        make(chan *types.ProposedBlock),
		out:       make(chan []CommitRequest),
		quit:      make(chan struct{}),
	}
	sk.pending = types.NewPendingBlock(blockNumber, processedPriorityOpsBefore)
	sk.updateSnapshot()
	return sk
}

// In/Out expose the actor's channels for a caller that wants to drive it
// through Run rather than calling ExecuteProposedBlock inline.
func (sk *StateKeeper) In() chan<- *types.ProposedBlock { return sk.in }
func (sk *StateKeeper) Out() <-chan []CommitRequest     { return sk.out }

// Run is the actor's main loop; call Stop to end it.
func (sk *StateKeeper) Run() {
	for {
		select {
		case pb := <-sk.in:
			sk.out <- sk.ExecuteProposedBlock(pb)
		case <-sk.quit:
			return
		}
	}
}

// Stop signals Run to exit.
func (sk *StateKeeper) Stop() { close(sk.quit) }

// Pending returns a read-only snapshot of the in-progress block, safe to
// call concurrently with ExecuteProposedBlock (§4.4 "allows API to observe
// in-progress state").
func (sk *StateKeeper) Pending() *types.PendingBlock {
	sk.snapMu.RLock()
	defer sk.snapMu.RUnlock()
	return sk.snapshot
}

func (sk *StateKeeper) updateSnapshot() {
	sk.snapMu.Lock()
	defer sk.snapMu.Unlock()
	cp := *sk.pending
	sk.snapshot = &cp
}

// ExecuteProposedBlock is the single entry point driving §4.4's
// state-machine: priority ops, then txs, then a seal decision. A proposed
// block can force more than one intermediate seal (when a later op in it
// doesn't fit the block still open from a previous round), so the result
// is an ordered slice; every KindBlock entry but possibly the last is such
// a forced seal, and the final entry is either the regular per-iteration
// seal or, if none was due yet, the stored pending snapshot.
//
// Must only be called by the goroutine that owns this StateKeeper.
func (sk *StateKeeper) ExecuteProposedBlock(pb *types.ProposedBlock) []CommitRequest {
	var out []CommitRequest

	for _, op := range pb.PriorityOps {
		if req, sealed := sk.ensureCapacity(types.Chunks(op.Op.Type()), op.Op.Type(), false); sealed {
			out = append(out, req)
		}
		sk.applyOnePriorityOp(op)
	}

	seenBatch := make(map[uint64]bool)
	for _, tx := range pb.Txs {
		if tx.BatchID != 0 {
			if seenBatch[tx.BatchID] {
				continue
			}
			seenBatch[tx.BatchID] = true
			batch := batchMembers(pb.Txs, tx.BatchID)
			if req, sealed := sk.ensureCapacityForBatch(batch); sealed {
				out = append(out, req)
			}
			sk.applyBatch(batch)
			continue
		}
		if req, sealed := sk.ensureCapacity(tx.Op.MinChunks(), tx.Op.Type(), isWithdrawal(tx.Op)); sealed {
			out = append(out, req)
		}
		sk.applyOneTx(tx)
	}

	sk.pending.PendingOpBlockIndex++
	if sk.shouldSeal() {
		out = append(out, sk.seal())
		return out
	}
	sk.updateSnapshot()
	out = append(out, CommitRequest{Kind: KindPendingBlock, Pending: sk.snapshot})
	return out
}

func (sk *StateKeeper) shouldSeal() bool {
	if sk.pending.PendingOpBlockIndex >= uint64(sk.cfg.MaxIterations) {
		return true
	}
	if sk.pending.FastProcessing && sk.pending.PendingOpBlockIndex >= uint64(sk.cfg.FastIterations) {
		return true
	}
	return false
}

// ensureCapacity seals (and resets) the current pending block when the
// next op wouldn't fit — by chunk budget, gas limit, or withdrawal count —
// so the caller can retry that op against a fresh block (§4.4 item 1/2:
// "failures due to capacity ... trigger a seal + retry").
func (sk *StateKeeper) ensureCapacity(width int, opType types.OpType, isWithdrawalOp bool) (CommitRequest, bool) {
	withdrawalDelta := 0
	if isWithdrawalOp {
		withdrawalDelta = 1
	}
	return sk.ensureCapacityForOps(width, []types.OpType{opType}, withdrawalDelta)
}

// ensureCapacityForBatch is ensureCapacity generalized over every member of
// one mempool batch at once, since a batch is admitted to a block as a
// single all-or-nothing unit (§4.4 apply_batch) and must not be split
// across a forced seal partway through.
func (sk *StateKeeper) ensureCapacityForBatch(batch []*types.SignedTx) (CommitRequest, bool) {
	width := 0
	opTypes := make([]types.OpType, 0, len(batch))
	withdrawalDelta := 0
	for _, tx := range batch {
		width += tx.Op.MinChunks()
		opTypes = append(opTypes, tx.Op.Type())
		if isWithdrawal(tx.Op) {
			withdrawalDelta++
		}
	}
	return sk.ensureCapacityForOps(width, opTypes, withdrawalDelta)
}

func (sk *StateKeeper) ensureCapacityForOps(width int, opTypes []types.OpType, withdrawalDelta int) (CommitRequest, bool) {
	maxSize := sk.cfg.AvailableChunkSizes[len(sk.cfg.AvailableChunkSizes)-1]
	fits := sk.pending.ChunksUsed+width <= maxSize &&
		sk.gas.CanInclude(opTypes) &&
		sk.pending.WithdrawalsCount+withdrawalDelta <= sk.cfg.MaxWithdrawalsPerBlock
	if fits {
		return CommitRequest{}, false
	}
	return sk.seal(), true
}

// batchMembers returns, in pb.Txs order, every tx sharing batchID.
func batchMembers(txs []*types.SignedTx, batchID uint64) []*types.SignedTx {
	var out []*types.SignedTx
	for _, tx := range txs {
		if tx.BatchID == batchID {
			out = append(out, tx)
		}
	}
	return out
}

func (sk *StateKeeper) applyOnePriorityOp(op types.PriorityOp) {
	res := sk.tree.ApplyPriorityOp(op.Op)
	_ = sk.gas.AddOp(op.Op.Type())
	sk.recordCreates(res.Updates)

	sk.pending.ChunksUsed += types.Chunks(op.Op.Type())
	sk.pending.SuccessOps = append(sk.pending.SuccessOps, types.ExecutedOp{
		Op: op.Op, Success: true, FeeTokenID: res.FeeTokenID, Fee: res.Fee,
	})
	sk.pending.AccountUpdates = append(sk.pending.AccountUpdates, res.Updates...)
	sk.pending.ProcessedPriorityOpsAfter = op.SerialID + 1
	sk.pending.AddFee(res.FeeTokenID, res.Fee)
}

// applyOneTx applies a single off-chain tx. A failure specific to the tx
// (bad nonce, insufficient funds, ...) is recorded in FailedTxs and
// consumes a slot; capacity has already been ensured by the caller.
func (sk *StateKeeper) applyOneTx(tx *types.SignedTx) {
	width := tx.Op.MinChunks()
	if w, ok := tx.Op.(*types.Withdraw); ok && w.Fast {
		sk.pending.FastProcessing = true
	}

	now := time.Now()
	accID, _, hasAccount := types.AccountOf(tx.Op)
	createdAt := now
	if hasAccount {
		if t, ok := sk.createdAt[accID]; ok {
			createdAt = t
		}
	}

	res := sk.tree.ApplyTx(tx.Op, createdAt, now, sk.cfg.ForcedExitMinAccountAge)
	sk.pending.ChunksUsed += width
	if !res.Success {
		sk.pending.FailedTxs = append(sk.pending.FailedTxs, types.FailedTx{Hash: tx.Hash, Op: tx.Op, Reason: res.FailReason})
		logger.Debug("tx rejected", "hash", tx.Hash, "reason", res.FailReason)
		return
	}

	_ = sk.gas.AddOp(tx.Op.Type())
	sk.recordCreates(res.Updates)

	if isWithdrawal(tx.Op) {
		sk.pending.WithdrawalsCount++
	}
	sk.pending.SuccessOps = append(sk.pending.SuccessOps, types.ExecutedOp{
		Op: tx.Op, Success: true, FeeTokenID: res.FeeTokenID, Fee: res.Fee,
	})
	sk.pending.AccountUpdates = append(sk.pending.AccountUpdates, res.Updates...)
	sk.pending.AddFee(res.FeeTokenID, res.Fee)
}

// applyBatch applies every member of one mempool batch atomically (§4.4:
// "when two txs from the same account have the same nonce in a batch, the
// batch is rejected as a whole" — generalized here to any member failure).
// Members are tried in order; the first failure undoes every tree update
// the batch made so far and rejects every member, rather than the partial
// application applyOneTx allows for an ungrouped tx. Capacity has already
// been ensured for the whole batch by the caller.
func (sk *StateKeeper) applyBatch(batch []*types.SignedTx) {
	totalWidth := 0
	for _, tx := range batch {
		totalWidth += tx.Op.MinChunks()
	}

	now := time.Now()
	var updates []types.AccountUpdate
	var successOps []types.ExecutedOp
	var gasOps []types.OpType
	type feeEntry struct {
		token rcommon.TokenID
		fee   *big.Int
	}
	var fees []feeEntry
	withdrawalDelta := 0
	fastProcessing := false

	for _, tx := range batch {
		accID, _, hasAccount := types.AccountOf(tx.Op)
		createdAt := now
		if hasAccount {
			if t, ok := sk.createdAt[accID]; ok {
				createdAt = t
			}
		}

		res := sk.tree.ApplyTx(tx.Op, createdAt, now, sk.cfg.ForcedExitMinAccountAge)
		if !res.Success {
			sk.tree.Undo(updates)
			sk.pending.ChunksUsed += totalWidth
			for _, member := range batch {
				sk.pending.FailedTxs = append(sk.pending.FailedTxs, types.FailedTx{Hash: member.Hash, Op: member.Op, Reason: res.FailReason})
			}
			logger.Debug("batch rejected as a whole", "batch_id", tx.BatchID, "reason", res.FailReason)
			return
		}

		if w, ok := tx.Op.(*types.Withdraw); ok && w.Fast {
			fastProcessing = true
		}
		if isWithdrawal(tx.Op) {
			withdrawalDelta++
		}
		updates = append(updates, res.Updates...)
		successOps = append(successOps, types.ExecutedOp{Op: tx.Op, Success: true, FeeTokenID: res.FeeTokenID, Fee: res.Fee})
		gasOps = append(gasOps, tx.Op.Type())
		fees = append(fees, feeEntry{res.FeeTokenID, res.Fee})
	}

	if fastProcessing {
		sk.pending.FastProcessing = true
	}
	sk.pending.ChunksUsed += totalWidth
	sk.pending.WithdrawalsCount += withdrawalDelta
	sk.pending.SuccessOps = append(sk.pending.SuccessOps, successOps...)
	sk.pending.AccountUpdates = append(sk.pending.AccountUpdates, updates...)
	sk.recordCreates(updates)
	for _, opType := range gasOps {
		_ = sk.gas.AddOp(opType)
	}
	for _, f := range fees {
		sk.pending.AddFee(f.token, f.fee)
	}
}

func isWithdrawal(op types.Op) bool {
	switch op.(type) {
	case *types.Withdraw, *types.ForcedExit, *types.FullExit, *types.WithdrawNFT:
		return true
	default:
		return false
	}
}

// recordCreates remembers the wall-clock moment an account was created so
// ForcedExit's minimum-age guard has something to measure against.
func (sk *StateKeeper) recordCreates(updates []types.AccountUpdate) {
	now := time.Now()
	for _, u := range updates {
		if u.Kind == types.UpdateCreate {
			sk.createdAt[u.AccountID] = now
		}
	}
}
