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

package mempool

import (
	"sort"
	"sync"

	"github.com/hashicorp/go-uuid"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/core/types"
	rlog "github.com/l2anchor/rollup-core/log"
	"github.com/l2anchor/rollup-core/metrics"
)

var logger = rlog.NewModuleLogger(rlog.Mempool)

var (
	acceptedTxCounter = metrics.NewRegisteredCounter("mempool/tx/accepted")
	refusedTxCounter  = metrics.NewRegisteredCounter("mempool/tx/refused")
	priorityOpCounter = metrics.NewRegisteredCounter("mempool/priorityop/accepted")
)

// AccountNonces is the read-only snapshot interface the mempool consults
// to validate incoming nonces (§3 Ownership: every reader other than the
// State Keeper gets a snapshot, never the live tree).
type AccountNonces interface {
	CurrentNonce(id rcommon.AccountID) (uint32, bool)
	AccountExists(addr rcommon.Address) bool
}

// accountQueue holds one account's not-yet-included txs, sorted by nonce.
type accountQueue struct {
	byNonce map[uint32]*types.SignedTx
}

func newAccountQueue() *accountQueue { return &accountQueue{byNonce: make(map[uint32]*types.SignedTx)} }

func (q *accountQueue) put(nonce uint32, tx *types.SignedTx) { q.byNonce[nonce] = tx }

func (q *accountQueue) sortedNonces() []uint32 {
	out := make([]uint32, 0, len(q.byNonce))
	for n := range q.byNonce {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TxPool is the Transactions handler of §4.3: N instances run concurrently
// for throughput, mutual exclusion delegated to the guard mutex here
// standing in for the real database's row locking (§5 "they are stateless
// with respect to each other; mutual exclusion is delegated to the
// database").
type TxPool struct {
	mu sync.Mutex

	queues map[rcommon.AccountID]*accountQueue
	all    map[rcommon.Hash]*types.SignedTx

	priorityQueue     []types.PriorityOp // sorted by SerialID
	lastProcessedID   uint64
	maxObservedSerial uint64

	maxTxs int
}

// NewTxPool constructs an empty pool bounded to maxTxs total entries.
func NewTxPool(maxTxs int) *TxPool {
	return &TxPool{
		queues: make(map[rcommon.AccountID]*accountQueue),
		all:    make(map[rcommon.Hash]*types.SignedTx),
		maxTxs: maxTxs,
	}
}

// AddTx validates a single signed tx (nonce >= the account's current
// committed nonce), adds it to the pool's in-memory queues and emits a
// metric (§4.3). The pool writes nothing to storage. A nonce strictly greater than current is accepted but parked
// until the gap-filling tx arrives (§8 boundary behaviors).
func (p *TxPool) AddTx(tx *types.SignedTx, nonces AccountNonces) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addTxLocked(tx, nonces)
}

func (p *TxPool) addTxLocked(tx *types.SignedTx, nonces AccountNonces) error {
	accID, nonce, ok := types.AccountOf(tx.Op)
	if !ok {
		refusedTxCounter.Inc(1)
		return ErrOther
	}
	current, _ := nonces.CurrentNonce(accID)
	if nonce < current {
		refusedTxCounter.Inc(1)
		return ErrNonceMismatch
	}
	if len(p.all) >= p.maxTxs {
		refusedTxCounter.Inc(1)
		return ErrOther
	}

	q, ok := p.queues[accID]
	if !ok {
		q = newAccountQueue()
		p.queues[accID] = q
	}
	q.put(nonce, tx)
	p.all[tx.Hash] = tx
	acceptedTxCounter.Inc(1)
	logger.Trace("tx admitted", "hash", tx.Hash, "account", accID, "nonce", nonce)
	return nil
}

// AddBatch admits a set of txs all-or-nothing (§4.3). chunkEstimate sums
// each tx's min_chunks so the batch can be checked against one block's
// chunk budget before anything is admitted.
func (p *TxPool) AddBatch(txs []*types.SignedTx, ethSigs [][]byte, nonces AccountNonces, chunkBudget int, requiresEthSig func(types.Op) bool) (batchID uint64, err error) {
	if len(txs) == 0 {
		return 0, ErrOther
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tr := txs[0].TimeRange
	total := 0
	type accNonce struct {
		id    rcommon.AccountID
		nonce uint32
	}
	seen := make(map[accNonce]struct{}, len(txs))
	for i, tx := range txs {
		if tx.TimeRange != tr {
			return 0, ErrBatchMixedTimeRange
		}
		total += tx.Op.MinChunks()
		if requiresEthSig(tx.Op) && (i >= len(ethSigs) || len(ethSigs[i]) == 0) {
			return 0, ErrMissingEthSignature
		}
		accID, nonce, ok := types.AccountOf(tx.Op)
		if !ok {
			return 0, ErrOther
		}
		current, _ := nonces.CurrentNonce(accID)
		if nonce < current {
			return 0, ErrNonceMismatch
		}
		key := accNonce{accID, nonce}
		if _, dup := seen[key]; dup {
			return 0, ErrBatchDuplicateNonce
		}
		seen[key] = struct{}{}
	}
	if total > chunkBudget {
		return 0, ErrBatchTooBig
	}
	if len(p.all)+len(txs) > p.maxTxs {
		return 0, ErrOther
	}

	id, err := newBatchID()
	if err != nil {
		return 0, ErrDbError
	}
	for _, tx := range txs {
		tx.BatchID = id
		if err := p.addTxLocked(tx, nonces); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func newBatchID() (uint64, error) {
	raw, err := uuid.GenerateRandomBytes(8)
	if err != nil {
		return 0, err
	}
	var id uint64
	for _, b := range raw {
		id = id<<8 | uint64(b)
	}
	if id == 0 {
		id = 1
	}
	return id, nil
}

// AddPriorityOps admits a batch of L1-originated ops. Re-submission during
// restart is idempotent: ops whose SerialID is below the last processed id
// are dropped with a warning (§4.3, §8 round-trip property).
func (p *TxPool) AddPriorityOps(ops []types.PriorityOp, lastProcessedSerialID uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastProcessedID = lastProcessedSerialID
	for _, op := range ops {
		if op.SerialID < p.lastProcessedID {
			logger.Warn("skipping already-processed priority op", "serial_id", op.SerialID)
			continue
		}
		if op.SerialID > p.maxObservedSerial {
			p.maxObservedSerial = op.SerialID
		}
		p.insertPriorityOpLocked(op)
	}
	return nil
}

func (p *TxPool) insertPriorityOpLocked(op types.PriorityOp) {
	for _, existing := range p.priorityQueue {
		if existing.SerialID == op.SerialID {
			return
		}
	}
	idx := sort.Search(len(p.priorityQueue), func(i int) bool { return p.priorityQueue[i].SerialID >= op.SerialID })
	p.priorityQueue = append(p.priorityQueue, types.PriorityOp{})
	copy(p.priorityQueue[idx+1:], p.priorityQueue[idx:])
	p.priorityQueue[idx] = op
	priorityOpCounter.Inc(1)
}

// MaxObservedSerialID returns the current max priority serial_id ever
// seen on L1 (§4.3 item 3).
func (p *TxPool) MaxObservedSerialID() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxObservedSerial
}

// Remove deletes a tx from the pool after it has been included in a
// sealed block.
func (p *TxPool) Remove(hash rcommon.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeLocked(hash)
}

func (p *TxPool) removeLocked(hash rcommon.Hash) {
	tx, ok := p.all[hash]
	if !ok {
		return
	}
	delete(p.all, hash)
	accID, nonce, ok := types.AccountOf(tx.Op)
	if !ok {
		return
	}
	if q, ok := p.queues[accID]; ok {
		delete(q.byNonce, nonce)
		if len(q.byNonce) == 0 {
			delete(p.queues, accID)
		}
	}
}

// RemovePriorityOp drops a serial id from the priority queue after it has
// been applied.
func (p *TxPool) RemovePriorityOp(serialID uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, op := range p.priorityQueue {
		if op.SerialID == serialID {
			p.priorityQueue = append(p.priorityQueue[:i], p.priorityQueue[i+1:]...)
			return
		}
	}
}

// GarbageCollect drops every mempool entry whose hash is already executed,
// run once before the first block proposal after restart (§4.3).
func (p *TxPool) GarbageCollect(alreadyExecuted map[rcommon.Hash]struct{}) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	removed := 0
	for hash := range alreadyExecuted {
		if _, ok := p.all[hash]; ok {
			p.removeLocked(hash)
			removed++
		}
	}
	return removed
}
