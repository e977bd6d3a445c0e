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
	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/core/types"
	"github.com/l2anchor/rollup-core/metrics"
)

var proposedOpsCounter = metrics.NewRegisteredCounter("mempool/blocks/ops_proposed")

// GetBlock implements the Blocks handler of §4.3. It is only safe to call
// from the single State Keeper goroutine that drives block proposal;
// TxPool's own mutex still protects the underlying queues from the
// Transactions handler admitting concurrently.
//
// restarted must be true exactly once, on the first call after process
// start, so garbage collection of already-executed mempool entries runs
// before anything is proposed (§4.3 "before the first block is proposed
// after restart, the handler runs garbage collection").
//
// min_chunks is the storage-aware predicate of §4.3 in the source this
// was distilled from, where a single transfer intent could still widen
// from Transfer to TransferToNew depending on whether the recipient
// account existed at selection time. Here a SignedTx already carries a
// concrete *types.Transfer or *types.TransferToNew chosen at submission
// time against the account tree as it stood then, so op.MinChunks()
// already is that predicate's answer; no separate resolver is needed.
func (p *TxPool) GetBlock(lastProcessedPriorityOpID uint64, alreadyExecuted map[rcommon.Hash]struct{}, restarted bool, chunkBudget int) types.ProposedBlock {
	if restarted {
		if n := p.GarbageCollect(alreadyExecuted); n > 0 {
			logger.Info("garbage collected mempool entries on restart", "count", n)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var out types.ProposedBlock
	used := 0

	// 1. Priority ops in serial order; stop (don't skip) at the first
	// that would overflow the budget, skipping only ones already applied.
	for _, op := range p.priorityQueue {
		if op.SerialID < lastProcessedPriorityOpID {
			logger.Warn("skipping already-processed priority op in proposal", "serial_id", op.SerialID)
			continue
		}
		width := types.Chunks(op.Op.Type())
		if used+width > chunkBudget {
			break
		}
		out.PriorityOps = append(out.PriorityOps, op)
		used += width
	}

	// 2. Regular txs in queue (nonce) order per account, lowest account id
	// first for determinism; each account's own txs must still be offered
	// in ascending nonce order since a gap blocks everything behind it.
	accountIDs := sortedAccountIDs(p.queues)
	for _, accID := range accountIDs {
		q := p.queues[accID]
		for _, nonce := range q.sortedNonces() {
			tx := q.byNonce[nonce]
			if _, done := alreadyExecuted[tx.Hash]; done {
				continue
			}
			width := tx.Op.MinChunks()
			if used+width > chunkBudget {
				goto sealed
			}
			out.Txs = append(out.Txs, tx)
			used += width
		}
	}
sealed:

	proposedOpsCounter.Inc(int64(len(out.PriorityOps) + len(out.Txs)))
	return out
}

func sortedAccountIDs(queues map[rcommon.AccountID]*accountQueue) []rcommon.AccountID {
	out := make([]rcommon.AccountID, 0, len(queues))
	for id := range queues {
		out = append(out, id)
	}
	// insertion sort is fine here: account counts per proposal round are
	// small relative to a block's chunk budget.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

