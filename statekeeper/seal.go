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

package statekeeper

import (
	"time"

	"github.com/l2anchor/rollup-core/core/types"
)

// seal computes collected fees, pads to the smallest permitted chunk size
// with Noops, materializes the sealed Block, and resets the pending block
// state for the next round (§4.4 Sealing).
func (sk *StateKeeper) seal() CommitRequest {
	start := time.Now()
	pb := sk.pending

	for _, token := range pb.SortedFeeTokens() {
		amount := pb.CollectedFees[token]
		if amount.Sign() == 0 {
			continue
		}
		update := sk.tree.CollectFee(sk.cfg.FeeAccountID, token, amount)
		pb.AccountUpdates = append(pb.AccountUpdates, update)
	}

	size, ok := types.AvailableChunkSize(sk.cfg.AvailableChunkSizes, pb.ChunksUsed)
	if !ok {
		// Every proposed unit of work was already admitted under
		// ensureCapacity against the *largest* configured chunk size, so
		// this can only happen with a misconfigured (empty or too-small)
		// AvailableChunkSizes list.
		logger.Fatal("no configured chunk size fits the sealed block", "chunks_used", pb.ChunksUsed)
	}
	padding := size - pb.ChunksUsed
	for i := 0; i < padding; i++ {
		pb.SuccessOps = append(pb.SuccessOps, types.ExecutedOp{Op: types.Noop{}, Success: true})
	}

	block := &types.Block{
		BlockNumber:                pb.BlockNumber,
		NewRoot:                    sk.tree.RootHash(),
		FeeAccount:                 sk.cfg.FeeAccountID,
		BlockSize:                  size,
		Ops:                        pb.SuccessOps,
		ProcessedPriorityOpsBefore: pb.ProcessedPriorityOpsBefore,
		ProcessedPriorityOpsAfter:  pb.ProcessedPriorityOpsAfter,
		Timestamp:                  pb.Timestamp,
		CommitGasLimit:             sk.gas.ScaledCommitGasLimit(),
		VerifyGasLimit:             sk.gas.ScaledVerifyGasLimit(),
	}
	updates := pb.AccountUpdates

	sk.gas.Reset()
	sk.pending = types.NewPendingBlock(block.BlockNumber+1, block.ProcessedPriorityOpsAfter)
	sk.updateSnapshot()

	blocksSealedCounter.Inc(1)
	sealTimer.UpdateSince(start)
	logger.Info("sealed block", "number", block.BlockNumber, "ops", len(block.Ops), "chunks", pb.ChunksUsed, "size", size)

	return CommitRequest{Kind: KindBlock, Sealed: block, Updates: updates}
}
