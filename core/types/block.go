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

package types

import (
	"math/big"
	"sort"
	"time"

	rcommon "github.com/l2anchor/rollup-core/common"
)

// AvailableChunkSize picks the smallest size in sizes that is >= used,
// implementing §3 Block: "a block's block_size is the smallest allowed
// size >= sum of op chunks". Returns (0, false) if nothing fits.
func AvailableChunkSize(sizes []int, used int) (int, bool) {
	best := 0
	found := false
	for _, s := range sizes {
		if s >= used && (!found || s < best) {
			best = s
			found = true
		}
	}
	return best, found
}

// Block is a sealed, fully-assembled rollup block (§3).
type Block struct {
	BlockNumber uint64
	NewRoot     rcommon.Hash
	FeeAccount  rcommon.AccountID
	BlockSize   int
	Ops         []ExecutedOp

	ProcessedPriorityOpsBefore uint64
	ProcessedPriorityOpsAfter  uint64

	Timestamp uint64

	CommitGasLimit uint64
	VerifyGasLimit uint64
}

// SumChunks adds up the chunk width of every executed op (successful or
// failed) in the block, the quantity bounded by BlockSize per §8 invariant 2.
func (b *Block) SumChunks() int {
	total := 0
	for _, op := range b.Ops {
		total += Chunks(op.Op.Type())
	}
	return total
}

// PendingBlock is the State Keeper's in-progress block (§3).
type PendingBlock struct {
	BlockNumber      uint64
	ChunksUsed       int
	WithdrawalsCount int
	FastProcessing   bool

	CollectedFees map[rcommon.TokenID]*big.Int

	SuccessOps []ExecutedOp
	FailedTxs  []FailedTx

	AccountUpdates []AccountUpdate

	PendingOpBlockIndex uint64 // iteration counter, §4.4
	Timestamp           uint64

	ProcessedPriorityOpsBefore uint64
	ProcessedPriorityOpsAfter  uint64
}

// NewPendingBlock starts an empty pending block following blockNumber-1.
func NewPendingBlock(blockNumber uint64, processedPriorityOpsBefore uint64) *PendingBlock {
	return &PendingBlock{
		BlockNumber:                blockNumber,
		CollectedFees:              make(map[rcommon.TokenID]*big.Int),
		Timestamp:                  uint64(time.Now().Unix()),
		ProcessedPriorityOpsBefore: processedPriorityOpsBefore,
		ProcessedPriorityOpsAfter:  processedPriorityOpsBefore,
	}
}

// AddFee accumulates a fee into the pending block's per-token totals.
func (pb *PendingBlock) AddFee(token rcommon.TokenID, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	cur, ok := pb.CollectedFees[token]
	if !ok {
		cur = big.NewInt(0)
	}
	pb.CollectedFees[token] = new(big.Int).Add(cur, amount)
}

// SortedFeeTokens returns the fee token set in ascending order, so fee
// collection updates are emitted deterministically.
func (pb *PendingBlock) SortedFeeTokens() []rcommon.TokenID {
	tokens := make([]rcommon.TokenID, 0, len(pb.CollectedFees))
	for t := range pb.CollectedFees {
		tokens = append(tokens, t)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i] < tokens[j] })
	return tokens
}

// ProposedBlock is what the Mempool hands the State Keeper (§4.3): the
// priority ops and regular txs it selected for this round.
type ProposedBlock struct {
	PriorityOps []PriorityOp
	Txs         []*SignedTx
}

// IsEmpty reports whether the proposed block carries no work at all.
func (p *ProposedBlock) IsEmpty() bool {
	return len(p.PriorityOps) == 0 && len(p.Txs) == 0
}
