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
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/config"
	"github.com/l2anchor/rollup-core/core/tree"
	"github.com/l2anchor/rollup-core/core/types"
)

func depositOp(serial uint64, id rcommon.AccountID, addr rcommon.Address, amount int64) types.PriorityOp {
	return types.PriorityOp{
		SerialID: serial,
		Op:       &types.Deposit{AccountID: id, Address: addr, TokenID: 0, Amount: big.NewInt(amount)},
	}
}

func TestExecuteProposedBlock_EmptyStoresPending(t *testing.T) {
	sk := New(config.DefaultStateKeeperConfig, tree.New(nil), 1, 0)

	reqs := sk.ExecuteProposedBlock(&types.ProposedBlock{})
	assert.Len(t, reqs, 1)
	assert.Equal(t, KindPendingBlock, reqs[0].Kind)
	assert.Equal(t, uint64(1), reqs[0].Pending.PendingOpBlockIndex)
}

func TestExecuteProposedBlock_SealsAtMaxIterations(t *testing.T) {
	cfg := config.DefaultStateKeeperConfig
	cfg.MaxIterations = 2
	sk := New(cfg, tree.New(nil), 1, 0)

	r1 := sk.ExecuteProposedBlock(&types.ProposedBlock{})
	assert.Equal(t, KindPendingBlock, r1[len(r1)-1].Kind)

	r2 := sk.ExecuteProposedBlock(&types.ProposedBlock{})
	assert.Equal(t, KindBlock, r2[len(r2)-1].Kind)
	assert.Equal(t, uint64(1), r2[len(r2)-1].Sealed.BlockNumber)
}

func TestExecuteProposedBlock_DepositCreditsAccount(t *testing.T) {
	tr := tree.New(nil)
	sk := New(config.DefaultStateKeeperConfig, tr, 1, 0)

	addr := rcommon.Address{0xAA}
	pb := &types.ProposedBlock{PriorityOps: []types.PriorityOp{depositOp(0, 7, addr, 1000)}}
	reqs := sk.ExecuteProposedBlock(pb)
	assert.Equal(t, KindPendingBlock, reqs[len(reqs)-1].Kind)

	acc := tr.Get(7)
	if assert.NotNil(t, acc) {
		assert.Equal(t, big.NewInt(1000), acc.Balance(0))
	}
	assert.Equal(t, uint64(1), reqs[len(reqs)-1].Pending.ProcessedPriorityOpsAfter)
}

func TestExecuteProposedBlock_CapacityOverflowForcesSealAndRetry(t *testing.T) {
	cfg := config.DefaultStateKeeperConfig
	cfg.AvailableChunkSizes = []int{6} // exactly one Deposit's width
	cfg.MaxIterations = 1000
	tr := tree.New(nil)
	sk := New(cfg, tr, 1, 0)

	pb := &types.ProposedBlock{PriorityOps: []types.PriorityOp{
		depositOp(0, 10, rcommon.Address{0x01}, 10),
		depositOp(1, 11, rcommon.Address{0x02}, 20),
	}}
	reqs := sk.ExecuteProposedBlock(pb)

	// The second deposit doesn't fit alongside the first in a 6-chunk
	// block, so the first seals on its own and the second lands in the
	// freshly started pending block.
	assert.Equal(t, KindBlock, reqs[0].Kind)
	assert.Equal(t, uint64(1), reqs[0].Sealed.BlockNumber)
	assert.Len(t, reqs[0].Sealed.Ops, 1)

	assert.Equal(t, KindPendingBlock, reqs[1].Kind)
	assert.Equal(t, uint64(2), reqs[1].Pending.BlockNumber)
	assert.NotNil(t, tr.Get(11))
}

func TestExecuteProposedBlock_FailedTxConsumesSlotWithoutMutating(t *testing.T) {
	tr := tree.New(nil)
	sk := New(config.DefaultStateKeeperConfig, tr, 1, 0)

	// No account 99 exists, so this Withdraw must fail cleanly.
	pb := &types.ProposedBlock{Txs: []*types.SignedTx{{
		Hash: rcommon.Hash{0x01},
		Op:   &types.Withdraw{AccountID: 99, TokenID: 0, Amount: big.NewInt(5), Fee: big.NewInt(0), Nonce: 0},
	}}}
	reqs := sk.ExecuteProposedBlock(pb)

	pending := reqs[len(reqs)-1].Pending
	if assert.NotNil(t, pending) {
		assert.Len(t, pending.FailedTxs, 1)
		assert.Equal(t, types.FailUnknownAccount, pending.FailedTxs[0].Reason)
		assert.Equal(t, 0, len(pending.SuccessOps))
	}
}

func TestExecuteProposedBlock_BatchAppliesAllMembersOnSuccess(t *testing.T) {
	tr := tree.New(nil)
	sk := New(config.DefaultStateKeeperConfig, tr, 1, 0)

	sk.ExecuteProposedBlock(&types.ProposedBlock{PriorityOps: []types.PriorityOp{
		depositOp(0, 1, rcommon.Address{0x01}, 1000),
		depositOp(1, 2, rcommon.Address{0x02}, 0),
		depositOp(2, 3, rcommon.Address{0x03}, 0),
	}})

	pb := &types.ProposedBlock{Txs: []*types.SignedTx{
		{Hash: rcommon.Hash{0x10}, BatchID: 7, Op: &types.Transfer{FromID: 1, ToID: 2, TokenID: 0, Amount: big.NewInt(100), Fee: big.NewInt(0), Nonce: 0}},
		{Hash: rcommon.Hash{0x11}, BatchID: 7, Op: &types.Transfer{FromID: 1, ToID: 3, TokenID: 0, Amount: big.NewInt(100), Fee: big.NewInt(0), Nonce: 1}},
	}}
	reqs := sk.ExecuteProposedBlock(pb)

	pending := reqs[len(reqs)-1].Pending
	assert.Equal(t, 2, len(pending.SuccessOps))
	assert.Equal(t, big.NewInt(100), tr.Get(2).Balance(0))
	assert.Equal(t, big.NewInt(100), tr.Get(3).Balance(0))
	assert.Equal(t, big.NewInt(800), tr.Get(1).Balance(0))
}

func TestExecuteProposedBlock_BatchRollsBackAllMembersOnOneFailure(t *testing.T) {
	tr := tree.New(nil)
	sk := New(config.DefaultStateKeeperConfig, tr, 1, 0)

	sk.ExecuteProposedBlock(&types.ProposedBlock{PriorityOps: []types.PriorityOp{
		depositOp(0, 1, rcommon.Address{0x01}, 1000),
		depositOp(1, 2, rcommon.Address{0x02}, 0),
	}})

	// Second member reuses the first member's pre-batch nonce, so it fails
	// nonce validation after the first member already debited the account.
	pb := &types.ProposedBlock{Txs: []*types.SignedTx{
		{Hash: rcommon.Hash{0x20}, BatchID: 9, Op: &types.Transfer{FromID: 1, ToID: 2, TokenID: 0, Amount: big.NewInt(100), Fee: big.NewInt(0), Nonce: 0}},
		{Hash: rcommon.Hash{0x21}, BatchID: 9, Op: &types.Transfer{FromID: 1, ToID: 2, TokenID: 0, Amount: big.NewInt(100), Fee: big.NewInt(0), Nonce: 0}},
	}}
	reqs := sk.ExecuteProposedBlock(pb)

	pending := reqs[len(reqs)-1].Pending
	assert.Equal(t, 0, len(pending.SuccessOps))
	assert.Equal(t, 2, len(pending.FailedTxs))
	assert.Equal(t, big.NewInt(1000), tr.Get(1).Balance(0))
	assert.Equal(t, big.NewInt(0), tr.Get(2).Balance(0))
	assert.Equal(t, uint32(0), tr.Get(1).Nonce)
}

func TestSeal_PadsToSmallestFittingChunkSize(t *testing.T) {
	cfg := config.DefaultStateKeeperConfig
	cfg.MaxIterations = 1
	cfg.FeeAccountID = 1
	cfg.AvailableChunkSizes = []int{6, 30}
	tr := tree.New(nil)
	sk := New(cfg, tr, 1, 0)

	addrA := rcommon.Address{0x01}
	reqs := sk.ExecuteProposedBlock(&types.ProposedBlock{PriorityOps: []types.PriorityOp{
		depositOp(0, 10, addrA, 1000),
	}})

	last := reqs[len(reqs)-1]
	assert.Equal(t, KindBlock, last.Kind)
	assert.Equal(t, 6, last.Sealed.BlockSize)
	assert.Equal(t, 6, last.Sealed.SumChunks())
}
