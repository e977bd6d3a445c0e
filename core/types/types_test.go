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
	"testing"

	"github.com/stretchr/testify/assert"

	rcommon "github.com/l2anchor/rollup-core/common"
)

func TestChunks_MatchesFixedWidthTable(t *testing.T) {
	assert.Equal(t, 1, Chunks(OpNoop))
	assert.Equal(t, 6, Chunks(OpDeposit))
	assert.Equal(t, 2, Chunks(OpTransfer))
	assert.Equal(t, 10, Chunks(OpWithdrawNFT))
}

func TestMinChunksForTransfer_WidensForNewRecipient(t *testing.T) {
	assert.Equal(t, Chunks(OpTransfer), MinChunksForTransfer(true))
	assert.Equal(t, Chunks(OpTransferToNew), MinChunksForTransfer(false))
}

func TestIsPriority_OnlyDepositAndFullExit(t *testing.T) {
	assert.True(t, IsPriority(OpDeposit))
	assert.True(t, IsPriority(OpFullExit))
	assert.False(t, IsPriority(OpTransfer))
	assert.False(t, IsPriority(OpWithdraw))
}

func TestNewClose_Panics(t *testing.T) {
	assert.Panics(t, func() { NewClose(1, 0) })
}

func TestAccount_BalanceDefaultsToZero(t *testing.T) {
	a := NewAccount(1, rcommon.Address{0x1})
	assert.Equal(t, 0, a.Balance(5).Cmp(big.NewInt(0)))
}

func TestAccount_CloneIsIndependent(t *testing.T) {
	a := NewAccount(1, rcommon.Address{0x1})
	a.Balances[5] = big.NewInt(100)
	c := a.Clone()
	c.Balances[5].Add(c.Balances[5], big.NewInt(1))
	assert.Equal(t, 0, a.Balance(5).Cmp(big.NewInt(100)))
	assert.Equal(t, 0, c.Balance(5).Cmp(big.NewInt(101)))
}

func TestTimeRange_Covers(t *testing.T) {
	unbounded := TimeRange{}
	assert.True(t, unbounded.Covers(0))
	assert.True(t, unbounded.Covers(1<<40))

	bounded := TimeRange{ValidFrom: 100, ValidUntil: 200}
	assert.False(t, bounded.Covers(99))
	assert.True(t, bounded.Covers(150))
	assert.False(t, bounded.Covers(201))
}

func TestAccountOf_DispatchesPerVariant(t *testing.T) {
	id, nonce, ok := AccountOf(&Transfer{FromID: 3, Nonce: 7})
	assert.True(t, ok)
	assert.Equal(t, rcommon.AccountID(3), id)
	assert.Equal(t, uint32(7), nonce)

	_, _, ok = AccountOf(&Deposit{})
	assert.False(t, ok)
}

func TestAvailableChunkSize_PicksSmallestThatFits(t *testing.T) {
	sizes := []int{10, 32, 64, 128}
	got, ok := AvailableChunkSize(sizes, 33)
	assert.True(t, ok)
	assert.Equal(t, 64, got)

	_, ok = AvailableChunkSize(sizes, 200)
	assert.False(t, ok)
}

func TestBlock_SumChunks(t *testing.T) {
	b := &Block{Ops: []ExecutedOp{
		{Op: &Transfer{}},
		{Op: &Deposit{}},
	}}
	assert.Equal(t, Chunks(OpTransfer)+Chunks(OpDeposit), b.SumChunks())
}

func TestPendingBlock_AddFeeAccumulatesPerToken(t *testing.T) {
	pb := NewPendingBlock(1, 0)
	pb.AddFee(5, big.NewInt(10))
	pb.AddFee(5, big.NewInt(5))
	pb.AddFee(2, big.NewInt(1))
	assert.Equal(t, 0, pb.CollectedFees[5].Cmp(big.NewInt(15)))
	assert.Equal(t, []rcommon.TokenID{2, 5}, pb.SortedFeeTokens())
}

func TestProposedBlock_IsEmpty(t *testing.T) {
	assert.True(t, (&ProposedBlock{}).IsEmpty())
	assert.False(t, (&ProposedBlock{Txs: []*SignedTx{{}}}).IsEmpty())
}
