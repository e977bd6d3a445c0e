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
	"testing"

	"github.com/stretchr/testify/assert"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/core/types"
)

type fakeNonces struct {
	nonce    map[rcommon.AccountID]uint32
	accounts map[rcommon.Address]bool
}

func (f *fakeNonces) CurrentNonce(id rcommon.AccountID) (uint32, bool) {
	n, ok := f.nonce[id]
	return n, ok
}

func (f *fakeNonces) AccountExists(addr rcommon.Address) bool { return f.accounts[addr] }

func transferTx(hash byte, from rcommon.AccountID, nonce uint32) *types.SignedTx {
	return &types.SignedTx{
		Hash: rcommon.Hash{hash},
		Op:   &types.Transfer{FromID: from, ToID: 2, TokenID: 0, Nonce: nonce},
	}
}

func TestTxPool_AddTxRejectsStaleNonce(t *testing.T) {
	p := NewTxPool(10)
	nonces := &fakeNonces{nonce: map[rcommon.AccountID]uint32{1: 5}}
	err := p.AddTx(transferTx(1, 1, 3), nonces)
	assert.Equal(t, ErrNonceMismatch, err)
}

func TestTxPool_AddTxAcceptsGapNonce(t *testing.T) {
	p := NewTxPool(10)
	nonces := &fakeNonces{nonce: map[rcommon.AccountID]uint32{1: 5}}
	assert.Nil(t, p.AddTx(transferTx(1, 1, 9), nonces))
	assert.Equal(t, 1, len(p.all))
}

func TestTxPool_AddTxRejectsWhenFull(t *testing.T) {
	p := NewTxPool(1)
	nonces := &fakeNonces{nonce: map[rcommon.AccountID]uint32{1: 0}}
	assert.Nil(t, p.AddTx(transferTx(1, 1, 0), nonces))
	assert.Equal(t, ErrOther, p.AddTx(transferTx(2, 1, 1), nonces))
}

func TestTxPool_RemoveClearsAccountQueueWhenEmpty(t *testing.T) {
	p := NewTxPool(10)
	nonces := &fakeNonces{nonce: map[rcommon.AccountID]uint32{1: 0}}
	assert.Nil(t, p.AddTx(transferTx(1, 1, 0), nonces))
	p.Remove(rcommon.Hash{1})
	assert.Equal(t, 0, len(p.all))
	assert.Equal(t, 0, len(p.queues))
}

func TestTxPool_AddPriorityOpsDropsAlreadyProcessedAndDedupes(t *testing.T) {
	p := NewTxPool(10)
	ops := []types.PriorityOp{
		{SerialID: 1, Op: &types.Deposit{}},
		{SerialID: 2, Op: &types.Deposit{}},
	}
	assert.Nil(t, p.AddPriorityOps(ops, 2))
	assert.Equal(t, 1, len(p.priorityQueue))
	assert.Equal(t, uint64(2), p.priorityQueue[0].SerialID)

	assert.Nil(t, p.AddPriorityOps(ops, 2))
	assert.Equal(t, 1, len(p.priorityQueue))
}

func TestTxPool_RemovePriorityOp(t *testing.T) {
	p := NewTxPool(10)
	assert.Nil(t, p.AddPriorityOps([]types.PriorityOp{{SerialID: 5, Op: &types.Deposit{}}}, 0))
	p.RemovePriorityOp(5)
	assert.Equal(t, 0, len(p.priorityQueue))
}

func TestTxPool_GetBlock_OrdersPriorityOpsThenTxsByAccountAndNonce(t *testing.T) {
	p := NewTxPool(10)
	nonces := &fakeNonces{nonce: map[rcommon.AccountID]uint32{1: 0, 2: 0}}
	assert.Nil(t, p.AddPriorityOps([]types.PriorityOp{{SerialID: 1, Op: &types.Deposit{}}}, 0))
	assert.Nil(t, p.AddTx(transferTx(1, 2, 0), nonces))
	assert.Nil(t, p.AddTx(transferTx(2, 1, 0), nonces))

	block := p.GetBlock(0, nil, false, 1000)
	assert.Equal(t, 1, len(block.PriorityOps))
	assert.Equal(t, 2, len(block.Txs))
	assert.Equal(t, rcommon.AccountID(1), block.Txs[0].Op.(*types.Transfer).FromID)
}

func TestTxPool_GetBlock_StopsAtChunkBudget(t *testing.T) {
	p := NewTxPool(10)
	nonces := &fakeNonces{nonce: map[rcommon.AccountID]uint32{1: 0}}
	assert.Nil(t, p.AddTx(transferTx(1, 1, 0), nonces))
	assert.Nil(t, p.AddTx(transferTx(2, 1, 1), nonces))

	block := p.GetBlock(0, nil, false, types.Chunks(types.OpTransfer))
	assert.Equal(t, 1, len(block.Txs))
}

func TestTxPool_AddBatchRejectsDuplicateAccountNonce(t *testing.T) {
	p := NewTxPool(10)
	nonces := &fakeNonces{nonce: map[rcommon.AccountID]uint32{1: 0}}
	txs := []*types.SignedTx{transferTx(1, 1, 0), transferTx(2, 1, 0)}
	_, err := p.AddBatch(txs, nil, nonces, 1000, func(types.Op) bool { return false })
	assert.Equal(t, ErrBatchDuplicateNonce, err)
	assert.Equal(t, 0, len(p.all))
}

func TestTxPool_AddBatchAllOrNothingOnCapacity(t *testing.T) {
	p := NewTxPool(1)
	nonces := &fakeNonces{nonce: map[rcommon.AccountID]uint32{1: 0}}
	txs := []*types.SignedTx{transferTx(1, 1, 0), transferTx(2, 1, 1)}
	_, err := p.AddBatch(txs, nil, nonces, 1000, func(types.Op) bool { return false })
	assert.Equal(t, ErrOther, err)
	assert.Equal(t, 0, len(p.all))
}

func TestTxPool_GarbageCollectRemovesExecutedEntries(t *testing.T) {
	p := NewTxPool(10)
	nonces := &fakeNonces{nonce: map[rcommon.AccountID]uint32{1: 0}}
	assert.Nil(t, p.AddTx(transferTx(1, 1, 0), nonces))
	removed := p.GarbageCollect(map[rcommon.Hash]struct{}{{1}: {}})
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, len(p.all))
}
