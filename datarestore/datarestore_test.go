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

package datarestore

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/config"
	"github.com/l2anchor/rollup-core/core/pubdata"
	"github.com/l2anchor/rollup-core/core/tree"
	"github.com/l2anchor/rollup-core/core/types"
	"github.com/l2anchor/rollup-core/storage/kv"
)

// fakeL1Source plays back a fixed chain tip, its configured logs (a single
// BlockCommit log in the test below), and one block's worth of committed
// pubdata, entirely in memory.
type fakeL1Source struct {
	head       uint64
	logs       []L1Log
	blockOps   map[uint64][]types.Op
	feeAccount rcommon.AccountID
}

func (f *fakeL1Source) CurrentBlock(ctx context.Context) (uint64, error) { return f.head, nil }

func (f *fakeL1Source) Logs(ctx context.Context, from, to uint64) ([]L1Log, error) {
	var out []L1Log
	for _, l := range f.logs {
		if l.BlockNumber >= from && l.BlockNumber <= to {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeL1Source) CommitCalldataPubdata(ctx context.Context, blockNumber uint64) ([]byte, []types.OpType, rcommon.AccountID, rcommon.Hash, error) {
	ops := f.blockOps[blockNumber]
	data := pubdata.BlockPubdata(ops, len(ops))
	return data, nil, f.feeAccount, rcommon.Hash{}, nil
}

func TestDriver_RestoreRootMatchesLiveReplay(t *testing.T) {
	addr := rcommon.Address{0x42}
	deposit := &types.Deposit{AccountID: 1, TokenID: 0, Amount: big.NewInt(50), Address: addr}
	withdraw := &types.Withdraw{AccountID: 1, TokenID: 0, Amount: big.NewInt(10), Fee: big.NewInt(0), ToAddr: addr}

	source := &fakeL1Source{
		head: 100,
		logs: []L1Log{
			{BlockNumber: 1, LogIndex: 0, Topic: TopicBlockCommit, Data: encodeGob(BlockCommitData{BlockNumber: 1})},
		},
		blockOps: map[uint64][]types.Op{1: {deposit, withdraw}},
	}

	cfg := config.DataRestoreConfig{ETHBlocksStep: 1000, EndETHBlocksOffset: 0, InitContractVersion: 0}
	schema := kv.NewRestoreSchema(kv.NewMemory())
	restoreTree := tree.New(nil)
	d := New(cfg, source, schema, restoreTree, nil, nil)

	assert.Nil(t, d.Run(context.Background()))

	live := tree.New(nil)
	live.Insert(types.NewAccount(types.NFTStorageAccountID, rcommon.Address{}))
	live.ApplyPriorityOp(deposit)
	live.ApplyTx(withdraw, time.Time{}, time.Time{}, 0)

	assert.Equal(t, live.RootHash(), restoreTree.RootHash())
}
