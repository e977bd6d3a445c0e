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

package cache

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/config"
	"github.com/l2anchor/rollup-core/core/types"
)

func newTestCache(t *testing.T) *Cache {
	cfg := config.DefaultCacheConfig
	cfg.RedisAddr = "" // local-tier-only; no live Redis in unit tests
	c, err := New(cfg)
	assert.Nil(t, err)
	return c
}

func TestCache_LocalTierRoundTrips(t *testing.T) {
	c := newTestCache(t)
	_, hit := c.Get("missing")
	assert.False(t, hit)

	c.Set("k", []byte("v"))
	v, hit := c.Get("k")
	assert.True(t, hit)
	assert.Equal(t, []byte("v"), v)
}

func TestExecutedPriorityOpCache_PutGet(t *testing.T) {
	cache := NewExecutedPriorityOpCache(newTestCache(t))
	op := types.PriorityOp{
		SerialID: 7,
		Op:       &types.Deposit{AccountID: 1, TokenID: 0, Amount: big.NewInt(100), Address: rcommon.Address{0x1}},
		EthBlock: 42,
	}

	_, _, hit := cache.Get(7)
	assert.False(t, hit)

	cache.Put(7, op, 12)
	got, blockNumber, hit := cache.Get(7)
	assert.True(t, hit)
	assert.Equal(t, uint64(12), blockNumber)
	assert.Equal(t, op.SerialID, got.SerialID)
	assert.Equal(t, op.EthBlock, got.EthBlock)
	assert.Equal(t, types.OpDeposit, got.Op.Type())
}

func TestBlockDetailsCache_PutGet(t *testing.T) {
	cache := NewBlockDetailsCache(newTestCache(t))
	d := BlockDetails{BlockNumber: 5, BlockSize: 100, Timestamp: 1000}

	cache.Put(d)
	got, hit := cache.Get(5)
	assert.True(t, hit)
	assert.Equal(t, d, got)

	_, hit = cache.Get(6)
	assert.False(t, hit)
}

func TestTxReceiptCache_PutGet(t *testing.T) {
	cache := NewTxReceiptCache(newTestCache(t))
	hash := rcommon.Hash{0xAB}

	cache.Put(hash, TxReceipt{BlockNumber: 3, Success: false, FailReason: types.FailNonceMismatch})
	got, hit := cache.Get(hash)
	assert.True(t, hit)
	assert.Equal(t, uint64(3), got.BlockNumber)
	assert.False(t, got.Success)
	assert.Equal(t, types.FailNonceMismatch, got.FailReason)
}

func TestCompletedWithdrawalCache_PutGet(t *testing.T) {
	cache := NewCompletedWithdrawalCache(newTestCache(t))
	withdrawalHash := rcommon.Hash{0x01}
	l1Hash := rcommon.Hash{0x02}

	_, hit := cache.Get(withdrawalHash)
	assert.False(t, hit)

	cache.Put(withdrawalHash, l1Hash)
	got, hit := cache.Get(withdrawalHash)
	assert.True(t, hit)
	assert.Equal(t, l1Hash, got)
}
