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

package gas

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/l2anchor/rollup-core/config"
	"github.com/l2anchor/rollup-core/core/types"
)

func TestCounter_StartsAtEmptyBlockBaseCost(t *testing.T) {
	c := New(config.DefaultGasCounterConfig)
	assert.Equal(t, uint64(50_000), c.CommitCost())
	assert.Equal(t, uint64(1_000_000), c.VerifyCost())
}

func TestCounter_CanIncludeAlwaysTrueForEmptySet(t *testing.T) {
	cfg := config.DefaultGasCounterConfig
	cfg.TxGasLimit = 1 // absurdly tight, but §8 invariant 6 still holds
	c := New(cfg)
	assert.True(t, c.CanInclude(nil))
}

func TestCounter_AddOpAccumulatesWithoutMutatingOnRefusal(t *testing.T) {
	cfg := config.DefaultGasCounterConfig
	cfg.TxGasLimit = 2_000_000
	c := New(cfg)

	assert.Nil(t, c.AddOp(types.OpTransfer))
	commitAfterOne := c.CommitCost()
	assert.True(t, commitAfterOne > 50_000)

	for i := 0; i < 1000; i++ {
		if err := c.AddOp(types.OpWithdraw); err != nil {
			assert.Equal(t, ErrGasLimitReached, err)
			assert.Equal(t, commitAfterOne+uint64(i)*42_700, c.CommitCost())
			return
		}
	}
	t.Fatal("expected gas limit to be reached before 1000 withdrawals")
}

func TestCounter_ResetRestoresBaseCost(t *testing.T) {
	c := New(config.DefaultGasCounterConfig)
	assert.Nil(t, c.AddOp(types.OpDeposit))
	c.Reset()
	assert.Equal(t, uint64(50_000), c.CommitCost())
	assert.Equal(t, uint64(1_000_000), c.VerifyCost())
}

func TestAggregatedEstimate_SumsAndScales(t *testing.T) {
	cfg := config.DefaultGasCounterConfig
	got := AggregatedEstimate(cfg, 100_000, []uint64{1_000_000, 2_000_000})
	want := (100_000 + 1_000_000 + 2_000_000) * cfg.ScaleNum / cfg.ScaleDen
	assert.Equal(t, want, got)
}
