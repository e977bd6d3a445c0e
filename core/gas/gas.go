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

// Package gas implements the running per-block L1 gas estimate and seal
// trigger described in §4.2, grounded in the constant-table style of
// original_source/core/lib/types/src/gas_counter.rs: a base cost for an
// empty block plus a fixed additive cost per operation variant, scaled by
// a safety margin to get the L1 tx gas limit.
package gas

import (
	"errors"

	"github.com/l2anchor/rollup-core/config"
	"github.com/l2anchor/rollup-core/core/types"
	rlog "github.com/l2anchor/rollup-core/log"
)

var logger = rlog.NewModuleLogger(rlog.GasCounter)

// ErrGasLimitReached is returned by AddOp when including the op would push
// the scaled running cost above TX_GAS_LIMIT on either the commit or
// verify side.
var ErrGasLimitReached = errors.New("gas: limit reached, seal the block")

// baseCommitCost/baseVerifyCost is the cost of an empty block, i.e. two
// Noops (§4.2 base_cost).
const (
	baseCommitCost = 50_000
	baseVerifyCost = 1_000_000
)

// commitCostByOp / verifyCostByOp are the per-variant additive constants
// (§4.2 op_cost(op)), ordered the way the source's gas table lists them.
var commitCostByOp = map[types.OpType]uint64{
	types.OpNoop:          0,
	types.OpDeposit:       37_650,
	types.OpTransfer:      550,
	types.OpTransferToNew: 9_500,
	types.OpWithdraw:      42_700,
	types.OpChangePubKey:  10_500,
	types.OpForcedExit:    51_000,
	types.OpFullExit:      42_750,
	types.OpSwap:          8_800,
	types.OpMintNFT:       10_100,
	types.OpWithdrawNFT:   50_200,
}

var verifyCostByOp = map[types.OpType]uint64{
	types.OpNoop:          0,
	types.OpDeposit:       7_000,
	types.OpTransfer:      500,
	types.OpTransferToNew: 7_000,
	types.OpWithdraw:      7_000,
	types.OpChangePubKey:  10_000,
	types.OpForcedExit:    7_000,
	types.OpFullExit:      7_000,
	types.OpSwap:          500,
	types.OpMintNFT:       7_000,
	types.OpWithdrawNFT:   7_000,
}

// Counter tracks the running (commit_cost, verify_cost) for one pending
// block.
type Counter struct {
	cfg        config.GasCounterConfig
	commitCost uint64
	verifyCost uint64
}

// New starts a Counter at the empty-block base cost.
func New(cfg config.GasCounterConfig) *Counter {
	return &Counter{cfg: cfg, commitCost: baseCommitCost, verifyCost: baseVerifyCost}
}

func (c *Counter) scale(cost uint64) uint64 {
	return cost * c.cfg.ScaleNum / c.cfg.ScaleDen
}

// CanInclude is the pure predicate of §4.2: always true for an empty set
// of additional ops (§8 invariant 6), otherwise checks the would-be
// running cost without mutating the counter.
func (c *Counter) CanInclude(ops []types.OpType) bool {
	commit, verify := c.commitCost, c.verifyCost
	for _, t := range ops {
		commit += commitCostByOp[t]
		verify += verifyCostByOp[t]
	}
	return c.scale(commit) <= c.cfg.TxGasLimit && c.scale(verify) <= c.cfg.TxGasLimit
}

// AddOp tries to include op in the running totals, failing with
// ErrGasLimitReached (without mutating state) if either side would exceed
// TX_GAS_LIMIT once scaled (§4.2). The running totals only grow, so an op
// type that is refused once keeps being refused until the counter is reset;
// a cheaper op type can still be accepted after a costlier one was refused.
func (c *Counter) AddOp(t types.OpType) error {
	newCommit := c.commitCost + commitCostByOp[t]
	newVerify := c.verifyCost + verifyCostByOp[t]
	if c.scale(newCommit) > c.cfg.TxGasLimit || c.scale(newVerify) > c.cfg.TxGasLimit {
		logger.Debug("gas limit reached", "op", t.String(), "commit", c.scale(newCommit), "verify", c.scale(newVerify), "limit", c.cfg.TxGasLimit)
		return ErrGasLimitReached
	}
	c.commitCost = newCommit
	c.verifyCost = newVerify
	return nil
}

// CommitCost/VerifyCost report the current unscaled running totals.
func (c *Counter) CommitCost() uint64 { return c.commitCost }
func (c *Counter) VerifyCost() uint64 { return c.verifyCost }

// ScaledCommitGasLimit/ScaledVerifyGasLimit are the values the State
// Keeper stamps onto a sealed Block for its L1 commit/verify tx gas limit.
func (c *Counter) ScaledCommitGasLimit() uint64 { return c.scale(c.commitCost) }
func (c *Counter) ScaledVerifyGasLimit() uint64 { return c.scale(c.verifyCost) }

// Reset restores the counter to the empty-block base cost, called by the
// State Keeper after sealing a block.
func (c *Counter) Reset() {
	c.commitCost = baseCommitCost
	c.verifyCost = baseVerifyCost
}

// AggregatedEstimate computes the gas budget for one L1 call covering
// several blocks at once (§4.2 "Aggregated estimators for multi-block L1
// calls"): a per-call base plus the sum of each block's own budget, then
// scaled by the same safety margin.
func AggregatedEstimate(cfg config.GasCounterConfig, callBase uint64, perBlock []uint64) uint64 {
	total := callBase
	for _, b := range perBlock {
		total += b
	}
	return total * cfg.ScaleNum / cfg.ScaleDen
}
