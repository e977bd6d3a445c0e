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
	"time"

	rcommon "github.com/l2anchor/rollup-core/common"
)

// PriorityOp is an operation that originated on L1 (§3). It carries a
// monotonic SerialID, the L1 block it was seen in, the originating tx
// hash, and a deadline block past which it must still be honored even if
// the rollup has otherwise stalled.
type PriorityOp struct {
	SerialID    uint64
	Op          Op // Deposit or FullExit
	EthBlock    uint64
	EthTxHash   rcommon.Hash
	DeadlineBlock uint64
}

// TimeRange optionally bounds when a signed tx is valid, mirroring an
// L1-style validAfter/validUntil window.
type TimeRange struct {
	ValidFrom  uint64
	ValidUntil uint64
}

// Covers reports whether timestamp t falls within the range. A zero
// TimeRange (both fields unset) means "unbounded".
func (r TimeRange) Covers(t uint64) bool {
	if r.ValidUntil == 0 {
		return true
	}
	return t >= r.ValidFrom && t <= r.ValidUntil
}

// SignedTx is an off-chain-originated operation carrying the user's
// signature and nonce (§3).
type SignedTx struct {
	Hash         rcommon.Hash
	Op           Op
	Signature    []byte
	TimeRange    TimeRange
	EthSignature []byte // set when the op also requires L1-key authorization
	BatchID      uint64 // 0 when not part of a batch
	ReceivedAt   time.Time
}

// AccountOf returns the account the tx's nonce is checked/consumed
// against, used by the mempool's per-account nonce-gap tracking.
func AccountOf(op Op) (rcommon.AccountID, uint32, bool) {
	switch o := op.(type) {
	case *Transfer:
		return o.FromID, o.Nonce, true
	case *TransferToNew:
		return o.FromID, o.Nonce, true
	case *Withdraw:
		return o.AccountID, o.Nonce, true
	case *ChangePubKey:
		return o.AccountID, o.Nonce, true
	case *ForcedExit:
		return o.InitiatorID, o.Nonce, true
	case *MintNFT:
		return o.CreatorID, o.Nonce, true
	case *WithdrawNFT:
		return o.AccountID, o.Nonce, true
	case *Swap:
		return o.InitiatorID, o.NonceA, true
	default:
		return 0, 0, false
	}
}

// FailReason enumerates why apply() rejected a tx without mutating state
// (§4.1, §7 "User-visible validation errors").
type FailReason string

const (
	FailNonceMismatch     FailReason = "nonce mismatch"
	FailInsufficientFunds FailReason = "insufficient balance"
	FailBadSignature      FailReason = "signature check failed"
	FailForbiddenAccount  FailReason = "forbidden account"
	FailUnknownToken      FailReason = "token not registered"
	FailAmountPacking     FailReason = "amount not representable in packed encoding"
	FailAccountTooYoung   FailReason = "account younger than forced-exit minimum age"
	FailUnknownAccount    FailReason = "account does not exist"
)

// FailedTx records an operation that was rejected for a reason specific to
// itself; it consumed a pending-block slot but produced no state change
// (§4.4).
type FailedTx struct {
	Hash   rcommon.Hash
	Op     Op
	Reason FailReason
}

// ExecutedOp is one operation as recorded in a sealed block: either it
// succeeded (Fee set) or it is present only to record a
// chunk-consuming failure.
type ExecutedOp struct {
	Op         Op
	Success    bool
	FeeTokenID rcommon.TokenID
	Fee        *big.Int
	FailReason FailReason // only meaningful when Success is false
}
