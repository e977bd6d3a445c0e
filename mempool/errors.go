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

// Package mempool implements the ordered transaction queue, nonce-gap
// tracking, priority-op ordering and batch admission of §4.3. TxPool serves
// as both the Transactions handler and, through GetBlock, the Blocks handler.
package mempool

import "errors"

var (
	ErrNonceMismatch       = errors.New("mempool: nonce below account's current nonce")
	ErrDbError             = errors.New("mempool: storage error")
	ErrBatchTooBig         = errors.New("mempool: batch exceeds block chunk budget")
	ErrMissingEthSignature = errors.New("mempool: operation requires an L1 signature")
	ErrBatchMixedTimeRange = errors.New("mempool: batch members disagree on time range")
	ErrBatchDuplicateNonce = errors.New("mempool: batch has two txs from the same account with the same nonce")
	ErrOther               = errors.New("mempool: rejected")
)
