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
	"bytes"
	"encoding/gob"
	"encoding/hex"
	"fmt"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/core/types"
)

func init() {
	gob.Register(&types.Deposit{})
	gob.Register(&types.Transfer{})
	gob.Register(&types.TransferToNew{})
	gob.Register(&types.Withdraw{})
	gob.Register(&types.ChangePubKey{})
	gob.Register(&types.ForcedExit{})
	gob.Register(&types.FullExit{})
	gob.Register(&types.Swap{})
	gob.Register(&types.MintNFT{})
	gob.Register(&types.WithdrawNFT{})
	gob.Register(types.Noop{})
}

func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(b []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(b)).Decode(v)
}

// ExecutedPriorityOpCache answers "has priority op N already been
// processed, and what happened" without a tree/storage round trip,
// keyed by the L1-assigned serial ID (§5).
type ExecutedPriorityOpCache struct{ c *Cache }

// NewExecutedPriorityOpCache wraps c.
func NewExecutedPriorityOpCache(c *Cache) *ExecutedPriorityOpCache {
	return &ExecutedPriorityOpCache{c: c}
}

// Put records the outcome of priority op serialID.
func (e *ExecutedPriorityOpCache) Put(serialID uint64, op types.PriorityOp, blockNumber uint64) {
	b, err := encodeGob(struct {
		Op          types.PriorityOp
		BlockNumber uint64
	}{op, blockNumber})
	if err != nil {
		logger.Warn("encode executed priority op", "serial_id", serialID, "err", err)
		return
	}
	e.c.Set(priorityOpKey(serialID), b)
}

// Get returns the cached outcome for serialID, if present.
func (e *ExecutedPriorityOpCache) Get(serialID uint64) (op types.PriorityOp, blockNumber uint64, ok bool) {
	raw, hit := e.c.Get(priorityOpKey(serialID))
	if !hit {
		return types.PriorityOp{}, 0, false
	}
	var v struct {
		Op          types.PriorityOp
		BlockNumber uint64
	}
	if err := decodeGob(raw, &v); err != nil {
		logger.Warn("decode executed priority op", "serial_id", serialID, "err", err)
		return types.PriorityOp{}, 0, false
	}
	return v.Op, v.BlockNumber, true
}

func priorityOpKey(serialID uint64) string { return fmt.Sprintf("priorityop:%d", serialID) }

// BlockDetails is the subset of a sealed block the API's block-lookup
// endpoints serve most often.
type BlockDetails struct {
	BlockNumber uint64
	NewRoot     rcommon.Hash
	FeeAccount  rcommon.AccountID
	BlockSize   int
	Timestamp   uint64
	CommitTxHash rcommon.Hash
	VerifyTxHash rcommon.Hash
}

// BlockDetailsCache caches BlockDetails by block number (§5).
type BlockDetailsCache struct{ c *Cache }

// NewBlockDetailsCache wraps c.
func NewBlockDetailsCache(c *Cache) *BlockDetailsCache { return &BlockDetailsCache{c: c} }

// Put stores details for a block.
func (b *BlockDetailsCache) Put(d BlockDetails) {
	raw, err := encodeGob(d)
	if err != nil {
		logger.Warn("encode block details", "block_number", d.BlockNumber, "err", err)
		return
	}
	b.c.Set(blockDetailsKey(d.BlockNumber), raw)
}

// Get returns the cached details for blockNumber, if present.
func (b *BlockDetailsCache) Get(blockNumber uint64) (BlockDetails, bool) {
	raw, hit := b.c.Get(blockDetailsKey(blockNumber))
	if !hit {
		return BlockDetails{}, false
	}
	var d BlockDetails
	if err := decodeGob(raw, &d); err != nil {
		logger.Warn("decode block details", "block_number", blockNumber, "err", err)
		return BlockDetails{}, false
	}
	return d, true
}

func blockDetailsKey(blockNumber uint64) string { return fmt.Sprintf("blockdetails:%d", blockNumber) }

// TxReceipt is the outcome of one signed tx as recorded in a sealed block.
type TxReceipt struct {
	BlockNumber uint64
	Success     bool
	FailReason  types.FailReason
}

// TxReceiptCache caches TxReceipt by tx hash (§5).
type TxReceiptCache struct{ c *Cache }

// NewTxReceiptCache wraps c.
func NewTxReceiptCache(c *Cache) *TxReceiptCache { return &TxReceiptCache{c: c} }

// Put records the receipt for hash.
func (t *TxReceiptCache) Put(hash rcommon.Hash, r TxReceipt) {
	raw, err := encodeGob(r)
	if err != nil {
		logger.Warn("encode tx receipt", "hash", hash.String(), "err", err)
		return
	}
	t.c.Set(txReceiptKey(hash), raw)
}

// Get returns the cached receipt for hash, if present.
func (t *TxReceiptCache) Get(hash rcommon.Hash) (TxReceipt, bool) {
	raw, hit := t.c.Get(txReceiptKey(hash))
	if !hit {
		return TxReceipt{}, false
	}
	var r TxReceipt
	if err := decodeGob(raw, &r); err != nil {
		logger.Warn("decode tx receipt", "hash", hash.String(), "err", err)
		return TxReceipt{}, false
	}
	return r, true
}

func txReceiptKey(hash rcommon.Hash) string { return "txreceipt:" + hash.String() }

// CompletedWithdrawalCache maps a withdrawal's rollup tx hash to the L1
// tx hash that paid it out, so the API can answer "has my withdrawal
// landed on L1" without walking ETH Sender's full operation history (§5).
type CompletedWithdrawalCache struct{ c *Cache }

// NewCompletedWithdrawalCache wraps c.
func NewCompletedWithdrawalCache(c *Cache) *CompletedWithdrawalCache {
	return &CompletedWithdrawalCache{c: c}
}

// Put records that withdrawalHash was paid out by l1TxHash.
func (w *CompletedWithdrawalCache) Put(withdrawalHash, l1TxHash rcommon.Hash) {
	w.c.Set(withdrawalKey(withdrawalHash), []byte(l1TxHash.String()))
}

// Get returns the L1 tx hash that paid out withdrawalHash, if known.
func (w *CompletedWithdrawalCache) Get(withdrawalHash rcommon.Hash) (rcommon.Hash, bool) {
	raw, hit := w.c.Get(withdrawalKey(withdrawalHash))
	if !hit {
		return rcommon.Hash{}, false
	}
	return hashFromHex(string(raw)), true
}

func withdrawalKey(hash rcommon.Hash) string { return "withdrawal:" + hash.String() }

func hashFromHex(s string) rcommon.Hash {
	var h rcommon.Hash
	if len(s) < 2 {
		return h
	}
	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return h
	}
	copy(h[:], b)
	return h
}
