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

	rcommon "github.com/l2anchor/rollup-core/common"
)

// OpType is the closed tag over every operation variant (§3, §9 "a closed
// tagged union is preferred over open polymorphism because the witness
// layout must be exhaustive and statically checked").
type OpType uint8

const (
	OpNoop OpType = iota
	OpDeposit
	OpTransfer
	OpTransferToNew
	OpWithdraw
	OpChangePubKey
	OpForcedExit
	OpFullExit
	OpSwap
	OpMintNFT
	OpWithdrawNFT
	OpClose // permanently disabled, see DESIGN.md Open Questions
)

func (t OpType) String() string {
	switch t {
	case OpNoop:
		return "Noop"
	case OpDeposit:
		return "Deposit"
	case OpTransfer:
		return "Transfer"
	case OpTransferToNew:
		return "TransferToNew"
	case OpWithdraw:
		return "Withdraw"
	case OpChangePubKey:
		return "ChangePubKey"
	case OpForcedExit:
		return "ForcedExit"
	case OpFullExit:
		return "FullExit"
	case OpSwap:
		return "Swap"
	case OpMintNFT:
		return "MintNFT"
	case OpWithdrawNFT:
		return "WithdrawNFT"
	case OpClose:
		return "Close"
	default:
		return "Unknown"
	}
}

// chunkWidths is the fixed per-variant chunk width from §3. TransferToNew
// (6 chunks) is wider than Transfer (2 chunks) because it additionally
// allocates an account.
var chunkWidths = map[OpType]int{
	OpNoop:          1,
	OpDeposit:       6,
	OpTransfer:      2,
	OpTransferToNew: 6,
	OpWithdraw:      6,
	OpChangePubKey:  6,
	OpForcedExit:    6,
	OpFullExit:      6,
	OpSwap:          5,
	OpMintNFT:       5,
	OpWithdrawNFT:   10,
	OpClose:         1,
}

// Chunks returns the fixed chunk width of a variant (§4.1 chunks(op)).
func Chunks(t OpType) int { return chunkWidths[t] }

// IsPriority reports whether t originates on L1 and must be ordered by
// serial_id (§3 Priority operation).
func IsPriority(t OpType) bool { return t == OpDeposit || t == OpFullExit }

// Op is the operation interface every concrete variant implements. It
// carries enough information for chunk sizing, pubdata encoding, and state
// application without a type switch at every call site, while Type() keeps
// the set closed and exhaustively matchable where that's required (pubdata
// encoding, State Keeper dispatch).
type Op interface {
	Type() OpType
	// MinChunks is the admission-time width used by the mempool; every
	// variant returns Chunks(Type()). A transfer to an address without an
	// account is its own TransferToNew op rather than a wider Transfer.
	MinChunks() int
}

// Deposit is a priority op crediting token Amount of TokenID to AccountID
// (creating the account if it does not exist).
type Deposit struct {
	AccountID rcommon.AccountID
	Address   rcommon.Address
	TokenID   rcommon.TokenID
	Amount    *big.Int
}

func (d *Deposit) Type() OpType  { return OpDeposit }
func (d *Deposit) MinChunks() int { return Chunks(OpDeposit) }

// Transfer moves funds between two existing accounts.
type Transfer struct {
	FromID    rcommon.AccountID
	ToID      rcommon.AccountID
	TokenID   rcommon.TokenID
	Amount    *big.Int
	Fee       *big.Int
	Nonce     uint32
}

func (t *Transfer) Type() OpType  { return OpTransfer }
func (t *Transfer) MinChunks() int { return Chunks(OpTransfer) }

// TransferToNew moves funds to an address with no account yet, allocating
// one as part of applying the op.
type TransferToNew struct {
	FromID  rcommon.AccountID
	ToAddr  rcommon.Address
	TokenID rcommon.TokenID
	Amount  *big.Int
	Fee     *big.Int
	Nonce   uint32
}

func (t *TransferToNew) Type() OpType  { return OpTransferToNew }
func (t *TransferToNew) MinChunks() int { return Chunks(OpTransferToNew) }

// MinChunksForTransfer implements the mempool's storage-aware predicate
// (§4.3): a Transfer widens to TransferToNew's width when the recipient
// address has no account yet.
func MinChunksForTransfer(recipientExists bool) int {
	if recipientExists {
		return Chunks(OpTransfer)
	}
	return Chunks(OpTransferToNew)
}

// Withdraw burns funds off-chain and queues an L1 payout.
type Withdraw struct {
	AccountID rcommon.AccountID
	ToAddr    rcommon.Address
	TokenID   rcommon.TokenID
	Amount    *big.Int
	Fee       *big.Int
	Nonce     uint32
	Fast      bool // fast-processing flag, §4.4 / Glossary
}

func (w *Withdraw) Type() OpType  { return OpWithdraw }
func (w *Withdraw) MinChunks() int { return Chunks(OpWithdraw) }

// ChangePubKey rebinds an account's off-chain signing key.
type ChangePubKey struct {
	AccountID     rcommon.AccountID
	NewPubKeyHash rcommon.PubKeyHash
	Fee           *big.Int
	FeeTokenID    rcommon.TokenID
	Nonce         uint32
	L1Authorized  bool // whether an L1 signature accompanied this tx
}

func (c *ChangePubKey) Type() OpType  { return OpChangePubKey }
func (c *ChangePubKey) MinChunks() int { return Chunks(OpChangePubKey) }

// ForcedExit lets any party force a withdrawal of an account's full
// balance to its own registered L1 address, subject to a minimum account
// age guard (§8 boundary behaviors).
type ForcedExit struct {
	InitiatorID rcommon.AccountID
	TargetID    rcommon.AccountID
	TokenID     rcommon.TokenID
	Fee         *big.Int
	Nonce       uint32
}

func (f *ForcedExit) Type() OpType  { return OpForcedExit }
func (f *ForcedExit) MinChunks() int { return Chunks(OpForcedExit) }

// FullExit is a priority op withdrawing an account's entire balance of one
// token directly from L1, bypassing off-chain signature checks.
type FullExit struct {
	AccountID rcommon.AccountID
	Address   rcommon.Address
	TokenID   rcommon.TokenID
}

func (f *FullExit) Type() OpType  { return OpFullExit }
func (f *FullExit) MinChunks() int { return Chunks(OpFullExit) }

// Swap is a two-sided atomic trade between two accounts' orders.
type Swap struct {
	InitiatorID rcommon.AccountID
	AccountA    rcommon.AccountID
	AccountB    rcommon.AccountID
	TokenSell1  rcommon.TokenID
	TokenBuy1   rcommon.TokenID
	Amount1     *big.Int
	TokenSell2  rcommon.TokenID
	TokenBuy2   rcommon.TokenID
	Amount2     *big.Int
	Fee         *big.Int
	FeeTokenID  rcommon.TokenID
	NonceA      uint32
	NonceB      uint32
}

func (s *Swap) Type() OpType  { return OpSwap }
func (s *Swap) MinChunks() int { return Chunks(OpSwap) }

// MintNFT creates a new NFT content id owned by the recipient, drawing the
// next content id from the NFT-storage account's counter slot.
type MintNFT struct {
	CreatorID   rcommon.AccountID
	RecipientID rcommon.AccountID
	ContentHash rcommon.Hash
	FeeTokenID  rcommon.TokenID
	Fee         *big.Int
	Nonce       uint32
}

func (m *MintNFT) Type() OpType  { return OpMintNFT }
func (m *MintNFT) MinChunks() int { return Chunks(OpMintNFT) }

// WithdrawNFT moves an NFT's ownership out of the rollup to an L1 address.
type WithdrawNFT struct {
	AccountID  rcommon.AccountID
	ToAddr     rcommon.Address
	NFTTokenID rcommon.TokenID
	FeeTokenID rcommon.TokenID
	Fee        *big.Int
	Nonce      uint32
}

func (w *WithdrawNFT) Type() OpType  { return OpWithdrawNFT }
func (w *WithdrawNFT) MinChunks() int { return Chunks(OpWithdrawNFT) }

// Close is permanently disabled (§9 Open Questions): constructing one is a
// programmer error, not a runtime condition, so NewClose panics the same
// way the source it was distilled from unconditionally panics on one.
type Close struct {
	AccountID rcommon.AccountID
	Nonce     uint32
}

func (c *Close) Type() OpType  { return OpClose }
func (c *Close) MinChunks() int { return Chunks(OpClose) }

// NewClose always panics; Close ops are never re-enabled.
func NewClose(rcommon.AccountID, uint32) *Close {
	panic("types: Close operations are permanently disabled")
}

// Noop fills unused chunks at the tail of a block.
type Noop struct{}

func (Noop) Type() OpType  { return OpNoop }
func (Noop) MinChunks() int { return Chunks(OpNoop) }
