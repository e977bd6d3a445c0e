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

// NFTStorageAccountID is the special account that holds per-NFT content
// state (§3). It can never be a transaction sender.
const NFTStorageAccountID rcommon.AccountID = 2

// NFTTokenStartID is the first TokenID reserved for NFTs; everything below
// it is a fungible token. The slot immediately below is the NFT counter.
const NFTTokenStartID rcommon.TokenID = 65536 - 16384

// NFTCounterTokenID is the special per-account token slot tracking the
// next NFT content id to mint.
const NFTCounterTokenID = NFTTokenStartID - 1

// Account is one leaf of the account tree (§3).
type Account struct {
	ID         rcommon.AccountID
	Address    rcommon.Address
	PubKeyHash rcommon.PubKeyHash
	Nonce      uint32
	Balances   map[rcommon.TokenID]*big.Int
}

// NewAccount returns a zero-balance account ready for insertion.
func NewAccount(id rcommon.AccountID, addr rcommon.Address) *Account {
	return &Account{
		ID:       id,
		Address:  addr,
		Balances: make(map[rcommon.TokenID]*big.Int),
	}
}

// Balance returns the balance of token t, zero if the account never held it.
func (a *Account) Balance(t rcommon.TokenID) *big.Int {
	if b, ok := a.Balances[t]; ok {
		return new(big.Int).Set(b)
	}
	return big.NewInt(0)
}

// Clone deep-copies the account so the tree can hand out snapshots that
// outlive in-place mutation by the State Keeper.
func (a *Account) Clone() *Account {
	c := &Account{
		ID:         a.ID,
		Address:    a.Address,
		PubKeyHash: a.PubKeyHash,
		Nonce:      a.Nonce,
		Balances:   make(map[rcommon.TokenID]*big.Int, len(a.Balances)),
	}
	for k, v := range a.Balances {
		c.Balances[k] = new(big.Int).Set(v)
	}
	return c
}

// Token describes a registered fungible or NFT token (§3).
type Token struct {
	ID       rcommon.TokenID
	Symbol   string
	Address  rcommon.Address
	Decimals uint8
	IsNFT    bool
}

// AccountUpdateKind tags the field an AccountUpdate mutates.
type AccountUpdateKind int

const (
	UpdateCreate AccountUpdateKind = iota
	UpdateBalance
	UpdateNonce
	UpdatePubKeyHash
)

// AccountUpdate is a typed delta over one account field (§3). UpdateSeq is
// a monotonically increasing order id assigned at creation time so that
// Data-Restore and partial-block replay apply updates deterministically
// even if a restart interrupts the block mid-way (§3 supplement).
type AccountUpdate struct {
	UpdateSeq uint64
	AccountID rcommon.AccountID
	Kind      AccountUpdateKind

	// UpdateBalance
	TokenID    rcommon.TokenID
	BalanceOld *big.Int
	BalanceNew *big.Int

	// UpdateNonce
	NonceOld uint32
	NonceNew uint32

	// UpdatePubKeyHash
	PubKeyHashOld rcommon.PubKeyHash
	PubKeyHashNew rcommon.PubKeyHash

	// UpdateCreate
	Address rcommon.Address
}
