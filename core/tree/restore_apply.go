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

package tree

import (
	"math/big"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/core/types"
)

// ApplyRestoredOp folds an operation recovered from pubdata into the tree
// without re-running the validation a live apply performs (nonce match,
// balance sufficiency, account age): pubdata only ever commits an op that
// already passed those checks when the State Keeper first applied it, and
// fields pubdata doesn't commit (nonces, most L1 addresses) decode to their
// zero value, so re-validating them here would reject valid history (§4.7).
// Unknown accounts referenced by a restored op are created on first touch
// rather than failing, since the account's true creation op may have fallen
// outside a resumed scan's window.
func (t *Tree) ApplyRestoredOp(op types.Op) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch o := op.(type) {
	case *types.Deposit:
		a := t.lockedTouch(o.AccountID, o.Address)
		a.Balances[o.TokenID] = new(big.Int).Add(a.Balance(o.TokenID), o.Amount)
		t.accounts[o.AccountID] = a
	case *types.FullExit:
		a, ok := t.accounts[o.AccountID]
		if ok {
			a.Balances[o.TokenID] = big.NewInt(0)
			t.accounts[o.AccountID] = a
		}
	case *types.Transfer:
		t.lockedMoveBalance(o.FromID, o.ToID, o.TokenID, o.Amount, o.Fee)
	case *types.TransferToNew:
		newID := t.lockedNextAccountID()
		t.accounts[newID] = types.NewAccount(newID, o.ToAddr)
		t.lockedMoveBalance(o.FromID, newID, o.TokenID, o.Amount, o.Fee)
	case *types.Withdraw:
		a := t.lockedTouch(o.AccountID, rcommon.Address{})
		total := new(big.Int).Add(o.Amount, o.Fee)
		a.Balances[o.TokenID] = new(big.Int).Sub(a.Balance(o.TokenID), total)
		a.Nonce++
		t.accounts[o.AccountID] = a
	case *types.ChangePubKey:
		a := t.lockedTouch(o.AccountID, rcommon.Address{})
		a.PubKeyHash = o.NewPubKeyHash
		a.Nonce++
		if o.Fee != nil {
			a.Balances[o.FeeTokenID] = new(big.Int).Sub(a.Balance(o.FeeTokenID), o.Fee)
		}
		t.accounts[o.AccountID] = a
	case *types.ForcedExit:
		target := t.lockedTouch(o.TargetID, rcommon.Address{})
		target.Balances[o.TokenID] = big.NewInt(0)
		t.accounts[o.TargetID] = target
		initiator := t.lockedTouch(o.InitiatorID, rcommon.Address{})
		initiator.Nonce++
		t.accounts[o.InitiatorID] = initiator
	case *types.Swap:
		a := t.lockedTouch(o.AccountA, rcommon.Address{})
		b := t.lockedTouch(o.AccountB, rcommon.Address{})
		a.Balances[o.TokenSell1] = new(big.Int).Sub(a.Balance(o.TokenSell1), o.Amount1)
		a.Balances[o.TokenBuy1] = new(big.Int).Add(a.Balance(o.TokenBuy1), o.Amount2)
		a.Nonce++
		b.Balances[o.TokenSell2] = new(big.Int).Sub(b.Balance(o.TokenSell2), o.Amount2)
		b.Balances[o.TokenBuy2] = new(big.Int).Add(b.Balance(o.TokenBuy2), o.Amount1)
		b.Nonce++
		t.accounts[o.AccountA] = a
		t.accounts[o.AccountB] = b
	case *types.MintNFT:
		storage := t.lockedTouch(types.NFTStorageAccountID, rcommon.Address{})
		counter := storage.Balance(types.NFTCounterTokenID)
		nftTokenID := rcommon.TokenID(types.NFTTokenStartID) + rcommon.TokenID(counter.Uint64())
		storage.Balances[types.NFTCounterTokenID] = new(big.Int).Add(counter, big.NewInt(1))
		t.accounts[types.NFTStorageAccountID] = storage

		recipient := t.lockedTouch(o.RecipientID, rcommon.Address{})
		recipient.Balances[nftTokenID] = big.NewInt(1)
		t.accounts[o.RecipientID] = recipient

		creator := t.lockedTouch(o.CreatorID, rcommon.Address{})
		creator.Nonce++
		if o.Fee != nil {
			creator.Balances[o.FeeTokenID] = new(big.Int).Sub(creator.Balance(o.FeeTokenID), o.Fee)
		}
		t.accounts[o.CreatorID] = creator
	case *types.WithdrawNFT:
		a := t.lockedTouch(o.AccountID, rcommon.Address{})
		a.Balances[o.NFTTokenID] = big.NewInt(0)
		if o.Fee != nil {
			a.Balances[o.FeeTokenID] = new(big.Int).Sub(a.Balance(o.FeeTokenID), o.Fee)
		}
		a.Nonce++
		t.accounts[o.AccountID] = a
	case types.Noop:
		// nothing to fold.
	}
	return Result{Success: true}
}

// lockedTouch returns the account, creating it with addr if absent. Caller
// must hold t.mu.
func (t *Tree) lockedTouch(id rcommon.AccountID, addr rcommon.Address) *types.Account {
	a, ok := t.accounts[id]
	if !ok {
		a = types.NewAccount(id, addr)
		t.accounts[id] = a
	}
	return a
}

// lockedMoveBalance debits amount+fee from fromID and credits amount to
// toID. Caller must hold t.mu.
func (t *Tree) lockedMoveBalance(fromID, toID rcommon.AccountID, token rcommon.TokenID, amount, fee *big.Int) {
	from := t.lockedTouch(fromID, rcommon.Address{})
	to := t.lockedTouch(toID, rcommon.Address{})
	total := new(big.Int).Add(amount, fee)
	from.Balances[token] = new(big.Int).Sub(from.Balance(token), total)
	from.Nonce++
	to.Balances[token] = new(big.Int).Add(to.Balance(token), amount)
	t.accounts[fromID] = from
	t.accounts[toID] = to
}
