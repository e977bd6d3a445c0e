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

import "github.com/l2anchor/rollup-core/core/types"

// Undo reverts a sequence of AccountUpdates in reverse order, restoring
// each field's prior value. It gives the State Keeper a way to back out of
// a batch (§4.4 "apply_batch"): apply every member tx in turn, and if one
// fails, Undo everything the earlier members in the same batch did before
// rejecting the batch as a whole.
func (t *Tree) Undo(updates []types.AccountUpdate) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := len(updates) - 1; i >= 0; i-- {
		u := updates[i]
		switch u.Kind {
		case types.UpdateCreate:
			delete(t.accounts, u.AccountID)
		case types.UpdateBalance:
			if a, ok := t.accounts[u.AccountID]; ok {
				a.Balances[u.TokenID] = u.BalanceOld
			}
		case types.UpdateNonce:
			if a, ok := t.accounts[u.AccountID]; ok {
				a.Nonce = u.NonceOld
			}
		case types.UpdatePubKeyHash:
			if a, ok := t.accounts[u.AccountID]; ok {
				a.PubKeyHash = u.PubKeyHashOld
			}
		}
	}
}
