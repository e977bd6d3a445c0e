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
	"testing"

	"github.com/stretchr/testify/assert"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/core/types"
)

func TestUndo_RestoresBalanceAndNonce(t *testing.T) {
	tr := New(nil)
	acc := types.NewAccount(1, rcommon.Address{0x01})
	acc.Balances[0] = big.NewInt(1000)
	tr.accounts[1] = acc
	to := types.NewAccount(2, rcommon.Address{0x02})
	tr.accounts[2] = to

	res := tr.applyTransfer(&types.Transfer{FromID: 1, ToID: 2, TokenID: 0, Amount: big.NewInt(100), Fee: big.NewInt(0), Nonce: 0})
	assert.True(t, res.Success)
	assert.Equal(t, big.NewInt(900), tr.Get(1).Balance(0))

	tr.Undo(res.Updates)
	assert.Equal(t, big.NewInt(1000), tr.Get(1).Balance(0))
	assert.Equal(t, big.NewInt(0), tr.Get(2).Balance(0))
	assert.Equal(t, uint32(0), tr.Get(1).Nonce)
}

func TestUndo_RemovesCreatedAccount(t *testing.T) {
	tr := New(nil)
	acc := types.NewAccount(1, rcommon.Address{0x01})
	acc.Balances[0] = big.NewInt(1000)
	tr.accounts[1] = acc

	res := tr.applyTransferToNew(&types.TransferToNew{FromID: 1, ToAddr: rcommon.Address{0x02}, TokenID: 0, Amount: big.NewInt(100), Fee: big.NewInt(0), Nonce: 0})
	assert.True(t, res.Success)

	var newID rcommon.AccountID
	for _, u := range res.Updates {
		if u.Kind == types.UpdateCreate {
			newID = u.AccountID
		}
	}
	assert.NotNil(t, tr.Get(newID))

	tr.Undo(res.Updates)
	assert.Nil(t, tr.Get(newID))
	assert.Equal(t, big.NewInt(1000), tr.Get(1).Balance(0))
}
