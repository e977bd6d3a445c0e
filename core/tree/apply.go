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
	"sync/atomic"
	"time"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/core/numeric"
	"github.com/l2anchor/rollup-core/core/types"
)

var updateSeq uint64

// nextUpdateSeq hands out the monotonic order id every AccountUpdate
// carries (§3 supplement), global across trees since it only needs to be
// strictly increasing within one State Keeper process lifetime.
func nextUpdateSeq() uint64 {
	return atomic.AddUint64(&updateSeq, 1)
}

// Result is what apply() returns for one operation (§4.1 apply contract).
type Result struct {
	Success    bool
	FeeTokenID rcommon.TokenID
	Fee        *big.Int
	Updates    []types.AccountUpdate
	FailReason types.FailReason
}

func fail(reason types.FailReason) Result {
	return Result{Success: false, FailReason: reason}
}

// ApplyPriorityOp applies a Deposit or FullExit. Per §4.4: "a priority op
// never fails on validation of the operation itself ... only on
// capacity" — capacity (chunks/gas) is checked by the caller (State
// Keeper) before this is invoked, so ApplyPriorityOp always succeeds.
func (t *Tree) ApplyPriorityOp(op types.Op) Result {
	switch o := op.(type) {
	case *types.Deposit:
		return t.applyDeposit(o)
	case *types.FullExit:
		return t.applyFullExit(o)
	default:
		panic("tree: ApplyPriorityOp called with a non-priority op")
	}
}

func (t *Tree) applyDeposit(d *types.Deposit) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, existed := t.accounts[d.AccountID]
	var updates []types.AccountUpdate
	if !existed {
		a = types.NewAccount(d.AccountID, d.Address)
		updates = append(updates, types.AccountUpdate{
			UpdateSeq: nextUpdateSeq(),
			AccountID: d.AccountID,
			Kind:      types.UpdateCreate,
			Address:   d.Address,
		})
	}
	old := a.Balance(d.TokenID)
	newBal := new(big.Int).Add(old, d.Amount)
	a.Balances[d.TokenID] = newBal
	t.accounts[d.AccountID] = a

	updates = append(updates, types.AccountUpdate{
		UpdateSeq:  nextUpdateSeq(),
		AccountID:  d.AccountID,
		Kind:       types.UpdateBalance,
		TokenID:    d.TokenID,
		BalanceOld: old,
		BalanceNew: newBal,
	})
	return Result{Success: true, Updates: updates}
}

func (t *Tree) applyFullExit(f *types.FullExit) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, existed := t.accounts[f.AccountID]
	if !existed {
		// L1 already validated the exit; an account that never deposited
		// simply withdraws zero (matches a FullExit against an unknown
		// account being a no-op rather than an error, since priority ops
		// never fail on their own validity).
		return Result{Success: true}
	}
	old := a.Balance(f.TokenID)
	if old.Sign() == 0 {
		return Result{Success: true}
	}
	a.Balances[f.TokenID] = big.NewInt(0)
	t.accounts[f.AccountID] = a

	return Result{Success: true, Updates: []types.AccountUpdate{{
		UpdateSeq:  nextUpdateSeq(),
		AccountID:  f.AccountID,
		Kind:       types.UpdateBalance,
		TokenID:    f.TokenID,
		BalanceOld: old,
		BalanceNew: big.NewInt(0),
	}}}
}

// ApplyTx applies a regular off-chain tx (§4.1, §4.4). accountCreatedAt is
// the wall-clock creation time of the sender account, needed for the
// ForcedExit minimum age guard (§8 boundary behaviors); now lets tests control the clock.
func (t *Tree) ApplyTx(op types.Op, accountCreatedAt time.Time, now time.Time, forcedExitMinAge time.Duration) Result {
	switch o := op.(type) {
	case *types.Transfer:
		return t.applyTransfer(o)
	case *types.TransferToNew:
		return t.applyTransferToNew(o)
	case *types.Withdraw:
		return t.applyWithdraw(o)
	case *types.ChangePubKey:
		return t.applyChangePubKey(o)
	case *types.ForcedExit:
		return t.applyForcedExit(o, accountCreatedAt, now, forcedExitMinAge)
	case *types.MintNFT:
		return t.applyMintNFT(o)
	case *types.WithdrawNFT:
		return t.applyWithdrawNFT(o)
	case *types.Close:
		panic("tree: Close operations are permanently disabled")
	default:
		return fail(types.FailForbiddenAccount)
	}
}

func (t *Tree) checkNonce(a *types.Account, nonce uint32) bool { return a.Nonce == nonce }

func (t *Tree) applyTransfer(tr *types.Transfer) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	from, ok := t.accounts[tr.FromID]
	if !ok {
		return fail(types.FailUnknownAccount)
	}
	if from.ID == types.NFTStorageAccountID {
		return fail(types.FailForbiddenAccount)
	}
	to, ok := t.accounts[tr.ToID]
	if !ok {
		return fail(types.FailUnknownAccount)
	}
	if !t.checkNonce(from, tr.Nonce) {
		return fail(types.FailNonceMismatch)
	}
	total := new(big.Int).Add(tr.Amount, tr.Fee)
	fromBal := from.Balance(tr.TokenID)
	if fromBal.Cmp(total) < 0 {
		return fail(types.FailInsufficientFunds)
	}
	if !numeric.Representable(numeric.AmountField, tr.Amount) || !numeric.Representable(numeric.FeeField, tr.Fee) {
		return fail(types.FailAmountPacking)
	}

	newFromBal := new(big.Int).Sub(fromBal, total)
	toBal := to.Balance(tr.TokenID)
	newToBal := new(big.Int).Add(toBal, tr.Amount)
	oldNonce := from.Nonce

	from.Balances[tr.TokenID] = newFromBal
	from.Nonce++
	to.Balances[tr.TokenID] = newToBal
	t.accounts[tr.FromID] = from
	t.accounts[tr.ToID] = to

	return Result{Success: true, FeeTokenID: tr.TokenID, Fee: tr.Fee, Updates: []types.AccountUpdate{
		{UpdateSeq: nextUpdateSeq(), AccountID: tr.FromID, Kind: types.UpdateBalance, TokenID: tr.TokenID, BalanceOld: fromBal, BalanceNew: newFromBal},
		{UpdateSeq: nextUpdateSeq(), AccountID: tr.FromID, Kind: types.UpdateNonce, NonceOld: oldNonce, NonceNew: from.Nonce},
		{UpdateSeq: nextUpdateSeq(), AccountID: tr.ToID, Kind: types.UpdateBalance, TokenID: tr.TokenID, BalanceOld: toBal, BalanceNew: newToBal},
	}}
}

func (t *Tree) applyTransferToNew(tr *types.TransferToNew) Result {
	t.mu.Lock()
	// Allocate the id while locked, then delegate debit/credit through the
	// regular Transfer path for a single source of truth on balance math.
	newID := t.lockedNextAccountID()
	to := types.NewAccount(newID, tr.ToAddr)
	t.accounts[newID] = to
	t.mu.Unlock()

	createUpdate := types.AccountUpdate{UpdateSeq: nextUpdateSeq(), AccountID: newID, Kind: types.UpdateCreate, Address: tr.ToAddr}

	res := t.applyTransfer(&types.Transfer{
		FromID:  tr.FromID,
		ToID:    newID,
		TokenID: tr.TokenID,
		Amount:  tr.Amount,
		Fee:     tr.Fee,
		Nonce:   tr.Nonce,
	})
	if !res.Success {
		t.mu.Lock()
		delete(t.accounts, newID)
		t.mu.Unlock()
		return res
	}
	res.Updates = append([]types.AccountUpdate{createUpdate}, res.Updates...)
	return res
}

func (t *Tree) lockedNextAccountID() rcommon.AccountID {
	var maxID int64 = -1
	for id := range t.accounts {
		if int64(id) > maxID {
			maxID = int64(id)
		}
	}
	return rcommon.AccountID(maxID + 1)
}

func (t *Tree) applyWithdraw(w *types.Withdraw) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.accounts[w.AccountID]
	if !ok {
		return fail(types.FailUnknownAccount)
	}
	if a.ID == types.NFTStorageAccountID {
		return fail(types.FailForbiddenAccount)
	}
	if !t.checkNonce(a, w.Nonce) {
		return fail(types.FailNonceMismatch)
	}
	total := new(big.Int).Add(w.Amount, w.Fee)
	bal := a.Balance(w.TokenID)
	if bal.Cmp(total) < 0 {
		return fail(types.FailInsufficientFunds)
	}
	if !numeric.Representable(numeric.AmountField, w.Amount) || !numeric.Representable(numeric.FeeField, w.Fee) {
		return fail(types.FailAmountPacking)
	}

	newBal := new(big.Int).Sub(bal, total)
	oldNonce := a.Nonce
	a.Balances[w.TokenID] = newBal
	a.Nonce++
	t.accounts[w.AccountID] = a

	return Result{Success: true, FeeTokenID: w.TokenID, Fee: w.Fee, Updates: []types.AccountUpdate{
		{UpdateSeq: nextUpdateSeq(), AccountID: w.AccountID, Kind: types.UpdateBalance, TokenID: w.TokenID, BalanceOld: bal, BalanceNew: newBal},
		{UpdateSeq: nextUpdateSeq(), AccountID: w.AccountID, Kind: types.UpdateNonce, NonceOld: oldNonce, NonceNew: a.Nonce},
	}}
}

func (t *Tree) applyChangePubKey(c *types.ChangePubKey) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.accounts[c.AccountID]
	if !ok {
		return fail(types.FailUnknownAccount)
	}
	if !t.checkNonce(a, c.Nonce) {
		return fail(types.FailNonceMismatch)
	}
	fee := c.Fee
	if fee == nil {
		fee = big.NewInt(0)
	}
	bal := a.Balance(c.FeeTokenID)
	if bal.Cmp(fee) < 0 {
		return fail(types.FailInsufficientFunds)
	}

	oldHash := a.PubKeyHash
	oldNonce := a.Nonce
	oldBal := bal
	newBal := new(big.Int).Sub(bal, fee)
	a.PubKeyHash = c.NewPubKeyHash
	a.Nonce++
	a.Balances[c.FeeTokenID] = newBal
	t.accounts[c.AccountID] = a

	return Result{Success: true, FeeTokenID: c.FeeTokenID, Fee: fee, Updates: []types.AccountUpdate{
		{UpdateSeq: nextUpdateSeq(), AccountID: c.AccountID, Kind: types.UpdatePubKeyHash, PubKeyHashOld: oldHash, PubKeyHashNew: c.NewPubKeyHash},
		{UpdateSeq: nextUpdateSeq(), AccountID: c.AccountID, Kind: types.UpdateNonce, NonceOld: oldNonce, NonceNew: a.Nonce},
		{UpdateSeq: nextUpdateSeq(), AccountID: c.AccountID, Kind: types.UpdateBalance, TokenID: c.FeeTokenID, BalanceOld: oldBal, BalanceNew: newBal},
	}}
}

func (t *Tree) applyForcedExit(f *types.ForcedExit, accountCreatedAt, now time.Time, minAge time.Duration) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	target, ok := t.accounts[f.TargetID]
	if !ok {
		return fail(types.FailUnknownAccount)
	}
	if target.ID == types.NFTStorageAccountID {
		return fail(types.FailForbiddenAccount)
	}
	if now.Sub(accountCreatedAt) < minAge {
		return fail(types.FailAccountTooYoung)
	}
	initiator, ok := t.accounts[f.InitiatorID]
	if !ok {
		return fail(types.FailUnknownAccount)
	}
	if !t.checkNonce(initiator, f.Nonce) {
		return fail(types.FailNonceMismatch)
	}

	bal := target.Balance(f.TokenID)
	fee := f.Fee
	if fee == nil {
		fee = big.NewInt(0)
	}
	if bal.Cmp(fee) < 0 {
		return fail(types.FailInsufficientFunds)
	}
	// withdrawAmount (bal-fee) leaves the rollup via the L1 withdrawal
	// queue; only the fee stays behind for collection at block sealing.
	_ = new(big.Int).Sub(bal, fee)

	oldInitiatorNonce := initiator.Nonce
	target.Balances[f.TokenID] = big.NewInt(0)
	initiator.Nonce++
	t.accounts[f.TargetID] = target
	t.accounts[f.InitiatorID] = initiator

	return Result{Success: true, FeeTokenID: f.TokenID, Fee: fee, Updates: []types.AccountUpdate{
		{UpdateSeq: nextUpdateSeq(), AccountID: f.TargetID, Kind: types.UpdateBalance, TokenID: f.TokenID, BalanceOld: bal, BalanceNew: big.NewInt(0)},
		{UpdateSeq: nextUpdateSeq(), AccountID: f.InitiatorID, Kind: types.UpdateNonce, NonceOld: oldInitiatorNonce, NonceNew: initiator.Nonce},
	}}
}

func (t *Tree) applyMintNFT(m *types.MintNFT) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	creator, ok := t.accounts[m.CreatorID]
	if !ok {
		return fail(types.FailUnknownAccount)
	}
	if !t.checkNonce(creator, m.Nonce) {
		return fail(types.FailNonceMismatch)
	}
	fee := m.Fee
	if fee == nil {
		fee = big.NewInt(0)
	}
	bal := creator.Balance(m.FeeTokenID)
	if bal.Cmp(fee) < 0 {
		return fail(types.FailInsufficientFunds)
	}
	if _, ok := t.accounts[m.RecipientID]; !ok {
		return fail(types.FailUnknownAccount)
	}

	storage, ok := t.accounts[types.NFTStorageAccountID]
	if !ok {
		storage = types.NewAccount(types.NFTStorageAccountID, rcommon.Address{})
	}
	counter := storage.Balance(types.NFTCounterTokenID)
	newCounter := new(big.Int).Add(counter, big.NewInt(1))
	nftTokenID := rcommon.TokenID(types.NFTTokenStartID) + rcommon.TokenID(counter.Uint64())
	storage.Balances[types.NFTCounterTokenID] = newCounter
	t.accounts[types.NFTStorageAccountID] = storage

	recipient := t.accounts[m.RecipientID]
	recipient.Balances[nftTokenID] = big.NewInt(1)
	t.accounts[m.RecipientID] = recipient

	oldNonce := creator.Nonce
	newBal := new(big.Int).Sub(bal, fee)
	creator.Nonce++
	creator.Balances[m.FeeTokenID] = newBal
	t.accounts[m.CreatorID] = creator

	return Result{Success: true, FeeTokenID: m.FeeTokenID, Fee: fee, Updates: []types.AccountUpdate{
		{UpdateSeq: nextUpdateSeq(), AccountID: types.NFTStorageAccountID, Kind: types.UpdateBalance, TokenID: types.NFTCounterTokenID, BalanceOld: counter, BalanceNew: newCounter},
		{UpdateSeq: nextUpdateSeq(), AccountID: m.RecipientID, Kind: types.UpdateBalance, TokenID: nftTokenID, BalanceOld: big.NewInt(0), BalanceNew: big.NewInt(1)},
		{UpdateSeq: nextUpdateSeq(), AccountID: m.CreatorID, Kind: types.UpdateNonce, NonceOld: oldNonce, NonceNew: creator.Nonce},
		{UpdateSeq: nextUpdateSeq(), AccountID: m.CreatorID, Kind: types.UpdateBalance, TokenID: m.FeeTokenID, BalanceOld: bal, BalanceNew: newBal},
	}}
}

func (t *Tree) applyWithdrawNFT(w *types.WithdrawNFT) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.accounts[w.AccountID]
	if !ok {
		return fail(types.FailUnknownAccount)
	}
	if !t.checkNonce(a, w.Nonce) {
		return fail(types.FailNonceMismatch)
	}
	owned := a.Balance(w.NFTTokenID)
	if owned.Sign() == 0 {
		return fail(types.FailInsufficientFunds)
	}
	fee := w.Fee
	if fee == nil {
		fee = big.NewInt(0)
	}
	feeBal := a.Balance(w.FeeTokenID)
	if feeBal.Cmp(fee) < 0 {
		return fail(types.FailInsufficientFunds)
	}

	oldNonce := a.Nonce
	a.Balances[w.NFTTokenID] = big.NewInt(0)
	newFeeBal := new(big.Int).Sub(feeBal, fee)
	a.Balances[w.FeeTokenID] = newFeeBal
	a.Nonce++
	t.accounts[w.AccountID] = a

	return Result{Success: true, FeeTokenID: w.FeeTokenID, Fee: fee, Updates: []types.AccountUpdate{
		{UpdateSeq: nextUpdateSeq(), AccountID: w.AccountID, Kind: types.UpdateBalance, TokenID: w.NFTTokenID, BalanceOld: owned, BalanceNew: big.NewInt(0)},
		{UpdateSeq: nextUpdateSeq(), AccountID: w.AccountID, Kind: types.UpdateBalance, TokenID: w.FeeTokenID, BalanceOld: feeBal, BalanceNew: newFeeBal},
		{UpdateSeq: nextUpdateSeq(), AccountID: w.AccountID, Kind: types.UpdateNonce, NonceOld: oldNonce, NonceNew: a.Nonce},
	}}
}

// ApplySwap applies a two-sided atomic trade; both orders validate or the
// whole swap fails (§4.4 Tie-breaks).
func (t *Tree) ApplySwap(s *types.Swap) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.accounts[s.AccountA]
	if !ok {
		return fail(types.FailUnknownAccount)
	}
	b, ok := t.accounts[s.AccountB]
	if !ok {
		return fail(types.FailUnknownAccount)
	}
	if !t.checkNonce(a, s.NonceA) || !t.checkNonce(b, s.NonceB) {
		return fail(types.FailNonceMismatch)
	}
	aBal := a.Balance(s.TokenSell1)
	if aBal.Cmp(s.Amount1) < 0 {
		return fail(types.FailInsufficientFunds)
	}
	bBal := b.Balance(s.TokenSell2)
	if bBal.Cmp(s.Amount2) < 0 {
		return fail(types.FailInsufficientFunds)
	}
	fee := s.Fee
	if fee == nil {
		fee = big.NewInt(0)
	}
	initiator, ok := t.accounts[s.InitiatorID]
	if !ok {
		return fail(types.FailUnknownAccount)
	}
	initiatorFeeBal := initiator.Balance(s.FeeTokenID)
	if initiatorFeeBal.Cmp(fee) < 0 {
		return fail(types.FailInsufficientFunds)
	}

	aSellNew := new(big.Int).Sub(aBal, s.Amount1)
	aBuyOld := a.Balance(s.TokenBuy1)
	aBuyNew := new(big.Int).Add(aBuyOld, s.Amount2)
	bSellNew := new(big.Int).Sub(bBal, s.Amount2)
	bBuyOld := b.Balance(s.TokenBuy2)
	bBuyNew := new(big.Int).Add(bBuyOld, s.Amount1)

	a.Balances[s.TokenSell1] = aSellNew
	a.Balances[s.TokenBuy1] = aBuyNew
	a.Nonce++
	b.Balances[s.TokenSell2] = bSellNew
	b.Balances[s.TokenBuy2] = bBuyNew
	b.Nonce++
	t.accounts[s.AccountA] = a
	t.accounts[s.AccountB] = b

	newInitiatorFeeBal := new(big.Int).Sub(initiatorFeeBal, fee)
	initiator.Balances[s.FeeTokenID] = newInitiatorFeeBal
	t.accounts[s.InitiatorID] = initiator

	return Result{Success: true, FeeTokenID: s.FeeTokenID, Fee: fee, Updates: []types.AccountUpdate{
		{UpdateSeq: nextUpdateSeq(), AccountID: s.AccountA, Kind: types.UpdateBalance, TokenID: s.TokenSell1, BalanceOld: aBal, BalanceNew: aSellNew},
		{UpdateSeq: nextUpdateSeq(), AccountID: s.AccountA, Kind: types.UpdateBalance, TokenID: s.TokenBuy1, BalanceOld: aBuyOld, BalanceNew: aBuyNew},
		{UpdateSeq: nextUpdateSeq(), AccountID: s.AccountB, Kind: types.UpdateBalance, TokenID: s.TokenSell2, BalanceOld: bBal, BalanceNew: bSellNew},
		{UpdateSeq: nextUpdateSeq(), AccountID: s.AccountB, Kind: types.UpdateBalance, TokenID: s.TokenBuy2, BalanceOld: bBuyOld, BalanceNew: bBuyNew},
		{UpdateSeq: nextUpdateSeq(), AccountID: s.InitiatorID, Kind: types.UpdateBalance, TokenID: s.FeeTokenID, BalanceOld: initiatorFeeBal, BalanceNew: newInitiatorFeeBal},
	}}
}

// CollectFee materializes the synthesized fee-collection update adding the
// given per-token totals to the fee-collector account (§4.4 Sealing).
func (t *Tree) CollectFee(feeAccount rcommon.AccountID, token rcommon.TokenID, amount *big.Int) types.AccountUpdate {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.accounts[feeAccount]
	if !ok {
		a = types.NewAccount(feeAccount, rcommon.Address{})
	}
	old := a.Balance(token)
	newBal := new(big.Int).Add(old, amount)
	a.Balances[token] = newBal
	t.accounts[feeAccount] = a

	return types.AccountUpdate{
		UpdateSeq:  nextUpdateSeq(),
		AccountID:  feeAccount,
		Kind:       types.UpdateBalance,
		TokenID:    token,
		BalanceOld: old,
		BalanceNew: newBal,
	}
}
