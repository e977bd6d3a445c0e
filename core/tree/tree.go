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

// Package tree implements the sparse Merkle account tree of §4.1: a
// fixed-depth tree of accounts, each leaf itself the root of a fixed-depth
// balance sub-tree over tokens.
//
// The SNARK's algebraic hash is out of scope (§1 Non-goals: cryptographic
// primitives are assumed available). Hasher lets the real circuit's hash
// be plugged in later; the default is SHA-256 over canonical big-endian
// encodings, a stand-in documented in DESIGN.md.
package tree

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"
	"sort"
	"sync"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/core/types"
	rlog "github.com/l2anchor/rollup-core/log"
)

var logger = rlog.NewModuleLogger(rlog.AccountTree)

// Hasher abstracts the leaf/node hash function used by the tree, so it can
// be swapped for the SNARK's algebraic hash without touching tree logic.
type Hasher interface {
	HashLeaf(data []byte) rcommon.Hash
	HashNode(left, right rcommon.Hash) rcommon.Hash
}

type sha256Hasher struct{}

func (sha256Hasher) HashLeaf(data []byte) rcommon.Hash {
	return rcommon.Hash(sha256.Sum256(data))
}

func (sha256Hasher) HashNode(left, right rcommon.Hash) rcommon.Hash {
	buf := make([]byte, 0, 64)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return rcommon.Hash(sha256.Sum256(buf))
}

// DefaultHasher is the SHA-256 stand-in used unless a caller supplies one.
var DefaultHasher Hasher = sha256Hasher{}

const (
	// AccountTreeDepth bounds the tree to 2^24 accounts, a subset of the
	// 32-bit AccountID domain (§3).
	AccountTreeDepth = 24
	// BalanceTreeDepth bounds the token sub-tree to 2^16 tokens, matching
	// the 16-bit TokenID domain (§3).
	BalanceTreeDepth = 16
)

// AuditPath is the list of sibling hashes needed to prove an account
// leaf's inclusion, root-to-leaf order reversed (leaf-to-root).
type AuditPath []rcommon.Hash

// Tree is the account tree, exclusively owned by the State Keeper (§3
// Ownership). It is not safe for concurrent mutation, matching the
// single-writer contract; reads are safe for the owning goroutine only.
type Tree struct {
	mu       sync.RWMutex
	hasher   Hasher
	accounts map[rcommon.AccountID]*types.Account
	emptyAccountLeaf rcommon.Hash
}

// New builds an empty tree of the given hasher (DefaultHasher if nil).
func New(hasher Hasher) *Tree {
	if hasher == nil {
		hasher = DefaultHasher
	}
	t := &Tree{
		hasher:   hasher,
		accounts: make(map[rcommon.AccountID]*types.Account),
	}
	t.emptyAccountLeaf = t.emptyBalanceRoot()
	return t
}

// Capacity returns 2^AccountTreeDepth, the maximum number of accounts.
func (t *Tree) Capacity() uint64 { return uint64(1) << AccountTreeDepth }

// Get returns a deep copy of the account at id, or nil if it was never
// created (§3 Lifecycle: accounts are never destroyed once created).
func (t *Tree) Get(id rcommon.AccountID) *types.Account {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.accounts[id]
	if !ok {
		return nil
	}
	return a.Clone()
}

// Exists reports whether id has ever been allocated.
func (t *Tree) Exists(id rcommon.AccountID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.accounts[id]
	return ok
}

// FindByAddress linear-scans for an account with the given L1 address.
// The account tree is keyed by AccountID; a production deployment would
// maintain an address->id index in storage (§6 persistent state
// interface), which this in-memory tree leaves to its caller.
func (t *Tree) FindByAddress(addr rcommon.Address) (*types.Account, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, a := range t.accounts {
		if a.Address == addr {
			return a.Clone(), true
		}
	}
	return nil, false
}

// Insert writes (or overwrites) the account at its ID. Used both for
// initial creation and for applying mutations produced by op application.
func (t *Tree) Insert(a *types.Account) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.accounts[a.ID] = a.Clone()
}

// NextAccountID returns one past the highest allocated account id,
// implementing "AccountId allocation is stable" (§3 Lifecycle) by never
// reusing an id once assigned, even to an emptied account. Unallocated ids
// below the highest one are not handed out.
func (t *Tree) NextAccountID() rcommon.AccountID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var maxID int64 = -1
	for id := range t.accounts {
		if int64(id) > maxID {
			maxID = int64(id)
		}
	}
	return rcommon.AccountID(maxID + 1)
}

// balanceRoot computes the root of an account's token sub-tree over its
// explicit balances; every unset token is treated as an implicit zero leaf
// without being materialized, keeping this O(tokens held) rather than
// O(2^BalanceTreeDepth).
func (t *Tree) balanceRoot(a *types.Account) rcommon.Hash {
	if a == nil || len(a.Balances) == 0 {
		return t.emptyBalanceRoot()
	}
	tokens := make([]rcommon.TokenID, 0, len(a.Balances))
	for tok := range a.Balances {
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i] < tokens[j] })

	leaves := make(map[rcommon.TokenID]rcommon.Hash, len(tokens))
	for _, tok := range tokens {
		leaves[tok] = t.hasher.HashLeaf(encodeBalanceLeaf(tok, a.Balances[tok]))
	}
	return t.sparseFold(leaves, BalanceTreeDepth)
}

func (t *Tree) emptyBalanceRoot() rcommon.Hash {
	return t.sparseFold(nil, BalanceTreeDepth)
}

// sparseFold computes a sparse Merkle root over a depth-d tree given only
// the non-default leaves, exploiting the fact that every subtree made
// entirely of the zero leaf has a precomputable, depth-dependent hash.
func (t *Tree) sparseFold(leaves map[rcommon.TokenID]rcommon.Hash, depth int) rcommon.Hash {
	zero := t.hasher.HashLeaf(nil)
	zeroAtDepth := make([]rcommon.Hash, depth+1)
	zeroAtDepth[0] = zero
	for i := 1; i <= depth; i++ {
		zeroAtDepth[i] = t.hasher.HashNode(zeroAtDepth[i-1], zeroAtDepth[i-1])
	}
	if len(leaves) == 0 {
		return zeroAtDepth[depth]
	}

	type node struct {
		idx  uint64
		hash rcommon.Hash
	}
	cur := make(map[uint64]rcommon.Hash, len(leaves))
	for tok, h := range leaves {
		cur[uint64(tok)] = h
	}

	for level := 0; level < depth; level++ {
		next := make(map[uint64]rcommon.Hash, len(cur))
		seen := make(map[uint64]bool)
		for idx := range cur {
			parent := idx / 2
			if seen[parent] {
				continue
			}
			seen[parent] = true
			leftIdx, rightIdx := parent*2, parent*2+1
			left, ok := cur[leftIdx]
			if !ok {
				left = zeroAtDepth[level]
			}
			right, ok := cur[rightIdx]
			if !ok {
				right = zeroAtDepth[level]
			}
			next[parent] = t.hasher.HashNode(left, right)
		}
		cur = next
	}
	return cur[0]
}

func encodeBalanceLeaf(tok rcommon.TokenID, amount *big.Int) []byte {
	buf := make([]byte, 2, 2+32)
	binary.BigEndian.PutUint16(buf, uint16(tok))
	amt := amount.Bytes()
	padded := make([]byte, 32)
	copy(padded[32-len(amt):], amt)
	return append(buf, padded...)
}

func encodeAccountLeaf(a *types.Account, balanceRoot rcommon.Hash) []byte {
	buf := make([]byte, 0, 4+20+20+4+32)
	var idBuf [4]byte
	binary.BigEndian.PutUint32(idBuf[:], uint32(a.ID))
	buf = append(buf, idBuf[:]...)
	buf = append(buf, a.Address[:]...)
	buf = append(buf, a.PubKeyHash[:]...)
	var nonceBuf [4]byte
	binary.BigEndian.PutUint32(nonceBuf[:], a.Nonce)
	buf = append(buf, nonceBuf[:]...)
	buf = append(buf, balanceRoot[:]...)
	return buf
}

// RootHash computes the current tree root (§4.1 root_hash()).
func (t *Tree) RootHash() rcommon.Hash {
	t.mu.RLock()
	defer t.mu.RUnlock()

	leaves := make(map[rcommon.AccountID]rcommon.Hash, len(t.accounts))
	for id, a := range t.accounts {
		leaves[id] = t.hasher.HashLeaf(encodeAccountLeaf(a, t.balanceRoot(a)))
	}
	generic := make(map[uint64]rcommon.Hash, len(leaves))
	for id, h := range leaves {
		generic[uint64(id)] = h
	}
	return t.foldGeneric(generic, AccountTreeDepth)
}

func (t *Tree) foldGeneric(leaves map[uint64]rcommon.Hash, depth int) rcommon.Hash {
	conv := make(map[rcommon.TokenID]rcommon.Hash, len(leaves))
	for k, v := range leaves {
		conv[rcommon.TokenID(k)] = v
	}
	return t.sparseFold(conv, depth)
}

// AuditPath returns the Merkle siblings proving id's inclusion (§4.1).
func (t *Tree) AuditPath(id rcommon.AccountID) AuditPath {
	t.mu.RLock()
	defer t.mu.RUnlock()

	zero := t.hasher.HashLeaf(nil)
	zeroAtDepth := make([]rcommon.Hash, AccountTreeDepth+1)
	zeroAtDepth[0] = zero
	for i := 1; i <= AccountTreeDepth; i++ {
		zeroAtDepth[i] = t.hasher.HashNode(zeroAtDepth[i-1], zeroAtDepth[i-1])
	}

	cur := make(map[uint64]rcommon.Hash, len(t.accounts))
	for aid, a := range t.accounts {
		cur[uint64(aid)] = t.hasher.HashLeaf(encodeAccountLeaf(a, t.balanceRoot(a)))
	}

	path := make(AuditPath, 0, AccountTreeDepth)
	idx := uint64(id)
	for level := 0; level < AccountTreeDepth; level++ {
		siblingIdx := idx ^ 1
		sib, ok := cur[siblingIdx]
		if !ok {
			sib = zeroAtDepth[level]
		}
		path = append(path, sib)

		next := make(map[uint64]rcommon.Hash)
		seen := make(map[uint64]bool)
		for i := range cur {
			parent := i / 2
			if seen[parent] {
				continue
			}
			seen[parent] = true
			l, ok := cur[parent*2]
			if !ok {
				l = zeroAtDepth[level]
			}
			r, ok := cur[parent*2+1]
			if !ok {
				r = zeroAtDepth[level]
			}
			next[parent] = t.hasher.HashNode(l, r)
		}
		cur = next
		idx /= 2
	}
	return path
}
