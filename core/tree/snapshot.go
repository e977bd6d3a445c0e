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
	"bytes"
	"encoding/gob"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/core/types"
)

// Snapshot serializes every account for persistence by storage/kv, so
// Data-Restore can resume Operations from where a previous run left off
// instead of replaying from genesis (§4.7).
func (t *Tree) Snapshot() ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(t.accounts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Restore replaces the tree's accounts with a previously-taken Snapshot.
// Only valid on a freshly constructed, empty Tree.
func (t *Tree) Restore(data []byte) error {
	var accounts map[rcommon.AccountID]*types.Account
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&accounts); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.accounts = accounts
	return nil
}
