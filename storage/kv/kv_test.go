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

package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryDB_PutGetDelete(t *testing.T) {
	db := NewMemory()

	_, err := db.Get([]byte("missing"))
	assert.Equal(t, ErrNotFound, err)

	assert.Nil(t, db.Put([]byte("k"), []byte("v1")))
	v, err := db.Get([]byte("k"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v1"), v)

	assert.Nil(t, db.Delete([]byte("k")))
	_, err = db.Get([]byte("k"))
	assert.Equal(t, ErrNotFound, err)
}

func TestMemoryDB_BatchIsAtomicOnWrite(t *testing.T) {
	db := NewMemory()
	assert.Nil(t, db.Put([]byte("a"), []byte("1")))

	b := db.NewBatch()
	b.Put([]byte("a"), []byte("2"))
	b.Put([]byte("b"), []byte("3"))
	b.Delete([]byte("missing-key"))

	// nothing applied until Write
	v, _ := db.Get([]byte("a"))
	assert.Equal(t, []byte("1"), v)

	assert.Nil(t, b.Write())
	va, _ := db.Get([]byte("a"))
	vb, _ := db.Get([]byte("b"))
	assert.Equal(t, []byte("2"), va)
	assert.Equal(t, []byte("3"), vb)
}

func TestRestoreSchema_RoundTripsPhaseAndCursor(t *testing.T) {
	s := NewRestoreSchema(NewMemory())

	phase, err := s.LoadPhase()
	assert.Nil(t, err)
	assert.Equal(t, byte(0), phase)

	assert.Nil(t, s.SavePhase(2))
	phase, err = s.LoadPhase()
	assert.Nil(t, err)
	assert.Equal(t, byte(2), phase)

	assert.Nil(t, s.SaveLastWatchedBlock(12345))
	n, err := s.LoadLastWatchedBlock()
	assert.Nil(t, err)
	assert.Equal(t, uint64(12345), n)

	assert.Nil(t, s.SaveProcessedPriorityOps(7))
	count, err := s.LoadProcessedPriorityOps()
	assert.Nil(t, err)
	assert.Equal(t, uint64(7), count)
}

func TestRestoreSchema_TreeSnapshotDefaultsToNil(t *testing.T) {
	s := NewRestoreSchema(NewMemory())

	data, err := s.LoadTreeSnapshot()
	assert.Nil(t, err)
	assert.Nil(t, data)

	assert.Nil(t, s.SaveTreeSnapshot([]byte{0x01, 0x02}))
	data, err = s.LoadTreeSnapshot()
	assert.Nil(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, data)
}
