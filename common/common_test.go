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

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytesToAddress_PadsAndTruncates(t *testing.T) {
	a := BytesToAddress([]byte{0x01, 0x02})
	assert.Equal(t, "0x"+"0000000000000000000000000000000000000102", a.String())

	long := make([]byte, AddressLength+5)
	long[len(long)-1] = 0xFF
	a2 := BytesToAddress(long)
	assert.Equal(t, byte(0xFF), a2[AddressLength-1])
}

func TestBytesToHash_PadsAndTruncates(t *testing.T) {
	h := BytesToHash([]byte{0xAB})
	assert.True(t, !h.IsZero())
	assert.Equal(t, byte(0xAB), h[HashLength-1])
}

func TestHash_IsZero(t *testing.T) {
	var h Hash
	assert.True(t, h.IsZero())
	h[0] = 1
	assert.False(t, h.IsZero())
}

func TestNewLRUCache_RejectsNonPositiveSize(t *testing.T) {
	_, err := NewLRUCache(0)
	assert.NotNil(t, err)
}

func TestLRUCache_AddGetRemovePurge(t *testing.T) {
	c, err := NewLRUCache(2)
	assert.Nil(t, err)

	c.Add("a", 1)
	c.Add("b", 2)
	assert.True(t, c.Contains("a"))
	assert.Equal(t, 2, c.Len())

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.Remove("a")
	assert.False(t, c.Contains("a"))

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestLRUCache_EvictsOldestBeyondCapacity(t *testing.T) {
	c, err := NewLRUCache(1)
	assert.Nil(t, err)
	c.Add("a", 1)
	c.Add("b", 2)
	assert.False(t, c.Contains("a"))
	assert.True(t, c.Contains("b"))
}
