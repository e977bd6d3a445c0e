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

// Package common holds the primitive identifier types shared by every
// subsystem: L1 addresses, hashes, and the cache abstraction layered over
// them.
package common

import (
	"encoding/hex"
	"fmt"
)

// AddressLength is the byte width of an L1 address (§3 Account).
const AddressLength = 20

// HashLength is the byte width of a generic hash value.
const HashLength = 32

// Address is an L1 account address.
type Address [AddressLength]byte

func (a Address) String() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) Bytes() []byte { return a[:] }

// BytesToAddress left-pads or truncates b into an Address.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// Hash is a generic 32-byte hash value (block hash, tx hash, merkle root).
type Hash [HashLength]byte

func (h Hash) String() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) IsZero() bool { return h == Hash{} }

// BytesToHash left-pads or truncates b into a Hash.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// PubKeyHash is the 20-byte hash of a rollup account's off-chain public key.
type PubKeyHash [AddressLength]byte

func (p PubKeyHash) String() string { return "0x" + hex.EncodeToString(p[:]) }

// AccountID identifies a leaf of the account tree (§3).
type AccountID uint32

func (id AccountID) String() string { return fmt.Sprintf("%d", uint32(id)) }

// TokenID identifies a column of the balance sub-tree (§3).
type TokenID uint16

func (id TokenID) String() string { return fmt.Sprintf("%d", uint16(id)) }
