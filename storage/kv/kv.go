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

// Package kv implements the embedded key-value persistent state interface
// of §6: Data-Restore's phase/cursor bookkeeping and account-tree
// snapshots. Two backends are provided behind the same Database interface:
// badger as the default, goleveldb as the documented alternate.
package kv

import "errors"

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("kv: not found")

// Database is the minimal embedded-KV surface the rest of the package
// needs: point reads/writes and atomic batches.
type Database interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	NewBatch() Batch
	Close() error
}

// Batch groups writes into one atomic commit.
type Batch interface {
	Put(key, value []byte)
	Delete(key []byte)
	Write() error
}
