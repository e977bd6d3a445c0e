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
	"github.com/dgraph-io/badger"

	rlog "github.com/l2anchor/rollup-core/log"
)

var logger = rlog.NewModuleLogger(rlog.StorageKV)

type badgerDB struct {
	db *badger.DB
}

// NewBadger opens (creating if absent) a badger store at path — the
// default embedded backend.
func NewBadger(path string) (Database, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logger is noisy at Info; we log at call sites instead
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	logger.Info("opened badger store", "path", path)
	return &badgerDB{db: db}, nil
}

func (b *badgerDB) Get(key []byte) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	return out, err
}

func (b *badgerDB) Put(key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (b *badgerDB) Delete(key []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (b *badgerDB) NewBatch() Batch {
	return &badgerBatch{db: b.db, wb: b.db.NewWriteBatch()}
}

func (b *badgerDB) Close() error { return b.db.Close() }

type badgerBatch struct {
	db  *badger.DB
	wb  *badger.WriteBatch
	err error
}

func (b *badgerBatch) Put(key, value []byte) {
	if b.err != nil {
		return
	}
	b.err = b.wb.Set(key, value)
}

func (b *badgerBatch) Delete(key []byte) {
	if b.err != nil {
		return
	}
	b.err = b.wb.Delete(key)
}

func (b *badgerBatch) Write() error {
	if b.err != nil {
		return b.err
	}
	return b.wb.Flush()
}
