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
	"github.com/syndtr/goleveldb/leveldb"
)

// levelDB is the alternate backend (§6), for operators who prefer
// goleveldb's maturity over badger's LSM-with-value-log design.
type levelDB struct {
	db *leveldb.DB
}

// NewLevelDB opens (creating if absent) a goleveldb store at path.
func NewLevelDB(path string) (Database, error) {
	db, err := leveldb.OpenFile(path, nil)
	if _, corrupted := err.(*leveldb.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("opened goleveldb store", "path", path)
	return &levelDB{db: db}, nil
}

func (l *levelDB) Get(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return v, err
}

func (l *levelDB) Put(key, value []byte) error { return l.db.Put(key, value, nil) }
func (l *levelDB) Delete(key []byte) error     { return l.db.Delete(key, nil) }
func (l *levelDB) Close() error                { return l.db.Close() }

func (l *levelDB) NewBatch() Batch {
	return &levelDBBatch{db: l.db, batch: new(leveldb.Batch)}
}

type levelDBBatch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *levelDBBatch) Put(key, value []byte) { b.batch.Put(key, value) }
func (b *levelDBBatch) Delete(key []byte)     { b.batch.Delete(key) }
func (b *levelDBBatch) Write() error          { return b.db.Write(b.batch, nil) }
