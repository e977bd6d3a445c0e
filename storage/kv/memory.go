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

import "sync"

// memDB is an in-process Database, for unit tests and for short-lived
// tooling that doesn't need durability.
type memDB struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemory returns a Database backed by a plain map.
func NewMemory() Database {
	return &memDB{data: make(map[string][]byte)}
}

func (m *memDB) Get(key []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memDB) Put(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *memDB) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

func (m *memDB) Close() error { return nil }

func (m *memDB) NewBatch() Batch {
	return &memBatch{parent: m}
}

type memOp struct {
	del   bool
	key   []byte
	value []byte
}

type memBatch struct {
	parent *memDB
	ops    []memOp
}

func (b *memBatch) Put(key, value []byte) {
	b.ops = append(b.ops, memOp{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
}

func (b *memBatch) Delete(key []byte) {
	b.ops = append(b.ops, memOp{del: true, key: append([]byte(nil), key...)})
}

func (b *memBatch) Write() error {
	b.parent.mu.Lock()
	defer b.parent.mu.Unlock()
	for _, op := range b.ops {
		if op.del {
			delete(b.parent.data, string(op.key))
			continue
		}
		b.parent.data[string(op.key)] = op.value
	}
	return nil
}
