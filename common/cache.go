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
	"errors"

	lru "github.com/hashicorp/golang-lru"
)

// Cache is the read-through cache abstraction used by the four caches named
// in §5 (executed-priority-op, block-details, tx-receipt, completed-
// withdrawal-tx-hash). They key on immutable identifiers and only ever
// cache verified entries, since pre-verification entries can still mutate
// due to an L1 revert.
type Cache interface {
	Add(key interface{}, value interface{}) (evicted bool)
	Get(key interface{}) (value interface{}, ok bool)
	Contains(key interface{}) bool
	Remove(key interface{})
	Purge()
	Len() int
}

type lruCache struct {
	lru *lru.Cache
}

func (c *lruCache) Add(key, value interface{}) (evicted bool) { return c.lru.Add(key, value) }
func (c *lruCache) Get(key interface{}) (interface{}, bool)   { return c.lru.Get(key) }
func (c *lruCache) Contains(key interface{}) bool             { return c.lru.Contains(key) }
func (c *lruCache) Remove(key interface{})                    { c.lru.Remove(key) }
func (c *lruCache) Purge()                                    { c.lru.Purge() }
func (c *lruCache) Len() int                                  { return c.lru.Len() }

// NewLRUCache builds a fixed-capacity, verified-entries-only cache.
func NewLRUCache(size int) (Cache, error) {
	if size <= 0 {
		return nil, errors.New("cache size must be positive")
	}
	l, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &lruCache{lru: l}, nil
}
