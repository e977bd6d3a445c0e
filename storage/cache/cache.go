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

// Package cache implements the four read-through caches named in §5
// (executed-priority-op, block-details, tx-receipt,
// completed-withdrawal-tx-hash): an in-process hashicorp/golang-lru tier
// backed by an optional go-redis/redis shared tier, so multiple read-only
// API-handler processes can share hits without each holding the full
// working set.
package cache

import (
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/pkg/errors"

	rcommon "github.com/l2anchor/rollup-core/common"
	"github.com/l2anchor/rollup-core/config"
	rlog "github.com/l2anchor/rollup-core/log"
)

var logger = rlog.NewModuleLogger(rlog.StorageCache)

// Cache is a two-tier byte-string cache: an in-process LRU checked first,
// falling through to a shared Redis instance (if configured) on miss, and
// populating both tiers on a store.
type Cache struct {
	local rcommon.Cache
	redis *redis.Client
	ttl   time.Duration
}

// New builds a Cache from cfg. The Redis tier is skipped entirely when
// cfg.RedisAddr is empty, leaving a process-local-only cache.
func New(cfg config.CacheConfig) (*Cache, error) {
	local, err := rcommon.NewLRUCache(cfg.LRUSize)
	if err != nil {
		return nil, errors.Wrap(err, "storage/cache: new lru")
	}
	c := &Cache{local: local, ttl: cfg.RedisTTL}
	if cfg.RedisAddr != "" {
		c.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := c.redis.Ping().Err(); err != nil {
			return nil, errors.Wrap(err, "storage/cache: redis ping")
		}
		logger.Info("connected shared redis cache tier", "addr", cfg.RedisAddr)
	}
	return c, nil
}

// Get returns the cached bytes for key, checking the local tier first.
func (c *Cache) Get(key string) ([]byte, bool) {
	if v, ok := c.local.Get(key); ok {
		return v.([]byte), true
	}
	if c.redis == nil {
		return nil, false
	}
	v, err := c.redis.Get(key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("redis get failed", "key", key, "err", err)
		}
		return nil, false
	}
	c.local.Add(key, v)
	return v, true
}

// Set writes value into both tiers.
func (c *Cache) Set(key string, value []byte) {
	c.local.Add(key, value)
	if c.redis == nil {
		return
	}
	if err := c.redis.Set(key, value, c.ttl).Err(); err != nil {
		logger.Warn("redis set failed", "key", key, "err", err)
	}
}

// Close releases the Redis connection, if any.
func (c *Cache) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}
