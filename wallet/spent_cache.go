// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"sync"

	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// SpentCache records outpoints that have been committed to a transaction
// which may not have confirmed yet. Outpoints in the cache are never handed
// to a coin selector again.
//
// Entries are never removed. The cache lives for as long as the process and
// is not persisted.
type SpentCache interface {
	// Contains reports whether the outpoint has already been spent.
	Contains(op wire.OutPoint) bool

	// InsertAll marks all given outpoints as spent.
	InsertAll(ops []wire.OutPoint)
}

// MemSpentCache is an in-memory SpentCache that is safe for concurrent use.
type MemSpentCache struct {
	mu  sync.RWMutex
	ops fn.Set[wire.OutPoint]
}

// A compile time check to ensure that MemSpentCache implements the
// interface.
var _ SpentCache = (*MemSpentCache)(nil)

// NewMemSpentCache returns an empty MemSpentCache.
func NewMemSpentCache() *MemSpentCache {
	return &MemSpentCache{
		ops: fn.NewSet[wire.OutPoint](),
	}
}

// Contains implements SpentCache.
func (c *MemSpentCache) Contains(op wire.OutPoint) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.ops.Contains(op)
}

// InsertAll implements SpentCache.
func (c *MemSpentCache) InsertAll(ops []wire.OutPoint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, op := range ops {
		c.ops.Add(op)
	}
}

// InsertIfAbsent inserts all given outpoints only if none of them is in the
// cache yet. It returns false, leaving the cache unchanged, otherwise.
func (c *MemSpentCache) InsertIfAbsent(ops []wire.OutPoint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, op := range ops {
		if c.ops.Contains(op) {
			return false
		}
	}
	for _, op := range ops {
		c.ops.Add(op)
	}

	return true
}

// Len returns the number of cached outpoints.
func (c *MemSpentCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.ops)
}

// OutPoints returns a snapshot of the cached outpoints in no particular
// order.
func (c *MemSpentCache) OutPoints() []wire.OutPoint {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.ops.ToSlice()
}

// FilterSpent returns the UTXOs whose outpoints are not in the cache,
// preserving their order.
func FilterSpent(cache SpentCache, utxos []Utxo) []Utxo {
	unspent := make([]Utxo, 0, len(utxos))
	for _, u := range utxos {
		if cache.Contains(u.OutPoint) {
			log.Tracef("Skipping %v: spent by a pending transaction",
				u.OutPoint)

			continue
		}

		unspent = append(unspent, u)
	}

	return unspent
}

// commitSpent records ops in the cache. Caches that support it are updated
// with a single compare-and-insert, anything else is checked and then
// updated. It returns false if any outpoint was already present.
func commitSpent(cache SpentCache, ops []wire.OutPoint) bool {
	type atomicInserter interface {
		InsertIfAbsent(ops []wire.OutPoint) bool
	}
	if c, ok := cache.(atomicInserter); ok {
		return c.InsertIfAbsent(ops)
	}

	for _, op := range ops {
		if cache.Contains(op) {
			return false
		}
	}
	cache.InsertAll(ops)

	return true
}
