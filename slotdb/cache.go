// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slotdb

import (
	"time"

	"github.com/qianbin/directcache"

	"github.com/roy9527/tempo/cache"
	"github.com/roy9527/tempo/metrics"
	"github.com/roy9527/tempo/thor"
)

var metricCacheLookups = metrics.LazyLoadCounterVec("slot_cache_lookups_count", []string{"event"})

// Cache is a write-through cache of slot values in front of a Source.
// A fill racing a write of the same slot may cache a stale value, so
// callers serialize writes of a slot against reads of it.
type Cache struct {
	src   Source
	slots *directcache.Cache
	stats cache.Stats
}

var _ Batcher = (*Cache)(nil)

// NewCache creates a cache of sizeMB megabytes over src.
func NewCache(src Source, sizeMB int) *Cache {
	return &Cache{
		src:   src,
		slots: directcache.New(sizeMB * 1024 * 1024),
	}
}

func (c *Cache) GetStorage(addr thor.Address, slot thor.Bytes32) (thor.Bytes32, error) {
	key := storageKey(addr, slot)

	var v thor.Bytes32
	if c.slots.AdvGet(key, func(val []byte) {
		copy(v[:], val)
	}, false) {
		c.record(true)
		return v, nil
	}
	c.record(false)

	v, err := c.src.GetStorage(addr, slot)
	if err != nil {
		return thor.Bytes32{}, err
	}
	_ = c.slots.Set(key, v[:])
	return v, nil
}

func (c *Cache) SetStorage(addr thor.Address, slot thor.Bytes32, value thor.Bytes32) error {
	key := storageKey(addr, slot)
	if err := c.src.SetStorage(addr, slot, value); err != nil {
		c.slots.Del(key)
		return err
	}
	_ = c.slots.Set(key, value[:])
	return nil
}

// Apply writes changes through to the source, atomically if the source is
// a Batcher.
func (c *Cache) Apply(changes []Change) error {
	if err := apply(c.src, changes); err != nil {
		for _, ch := range changes {
			c.slots.Del(storageKey(ch.Addr, ch.Slot))
		}
		return err
	}
	for _, ch := range changes {
		_ = c.slots.Set(storageKey(ch.Addr, ch.Slot), ch.Value[:])
	}
	return nil
}

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hit, miss int64) {
	return c.stats.Counts()
}

func (c *Cache) record(hit bool) {
	c.stats.Record(hit)
	event := "miss"
	if hit {
		event = "hit"
	}
	metricCacheLookups().AddWithLabel(1, map[string]string{"event": event})
	if lookups, rate, ok := c.stats.Report(time.Now(), 20*time.Second); ok {
		logger.Info("slot cache stats", "lookups", lookups, "hitrate", rate)
	}
}
