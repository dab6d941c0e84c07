// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package layout

import (
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/roy9527/tempo/cache"
	"github.com/roy9527/tempo/metrics"
)

var (
	logger = log.New("pkg", "layout")

	metricCacheLookups = metrics.LazyLoadCounterVec("layout_cache_lookups_count", []string{"result"})
)

// DefaultCacheSize is the number of resolved layouts kept by NewResolver when
// no size is given.
const DefaultCacheSize = 1024

// Resolver resolves descriptors and caches the results keyed by
// (canonical type string, base slot). It is safe for concurrent use.
type Resolver struct {
	cache *cache.LRU[cacheKey, *Node]
	stats cache.Stats
}

// NewResolver creates a resolver keeping up to size layouts.
func NewResolver(size int) *Resolver {
	if size <= 0 {
		size = DefaultCacheSize
	}
	lru, err := cache.NewLRU[cacheKey, *Node](size)
	if err != nil {
		// size is positive
		panic(err)
	}
	return &Resolver{cache: lru}
}

type cacheKey struct {
	typ  string
	base uint256.Int
}

// Resolve returns the cached layout of d at base, resolving it on a miss.
func (r *Resolver) Resolve(d *Descriptor, base *uint256.Int) (*Node, error) {
	key := cacheKey{typ: d.String(), base: *base}
	n, hit, err := r.cache.GetOrLoad(key, func(cacheKey) (*Node, error) {
		return Resolve(d, base)
	})
	r.record(hit)
	if err != nil {
		logger.Debug("failed to resolve layout", "type", key.typ, "base", base.Dec(), "err", err)
		return nil, err
	}
	return n, nil
}

// Stats returns the hit and miss counts of the cache.
func (r *Resolver) Stats() (hit, miss int64) {
	return r.stats.Counts()
}

func (r *Resolver) record(hit bool) {
	r.stats.Record(hit)
	result := "miss"
	if hit {
		result = "hit"
	}
	metricCacheLookups().AddWithLabel(1, map[string]string{"result": result})
	if lookups, rate, ok := r.stats.Report(time.Now(), time.Minute); ok {
		logger.Debug("layout cache stats", "lookups", lookups, "hitrate", rate)
	}
}
