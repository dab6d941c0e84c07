// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cache provides in-memory caches and their lookup statistics.
package cache

import lru "github.com/hashicorp/golang-lru"

// LRU is a typed, concurrency safe LRU cache.
type LRU[K comparable, V any] struct {
	c *lru.Cache
}

// NewLRU creates a cache holding up to size entries. size must be positive.
func NewLRU[K comparable, V any](size int) (*LRU[K, V], error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{c}, nil
}

func (l *LRU[K, V]) Get(key K) (v V, ok bool) {
	cached, ok := l.c.Get(key)
	if !ok {
		return v, false
	}
	return cached.(V), true
}

func (l *LRU[K, V]) Add(key K, v V) {
	l.c.Add(key, v)
}

func (l *LRU[K, V]) Contains(key K) bool {
	return l.c.Contains(key)
}

func (l *LRU[K, V]) Len() int {
	return l.c.Len()
}

// GetOrLoad returns the cached value of key, loading and caching it on a
// miss. The second result reports a hit. Failed loads are not cached.
func (l *LRU[K, V]) GetOrLoad(key K, load func(K) (V, error)) (V, bool, error) {
	if v, ok := l.Get(key); ok {
		return v, true, nil
	}
	v, err := load(key)
	if err != nil {
		return v, false, err
	}
	l.Add(key, v)
	return v, false, nil
}
