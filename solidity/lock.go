// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/roy9527/tempo/thor"
)

// DefaultLockStripes is the number of slot locks used by NewEngine.
const DefaultLockStripes = 256

// stripes maps (contract, slot) pairs onto a fixed set of locks. A holder of
// a single stripe never acquires another one; holders of several stripes
// take them in ascending order, so colliding slots cannot deadlock.
type stripes []sync.RWMutex

func newStripes(n int) stripes {
	if n <= 0 {
		n = DefaultLockStripes
	}
	return make(stripes, n)
}

func (s stripes) index(addr thor.Address, slot thor.Bytes32) int {
	var key [len(addr) + len(slot)]byte
	copy(key[:], addr[:])
	copy(key[len(addr):], slot[:])
	return int(xxhash.Sum64(key[:]) % uint64(len(s)))
}

func (s stripes) rlock(addr thor.Address, slot thor.Bytes32) func() {
	mu := &s[s.index(addr, slot)]
	mu.RLock()
	return mu.RUnlock
}

func (s stripes) lock(held []int) {
	for _, i := range held {
		s[i].Lock()
	}
}

func (s stripes) unlock(held []int) {
	for _, i := range held {
		s[i].Unlock()
	}
}

// footprint collects the stripes covering the slots an operation writes.
// It counts the slots added and fails once they exceed limit.
type footprint struct {
	locks stripes
	addr  thor.Address
	held  []int // stripes write-locked by the collecting operation, sorted
	set   map[int]struct{}
	slots uint64
	limit uint64
}

func (f *footprint) add(slot thor.Bytes32) error {
	if f.slots++; f.slots > f.limit {
		return errors.Wrapf(ErrTooLarge, "more than %d slots", f.limit)
	}
	f.set[f.locks.index(f.addr, slot)] = struct{}{}
	return nil
}

// holds reports whether the stripe of slot is write-locked by the collector.
func (f *footprint) holds(slot thor.Bytes32) bool {
	_, found := slices.BinarySearch(f.held, f.locks.index(f.addr, slot))
	return found
}

func (f *footprint) sorted() []int {
	out := make([]int, 0, len(f.set))
	for i := range f.set {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// covers reports whether every stripe of the footprint is in held.
func (f *footprint) covers(held []int) bool {
	for i := range f.set {
		if _, found := slices.BinarySearch(held, i); !found {
			return false
		}
	}
	return true
}

func merge(a, b []int) []int {
	out := append(append(make([]int, 0, len(a)+len(b)), a...), b...)
	slices.Sort(out)
	return slices.Compact(out)
}
