// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package cache

import (
	"sync/atomic"
	"time"
)

// Stats counts the lookups of a cache.
type Stats struct {
	hit, miss atomic.Int64
	rate      atomic.Int32 // hit rate in per mille at the last report
	reported  atomic.Int64 // unix nanos of the last report
}

// Record counts one lookup.
func (s *Stats) Record(hit bool) {
	if hit {
		s.hit.Add(1)
	} else {
		s.miss.Add(1)
	}
}

// Counts returns the number of hits and misses.
func (s *Stats) Counts() (hit, miss int64) {
	return s.hit.Load(), s.miss.Load()
}

// HitRate returns hits over lookups, zero before the first lookup.
func (s *Stats) HitRate() float64 {
	hit, miss := s.Counts()
	if hit+miss == 0 {
		return 0
	}
	return float64(hit) / float64(hit+miss)
}

// Report reports the lookups and hit rate at most once per interval, and
// only when the rate moved since the previous report.
func (s *Stats) Report(now time.Time, interval time.Duration) (lookups int64, rate float64, ok bool) {
	last := s.reported.Load()
	if now.UnixNano()-last < int64(interval) || !s.reported.CompareAndSwap(last, now.UnixNano()) {
		return 0, 0, false
	}
	hit, miss := s.Counts()
	rate = s.HitRate()
	if s.rate.Swap(int32(rate*1000)) == int32(rate*1000) {
		return 0, 0, false
	}
	return hit + miss, rate, true
}
