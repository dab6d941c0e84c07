// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallel(t *testing.T) {
	var count atomic.Int64
	<-Parallel(func(queue chan<- func()) {
		for range 50 {
			queue <- func() { count.Add(1) }
		}
	})
	assert.Equal(t, int64(50), count.Load())
}

func TestGoes(t *testing.T) {
	var (
		goes Goes
		sum  atomic.Int64
	)
	goes.GoN(10, func(i int) { sum.Add(int64(i)) })
	goes.Go(func() { sum.Add(100) })
	<-goes.Done()
	assert.Equal(t, int64(145), sum.Load())
	goes.Wait()
}
