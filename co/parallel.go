// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"runtime"
)

// Parallel runs the works cb queues on one worker per CPU. The returned
// channel is closed once cb returned and every queued work finished.
func Parallel(cb func(queue chan<- func())) <-chan struct{} {
	var goes Goes
	queue := make(chan func(), runtime.NumCPU()*2)
	goes.GoN(runtime.NumCPU(), func(int) {
		for work := range queue {
			work()
		}
	})
	go func() {
		defer close(queue)
		cb(queue)
	}()
	return goes.Done()
}
