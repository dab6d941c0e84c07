// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slotdb

import (
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/roy9527/tempo/metrics"
	"github.com/roy9527/tempo/stackedmap"
	"github.com/roy9527/tempo/thor"
)

var (
	logger = log.New("pkg", "slotdb")

	metricJournalPending = metrics.LazyLoadGauge("journal_pending_slots")
)

type slotKey struct {
	addr thor.Address
	slot thor.Bytes32
}

// Journal buffers slot writes over a source. Checkpoints can be reverted,
// and Commit flushes the buffered writes to the source. Each SetStorage is
// applied as a whole, so a reader never sees a partially written slot.
type Journal struct {
	mu  sync.Mutex
	src Source
	sm  *stackedmap.StackedMap[slotKey, thor.Bytes32]
}

var _ Source = (*Journal)(nil)

// NewJournal creates a journal over src.
func NewJournal(src Source) *Journal {
	j := &Journal{src: src}
	j.reset()
	return j
}

func (j *Journal) reset() {
	metricJournalPending().Set(0)
	j.sm = stackedmap.New(func(key slotKey) (thor.Bytes32, bool, error) {
		v, err := j.src.GetStorage(key.addr, key.slot)
		return v, true, err
	})
}

func (j *Journal) GetStorage(addr thor.Address, slot thor.Bytes32) (thor.Bytes32, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	v, _, err := j.sm.Get(slotKey{addr, slot})
	return v, err
}

func (j *Journal) SetStorage(addr thor.Address, slot thor.Bytes32, value thor.Bytes32) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.sm.Put(slotKey{addr, slot}, value)
	metricJournalPending().Set(int64(j.sm.Keys()))
	return nil
}

// Checkpoint marks the current state and returns its revision.
func (j *Journal) Checkpoint() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.sm.Push()
}

// RevertTo discards every write made after the checkpoint rev.
func (j *Journal) RevertTo(rev int) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if rev < 1 || rev >= j.sm.Depth() {
		return errors.Errorf("invalid revision %d", rev)
	}
	j.sm.PopTo(rev)
	metricJournalPending().Set(int64(j.sm.Keys()))
	return nil
}

// Commit writes the final value of every modified slot to the source and
// clears the journal. The writes are atomic if the source is a Batcher.
func (j *Journal) Commit() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var changes []Change
	j.sm.Changes(func(key slotKey, value thor.Bytes32) bool {
		changes = append(changes, Change{key.addr, key.slot, value})
		return true
	})
	if err := apply(j.src, changes); err != nil {
		return errors.WithMessage(err, "commit journal")
	}
	logger.Debug("journal committed", "slots", len(changes))
	j.reset()
	return nil
}
