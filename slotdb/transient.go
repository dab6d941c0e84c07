// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slotdb

import (
	"sync"

	"github.com/roy9527/tempo/thor"
)

// Transient is in-memory slot storage that lives for one transaction
// (EIP-1153). Pair it with an engine using the transient gas schedule and
// call Reset when the transaction ends.
type Transient struct {
	mu    sync.RWMutex
	slots map[thor.Address]map[thor.Bytes32]thor.Bytes32
}

var _ Source = (*Transient)(nil)

func NewTransient() *Transient {
	return &Transient{slots: make(map[thor.Address]map[thor.Bytes32]thor.Bytes32)}
}

func (t *Transient) GetStorage(addr thor.Address, slot thor.Bytes32) (thor.Bytes32, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.slots[addr][slot], nil
}

func (t *Transient) SetStorage(addr thor.Address, slot thor.Bytes32, value thor.Bytes32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := t.slots[addr]
	if value.IsZero() {
		delete(m, slot)
		if len(m) == 0 {
			delete(t.slots, addr)
		}
		return nil
	}
	if m == nil {
		m = make(map[thor.Bytes32]thor.Bytes32)
		t.slots[addr] = m
	}
	m[slot] = value
	return nil
}

// Len returns the number of non-zero slots held.
func (t *Transient) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, m := range t.slots {
		n += len(m)
	}
	return n
}

// Reset drops every slot.
func (t *Transient) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.slots)
}
