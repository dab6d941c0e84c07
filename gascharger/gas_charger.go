// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gascharger

import (
	"fmt"
	"sync"

	"github.com/roy9527/tempo/thor"
)

// Charger accumulates the gas used by storage operations and keeps a per
// opcode breakdown. A zero limit means unlimited.
type Charger struct {
	mu             sync.Mutex
	limit          uint64
	sloadOps       uint64
	sstoreSetOps   uint64
	sstoreResetOps uint64
	transientOps   uint64
	customGas      uint64
	totalGas       uint64
}

func New(limit uint64) *Charger {
	return &Charger{limit: limit}
}

func (c *Charger) Charge(gas uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalGas += gas

	switch {
	// Handle multiples and single operations
	case gas%thor.SstoreSetGas == 0 && gas > 0:
		c.sstoreSetOps += gas / thor.SstoreSetGas

	case gas%thor.SstoreResetGas == 0 && gas > 0:
		c.sstoreResetOps += gas / thor.SstoreResetGas

	case gas%thor.SloadGas == 0 && gas > 0:
		c.sloadOps += gas / thor.SloadGas

	case gas%thor.TransientGas == 0 && gas > 0:
		c.transientOps += gas / thor.TransientGas

	default:
		// Unknown/custom gas amount
		c.customGas += gas
	}
}

// OutOfGas reports whether the charged gas exceeds the limit.
func (c *Charger) OutOfGas() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limit > 0 && c.totalGas > c.limit
}

func (c *Charger) Breakdown() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf(
		"SLOAD: %d ops (%d gas) | SSTORE_SET: %d ops (%d gas) | SSTORE_RESET: %d ops (%d gas) | TRANSIENT: %d ops (%d gas) | CUSTOM: %d gas | TOTAL: %d gas",
		c.sloadOps,
		c.sloadOps*thor.SloadGas,
		c.sstoreSetOps,
		c.sstoreSetOps*thor.SstoreSetGas,
		c.sstoreResetOps,
		c.sstoreResetOps*thor.SstoreResetGas,
		c.transientOps,
		c.transientOps*thor.TransientGas,
		c.customGas,
		c.totalGas,
	)
}

func (c *Charger) TotalGas() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalGas
}
