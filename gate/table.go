// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gate

import (
	"sync"

	"github.com/roy9527/tempo/thor"
)

// Rule grants a caller access to a slot range of one contract.
type Rule struct {
	Caller   *thor.Address // nil matches any caller
	Contract thor.Address
	Slots    SlotRange
	Read     bool
	Write    bool
}

func (r *Rule) allows(caller, contract thor.Address, slots SlotRange, kind Kind) bool {
	if r.Caller != nil && *r.Caller != caller {
		return false
	}
	if r.Contract != contract || !r.Slots.Contains(slots) {
		return false
	}
	if kind == Write {
		return r.Write
	}
	return r.Read
}

// Table is a capability table. A request is allowed when a single rule
// covers the whole requested range.
type Table struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewTable creates a table with the given rules.
func NewTable(rules ...Rule) *Table {
	return &Table{rules: append([]Rule(nil), rules...)}
}

// Add appends a rule.
func (t *Table) Add(rule Rule) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules = append(t.rules, rule)
}

// Len returns the number of rules.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rules)
}

// Allows reports whether any rule grants the access.
func (t *Table) Allows(caller, contract thor.Address, slots SlotRange, kind Kind) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.rules {
		if t.rules[i].allows(caller, contract, slots, kind) {
			return true
		}
	}
	return false
}
