// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gascharger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roy9527/tempo/thor"
)

func TestCharger(t *testing.T) {
	c := New(0)
	c.Charge(thor.SloadGas)
	c.Charge(2 * thor.SloadGas)
	c.Charge(thor.SstoreSetGas)
	c.Charge(thor.SstoreResetGas)
	c.Charge(thor.TransientGas)
	c.Charge(7)

	assert.Equal(t, 3*thor.SloadGas+thor.SstoreSetGas+thor.SstoreResetGas+thor.TransientGas+7, c.TotalGas())
	assert.Equal(t,
		"SLOAD: 3 ops (600 gas) | SSTORE_SET: 1 ops (20000 gas) | SSTORE_RESET: 1 ops (5000 gas) | TRANSIENT: 1 ops (100 gas) | CUSTOM: 7 gas | TOTAL: 25707 gas",
		c.Breakdown())
	assert.False(t, c.OutOfGas(), "unlimited")
}

func TestChargerLimit(t *testing.T) {
	c := New(thor.SstoreSetGas)
	c.Charge(thor.SstoreSetGas)
	assert.False(t, c.OutOfGas())
	c.Charge(thor.SloadGas)
	assert.True(t, c.OutOfGas())
}
