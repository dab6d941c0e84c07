// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slotdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roy9527/tempo/thor"
)

func TestTransient(t *testing.T) {
	tr := NewTransient()
	slot := thor.SlotFromUint64(3)

	require.NoError(t, tr.SetStorage(addr, slot, thor.SlotFromUint64(9)))
	v, err := tr.GetStorage(addr, slot)
	require.NoError(t, err)
	assert.Equal(t, thor.SlotFromUint64(9), v)

	v, err = tr.GetStorage(other, slot)
	require.NoError(t, err)
	assert.True(t, v.IsZero())
	assert.Equal(t, 1, tr.Len())

	require.NoError(t, tr.SetStorage(addr, slot, thor.Bytes32{}))
	assert.Zero(t, tr.Len(), "zero value removes the slot")

	require.NoError(t, tr.SetStorage(addr, slot, thor.SlotFromUint64(1)))
	require.NoError(t, tr.SetStorage(other, slot, thor.SlotFromUint64(2)))
	tr.Reset()
	assert.Zero(t, tr.Len())
	v, err = tr.GetStorage(addr, slot)
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}
