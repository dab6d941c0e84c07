// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slotdb

import (
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roy9527/tempo/thor"
)

var (
	addr  = thor.MustParseAddress("0x00000000000000000000000000000000000c0de0")
	other = thor.MustParseAddress("0x00000000000000000000000000000000000c0de1")
)

func newMem(t *testing.T) *Store {
	s, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreGetSet(t *testing.T) {
	s := newMem(t)
	slot := thor.SlotFromUint64(7)

	v, err := s.GetStorage(addr, slot)
	require.NoError(t, err)
	assert.True(t, v.IsZero(), "unwritten slot is zero")

	value := thor.MustParseBytes32("0x00000000000000000000000000000000000000000000000000000000deadbeef")
	require.NoError(t, s.SetStorage(addr, slot, value))

	v, err = s.GetStorage(addr, slot)
	require.NoError(t, err)
	assert.Equal(t, value, v)

	v, err = s.GetStorage(other, slot)
	require.NoError(t, err)
	assert.True(t, v.IsZero(), "slots are per contract")

	require.NoError(t, s.SetStorage(addr, slot, thor.Bytes32{}))
	has, err := s.stg.Has(storageKey(addr, slot))
	require.NoError(t, err)
	assert.False(t, has, "zero value removes the key")
}

func TestStoreEncoding(t *testing.T) {
	s := newMem(t)
	slot := thor.SlotFromUint64(1)
	require.NoError(t, s.SetStorage(addr, slot, thor.SlotFromUint64(0x1234)))

	raw, err := s.stg.Get(storageKey(addr, slot))
	require.NoError(t, err)
	want, _ := rlp.EncodeToBytes([]byte{0x12, 0x34})
	assert.Equal(t, want, raw, "leading zeros are trimmed")

	full := thor.Keccak256([]byte("full"))
	require.NoError(t, s.SetStorage(addr, slot, full))
	v, err := s.GetStorage(addr, slot)
	require.NoError(t, err)
	assert.Equal(t, full, v)
}

func TestStoreForEach(t *testing.T) {
	s := newMem(t)
	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, s.SetStorage(addr, thor.SlotFromUint64(i), thor.SlotFromUint64(i*10)))
	}
	require.NoError(t, s.SetStorage(other, thor.SlotFromUint64(1), thor.SlotFromUint64(99)))

	var got []uint64
	require.NoError(t, s.ForEach(addr, func(slot, value thor.Bytes32) bool {
		got = append(got, value.Uint256().Uint64())
		return true
	}))
	assert.Equal(t, []uint64{10, 20, 30}, got)

	got = got[:0]
	require.NoError(t, s.ForEach(addr, func(slot, value thor.Bytes32) bool {
		got = append(got, slot.Uint256().Uint64())
		return false
	}))
	assert.Equal(t, []uint64{1}, got)
}

func TestStorePersistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetStorage(addr, thor.SlotFromUint64(2), thor.SlotFromUint64(5)))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.GetStorage(addr, thor.SlotFromUint64(2))
	require.NoError(t, err)
	assert.Equal(t, thor.SlotFromUint64(5), v)
}

func TestStoreApply(t *testing.T) {
	s := newMem(t)
	require.NoError(t, s.SetStorage(addr, thor.SlotFromUint64(1), thor.SlotFromUint64(1)))

	require.NoError(t, s.Apply([]Change{
		{addr, thor.SlotFromUint64(1), thor.Bytes32{}},
		{addr, thor.SlotFromUint64(2), thor.SlotFromUint64(22)},
		{other, thor.SlotFromUint64(2), thor.SlotFromUint64(33)},
	}))

	v, err := s.GetStorage(addr, thor.SlotFromUint64(1))
	require.NoError(t, err)
	assert.True(t, v.IsZero())
	v, err = s.GetStorage(addr, thor.SlotFromUint64(2))
	require.NoError(t, err)
	assert.Equal(t, thor.SlotFromUint64(22), v)
	v, err = s.GetStorage(other, thor.SlotFromUint64(2))
	require.NoError(t, err)
	assert.Equal(t, thor.SlotFromUint64(33), v)
}

func TestStoreReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots")
	_, err := OpenReadOnly(path)
	assert.Error(t, err, "missing store")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetStorage(addr, thor.SlotFromUint64(1), thor.SlotFromUint64(8)))
	require.NoError(t, s.Close())

	s, err = OpenReadOnly(path)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.GetStorage(addr, thor.SlotFromUint64(1))
	require.NoError(t, err)
	assert.Equal(t, thor.SlotFromUint64(8), v)
	assert.Error(t, s.SetStorage(addr, thor.SlotFromUint64(1), thor.SlotFromUint64(9)))
}
