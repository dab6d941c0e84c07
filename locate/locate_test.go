// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package locate

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roy9527/tempo/codec"
	"github.com/roy9527/tempo/layout"
	"github.com/roy9527/tempo/thor"
)

func TestArrayDataSlotGolden(t *testing.T) {
	tests := []struct {
		slot uint64
		want string
	}{
		{0, "0x290decd9548b62a8d60345a988386fc84ba6bc95484008f6362f93160ef3e563"},
		{1, "0xb10e2d527612073b26eecdfd717e6a320cf44b4afac2b0732d9fcbe2b7fa0cf6"},
		{2, "0x405787fa12a823e0f2b7631cc41b3ba8828b3321ca811111fa75cd3aa3bb5ace"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ArrayDataSlot(thor.SlotFromUint64(tt.slot)).String())
	}
}

func TestMappingSlot(t *testing.T) {
	base := thor.SlotFromUint64(0)

	// mapping(address => uint256) at slot 0, key address(0): keccak256 of 64 zero bytes
	slot, err := MappingSlot(layout.Address(), make([]byte, 20), base)
	require.NoError(t, err)
	assert.Equal(t, "0xad3228b676f7d3cd4284a5443f17f1962b36e491b30a40b2405849e597ba5fb5", slot.String())

	addr := common.HexToAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	base = thor.SlotFromUint64(3)
	slot, err = MappingSlot(layout.Address(), addr.Bytes(), base)
	require.NoError(t, err)
	want := crypto.Keccak256(common.LeftPadBytes(addr.Bytes(), 32), common.LeftPadBytes([]byte{3}, 32))
	assert.Equal(t, want, slot.Bytes())
}

func TestEncodeKey(t *testing.T) {
	tests := []struct {
		name string
		typ  *layout.Descriptor
		key  []byte
		want []byte
		err  error
	}{
		{"uint8", layout.Uint(8), []byte{7}, common.LeftPadBytes([]byte{7}, 32), nil},
		{"uint256 short", layout.Uint(256), []byte{1, 2}, common.LeftPadBytes([]byte{1, 2}, 32), nil},
		{"int16 negative", layout.Int(16), []byte{0xff, 0xfe}, negTwo(), nil},
		{"bool", layout.Bool(), []byte{1}, common.LeftPadBytes([]byte{1}, 32), nil},
		{"bytes4", layout.FixedBytes(4), []byte{0xde, 0xad, 0xbe, 0xef}, common.RightPadBytes([]byte{0xde, 0xad, 0xbe, 0xef}, 32), nil},
		{"string", layout.String(), []byte("abc"), []byte("abc"), nil},
		{"bytes4 too wide", layout.FixedBytes(4), make([]byte, 5), nil, codec.ErrValueTooWide},
		{"uint8 too wide", layout.Uint(8), []byte{1, 0}, nil, codec.ErrValueTooWide},
		{"struct", layout.Struct(layout.Member("a", layout.Uint(8))), nil, nil, layout.ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeKey(tt.typ, tt.key)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func negTwo() []byte {
	b := make([]byte, 32)
	for i := range b {
		b[i] = 0xff
	}
	b[31] = 0xfe
	return b
}

func TestArrayElement(t *testing.T) {
	base := thor.SlotFromUint64(2)
	data := ArrayDataSlot(base).Uint256()

	// uint64[]: four elements per slot
	u64, err := layout.Resolve(layout.Uint(64), new(uint256.Int))
	require.NoError(t, err)
	slot, offset := ArrayElement(base, u64, 5)
	assert.Equal(t, new(uint256.Int).AddUint64(data, 1), slot)
	assert.Equal(t, uint8(8), offset)

	// struct of two slots per element
	pair, err := layout.Resolve(layout.Struct(
		layout.Member("a", layout.Uint(256)),
		layout.Member("b", layout.Uint(8)),
	), new(uint256.Int))
	require.NoError(t, err)
	slot, offset = ArrayElement(base, pair, 3)
	assert.Equal(t, new(uint256.Int).AddUint64(data, 6), slot)
	assert.Equal(t, uint8(0), offset)
}

func TestBytesHeader(t *testing.T) {
	short := []byte("hello")
	root := EncodeBytesHeader(short)
	assert.Equal(t, byte(10), root[31])
	h, err := DecodeBytesHeader(root)
	require.NoError(t, err)
	assert.Equal(t, BytesHeader{Length: 5}, h)
	assert.Equal(t, short, InlineData(root, h))
	assert.Zero(t, h.Slots())

	long := make([]byte, 65)
	root = EncodeBytesHeader(long)
	assert.Equal(t, thor.SlotFromUint64(131), root)
	h, err = DecodeBytesHeader(root)
	require.NoError(t, err)
	assert.Equal(t, BytesHeader{Length: 65, Long: true}, h)
	assert.Equal(t, uint64(3), h.Slots())

	// boundary: 31 bytes inline, 32 bytes long
	h, err = DecodeBytesHeader(EncodeBytesHeader(make([]byte, 31)))
	require.NoError(t, err)
	assert.False(t, h.Long)
	h, err = DecodeBytesHeader(EncodeBytesHeader(make([]byte, 32)))
	require.NoError(t, err)
	assert.True(t, h.Long)

	_, err = DecodeBytesHeader(thor.Bytes32{31: 64})
	assert.ErrorIs(t, err, ErrCorruptBytes, "inline length 32")
	_, err = DecodeBytesHeader(thor.SlotFromUint64(21))
	assert.ErrorIs(t, err, ErrCorruptBytes, "long form with length 10")
	_, err = DecodeBytesHeader(thor.Bytes32{0: 0xff, 31: 1})
	assert.ErrorIs(t, err, ErrCorruptBytes, "absurd length")
}

func TestBytesDataSlots(t *testing.T) {
	base := thor.SlotFromUint64(4)
	slots := BytesDataSlots(base, 65)
	require.Len(t, slots, 3)
	start := ArrayDataSlot(base)
	assert.Equal(t, start, slots[0])
	assert.Equal(t, thor.AddSlot(start, 2), slots[2])
	assert.Empty(t, BytesDataSlots(base, 0))
}
