// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptorString(t *testing.T) {
	tests := []struct {
		d    *Descriptor
		want string
	}{
		{Uint(8), "uint8"},
		{Int(256), "int256"},
		{Address(), "address"},
		{Bool(), "bool"},
		{FixedBytes(4), "bytes4"},
		{DynamicBytes(), "bytes"},
		{String(), "string"},
		{Array(Uint(32), 8), "uint32[8]"},
		{Slice(Address()), "address[]"},
		{Map(Address(), Map(Uint(256), Bool())), "mapping(address=>mapping(uint256=>bool))"},
		{Struct(Member("a", Uint(8)), Member("b", String())), "struct{uint8 a;string b}"},
		{Slice(nil), "<nil>[]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.d.String())
	}
}

func TestDescriptorPredicates(t *testing.T) {
	assert.True(t, Uint(8).Packable())
	assert.True(t, Address().Packable())
	assert.False(t, Uint(256).Packable())
	assert.False(t, Struct(Member("a", Uint(8))).Packable())
	assert.False(t, Array(Uint(8), 1).Packable())

	assert.True(t, Slice(Uint(8)).Dynamic())
	assert.True(t, Map(Uint(8), Uint(8)).Dynamic())
	assert.True(t, String().Dynamic())
	assert.False(t, Array(Uint(8), 1).Dynamic())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "static-array", KindStaticArray.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}
