// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package locate computes the concrete slots of data stored at hashed
// locations: mapping values, dynamic array elements and long bytes/strings.
package locate

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/roy9527/tempo/codec"
	"github.com/roy9527/tempo/layout"
	"github.com/roy9527/tempo/thor"
)

// SlotAddress is a runtime-resolved field location.
type SlotAddress struct {
	Contract thor.Address
	Slot     thor.Bytes32
	Offset   uint8
	Length   uint8
}

// At returns the address of a resolved primitive or root node.
func At(contract thor.Address, n *layout.Node) SlotAddress {
	return SlotAddress{
		Contract: contract,
		Slot:     thor.Uint256ToBytes32(n.Slot),
		Offset:   n.Offset,
		Length:   n.Length,
	}
}

// EncodeKey returns the bytes hashed in front of the mapping slot for key.
// Value types are padded to 32 bytes: integers, addresses and bools on the
// left (signed integers sign-extended), bytesN on the right. bytes and string
// keys are used unpadded.
func EncodeKey(keyType *layout.Descriptor, key []byte) ([]byte, error) {
	switch keyType.Kind {
	case layout.KindBytes:
		return append([]byte(nil), key...), nil
	case layout.KindPrimitive:
		if keyType.FixedBytes {
			if len(key) > int(keyType.Width) {
				return nil, errors.Wrapf(codec.ErrValueTooWide, "%d bytes key for %v", len(key), keyType)
			}
			out := make([]byte, thor.SlotSize)
			copy(out, key)
			return out, nil
		}
		v, err := codec.Normalize(key, keyType.Width, keyType.Signed)
		if err != nil {
			return nil, errors.WithMessagef(err, "key for %v", keyType)
		}
		return codec.Normalize(v, thor.SlotSize, keyType.Signed)
	}
	return nil, errors.Wrapf(layout.ErrUnsupported, "%v as mapping key", keyType)
}

// MappingSlot returns keccak256(encodedKey . base), the slot of the value
// stored under key in the mapping rooted at base.
func MappingSlot(keyType *layout.Descriptor, key []byte, base thor.Bytes32) (thor.Bytes32, error) {
	enc, err := EncodeKey(keyType, key)
	if err != nil {
		return thor.Bytes32{}, err
	}
	return thor.SlotHash(enc, base), nil
}

// ArrayDataSlot returns keccak256(base), the first data slot of the dynamic
// array or long bytes value rooted at base.
func ArrayDataSlot(base thor.Bytes32) thor.Bytes32 {
	return thor.Keccak256(base[:])
}

// ArrayElement returns the slot and in-slot offset of element i of a dynamic
// array rooted at base. elem is resolved at slot 0, so shifting it by the
// returned slot yields the element placement.
func ArrayElement(base thor.Bytes32, elem *layout.Node, i uint64) (*uint256.Int, uint8) {
	delta, offset := layout.ElementPlacement(elem, i)
	return delta.Add(delta, ArrayDataSlot(base).Uint256()), offset
}
