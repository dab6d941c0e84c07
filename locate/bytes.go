// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package locate

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/roy9527/tempo/thor"
)

// MaxInlineLength is the longest bytes value kept in its root slot.
const MaxInlineLength = 31

// MaxBytesLength bounds the length accepted from a long-form header. Longer
// headers are treated as corrupt.
const MaxBytesLength = 1 << 32

// ErrCorruptBytes is returned when the root slot of a bytes/string value
// is not a valid inline or long-form header.
var ErrCorruptBytes = errors.New("locate: corrupt bytes header")

// BytesHeader is the decoded root slot of a bytes or string value.
type BytesHeader struct {
	Length uint64
	Long   bool
}

// Slots returns the number of data slots used by a long value.
func (h BytesHeader) Slots() uint64 {
	if !h.Long {
		return 0
	}
	return (h.Length + thor.SlotSize - 1) / thor.SlotSize
}

// DecodeBytesHeader decodes the root slot. With the lowest bit clear the
// data is inline and the last byte holds length*2; otherwise the whole word
// holds length*2+1 and the data lives at keccak256(root slot).
func DecodeBytesHeader(root thor.Bytes32) (BytesHeader, error) {
	if root[31]&1 == 0 {
		length := uint64(root[31] >> 1)
		if length > MaxInlineLength {
			return BytesHeader{}, errors.Wrapf(ErrCorruptBytes, "inline length %d", length)
		}
		return BytesHeader{Length: length}, nil
	}
	v := root.Uint256()
	v.Rsh(v, 1)
	if !v.IsUint64() || v.Uint64() > MaxBytesLength {
		return BytesHeader{}, errors.Wrapf(ErrCorruptBytes, "long length %s", v.Dec())
	}
	if v.Uint64() <= MaxInlineLength {
		return BytesHeader{}, errors.Wrapf(ErrCorruptBytes, "long form with length %d", v.Uint64())
	}
	return BytesHeader{Length: v.Uint64(), Long: true}, nil
}

// EncodeBytesHeader returns the root slot for data. Short data is stored
// inline, left aligned.
func EncodeBytesHeader(data []byte) thor.Bytes32 {
	var root thor.Bytes32
	if len(data) <= MaxInlineLength {
		copy(root[:], data)
		root[31] = byte(len(data) * 2)
		return root
	}
	v := uint256.NewInt(uint64(len(data)))
	v.Lsh(v, 1).AddUint64(v, 1)
	return thor.Uint256ToBytes32(v)
}

// InlineData returns the inline content of a short value.
func InlineData(root thor.Bytes32, h BytesHeader) []byte {
	return append([]byte(nil), root[:h.Length]...)
}

// BytesDataSlots lists the data slots of a long value of the given length
// rooted at base.
func BytesDataSlots(base thor.Bytes32, length uint64) []thor.Bytes32 {
	n := (length + thor.SlotSize - 1) / thor.SlotSize
	start := ArrayDataSlot(base)
	slots := make([]thor.Bytes32, n)
	for i := range n {
		slots[i] = thor.AddSlot(start, i)
	}
	return slots
}
