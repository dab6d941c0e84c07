// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package codec packs field values into 32-byte storage words and extracts
// them back.
//
// A field is addressed by (offset, length) where offset counts bytes from the
// low-order end of the word, the convention used by the compiler's storage
// layout output. Within its range the field is big-endian, so a field at
// offset 0 occupies the last length bytes of the word.
package codec

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/roy9527/tempo/thor"
)

var (
	// ErrValueTooWide is returned when a value has significant bytes beyond
	// the field width.
	ErrValueTooWide = errors.New("codec: value too wide")
	// ErrValueSize is returned when an aggregate value does not match the
	// total width of the fields it is written to.
	ErrValueSize = errors.New("codec: value size mismatch")
)

func checkRange(offset, length uint8) error {
	if length == 0 || int(offset)+int(length) > thor.SlotSize {
		return errors.Errorf("codec: invalid field range offset=%d length=%d", offset, length)
	}
	return nil
}

// Mask returns the word with all bits of the field set.
func Mask(offset, length uint8) *uint256.Int {
	m := new(uint256.Int)
	if length >= thor.SlotSize {
		m.SetAllOne()
	} else {
		m.Lsh(uint256.NewInt(1), uint(length)*8)
		m.SubUint64(m, 1)
	}
	return m.Lsh(m, uint(offset)*8)
}

// Extract returns the length bytes of the field at offset.
func Extract(word thor.Bytes32, offset, length uint8) []byte {
	end := thor.SlotSize - int(offset)
	out := make([]byte, length)
	copy(out, word[end-int(length):end])
	return out
}

// Merge writes value into the field at offset, keeping every bit outside the
// field. value is big-endian and must fit in length bytes; shorter values are
// zero-extended.
func Merge(old thor.Bytes32, offset, length uint8, value []byte) (thor.Bytes32, error) {
	if err := checkRange(offset, length); err != nil {
		return thor.Bytes32{}, err
	}
	value, err := Normalize(value, length, false)
	if err != nil {
		return thor.Bytes32{}, err
	}

	mask := Mask(offset, length)
	v := new(uint256.Int).SetBytes(value)
	v.Lsh(v, uint(offset)*8).And(v, mask)

	word := old.Uint256()
	word.And(word, mask.Not(mask)).Or(word, v)
	return thor.Uint256ToBytes32(word), nil
}

// Normalize returns value resized to exactly length bytes. Shorter values are
// extended with zeros, or with 0xff when signed and negative. Longer values
// are accepted only if the dropped leading bytes carry no information.
func Normalize(value []byte, length uint8, signed bool) ([]byte, error) {
	size := int(length)
	out := make([]byte, size)
	switch {
	case len(value) == size:
		copy(out, value)
	case len(value) < size:
		if signed && len(value) > 0 && value[0]&0x80 != 0 {
			for i := range size - len(value) {
				out[i] = 0xff
			}
		}
		copy(out[size-len(value):], value)
	default:
		excess, kept := value[:len(value)-size], value[len(value)-size:]
		var fill byte
		if signed && size > 0 && kept[0]&0x80 != 0 {
			fill = 0xff
		}
		for _, b := range excess {
			if b != fill {
				return nil, errors.Wrapf(ErrValueTooWide, "%d bytes into %d", len(value), size)
			}
		}
		copy(out, kept)
	}
	return out, nil
}
