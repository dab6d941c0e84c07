// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package layout

import (
	"math/bits"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Resolve computes the storage placement of d rooted at base, following the
// compiler's storage layout rules. It is pure and deterministic.
func Resolve(d *Descriptor, base *uint256.Int) (*Node, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return resolve(d, "", base)
}

func resolve(d *Descriptor, name string, base *uint256.Int) (*Node, error) {
	n := &Node{
		Kind:   d.Kind,
		Name:   name,
		Type:   d,
		Slot:   base.Clone(),
		Length: 32,
		Slots:  1,
	}
	switch d.Kind {
	case KindPrimitive:
		n.Length = d.Width
		n.Packable = d.Packable()
	case KindStruct:
		var (
			cursor uint64 // slot relative to base
			offset uint8
		)
		n.Children = make([]*Node, 0, len(d.Fields))
		for _, f := range d.Fields {
			if f.Type.Packable() && int(offset)+int(f.Type.Width) <= 32 {
				child, err := resolve(f.Type, f.Name, slotAt(base, cursor))
				if err != nil {
					return nil, err
				}
				child.Offset = offset
				offset += child.Length
				n.Children = append(n.Children, child)
				continue
			}
			if offset > 0 {
				cursor++
				offset = 0
			}
			child, err := resolve(f.Type, f.Name, slotAt(base, cursor))
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
			if child.Packable {
				offset = child.Length
				continue
			}
			var carry uint64
			if cursor, carry = bits.Add64(cursor, child.Slots, 0); carry != 0 {
				return nil, errors.Wrapf(ErrUnsupported, "%v exceeds the slot space", d)
			}
		}
		if offset > 0 {
			cursor++
		}
		n.Slots = cursor
	case KindStaticArray:
		elem, err := resolve(d.Elem, "", base)
		if err != nil {
			return nil, err
		}
		n.Elem = elem
		if elem.Packable {
			perSlot := uint64(32 / elem.Length)
			n.Slots = d.Length / perSlot
			if d.Length%perSlot != 0 {
				n.Slots++
			}
		} else {
			hi, lo := bits.Mul64(d.Length, elem.Slots)
			if hi != 0 {
				return nil, errors.Wrapf(ErrUnsupported, "%v exceeds the slot space", d)
			}
			n.Slots = lo
		}
	case KindDynamicArray:
		elem, err := resolve(d.Elem, "", new(uint256.Int))
		if err != nil {
			return nil, err
		}
		n.Elem = elem
	case KindMapping:
		value, err := resolve(d.Value, "", new(uint256.Int))
		if err != nil {
			return nil, err
		}
		n.Elem = value
	case KindBytes:
	default:
		return nil, errors.Wrapf(ErrMalformed, "unknown kind %v", d.Kind)
	}
	return n, nil
}

func slotAt(base *uint256.Int, rel uint64) *uint256.Int {
	return new(uint256.Int).Add(base, uint256.NewInt(rel))
}
