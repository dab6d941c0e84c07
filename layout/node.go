// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package layout

import (
	"fmt"
	"math/bits"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Node is the resolved storage placement of a type.
//
// Slot is absolute for everything reachable without hashing. The Elem of a
// dynamic array or a mapping is a template resolved at slot 0; callers shift
// it onto the hashed location at access time. Nodes are shared by the
// resolver cache and must be treated as read-only.
type Node struct {
	Kind     Kind
	Name     string
	Type     *Descriptor
	Slot     *uint256.Int
	Offset   uint8  // bytes from the low-order end of the slot
	Length   uint8  // bytes occupied within the slot
	Slots    uint64 // slots consumed by the node and its children
	Packable bool
	Children []*Node // struct fields, in declaration order
	Elem     *Node   // array element or mapping value
}

// Dynamic reports whether the data of the node lives at hashed locations.
func (n *Node) Dynamic() bool {
	return n.Kind == KindDynamicArray || n.Kind == KindMapping || n.Kind == KindBytes
}

// Child returns the struct field with the given name.
func (n *Node) Child(name string) (*Node, bool) {
	for _, c := range n.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Element returns the placement of element i of a static array.
func (n *Node) Element(i uint64) (*Node, error) {
	if n.Kind != KindStaticArray {
		return nil, errors.Errorf("layout: element access on %v", n.Kind)
	}
	if i >= n.Type.Length {
		return nil, errors.Errorf("layout: index %d out of range [0, %d)", i, n.Type.Length)
	}
	slot, offset := ElementPlacement(n.Elem, i)
	e := n.Elem.Shift(slot)
	if n.Elem.Packable {
		e.Offset = offset
	}
	return e, nil
}

// ElementPlacement returns the slot delta and byte offset of element i of an
// array whose element template is elem. Packable elements share slots
// (32/width per slot, no element straddles two slots); other elements each
// start at a fresh slot.
func ElementPlacement(elem *Node, i uint64) (*uint256.Int, uint8) {
	if elem.Packable {
		perSlot := uint64(32 / elem.Length)
		return uint256.NewInt(i / perSlot), uint8(i%perSlot) * elem.Length
	}
	delta := uint256.NewInt(i)
	return delta.Mul(delta, uint256.NewInt(elem.Slots)), 0
}

// Shift returns a copy of the node moved by delta slots. Templates below
// dynamic nodes are left untouched.
func (n *Node) Shift(delta *uint256.Int) *Node {
	c := *n
	c.Slot = new(uint256.Int).Add(n.Slot, delta)
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Shift(delta)
		}
	}
	if n.Kind == KindStaticArray {
		c.Elem = n.Elem.Shift(delta)
	}
	return &c
}

// StaticSize returns the number of bytes produced by an aggregate read of the
// node: the widths of all primitive leaves not reached through a dynamic
// member. Sizes beyond 64 bits fail with ErrUnsupported.
func (n *Node) StaticSize() (uint64, error) {
	switch n.Kind {
	case KindPrimitive:
		return uint64(n.Length), nil
	case KindStruct:
		var size uint64
		for _, c := range n.Children {
			cs, err := c.StaticSize()
			if err != nil {
				return 0, err
			}
			var carry uint64
			if size, carry = bits.Add64(size, cs, 0); carry != 0 {
				return 0, errors.Wrapf(ErrUnsupported, "size of %v", n.Type)
			}
		}
		return size, nil
	case KindStaticArray:
		es, err := n.Elem.StaticSize()
		if err != nil {
			return 0, err
		}
		hi, lo := bits.Mul64(n.Type.Length, es)
		if hi != 0 {
			return 0, errors.Wrapf(ErrUnsupported, "size of %v", n.Type)
		}
		return lo, nil
	}
	return 0, nil
}

// Leaves calls fn for every primitive leaf of the node in declaration order,
// skipping dynamic members. Iteration stops at the first error.
func (n *Node) Leaves(fn func(*Node) error) error {
	switch n.Kind {
	case KindPrimitive:
		return fn(n)
	case KindStruct:
		for _, c := range n.Children {
			if err := c.Leaves(fn); err != nil {
				return err
			}
		}
	case KindStaticArray:
		for i := range n.Type.Length {
			e, err := n.Element(i)
			if err != nil {
				return err
			}
			if err := e.Leaves(fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func (n *Node) String() string {
	return fmt.Sprintf("%s %s slot=%s offset=%d length=%d slots=%d", n.Type, n.Name, n.Slot.Dec(), n.Offset, n.Length, n.Slots)
}
