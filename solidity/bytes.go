// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/pkg/errors"

	"github.com/roy9527/tempo/layout"
	"github.com/roy9527/tempo/locate"
	"github.com/roy9527/tempo/thor"
)

// The root slot of a bytes or string value guards its data slots: readers
// hold its read lock for the whole value and writers its write lock.

func (o *op) bytesHeader(n *layout.Node) (locate.BytesHeader, error) {
	word, err := o.load(slotOf(n))
	if err != nil {
		return locate.BytesHeader{}, err
	}
	h, err := locate.DecodeBytesHeader(word)
	if err != nil {
		return locate.BytesHeader{}, errors.WithMessagef(err, "%v at %v", n.Type, slotOf(n))
	}
	return h, nil
}

func (o *op) readBytes(n *layout.Node) ([]byte, error) {
	root := slotOf(n)
	if !o.locked {
		unlock := o.e.locks.rlock(o.ctx.address, root)
		defer unlock()
	}

	word, err := o.get(root)
	if err != nil {
		return nil, err
	}
	h, err := locate.DecodeBytesHeader(word)
	if err != nil {
		return nil, errors.WithMessagef(err, "%v at %v", n.Type, root)
	}
	if !h.Long {
		return locate.InlineData(word, h), nil
	}
	out := make([]byte, 0, h.Slots()*thor.SlotSize)
	for _, slot := range locate.BytesDataSlots(root, h.Length) {
		w, err := o.get(slot)
		if err != nil {
			return nil, err
		}
		out = append(out, w[:]...)
	}
	return out[:h.Length], nil
}

// writeBytes stores data under a held root lock, switching between inline
// and long form and zeroing data slots the new value no longer uses.
// Unless always is set, slots that do not change are not written.
func (o *op) writeBytes(n *layout.Node, data []byte, always bool) error {
	root := slotOf(n)
	word, err := o.get(root)
	if err != nil {
		return err
	}
	old, err := locate.DecodeBytesHeader(word)
	if err != nil {
		return errors.WithMessagef(err, "%v at %v", n.Type, root)
	}

	next := locate.BytesHeader{Length: uint64(len(data)), Long: len(data) > locate.MaxInlineLength}
	start := locate.ArrayDataSlot(root)
	for i := range next.Slots() {
		var chunk thor.Bytes32
		copy(chunk[:], data[i*thor.SlotSize:])
		if err := o.put(thor.AddSlot(start, i), 0, thor.SlotSize, chunk[:], always); err != nil {
			return err
		}
	}
	var zero thor.Bytes32
	for i := next.Slots(); i < old.Slots(); i++ {
		if err := o.put(thor.AddSlot(start, i), 0, thor.SlotSize, zero[:], false); err != nil {
			return err
		}
	}
	return o.set(root, 0, thor.SlotSize, word, locate.EncodeBytesHeader(data), always)
}
