// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/bits"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/roy9527/tempo/codec"
	"github.com/roy9527/tempo/gate"
	"github.com/roy9527/tempo/layout"
	"github.com/roy9527/tempo/locate"
	"github.com/roy9527/tempo/thor"
)

// op carries the state of one engine call.
type op struct {
	e      *Engine
	ctx    *Context
	name   string
	slots  int64   // slots read or written
	bounds []bound // dynamic array indexes on the path
	locked bool    // the footprint is write-locked
}

// bound is a dynamic array index checked while walking a path.
type bound struct {
	arr   *layout.Node
	index uint64
}

func (e *Engine) begin(ctx *Context, name string) *op {
	return &op{e: e, ctx: ctx, name: name}
}

func (o *op) end(err error) {
	result := "ok"
	if err != nil {
		result = "error"
		logger.Debug("storage operation failed", "op", o.name, "contract", o.ctx.address, "err", err)
	}
	metricOps().AddWithLabel(1, map[string]string{"op": o.name, "result": result})
	metricSlots().ObserveWithLabels(o.slots, map[string]string{"op": o.name})
}

func slotOf(n *layout.Node) thor.Bytes32 {
	return thor.Uint256ToBytes32(n.Slot)
}

// target resolves desc at base, follows path and checks the access.
func (o *op) target(desc *layout.Descriptor, base thor.Bytes32, path []Selector, kind gate.Kind) (*layout.Node, error) {
	if kind == gate.Write && o.ctx.static {
		return nil, errors.Wrapf(ErrWriteProtection, "%s in static context", o.name)
	}
	root, err := o.e.resolver.Resolve(desc, base.Uint256())
	if err != nil {
		return nil, err
	}
	n, err := o.walk(root, path)
	if err != nil {
		return nil, err
	}
	if err := o.check(n, kind); err != nil {
		return nil, err
	}
	return n, nil
}

func (o *op) walk(n *layout.Node, path []Selector) (*layout.Node, error) {
	for step, sel := range path {
		if sel.err != nil {
			return nil, errors.WithMessagef(sel.err, "selector %d", step)
		}
		mismatch := errors.Wrapf(ErrPath, "%v at step %d on %v", sel, step, n.Type)
		switch n.Kind {
		case layout.KindStruct:
			if sel.kind != selectField {
				return nil, mismatch
			}
			child, ok := n.Child(sel.name)
			if !ok {
				return nil, mismatch
			}
			n = child
		case layout.KindStaticArray:
			if sel.kind != selectIndex {
				return nil, mismatch
			}
			if sel.index >= n.Type.Length {
				return nil, errors.Wrapf(ErrIndexOutOfBounds, "index %d of %v", sel.index, n.Type)
			}
			elem, err := n.Element(sel.index)
			if err != nil {
				return nil, err
			}
			n = elem
		case layout.KindDynamicArray:
			if sel.kind != selectIndex {
				return nil, mismatch
			}
			if err := o.checkRange(gate.Single(slotOf(n)), gate.Read); err != nil {
				return nil, err
			}
			length, err := o.arrayLength(n)
			if err != nil {
				return nil, err
			}
			if sel.index >= length {
				return nil, errors.Wrapf(ErrIndexOutOfBounds, "index %d of %v with length %d", sel.index, n.Type, length)
			}
			o.bounds = append(o.bounds, bound{n, sel.index})
			n = elementAt(n, sel.index)
		case layout.KindMapping:
			if sel.kind != selectKey {
				return nil, mismatch
			}
			slot, err := locate.MappingSlot(n.Type.Key, sel.key, slotOf(n))
			if err != nil {
				return nil, err
			}
			n = n.Elem.Shift(slot.Uint256())
		default:
			return nil, mismatch
		}
	}
	return n, nil
}

// check asks the gate about the static slots of n. Data at hashed locations
// below a bytes value is covered by its root slot.
func (o *op) check(n *layout.Node, kind gate.Kind) error {
	from := slotOf(n)
	r := gate.Single(from)
	if n.Slots > 1 {
		r.To = thor.AddSlot(from, n.Slots-1)
	}
	return o.checkRange(r, kind)
}

func (o *op) checkRange(r gate.SlotRange, kind gate.Kind) error {
	if !o.e.gate.Check(o.ctx.caller, o.ctx.address, r, kind) {
		return errors.Wrapf(ErrPermissionDenied, "%v of %v slots %v..%v by %v", kind, o.ctx.address, r.From, r.To, o.ctx.caller)
	}
	return nil
}

// elementAt returns element i of the dynamic array arr.
func elementAt(arr *layout.Node, i uint64) *layout.Node {
	slot, offset := locate.ArrayElement(slotOf(arr), arr.Elem, i)
	e := arr.Elem.Shift(slot)
	if arr.Elem.Packable {
		e.Offset = offset
	}
	return e
}

// packedSlots is the number of data slots used by length packable elements.
func packedSlots(length uint64, elem *layout.Node) uint64 {
	perSlot := uint64(thor.SlotSize / int(elem.Length))
	n := length / perSlot
	if length%perSlot != 0 {
		n++
	}
	return n
}

func toLength(word thor.Bytes32) (uint64, error) {
	v := word.Uint256()
	if !v.IsUint64() {
		return 0, errors.Errorf("array length %s out of range", v.Dec())
	}
	return v.Uint64(), nil
}

// bounded rejects aggregates spanning more slots than the engine allows.
func (o *op) bounded(n *layout.Node) error {
	if (n.Kind == layout.KindStruct || n.Kind == layout.KindStaticArray) && n.Slots > o.e.maxSlots {
		return errors.Wrapf(ErrTooLarge, "%v spans %d slots, limit %d", n.Type, n.Slots, o.e.maxSlots)
	}
	return nil
}

// peek reads a locked slot without charging gas.
func (o *op) peek(slot thor.Bytes32) (thor.Bytes32, error) {
	v, err := o.e.provider.GetStorage(o.ctx.address, slot)
	if err != nil {
		return thor.Bytes32{}, errors.Wrapf(err, "get storage %v", slot)
	}
	return v, nil
}

// get reads a slot the caller has locked.
func (o *op) get(slot thor.Bytes32) (thor.Bytes32, error) {
	v, err := o.peek(slot)
	if err != nil {
		return thor.Bytes32{}, err
	}
	o.slots++
	o.ctx.UseGas(o.e.gas.Load)
	return v, nil
}

// load reads a slot under its read lock. Inside exclusive the slot is
// already covered by the write locks.
func (o *op) load(slot thor.Bytes32) (thor.Bytes32, error) {
	if o.locked {
		return o.get(slot)
	}
	unlock := o.e.locks.rlock(o.ctx.address, slot)
	defer unlock()
	return o.get(slot)
}

func (o *op) peekLength(root thor.Bytes32) (uint64, error) {
	word, err := o.peek(root)
	if err != nil {
		return 0, err
	}
	return toLength(word)
}

// plannedLength reads the length at root while a footprint is collected.
// Until the stripe of root is held it only adds root and reports !ok; the
// footprint is then collected again with that stripe locked.
func (o *op) plannedLength(fp *footprint, root thor.Bytes32) (length uint64, ok bool, err error) {
	if err := fp.add(root); err != nil {
		return 0, false, err
	}
	if !fp.holds(root) {
		return 0, false, nil
	}
	if length, err = o.peekLength(root); err != nil {
		return 0, false, err
	}
	return length, true, nil
}

func (o *op) lengthAt(root thor.Bytes32) (uint64, error) {
	word, err := o.get(root)
	if err != nil {
		return 0, err
	}
	return toLength(word)
}

func (o *op) arrayLength(n *layout.Node) (uint64, error) {
	word, err := o.load(slotOf(n))
	if err != nil {
		return 0, err
	}
	return toLength(word)
}

// put merges value into the field (offset, length) of a locked slot.
// Unless always is set, a write that changes nothing is skipped.
func (o *op) put(slot thor.Bytes32, offset, length uint8, value []byte, always bool) error {
	old, err := o.get(slot)
	if err != nil {
		return err
	}
	word, err := codec.Merge(old, offset, length, value)
	if err != nil {
		return err
	}
	return o.set(slot, offset, length, old, word, always)
}

func (o *op) set(slot thor.Bytes32, offset, length uint8, old, word thor.Bytes32, always bool) error {
	if word == old && !always {
		return nil
	}
	if err := o.e.provider.SetStorage(o.ctx.address, slot, word); err != nil {
		return errors.Wrapf(err, "set storage %v", slot)
	}
	o.slots++
	if old.IsZero() && !word.IsZero() {
		o.ctx.UseGas(o.e.gas.StoreSet)
	} else {
		o.ctx.UseGas(o.e.gas.StoreReset)
	}
	o.e.gate.Audit(gate.Record{
		Caller:   o.ctx.caller,
		Contract: o.ctx.address,
		Slot:     slot,
		Offset:   offset,
		Length:   length,
		Old:      old,
		New:      word,
	})
	return nil
}

// exclusive runs fn holding the write locks of every slot collect reports.
// The footprint may depend on stored lengths, so it is collected again
// under the locks until the held stripes cover it. The array indexes of the
// path are checked again before fn runs.
func (o *op) exclusive(collect func(*footprint) error, fn func() error) error {
	var held []int
	defer func() { o.e.locks.unlock(held) }()
	for {
		fp := &footprint{
			locks: o.e.locks,
			addr:  o.ctx.address,
			held:  held,
			set:   make(map[int]struct{}),
			limit: o.e.maxSlots + uint64(len(o.bounds)),
		}
		for _, b := range o.bounds {
			if err := fp.add(slotOf(b.arr)); err != nil {
				return err
			}
		}
		if err := collect(fp); err != nil {
			return err
		}
		if fp.covers(held) {
			o.locked = true
			defer func() { o.locked = false }()
			if err := o.recheck(); err != nil {
				return err
			}
			return fn()
		}
		o.e.locks.unlock(held)
		held = merge(held, fp.sorted())
		o.e.locks.lock(held)
	}
}

// recheck verifies the path's dynamic array indexes against the lengths
// stored now, which may have shrunk since the path was walked.
func (o *op) recheck() error {
	for _, b := range o.bounds {
		length, err := o.peekLength(slotOf(b.arr))
		if err != nil {
			return err
		}
		if b.index >= length {
			return errors.Wrapf(ErrIndexOutOfBounds, "index %d of %v with length %d", b.index, b.arr.Type, length)
		}
	}
	return nil
}

func (o *op) read(n *layout.Node) ([]byte, error) {
	switch n.Kind {
	case layout.KindPrimitive:
		word, err := o.load(slotOf(n))
		if err != nil {
			return nil, err
		}
		return codec.Extract(word, n.Offset, n.Length), nil
	case layout.KindStruct, layout.KindStaticArray:
		if err := o.bounded(n); err != nil {
			return nil, err
		}
		size, err := n.StaticSize()
		if err != nil {
			return nil, err
		}
		var (
			out    = make([]byte, 0, size)
			last   *uint256.Int
			word   thor.Bytes32
			loaded bool
		)
		err = n.Leaves(func(leaf *layout.Node) error {
			if !loaded || !last.Eq(leaf.Slot) {
				w, err := o.load(slotOf(leaf))
				if err != nil {
					return err
				}
				last, word, loaded = leaf.Slot, w, true
			}
			out = append(out, codec.Extract(word, leaf.Offset, leaf.Length)...)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	case layout.KindBytes:
		return o.readBytes(n)
	}
	return nil, errors.Wrapf(ErrPath, "read of %v", n.Type)
}

// validate checks value against n and returns it in the form write expects.
func (o *op) validate(n *layout.Node, value []byte) ([]byte, error) {
	switch n.Kind {
	case layout.KindPrimitive:
		v, err := codec.Normalize(value, n.Length, n.Type.Signed)
		if err != nil {
			return nil, errors.WithMessagef(err, "write %v", n.Type)
		}
		return v, nil
	case layout.KindStruct, layout.KindStaticArray:
		if err := o.bounded(n); err != nil {
			return nil, err
		}
		size, err := n.StaticSize()
		if err != nil {
			return nil, err
		}
		if uint64(len(value)) != size {
			return nil, errors.Wrapf(codec.ErrValueSize, "%d bytes for %v of %d", len(value), n.Type, size)
		}
		return value, nil
	case layout.KindBytes:
		if uint64(len(value)) > locate.MaxBytesLength {
			return nil, errors.Wrapf(codec.ErrValueTooWide, "%d bytes for %v", len(value), n.Type)
		}
		return value, nil
	}
	return nil, errors.Wrapf(ErrPath, "write of %v", n.Type)
}

// valueSlots adds the slots written by a write of n.
func (o *op) valueSlots(fp *footprint, n *layout.Node) error {
	if n.Kind == layout.KindStruct || n.Kind == layout.KindStaticArray {
		if err := o.bounded(n); err != nil {
			return err
		}
		var last *uint256.Int
		return n.Leaves(func(leaf *layout.Node) error {
			if last != nil && last.Eq(leaf.Slot) {
				return nil
			}
			last = leaf.Slot
			return fp.add(slotOf(leaf))
		})
	}
	return fp.add(slotOf(n))
}

func (o *op) write(n *layout.Node, value []byte) error {
	switch n.Kind {
	case layout.KindPrimitive:
		return o.put(slotOf(n), n.Offset, n.Length, value, true)
	case layout.KindStruct, layout.KindStaticArray:
		return n.Leaves(func(leaf *layout.Node) error {
			v := value[:leaf.Length]
			value = value[leaf.Length:]
			return o.put(slotOf(leaf), leaf.Offset, leaf.Length, v, true)
		})
	case layout.KindBytes:
		return o.writeBytes(n, value, true)
	}
	return errors.Wrapf(ErrPath, "write of %v", n.Type)
}

// clearSlots adds the slots written when n is reset to zero.
func (o *op) clearSlots(fp *footprint, n *layout.Node) error {
	switch n.Kind {
	case layout.KindPrimitive, layout.KindBytes:
		return fp.add(slotOf(n))
	case layout.KindStruct:
		for _, c := range n.Children {
			if err := o.clearSlots(fp, c); err != nil {
				return err
			}
		}
	case layout.KindStaticArray:
		if n.Elem.Packable {
			for i := range n.Slots {
				if err := fp.add(thor.AddSlot(slotOf(n), i)); err != nil {
					return err
				}
			}
			return nil
		}
		if n.Slots > fp.limit {
			return errors.Wrapf(ErrTooLarge, "%v spans %d slots", n.Type, n.Slots)
		}
		for i := range n.Type.Length {
			elem, err := n.Element(i)
			if err != nil {
				return err
			}
			if err := o.clearSlots(fp, elem); err != nil {
				return err
			}
		}
	case layout.KindDynamicArray:
		length, ok, err := o.plannedLength(fp, slotOf(n))
		if !ok {
			return err
		}
		if n.Elem.Packable {
			data := locate.ArrayDataSlot(slotOf(n))
			for i := range packedSlots(length, n.Elem) {
				if err := fp.add(thor.AddSlot(data, i)); err != nil {
					return err
				}
			}
			return nil
		}
		if hi, lo := bits.Mul64(length, n.Elem.Slots); hi != 0 || lo > fp.limit {
			return errors.Wrapf(ErrTooLarge, "%v of length %d", n.Type, length)
		}
		for i := range length {
			if err := o.clearSlots(fp, elementAt(n, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// clear resets n to its zero value. Mappings are left untouched, as the
// compiler does.
func (o *op) clear(n *layout.Node) error {
	var zero thor.Bytes32
	switch n.Kind {
	case layout.KindPrimitive:
		return o.put(slotOf(n), n.Offset, n.Length, nil, false)
	case layout.KindBytes:
		return o.writeBytes(n, nil, false)
	case layout.KindStruct:
		for _, c := range n.Children {
			if err := o.clear(c); err != nil {
				return err
			}
		}
	case layout.KindStaticArray:
		if n.Elem.Packable {
			for i := range n.Slots {
				if err := o.put(thor.AddSlot(slotOf(n), i), 0, thor.SlotSize, zero[:], false); err != nil {
					return err
				}
			}
			return nil
		}
		for i := range n.Type.Length {
			elem, err := n.Element(i)
			if err != nil {
				return err
			}
			if err := o.clear(elem); err != nil {
				return err
			}
		}
	case layout.KindDynamicArray:
		root := slotOf(n)
		length, err := o.lengthAt(root)
		if err != nil {
			return err
		}
		if n.Elem.Packable {
			data := locate.ArrayDataSlot(root)
			for i := range packedSlots(length, n.Elem) {
				if err := o.put(thor.AddSlot(data, i), 0, thor.SlotSize, zero[:], false); err != nil {
					return err
				}
			}
		} else {
			for i := range length {
				if err := o.clear(elementAt(n, i)); err != nil {
					return err
				}
			}
		}
		return o.put(root, 0, thor.SlotSize, zero[:], false)
	}
	return nil
}
